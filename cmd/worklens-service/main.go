package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/worklens/worklens-backend/internal/advice"
	"github.com/worklens/worklens-backend/internal/api"
	"github.com/worklens/worklens-backend/internal/clock"
	"github.com/worklens/worklens-backend/internal/config"
	"github.com/worklens/worklens-backend/internal/platform/factory"
	"github.com/worklens/worklens-backend/internal/platform/logger"
	"github.com/worklens/worklens-backend/internal/refresolve"
	"github.com/worklens/worklens-backend/internal/subtree"
	"github.com/worklens/worklens-backend/internal/team"
	"github.com/worklens/worklens-backend/internal/workitems"
)

func main() {
	log := logger.New("worklens-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Worklens service starting…")

	// -------- Storage layer -----------------
	store, err := factory.NewStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Docstore driver unavailable")
	}

	// -------- Domain services ---------------
	clk := clock.NewFixed("operating", cfg.TZOffsetHours)
	resolver := refresolve.New(store, log)
	subtrees := subtree.New(store, log, cfg.MaxSubtaskDepth)
	repo := workitems.NewRepository(store, subtrees, clk, log)
	aggregator := team.New(store, resolver, log)
	queue := advice.NewQueue(store, clk, log, cfg.AdviceWindowStartHour, cfg.AdviceWindowEndHour)

	// -------- Router & Server --------------
	router := api.NewRouter(store, repo, aggregator, queue)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server…")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
