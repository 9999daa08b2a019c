// Package team aggregates per-user context documents across a project's
// member list.
package team

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/worklens/worklens-backend/internal/docstore"
	"github.com/worklens/worklens-backend/internal/model"
	"github.com/worklens/worklens-backend/internal/refresolve"
)

const (
	projectsCollection        = "projects"
	usersCollection           = "users"
	userContextsCollection    = "userContexts"
	projectContextsCollection = "projectContexts"
	taskEntitiesCollection    = "taskEntities"
	taskContextsCollection    = "taskContexts"
)

// Aggregator fans out over a project's members and collects each member's
// latest context document.
type Aggregator struct {
	store    docstore.Store
	resolver *refresolve.Resolver
	log      zerolog.Logger
}

func New(store docstore.Store, resolver *refresolve.Resolver, log zerolog.Logger) *Aggregator {
	return &Aggregator{store: store, resolver: resolver, log: log}
}

// TeamContexts reads one context document per project member from the named
// per-user sub-collection. An absent project yields an empty list, not an
// error. A failure on one member is logged and skips that member only. For
// the project-context collection each context's projectInfo reference is
// resolved one level deep, members' userRefs included.
func (a *Aggregator) TeamContexts(ctx context.Context, projectID, collectionName string, orderByCreatedDesc bool) ([]docstore.Fields, error) {
	doc, err := a.store.Get(ctx, docstore.JoinPath(projectsCollection, projectID))
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", projectID, err)
	}
	if doc == nil {
		a.log.Warn().Str("project_id", projectID).Msg("project not found, no team contexts")
		return []docstore.Fields{}, nil
	}
	members, _ := doc.Fields["members"].([]any)

	out := []docstore.Fields{}
	for _, m := range members {
		ref, ok := refresolve.MemberRef(m)
		if !ok {
			a.log.Warn().Interface("member", m).Msg("unexpected member shape, skipping")
			continue
		}
		email, ok := refresolve.UserEmail(ref)
		if !ok {
			a.log.Warn().Str("ref", ref.Path).Msg("member reference outside users collection, skipping")
			continue
		}
		contextDoc, err := a.latestContext(ctx, email, collectionName, orderByCreatedDesc)
		if err != nil {
			a.log.Warn().Err(err).Str("user", email).Msg("failed to read member context, skipping")
			continue
		}
		if contextDoc == nil {
			continue
		}
		contextDoc["userEmail"] = email
		if collectionName == projectContextsCollection {
			a.resolver.InlineProjectInfo(ctx, contextDoc)
		}
		out = append(out, contextDoc)
	}
	return out, nil
}

// latestContext reads one document from users/{email}/{collection}, the most
// recent by createdAt when ordered, an arbitrary single one otherwise.
func (a *Aggregator) latestContext(ctx context.Context, email, collectionName string, orderByCreatedDesc bool) (docstore.Fields, error) {
	q := docstore.Query{Limit: 1}
	if orderByCreatedDesc {
		q.OrderBy = []docstore.Order{{Field: "createdAt", Desc: true}}
	}
	docs, err := a.store.Stream(ctx, docstore.JoinPath(usersCollection, email, collectionName), q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0].Fields, nil
}

// UserContext returns the user's most recent userContexts document, or nil
// when none exists.
func (a *Aggregator) UserContext(ctx context.Context, email string) (docstore.Fields, error) {
	return a.latestContext(ctx, email, userContextsCollection, true)
}

// ProjectContext returns a single projectContexts document for the user with
// its projectInfo reference resolved one level deep, or nil when none exists.
func (a *Aggregator) ProjectContext(ctx context.Context, email string) (docstore.Fields, error) {
	contextDoc, err := a.latestContext(ctx, email, projectContextsCollection, false)
	if err != nil || contextDoc == nil {
		return contextDoc, err
	}
	a.resolver.InlineProjectInfo(ctx, contextDoc)
	return contextDoc, nil
}

// TeamUserContexts composes the caller's own user context with the whole
// team's. A nil result (with nil error) means the caller has no individual
// context; the team fetch is skipped in that case.
func (a *Aggregator) TeamUserContexts(ctx context.Context, email, projectID string) (*model.TeamContextsResult, error) {
	individual, err := a.UserContext(ctx, email)
	if err != nil {
		return nil, err
	}
	if individual == nil {
		return nil, nil
	}
	team, err := a.TeamContexts(ctx, projectID, userContextsCollection, true)
	if err != nil {
		return nil, err
	}
	return &model.TeamContextsResult{IndividualContext: individual, TeamContexts: team}, nil
}

// TeamProjectContexts is the project-context counterpart of
// TeamUserContexts, with the same individual-context gate.
func (a *Aggregator) TeamProjectContexts(ctx context.Context, email, projectID string) (*model.TeamContextsResult, error) {
	individual, err := a.ProjectContext(ctx, email)
	if err != nil {
		return nil, err
	}
	if individual == nil {
		return nil, nil
	}
	team, err := a.TeamContexts(ctx, projectID, projectContextsCollection, false)
	if err != nil {
		return nil, err
	}
	return &model.TeamContextsResult{IndividualContext: individual, TeamContexts: team}, nil
}

// ProjectMembers returns the team's user contexts without requiring the
// caller to hold an individual context. Used by scans that enumerate all
// users.
func (a *Aggregator) ProjectMembers(ctx context.Context, projectID string) ([]docstore.Fields, error) {
	return a.TeamContexts(ctx, projectID, userContextsCollection, true)
}

// UserTaskContexts walks users/{email}/taskEntities/{projectId}/taskContexts
// and flattens every task context, tagged with its id and owning project. A
// relatedTasks reference is converted to its path string.
func (a *Aggregator) UserTaskContexts(ctx context.Context, email string) ([]docstore.Fields, error) {
	entities, err := a.store.Stream(ctx, docstore.JoinPath(usersCollection, email, taskEntitiesCollection), docstore.Query{})
	if err != nil {
		return nil, fmt.Errorf("stream task entities: %w", err)
	}

	out := []docstore.Fields{}
	for _, entity := range entities {
		contexts, err := a.store.Stream(ctx, docstore.Child(entity.Path, taskContextsCollection), docstore.Query{})
		if err != nil {
			a.log.Warn().Err(err).Str("project_id", entity.ID).Msg("failed to read task contexts, skipping project")
			continue
		}
		for _, d := range contexts {
			tc := d.Fields
			tc["taskContextId"] = d.ID
			tc["projectId"] = entity.ID
			if ref, ok := tc["relatedTasks"].(docstore.Ref); ok {
				tc["relatedTasks"] = ref.Path
			}
			out = append(out, tc)
		}
	}
	return out, nil
}
