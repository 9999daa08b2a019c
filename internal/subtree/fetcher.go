// Package subtree walks a task's nested subTasks collections to a bounded
// depth, flattening the tree in pre-order.
package subtree

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/worklens/worklens-backend/internal/docstore"
)

// DefaultMaxLevel caps nesting below a task. It is the system's only
// backpressure mechanism: recursion depth bounds worst-case fan-out.
const DefaultMaxLevel = 3

// SubTasksCollection is the nested collection name under tasks and subtasks.
const SubTasksCollection = "subTasks"

// Fetcher retrieves descendant subtasks.
type Fetcher struct {
	store    docstore.Store
	log      zerolog.Logger
	maxLevel int
}

// New builds a Fetcher. maxLevel <= 0 selects DefaultMaxLevel.
func New(store docstore.Store, log zerolog.Logger, maxLevel int) *Fetcher {
	if maxLevel <= 0 {
		maxLevel = DefaultMaxLevel
	}
	return &Fetcher{store: store, log: log, maxLevel: maxLevel}
}

// MaxLevel reports the configured depth bound.
func (f *Fetcher) MaxLevel() int { return f.maxLevel }

// Fetch returns the parent's descendants in pre-order: each child before its
// own descendants, siblings in store-stream order. Every node is annotated
// with its id, path, isSubTask marker, parent path and nesting level. A
// stream error at one level is logged and yields an empty result for that
// level only; levels already collected are kept. The direct children of a
// task start at level 1.
func (f *Fetcher) Fetch(ctx context.Context, parentPath string, level int) []docstore.Fields {
	if level > f.maxLevel {
		f.log.Debug().Str("parent", parentPath).Int("max_level", f.maxLevel).
			Msg("max nesting level reached, stopping recursion")
		return nil
	}
	docs, err := f.store.Stream(ctx, docstore.Child(parentPath, SubTasksCollection), docstore.Query{})
	if err != nil {
		f.log.Warn().Err(err).Str("parent", parentPath).Int("level", level).
			Msg("failed to stream subtasks")
		return nil
	}
	var out []docstore.Fields
	for _, d := range docs {
		node := d.Fields
		node["taskId"] = d.ID
		node["taskPath"] = d.Path
		node["isSubTask"] = true
		node["parentTaskPath"] = parentPath
		node["nestingLevel"] = level
		out = append(out, node)
		out = append(out, f.Fetch(ctx, d.Path, level+1)...)
	}
	return out
}
