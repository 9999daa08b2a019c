// Package refresolve dereferences pointer-style document references and
// inlines the target document's fields at the reference site.
package refresolve

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/worklens/worklens-backend/internal/docstore"
)

// Resolver resolves docstore.Ref values against the store. Resolution is
// invoked at each known reference site; it is not a general deep walker.
type Resolver struct {
	store docstore.Store
	log   zerolog.Logger
}

func New(store docstore.Store, log zerolog.Logger) *Resolver {
	return &Resolver{store: store, log: log}
}

// Inline replaces fields[key] with the referenced document's fields plus an
// explicit "id" field, or nil when the target is absent. A store read error
// degrades to the unresolved (nil) value rather than propagating.
func (r *Resolver) Inline(ctx context.Context, fields docstore.Fields, key string) {
	ref, ok := fields[key].(docstore.Ref)
	if !ok {
		return
	}
	if resolved := r.resolve(ctx, ref); resolved != nil {
		fields[key] = resolved
	} else {
		// Store an untyped nil so callers comparing against nil see absence.
		fields[key] = nil
	}
}

// resolve fetches a reference target, returning the inlined field map or nil.
func (r *Resolver) resolve(ctx context.Context, ref docstore.Ref) docstore.Fields {
	doc, err := r.store.Get(ctx, ref.Path)
	if err != nil {
		r.log.Warn().Err(err).Str("ref", ref.Path).Msg("reference resolution failed")
		return nil
	}
	if doc == nil {
		return nil
	}
	out := doc.Fields
	out["id"] = doc.ID
	return out
}

// InlineProjectInfo resolves a context's embedded projectInfo reference and,
// one level deeper, every member's userRef inside the resolved project.
func (r *Resolver) InlineProjectInfo(ctx context.Context, fields docstore.Fields) {
	ref, ok := fields["projectInfo"].(docstore.Ref)
	if !ok {
		return
	}
	project := r.resolve(ctx, ref)
	if project == nil {
		fields["projectInfo"] = nil
		return
	}
	fields["projectInfo"] = project
	members, ok := project["members"].([]any)
	if !ok {
		return
	}
	for _, m := range members {
		member, ok := m.(docstore.Fields)
		if !ok {
			continue
		}
		r.Inline(ctx, member, "userRef")
	}
}

// MemberRef extracts the user reference from a project member entry, which
// is either a bare Ref or an object carrying a userRef field.
func MemberRef(member any) (docstore.Ref, bool) {
	switch m := member.(type) {
	case docstore.Ref:
		return m, true
	case docstore.Fields:
		ref, ok := m["userRef"].(docstore.Ref)
		return ref, ok
	}
	return docstore.Ref{}, false
}

// UserEmail extracts the user identity from a reference into the users
// collection. Accepted forms: users/{email} and users/{email}/<subpath>.
func UserEmail(ref docstore.Ref) (string, bool) {
	segs := strings.Split(ref.Path, "/")
	if len(segs) >= 2 && segs[0] == "users" && segs[1] != "" {
		return segs[1], true
	}
	return "", false
}

// UserDocPath maps a reference anywhere under a user onto the owning
// users/{email} document path.
func UserDocPath(ref docstore.Ref) (string, bool) {
	email, ok := UserEmail(ref)
	if !ok {
		return "", false
	}
	return docstore.JoinPath("users", email), true
}
