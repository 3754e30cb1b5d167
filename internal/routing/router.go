// Package routing directs data access to the correct physical database
// based on a context-scoped active course. Application code enters a course
// scope with EnterCourse, and every DB call made with the derived context
// hits that course's database; dropping the derived context restores the
// previous target, so release on scope exit is guaranteed by construction.
// See docs/ARCHITECTURE.md § Context Router.
package routing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
	_ "modernc.org/sqlite"

	"github.com/openedu-labs/coursedb/internal/registry"
	"github.com/openedu-labs/coursedb/pkg/types"
)

// Router resolves the active course scope against the connection registry
// and pools one *sql.DB per target.
type Router struct {
	reg           *registry.Registry
	defaultParams types.ConnParams
	pool          *xsync.MapOf[string, *sql.DB]
}

// New returns a Router over reg. defaultParams describes the shared default
// database used outside any course scope.
func New(reg *registry.Registry, defaultParams types.ConnParams) *Router {
	return &Router{
		reg:           reg,
		defaultParams: defaultParams,
		pool:          xsync.NewMapOf[string, *sql.DB](),
	}
}

// EnterCourse returns a context scoped to courseID. The id must resolve in
// the registry (types.ErrUnknownCourse otherwise). Entering while a
// different course is active fails with types.ErrNestedContext; re-entering
// the same course is a harmless no-op scope.
func (r *Router) EnterCourse(ctx context.Context, courseID string) (context.Context, error) {
	if s, ok := activeScope(ctx); ok {
		if s.course != courseID {
			return nil, fmt.Errorf("%w: %s is active, cannot enter %s",
				types.ErrNestedContext, s.course, courseID)
		}
		return context.WithValue(ctx, scopeKey{}, scope{course: courseID, depth: s.depth + 1}), nil
	}

	if _, err := r.resolve(courseID); err != nil {
		return nil, err
	}
	return context.WithValue(ctx, scopeKey{}, scope{course: courseID, depth: 1}), nil
}

// resolve looks courseID up in the registry, reloading the side file once
// on a miss. A sibling worker may have created the course after this
// process last read the file.
func (r *Router) resolve(courseID string) (types.DatabaseRecord, error) {
	rec, err := r.reg.Resolve(courseID)
	if !errors.Is(err, types.ErrUnknownCourse) {
		return rec, err
	}
	if reloadErr := r.reg.Reload(); reloadErr != nil {
		return rec, reloadErr
	}
	return r.reg.Resolve(courseID)
}

// EnterOptionalCourse is EnterCourse with a pass-through: an empty courseID
// leaves routing at whatever is already active on ctx.
func (r *Router) EnterOptionalCourse(ctx context.Context, courseID string) (context.Context, error) {
	if courseID == "" {
		return ctx, nil
	}
	return r.EnterCourse(ctx, courseID)
}

// DB returns the pooled database handle for the context's current target:
// the active course's database, or the default database outside any scope.
// A deleted course fails loudly with types.ErrUnknownCourse on the next DB
// call even if a stale scope still names it.
func (r *Router) DB(ctx context.Context) (*sql.DB, error) {
	target := Target(ctx)
	if target == Default {
		return r.open(Default, r.defaultParams)
	}

	rec, err := r.resolve(target)
	if err != nil {
		return nil, err
	}
	return r.open(target, rec.Params)
}

// open returns the pooled handle for target, opening it on first use.
func (r *Router) open(target string, params types.ConnParams) (*sql.DB, error) {
	if db, ok := r.pool.Load(target); ok {
		return db, nil
	}

	dsn, err := params.DSN()
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", target, err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", target, err)
	}

	if pooled, loaded := r.pool.LoadOrStore(target, db); loaded {
		db.Close()
		return pooled, nil
	}
	return db, nil
}

// Evict closes and forgets the pooled handle for courseID. The lifecycle
// manager calls this before dropping a course's physical database so no
// open connection pins the file.
func (r *Router) Evict(courseID string) error {
	db, ok := r.pool.LoadAndDelete(courseID)
	if !ok {
		return nil
	}
	return db.Close()
}

// Close releases every pooled handle. The Router is unusable afterwards.
func (r *Router) Close() error {
	var firstErr error
	r.pool.Range(func(target string, db *sql.DB) bool {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", target, err)
		}
		r.pool.Delete(target)
		return true
	})
	return firstErr
}
