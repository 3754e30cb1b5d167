// Package coursedb is the public API for the per-course database layer. A
// Service owns the connection registry, the structural lock, the lifecycle
// manager, and the context router for one data directory; the calling web
// layer touches the subsystem only through it.
//
// Example:
//
//	svc, err := coursedb.Open(types.Config{DataDir: ".coursedb-data"})
//	defer svc.Close()
//
//	rec, err := svc.CreateCourse(ctx, types.Identity{CourseID: "cs101"}, coursedb.DefaultSchema())
//
//	ctx, err = svc.EnterCourse(ctx, "cs101")
//	db, err := svc.DB(ctx) // cs101's physical database
//
// See docs/ARCHITECTURE.md § Public API.
package coursedb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openedu-labs/coursedb/internal/course"
	"github.com/openedu-labs/coursedb/internal/dblock"
	"github.com/openedu-labs/coursedb/internal/lifecycle"
	"github.com/openedu-labs/coursedb/internal/registry"
	"github.com/openedu-labs/coursedb/internal/routing"
	"github.com/openedu-labs/coursedb/pkg/types"
)

// Version is the coursedb release version.
const Version = "0.1.0"

// DefaultDatabaseFile is the shared default database inside the data dir.
const DefaultDatabaseFile = "default.db"

// Default is the routing target reported outside any course scope.
const Default = routing.Default

// Finding re-exports the doctor report entry.
type Finding = lifecycle.Finding

// DefaultSchema returns the standard course-database migration spec.
func DefaultSchema() types.Schema { return lifecycle.DefaultSchema() }

// Service wires the registry, lock, lifecycle manager, and router over one
// data directory. Safe for concurrent use; one Service per process is the
// expected shape, with the durable registry file and flock coordinating
// across worker processes.
type Service struct {
	cfg     types.Config
	reg     *registry.Registry
	router  *routing.Router
	manager *lifecycle.Manager
	submits *course.Store
}

// Open validates cfg, creates the data directory if needed, rehydrates the
// registry from its side file, and wires the Service.
func Open(cfg types.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	reg, err := registry.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	// Connection strings refuse to create database files, so the shared
	// default database is created here if this is a fresh data dir.
	defaultPath := filepath.Join(cfg.DataDir, DefaultDatabaseFile)
	f, err := os.OpenFile(defaultPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create default database: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("create default database: %w", err)
	}

	router := routing.New(reg, types.ConnParams{
		Driver: types.DriverSQLite,
		Path:   defaultPath,
	})
	lock := dblock.New(cfg.DataDir)
	manager := lifecycle.NewManager(reg, lock, router, cfg.DataDir, cfg.EffectiveLockTimeout())

	return &Service{
		cfg:     cfg,
		reg:     reg,
		router:  router,
		manager: manager,
		submits: course.NewStore(router),
	}, nil
}

// CreateCourse provisions, migrates, and registers a new course database.
func (s *Service) CreateCourse(ctx context.Context, ident types.Identity, schema types.Schema) (types.DatabaseRecord, error) {
	return s.manager.CreateCourseDatabase(ctx, ident, schema)
}

// DeleteCourse drops a course's database and unregisters it.
func (s *Service) DeleteCourse(ctx context.Context, courseID string) error {
	return s.manager.DeleteCourseDatabase(ctx, courseID)
}

// MigrateAll re-applies schema to every registered course database.
func (s *Service) MigrateAll(ctx context.Context, schema types.Schema) error {
	return s.manager.MigrateAll(ctx, schema)
}

// Doctor reports registry/filesystem disagreements for operator review.
func (s *Service) Doctor(ctx context.Context) ([]Finding, error) {
	return s.manager.Doctor(ctx)
}

// Resolve returns the registry record for courseID.
func (s *Service) Resolve(courseID string) (types.DatabaseRecord, error) {
	return s.reg.Resolve(courseID)
}

// Courses returns the registered course ids, sorted.
func (s *Service) Courses() []string { return s.reg.All() }

// Records returns snapshots of every registered record, sorted by course id.
func (s *Service) Records() []types.DatabaseRecord { return s.reg.Records() }

// EnterCourse returns a context scoped to courseID; see routing rules in
// the package doc.
func (s *Service) EnterCourse(ctx context.Context, courseID string) (context.Context, error) {
	return s.router.EnterCourse(ctx, courseID)
}

// EnterOptionalCourse is EnterCourse with an empty-id pass-through.
func (s *Service) EnterOptionalCourse(ctx context.Context, courseID string) (context.Context, error) {
	return s.router.EnterOptionalCourse(ctx, courseID)
}

// Target returns the course id ctx routes to, or Default.
func (s *Service) Target(ctx context.Context) string { return routing.Target(ctx) }

// InCourse reports whether a course scope is active on ctx.
func (s *Service) InCourse(ctx context.Context) bool { return routing.InCourse(ctx) }

// DB returns the pooled handle for the context's current target.
func (s *Service) DB(ctx context.Context) (*sql.DB, error) { return s.router.DB(ctx) }

// Submits is the course-data store routed through this Service.
func (s *Service) Submits() *course.Store { return s.submits }

// Close releases every pooled database handle.
func (s *Service) Close() error { return s.router.Close() }
