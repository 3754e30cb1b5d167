// Package lifecycle orchestrates provisioning and teardown of course
// databases. Create and delete serialize through the structural lock and
// update the connection registry as their last step; at most one structural
// operation is in flight system-wide at any instant.
// See docs/ARCHITECTURE.md § Lifecycle Manager.
package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/openedu-labs/coursedb/internal/dblock"
	"github.com/openedu-labs/coursedb/internal/registry"
	"github.com/openedu-labs/coursedb/pkg/types"
)

// CoursesDirName is the subdirectory of the data dir holding one database
// file per course.
const CoursesDirName = "courses"

// Evictor closes any pooled connections to a course's database so its file
// can be removed. Satisfied by routing.Router.
type Evictor interface {
	Evict(courseID string) error
}

// hooks are test injection points, overridden only by package tests to
// simulate a crash between a physical change and the registry update.
var hooks = struct {
	afterProvision func(path string) error
	afterDrop      func(courseID string) error
}{}

// Manager creates and deletes course databases.
type Manager struct {
	reg         *registry.Registry
	lock        *dblock.Lock
	evictor     Evictor
	dataDir     string
	lockTimeout time.Duration
}

// NewManager wires a Manager over the registry and structural lock for
// dataDir. evictor may be nil when no router shares the database files.
func NewManager(reg *registry.Registry, lock *dblock.Lock, evictor Evictor, dataDir string, lockTimeout time.Duration) *Manager {
	if lockTimeout <= 0 {
		lockTimeout = types.DefaultLockTimeout
	}
	return &Manager{
		reg:         reg,
		lock:        lock,
		evictor:     evictor,
		dataDir:     dataDir,
		lockTimeout: lockTimeout,
	}
}

// DatabasePath returns the deterministic file path for a course's database.
func (m *Manager) DatabasePath(courseID string) string {
	return filepath.Join(m.dataDir, CoursesDirName, courseID+".db")
}

// CreateCourseDatabase provisions a new physical database for ident's
// course id, applies schema so it matches every other course database, and
// registers it. The whole sequence holds the structural lock. If
// provisioning or migration fails, the partial database file is removed
// before the lock is released; if that removal itself fails, the error is a
// *types.PartialProvisioningError naming the orphan.
func (m *Manager) CreateCourseDatabase(ctx context.Context, ident types.Identity, schema types.Schema) (types.DatabaseRecord, error) {
	var zero types.DatabaseRecord

	courseID := ident.CourseID
	if err := types.ValidateCourseID(courseID); err != nil {
		return zero, err
	}
	if err := schema.Validate(); err != nil {
		return zero, err
	}
	if ident.DisplayName == "" {
		ident.DisplayName = courseID
	}

	handle, err := m.acquire(ctx)
	if err != nil {
		return zero, err
	}
	defer handle.Release()

	// Sibling workers share only the side file. Reloading under the lock
	// makes this a read-modify-write of the on-disk state, so the register
	// below cannot erase a course another worker created.
	if err := m.reg.Reload(); err != nil {
		return zero, err
	}

	if _, err := m.reg.Resolve(courseID); err == nil {
		return zero, fmt.Errorf("%w: %s", types.ErrDuplicateCourse, courseID)
	}

	path := m.DatabasePath(courseID)
	if _, err := os.Stat(path); err == nil {
		// A file the registry knows nothing about is an orphan from an
		// earlier failure. Never build on top of it; it may hold data.
		return zero, &types.PartialProvisioningError{
			Course: courseID,
			Path:   path,
			Err:    fmt.Errorf("orphaned database file already exists"),
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zero, fmt.Errorf("create courses dir: %w", err)
	}

	// Provision the physical database. The file is created here and only
	// here; connection strings everywhere else refuse to create files.
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return zero, fmt.Errorf("provision database file: %w", err)
	}
	if err := f.Close(); err != nil {
		return zero, m.rollbackProvision(courseID, path, err)
	}

	params := types.ConnParams{Driver: types.DriverSQLite, Path: path}
	if err := applySchema(params, schema); err != nil {
		return zero, m.rollbackProvision(courseID, path, err)
	}

	if hooks.afterProvision != nil {
		if err := hooks.afterProvision(path); err != nil {
			return zero, m.rollbackProvision(courseID, path, err)
		}
	}

	rec := types.DatabaseRecord{
		RecordID:  newRecordID(),
		Identity:  ident,
		Params:    params,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.reg.Register(rec); err != nil {
		return zero, m.rollbackProvision(courseID, path, fmt.Errorf("register: %w", err))
	}

	log.Info().Str("course", courseID).Str("path", path).
		Int("schema_version", schema.Version).Msg("course database created")
	return rec, nil
}

// DeleteCourseDatabase drops a course's physical database and removes it
// from the registry, in that order. A crash between the two steps leaves
// the registry pointing at a missing database, which the next resolve-and-
// open reports loudly; the reverse order could silently leak a live
// database, so the asymmetry with creation is deliberate.
func (m *Manager) DeleteCourseDatabase(ctx context.Context, courseID string) error {
	handle, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	defer handle.Release()

	if err := m.reg.Reload(); err != nil {
		return err
	}

	rec, err := m.reg.Resolve(courseID)
	if err != nil {
		return err
	}

	if m.evictor != nil {
		if err := m.evictor.Evict(courseID); err != nil {
			return fmt.Errorf("close connections to %s: %w", courseID, err)
		}
	}

	if err := removeDatabaseFiles(rec.Params.Path); err != nil {
		return fmt.Errorf("drop database %s: %w", courseID, err)
	}

	if hooks.afterDrop != nil {
		if err := hooks.afterDrop(courseID); err != nil {
			return err
		}
	}

	if err := m.reg.Unregister(courseID); err != nil {
		return err
	}

	log.Info().Str("course", courseID).Msg("course database deleted")
	return nil
}

// MigrateAll re-applies schema to every registered course database. The
// schema's statements are idempotent, so databases already at the target
// shape are unchanged. Read-only with respect to the registry, so the
// structural lock is not taken.
func (m *Manager) MigrateAll(ctx context.Context, schema types.Schema) error {
	if err := schema.Validate(); err != nil {
		return err
	}
	if err := m.reg.Reload(); err != nil {
		return err
	}
	for _, rec := range m.reg.Records() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := applySchema(rec.Params, schema); err != nil {
			return fmt.Errorf("migrate %s: %w", rec.CourseID(), err)
		}
		log.Info().Str("course", rec.CourseID()).
			Int("schema_version", schema.Version).Msg("course database migrated")
	}
	return nil
}

// acquire takes the structural lock, bounding the wait by the manager's
// lock timeout on top of any deadline already on ctx.
func (m *Manager) acquire(ctx context.Context) (*dblock.Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, m.lockTimeout)
	defer cancel()
	return m.lock.Acquire(ctx)
}

// rollbackProvision removes a partially created database before the lock is
// released, so no orphan survives outside the registry's knowledge. When the
// removal itself fails, the returned error names the orphan for the operator
// and wraps cause.
func (m *Manager) rollbackProvision(courseID, path string, cause error) error {
	if rmErr := removeDatabaseFiles(path); rmErr != nil {
		log.Error().Err(rmErr).Str("course", courseID).Str("path", path).
			Msg("rollback of partial course database failed, orphan left on disk")
		return &types.PartialProvisioningError{Course: courseID, Path: path, Err: cause}
	}
	log.Warn().Err(cause).Str("course", courseID).
		Msg("course provisioning rolled back")
	return fmt.Errorf("provision %s: %w", courseID, cause)
}

// applySchema opens the database at params, runs the schema script, and
// records the schema version in user_version.
func applySchema(params types.ConnParams, schema types.Schema) error {
	dsn, err := params.DSN()
	if err != nil {
		return err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema.SQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schema.Version)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// removeDatabaseFiles removes a SQLite database file along with its WAL and
// shared-memory sidecars. Missing files are not errors.
func removeDatabaseFiles(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, sidecar := range []string{path + "-wal", path + "-shm"} {
		if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// newRecordID generates a UUIDv7 record id, falling back to v4 if the
// monotonic source fails.
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
