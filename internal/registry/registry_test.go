package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openedu-labs/coursedb/pkg/types"
)

func record(courseID, path string) types.DatabaseRecord {
	return types.DatabaseRecord{
		RecordID:  "rec-" + courseID,
		Identity:  types.Identity{CourseID: courseID, DisplayName: courseID},
		Params:    types.ConnParams{Driver: types.DriverSQLite, Path: path},
		CreatedAt: time.Now().UTC(),
	}
}

func TestRegistry_RegisterResolve(t *testing.T) {
	reg, err := Open(t.TempDir())
	require.NoError(t, err)

	rec := record("cs101", "/data/courses/cs101.db")
	require.NoError(t, reg.Register(rec))

	got, err := reg.Resolve("cs101")
	require.NoError(t, err)
	assert.Equal(t, rec.Params, got.Params)
	assert.Equal(t, []string{"cs101"}, reg.All())
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	reg, err := Open(t.TempDir())
	require.NoError(t, err)

	rec := record("cs101", "/data/courses/cs101.db")
	require.NoError(t, reg.Register(rec))

	t.Run("identical params is a no-op", func(t *testing.T) {
		assert.NoError(t, reg.Register(rec))
		assert.Len(t, reg.All(), 1)
	})

	t.Run("different params fails", func(t *testing.T) {
		other := record("cs101", "/data/courses/elsewhere.db")
		err := reg.Register(other)
		assert.ErrorIs(t, err, types.ErrDuplicateCourse)

		// First descriptor must be unaltered.
		got, err := reg.Resolve("cs101")
		require.NoError(t, err)
		assert.Equal(t, rec.Params, got.Params)
	})
}

func TestRegistry_RegisterInvalidID(t *testing.T) {
	reg, err := Open(t.TempDir())
	require.NoError(t, err)

	err = reg.Register(record("CS 101", "/x.db"))
	assert.ErrorIs(t, err, types.ErrInvalidCourseID)
}

func TestRegistry_Unregister(t *testing.T) {
	reg, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, reg.Register(record("cs101", "/x.db")))
	require.NoError(t, reg.Unregister("cs101"))

	_, err = reg.Resolve("cs101")
	assert.ErrorIs(t, err, types.ErrUnknownCourse)
	assert.ErrorIs(t, reg.Unregister("cs101"), types.ErrUnknownCourse)
}

func TestRegistry_PersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()

	reg, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, reg.Register(record("cs101", "/data/cs101.db")))
	require.NoError(t, reg.Register(record("aads_2026", "/data/aads_2026.db")))

	// A fresh process instance rebuilds the same view from the side file.
	reloaded, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"aads_2026", "cs101"}, reloaded.All())

	got, err := reloaded.Resolve("cs101")
	require.NoError(t, err)
	assert.Equal(t, "/data/cs101.db", got.Params.Path)
}

func TestRegistry_ReloadSeesSiblingMutations(t *testing.T) {
	dir := t.TempDir()

	// Two worker processes over one data dir, sharing only the side file.
	workerA, err := Open(dir)
	require.NoError(t, err)
	workerB, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, workerA.Register(record("cs101", "/data/cs101.db")))

	// B's in-memory view predates A's mutation until it reloads.
	_, err = workerB.Resolve("cs101")
	assert.ErrorIs(t, err, types.ErrUnknownCourse)
	require.NoError(t, workerB.Reload())
	_, err = workerB.Resolve("cs101")
	assert.NoError(t, err)

	// B mutating after a reload keeps A's entry in the side file.
	require.NoError(t, workerB.Register(record("cs202", "/data/cs202.db")))

	fresh, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"cs101", "cs202"}, fresh.All())
}

func TestRegistry_ReloadMissingFile(t *testing.T) {
	dir := t.TempDir()
	reg, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, reg.Register(record("cs101", "/x.db")))

	require.NoError(t, os.Remove(filepath.Join(dir, FileName)))
	require.NoError(t, reg.Reload())
	assert.Empty(t, reg.All())
}

func TestRegistry_PersistsBeforeReturning(t *testing.T) {
	dir := t.TempDir()
	reg, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, reg.Register(record("cs101", "/data/cs101.db")))

	// The side file must already hold the mutation.
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)

	var ff fileFormat
	require.NoError(t, json.Unmarshal(data, &ff))
	assert.Contains(t, ff.Courses, "cs101")
}

func TestRegistry_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	reg, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, reg.Register(record("cs101", "/x.db")))
	require.NoError(t, reg.Unregister("cs101"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}

func TestRegistry_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644))

	_, err := Open(dir)
	assert.Error(t, err)
}

func TestRegistry_ConcurrentReadersSeeConsistentState(t *testing.T) {
	reg, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, reg.Register(record("cs101", "/x.db")))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				// A resolve sees either pre- or post-state, never a tear.
				if rec, err := reg.Resolve("cs101"); err == nil {
					assert.Equal(t, "/x.db", rec.Params.Path)
				} else {
					assert.ErrorIs(t, err, types.ErrUnknownCourse)
				}
			}
		}()
	}

	require.NoError(t, reg.Unregister("cs101"))
	require.NoError(t, reg.Register(record("cs101", "/x.db")))
	wg.Wait()
}
