package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctor_CleanState(t *testing.T) {
	m, _, _ := newManager(t)

	_, err := m.CreateCourseDatabase(context.Background(), ident("cs101"), DefaultSchema())
	require.NoError(t, err)

	findings, err := m.Doctor(context.Background())
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestDoctor_EmptyDataDir(t *testing.T) {
	m, _, _ := newManager(t)

	findings, err := m.Doctor(context.Background())
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestDoctor_MissingFile(t *testing.T) {
	m, _, _ := newManager(t)

	rec, err := m.CreateCourseDatabase(context.Background(), ident("cs101"), DefaultSchema())
	require.NoError(t, err)
	require.NoError(t, os.Remove(rec.Params.Path))

	findings, err := m.Doctor(context.Background())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, FindingMissingFile, findings[0].Kind)
	assert.Equal(t, "cs101", findings[0].Course)
	assert.Equal(t, rec.Params.Path, findings[0].Path)
}

func TestDoctor_OrphanFile(t *testing.T) {
	m, _, dir := newManager(t)

	orphan := filepath.Join(dir, CoursesDirName, "ghost.db")
	require.NoError(t, os.MkdirAll(filepath.Dir(orphan), 0o755))
	require.NoError(t, os.WriteFile(orphan, nil, 0o644))

	findings, err := m.Doctor(context.Background())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, FindingOrphanFile, findings[0].Kind)
	assert.Equal(t, "ghost", findings[0].Course)
	assert.Equal(t, orphan, findings[0].Path)
}

func TestDoctor_IgnoresSidecars(t *testing.T) {
	m, _, dir := newManager(t)

	_, err := m.CreateCourseDatabase(context.Background(), ident("cs101"), DefaultSchema())
	require.NoError(t, err)

	// WAL/SHM sidecars next to a registered database are not orphans.
	require.NoError(t, os.WriteFile(filepath.Join(dir, CoursesDirName, "cs101.db-wal"), nil, 0o644))

	findings, err := m.Doctor(context.Background())
	require.NoError(t, err)
	assert.Empty(t, findings)
}
