// Package registry is the single source of truth mapping course ids to
// database connection descriptors. The mapping lives in memory for fast
// lookup and is mirrored to a durable JSON side file on every mutation, so
// new worker processes rebuild the same view without re-scanning databases.
// See docs/ARCHITECTURE.md § Connection Registry.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/openedu-labs/coursedb/pkg/types"
)

// FileName is the registry side file name inside the data directory.
const FileName = "registry.json"

// fileFormat is the on-disk layout of the side file.
type fileFormat struct {
	Courses map[string]types.DatabaseRecord `json:"courses"`
}

// Registry maps course ids to database records. All mutating calls persist
// the updated mapping before returning success; a resolve sees either the
// pre- or post-state of a mutation, never a torn intermediate, because the
// side file is replaced atomically.
type Registry struct {
	mu      sync.RWMutex
	path    string
	courses map[string]types.DatabaseRecord
}

// Open loads the registry side file from dataDir, creating an empty registry
// if the file does not exist yet.
func Open(dataDir string) (*Registry, error) {
	r := &Registry{
		path:    filepath.Join(dataDir, FileName),
		courses: make(map[string]types.DatabaseRecord),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload replaces the in-memory mapping with the side file's current
// contents. Worker processes share only the side file, so any view loaded
// earlier may miss a sibling's registrations; mutating callers reload under
// the structural lock so their read-modify-write cycle starts from the
// authoritative on-disk state instead of overwriting it with a stale map.
func (r *Registry) Reload() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		r.mu.Lock()
		r.courses = make(map[string]types.DatabaseRecord)
		r.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read registry: %w", err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return fmt.Errorf("parse registry %s: %w", r.path, err)
	}
	courses := ff.Courses
	if courses == nil {
		courses = make(map[string]types.DatabaseRecord)
	}

	r.mu.Lock()
	r.courses = courses
	r.mu.Unlock()

	log.Debug().Int("courses", len(courses)).Str("path", r.path).
		Msg("registry loaded")
	return nil
}

// Register inserts a record for its course id. Re-registering an identical
// descriptor is a no-op; a conflicting descriptor fails with
// types.ErrDuplicateCourse and changes nothing.
func (r *Registry) Register(rec types.DatabaseRecord) error {
	id := rec.CourseID()
	if err := types.ValidateCourseID(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.courses[id]; ok {
		if existing.Params.Equal(rec.Params) {
			return nil
		}
		return fmt.Errorf("%w: %s", types.ErrDuplicateCourse, id)
	}

	r.courses[id] = rec
	if err := r.persistLocked(); err != nil {
		delete(r.courses, id)
		return err
	}

	log.Info().Str("course", id).Str("path", rec.Params.Path).
		Msg("course registered")
	return nil
}

// Unregister removes the mapping for courseID. Fails with
// types.ErrUnknownCourse if absent.
func (r *Registry) Unregister(courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.courses[courseID]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrUnknownCourse, courseID)
	}

	delete(r.courses, courseID)
	if err := r.persistLocked(); err != nil {
		r.courses[courseID] = rec
		return err
	}

	log.Info().Str("course", courseID).Msg("course unregistered")
	return nil
}

// Resolve returns a snapshot of the record for courseID. Fails with
// types.ErrUnknownCourse if absent.
func (r *Registry) Resolve(courseID string) (types.DatabaseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.courses[courseID]
	if !ok {
		return types.DatabaseRecord{}, fmt.Errorf("%w: %s", types.ErrUnknownCourse, courseID)
	}
	return rec, nil
}

// All returns the registered course ids, sorted.
func (r *Registry) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.courses))
	for id := range r.courses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Records returns snapshots of all registered records, sorted by course id.
func (r *Registry) Records() []types.DatabaseRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := make([]types.DatabaseRecord, 0, len(r.courses))
	for _, rec := range r.courses {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CourseID() < recs[j].CourseID()
	})
	return recs
}

// persistLocked writes the mapping to the side file as a single atomic
// replace: marshal to a temp file in the same directory, fsync, rename.
// The caller must hold r.mu.
func (r *Registry) persistLocked() error {
	data, err := json.MarshalIndent(fileFormat{Courses: r.courses}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create registry temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close registry temp file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}
