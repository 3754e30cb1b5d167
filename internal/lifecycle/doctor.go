package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Finding kinds reported by Doctor.
const (
	FindingMissingFile = "missing-file" // registered course whose database file is gone
	FindingOrphanFile  = "orphan-file"  // database file with no registry entry
)

// Finding is one registry/filesystem disagreement. Doctor only reports;
// resolving a finding (recreate, re-register, or remove) is an operator
// decision because automatic cleanup risks destroying course data.
type Finding struct {
	Kind   string `json:"kind"`
	Course string `json:"course"`
	Path   string `json:"path"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: course %q at %s", f.Kind, f.Course, f.Path)
}

// Doctor cross-checks the registry against the physical database files and
// returns the disagreements. An empty result means the registry and the
// filesystem agree.
func (m *Manager) Doctor(ctx context.Context) ([]Finding, error) {
	if err := m.reg.Reload(); err != nil {
		return nil, err
	}

	var findings []Finding

	registered := make(map[string]bool)
	for _, rec := range m.reg.Records() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		registered[rec.CourseID()] = true
		if _, err := os.Stat(rec.Params.Path); os.IsNotExist(err) {
			findings = append(findings, Finding{
				Kind:   FindingMissingFile,
				Course: rec.CourseID(),
				Path:   rec.Params.Path,
			})
		} else if err != nil {
			return nil, fmt.Errorf("stat %s: %w", rec.Params.Path, err)
		}
	}

	coursesDir := filepath.Join(m.dataDir, CoursesDirName)
	entries, err := os.ReadDir(coursesDir)
	if os.IsNotExist(err) {
		return findings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read courses dir: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".db") {
			continue
		}
		courseID := strings.TrimSuffix(name, ".db")
		if !registered[courseID] {
			findings = append(findings, Finding{
				Kind:   FindingOrphanFile,
				Course: courseID,
				Path:   filepath.Join(coursesDir, name),
			})
		}
	}

	return findings, nil
}
