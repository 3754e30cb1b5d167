package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCourseID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "simple id", id: "cs101", wantErr: false},
		{name: "underscores", id: "aads_2026", wantErr: false},
		{name: "minimum length", id: "abc", wantErr: false},
		{name: "too short", id: "ab", wantErr: true},
		{name: "empty", id: "", wantErr: true},
		{name: "uppercase rejected", id: "CS101", wantErr: true},
		{name: "leading digit", id: "101cs", wantErr: true},
		{name: "hyphen rejected", id: "cs-101", wantErr: true},
		{name: "space rejected", id: "cs 101", wantErr: true},
		{name: "path characters rejected", id: "cs/../101", wantErr: true},
		{name: "reserved default target", id: "default", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCourseID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidCourseID)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCourseID_MaxLength(t *testing.T) {
	long := make([]byte, MaxCourseIDLen+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, ValidateCourseID(string(long)), ErrInvalidCourseID)
	assert.NoError(t, ValidateCourseID(string(long[:MaxCourseIDLen])))
}

func TestGenerateCourseID(t *testing.T) {
	t.Run("initials plus year", func(t *testing.T) {
		got := GenerateCourseID("Algorithms and Data Structures", 2026, nil)
		assert.Equal(t, "aads_2026", got)
	})

	t.Run("result is always valid", func(t *testing.T) {
		for _, name := range []string{"C", "101 Intro", "Über Müll", "a b"} {
			got := GenerateCourseID(name, 2026, nil)
			assert.NoError(t, ValidateCourseID(got), "name %q -> %q", name, got)
		}
	})

	t.Run("collision appends suffix", func(t *testing.T) {
		existing := map[string]bool{"aads_2026": true, "aads_2026_2": true}
		got := GenerateCourseID("Algorithms and Data Structures", 2026, func(id string) bool {
			return existing[id]
		})
		assert.Equal(t, "aads_2026_3", got)
	})
}
