package types

import (
	"fmt"
	"strings"
	"unicode"
)

// Course id constraints. Ids name database files on disk, so the alphabet is
// deliberately narrow: lowercase letters, digits, and underscore.
const (
	MinCourseIDLen = 3
	MaxCourseIDLen = 63
)

// reservedDefaultID is the routing target for the shared default database.
// A course with this id would shadow it.
const reservedDefaultID = "default"

// Identity pairs a course's internal id with its human-readable name. The id
// uniquely maps to exactly one physical database for its entire lifetime;
// deleting a course never silently reuses its id for a different database.
type Identity struct {
	CourseID    string `json:"course_id"`
	DisplayName string `json:"display_name"`
}

// ValidateCourseID checks that id is usable as a database name: lowercase
// [a-z0-9_], between MinCourseIDLen and MaxCourseIDLen characters, and not
// starting with a digit.
func ValidateCourseID(id string) error {
	if len(id) < MinCourseIDLen {
		return fmt.Errorf("%w: %q is shorter than %d characters", ErrInvalidCourseID, id, MinCourseIDLen)
	}
	if len(id) > MaxCourseIDLen {
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidCourseID, id, MaxCourseIDLen)
	}
	if id[0] >= '0' && id[0] <= '9' {
		return fmt.Errorf("%w: %q starts with a digit", ErrInvalidCourseID, id)
	}
	if id == reservedDefaultID {
		return fmt.Errorf("%w: %q is the reserved default routing target", ErrInvalidCourseID, id)
	}
	for _, r := range id {
		if !isIDRune(r) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidCourseID, id, r)
		}
	}
	return nil
}

func isIDRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// GenerateCourseID derives a course id from a display name and year: the
// first letter of each word, lowercased, followed by the year. taken is
// consulted to avoid collisions; on collision a numeric suffix is appended.
//
//	GenerateCourseID("Algorithms and Data Structures", 2026, nil) == "aads_2026"
func GenerateCourseID(name string, year int, taken func(id string) bool) string {
	var b strings.Builder
	for _, word := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		r := []rune(strings.ToLower(word))[0]
		if isIDRune(r) {
			b.WriteRune(r)
		}
	}
	initials := b.String()
	if initials == "" || (initials[0] >= '0' && initials[0] <= '9') {
		initials = "c" + initials
	}
	id := fmt.Sprintf("%s_%d", initials, year)
	if taken == nil || !taken(id) {
		return id
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", id, i)
		if !taken(candidate) {
			return candidate
		}
	}
}
