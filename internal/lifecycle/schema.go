package lifecycle

import (
	_ "embed"

	"github.com/openedu-labs/coursedb/pkg/types"
)

//go:embed schema.sql
var courseSchemaSQL string

// CourseSchemaVersion is the version recorded in each course database's
// user_version pragma by the current default schema.
const CourseSchemaVersion = 1

// DefaultSchema returns the migration spec giving a fresh course database
// the standard shape: rounds, tasks, test sets, tests, submits, results.
func DefaultSchema() types.Schema {
	return types.Schema{
		Version: CourseSchemaVersion,
		SQL:     courseSchemaSQL,
	}
}
