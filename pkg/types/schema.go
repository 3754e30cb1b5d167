package types

import "errors"

// Schema is the migration definition applied to every freshly provisioned
// course database so all course databases share the same structural shape.
// SQL may hold multiple statements; they must be idempotent (IF NOT EXISTS)
// so the same schema can be re-applied by MigrateAll.
type Schema struct {
	// Version is recorded in the database's user_version pragma after a
	// successful migration.
	Version int

	// SQL is the DDL script establishing the course-database shape.
	SQL string
}

// Schema validation errors.
var (
	ErrSchemaEmpty          = errors.New("schema has no SQL")
	ErrSchemaVersionInvalid = errors.New("schema version must be positive")
)

// Validate checks that the Schema is well-formed.
func (s Schema) Validate() error {
	if s.SQL == "" {
		return ErrSchemaEmpty
	}
	if s.Version <= 0 {
		return ErrSchemaVersionInvalid
	}
	return nil
}
