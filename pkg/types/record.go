package types

import (
	"fmt"
	"path/filepath"
	"time"
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
)

// ConnParams describes how to reach a physical database. For the sqlite
// driver only Path is meaningful; the server fields exist so records for a
// networked engine serialize the same way.
type ConnParams struct {
	Driver   string `json:"driver"`
	Path     string `json:"path,omitempty"`
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	Database string `json:"database,omitempty"`
}

// DSN returns the driver-specific connection string.
func (p ConnParams) DSN() (string, error) {
	switch p.Driver {
	case DriverSQLite:
		if p.Path == "" {
			return "", fmt.Errorf("sqlite params missing path")
		}
		// mode=rw refuses to open a database file that does not exist:
		// provisioning creates files explicitly, and routing to a dropped
		// course must fail loudly instead of conjuring an empty database.
		return "file:" + p.Path + "?mode=rw&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
	default:
		return "", fmt.Errorf("unknown driver %q", p.Driver)
	}
}

// Equal reports whether two descriptors point at the same database the same
// way. Used by the registry to decide whether a re-register is a no-op.
func (p ConnParams) Equal(o ConnParams) bool {
	if p.Driver == DriverSQLite && o.Driver == DriverSQLite {
		return filepath.Clean(p.Path) == filepath.Clean(o.Path)
	}
	return p == o
}

// DatabaseRecord is the registry's entry for one course database. Owned
// exclusively by the registry; readers get copies, never shared state.
type DatabaseRecord struct {
	RecordID  string     `json:"record_id"` // UUIDv7, assigned at provisioning
	Identity  Identity   `json:"identity"`
	Params    ConnParams `json:"params"`
	CreatedAt time.Time  `json:"created_at"`
}

// CourseID is shorthand for the record's course id.
func (r DatabaseRecord) CourseID() string { return r.Identity.CourseID }
