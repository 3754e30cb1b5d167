// Package types defines course identities, database records, schema
// specs, configuration, and the error types shared by the coursedb
// registry, lifecycle manager, and router.
// See docs/ARCHITECTURE.md § Data Model.
package types
