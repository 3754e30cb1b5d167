package routing

import "context"

// Default is the target reported outside any course scope. Operations
// routed to it hit the shared default database (user accounts, course
// catalog, cross-course data).
const Default = "default"

// scopeKey is the context key for the active course scope.
type scopeKey struct{}

// scope marks the active course on a context. depth counts re-entries of
// the same course; it only exists so a scope can report how it was built.
type scope struct {
	course string
	depth  int
}

// activeScope returns the scope on ctx, if any.
func activeScope(ctx context.Context) (scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(scope)
	return s, ok
}

// Target returns the course id the context routes to, or Default when no
// course scope is active. A plain lookup; it never blocks.
func Target(ctx context.Context) string {
	if s, ok := activeScope(ctx); ok {
		return s.course
	}
	return Default
}

// InCourse reports whether any course scope is active on ctx.
func InCourse(ctx context.Context) bool {
	_, ok := activeScope(ctx)
	return ok
}
