// Package course provides data access to the tables inside a course
// database. Every operation takes a context and is transparently directed
// to the active course's physical database by the router; callers must be
// inside a course scope (the store never writes course rows to the default
// database).
// See docs/ARCHITECTURE.md § Course Data Access.
package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openedu-labs/coursedb/internal/routing"
)

// Store errors.
var (
	ErrNotFound     = errors.New("submit not found")
	ErrNoCourse     = errors.New("no course context active")
	ErrInvalidInput = errors.New("invalid submit")
)

// Submit is one solution submission inside a course database.
type Submit struct {
	SubmitID   string    `json:"submit_id"`
	TaskID     string    `json:"task_id"`
	User       string    `json:"usr"`
	SubmitDate time.Time `json:"submit_date"`
	SourceCode string    `json:"source_code"`
	FinalScore float64   `json:"final_score"`
}

// Store reads and writes submits in whichever course database the context
// routes to.
type Store struct {
	router *routing.Router
}

// NewStore returns a Store routing through router.
func NewStore(router *routing.Router) *Store {
	return &Store{router: router}
}

// db returns the active course database, rejecting default-routed calls.
func (s *Store) db(ctx context.Context) (*sql.DB, error) {
	if !routing.InCourse(ctx) {
		return nil, ErrNoCourse
	}
	return s.router.DB(ctx)
}

// AddSubmit inserts a submit into the active course database. An empty
// SubmitID gets a generated UUID v7; an empty SubmitDate gets now. Returns
// the submit id.
func (s *Store) AddSubmit(ctx context.Context, sub Submit) (string, error) {
	if sub.TaskID == "" || sub.User == "" {
		return "", ErrInvalidInput
	}

	db, err := s.db(ctx)
	if err != nil {
		return "", err
	}

	if sub.SubmitID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generating submit id: %w", err)
		}
		sub.SubmitID = id.String()
	}
	if sub.SubmitDate.IsZero() {
		sub.SubmitDate = time.Now().UTC()
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO submits (submit_id, task_id, usr, submit_date, source_code, final_score) VALUES (?, ?, ?, ?, ?, ?)",
		sub.SubmitID, sub.TaskID, sub.User,
		sub.SubmitDate.Format(time.RFC3339), sub.SourceCode, sub.FinalScore,
	)
	if err != nil {
		return "", fmt.Errorf("persisting submit: %w", err)
	}
	return sub.SubmitID, nil
}

// GetSubmit retrieves a submit by id from the active course database.
func (s *Store) GetSubmit(ctx context.Context, submitID string) (Submit, error) {
	var zero Submit

	db, err := s.db(ctx)
	if err != nil {
		return zero, err
	}

	row := db.QueryRowContext(ctx,
		"SELECT submit_id, task_id, usr, submit_date, source_code, final_score FROM submits WHERE submit_id = ?",
		submitID,
	)
	sub, err := hydrateSubmit(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("getting submit %s: %w", submitID, err)
	}
	return sub, nil
}

// ListSubmits returns the submits for a task, newest first. An empty taskID
// lists every submit in the course.
func (s *Store) ListSubmits(ctx context.Context, taskID string) ([]Submit, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	query := "SELECT submit_id, task_id, usr, submit_date, source_code, final_score FROM submits ORDER BY submit_date DESC"
	args := []any{}
	if taskID != "" {
		query = "SELECT submit_id, task_id, usr, submit_date, source_code, final_score FROM submits WHERE task_id = ? ORDER BY submit_date DESC"
		args = append(args, taskID)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing submits: %w", err)
	}
	defer rows.Close()

	var subs []Submit
	for rows.Next() {
		sub, err := hydrateSubmit(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning submit: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// CountSubmits returns the number of submits in the active course database.
func (s *Store) CountSubmits(ctx context.Context) (int, error) {
	db, err := s.db(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM submits").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting submits: %w", err)
	}
	return n, nil
}

// hydrateSubmit scans one submits row into a Submit.
func hydrateSubmit(scan func(dest ...any) error) (Submit, error) {
	var sub Submit
	var submitDate string
	if err := scan(&sub.SubmitID, &sub.TaskID, &sub.User, &submitDate, &sub.SourceCode, &sub.FinalScore); err != nil {
		return Submit{}, err
	}
	t, err := time.Parse(time.RFC3339, submitDate)
	if err != nil {
		return Submit{}, fmt.Errorf("parsing submit_date: %w", err)
	}
	sub.SubmitDate = t
	return sub, nil
}
