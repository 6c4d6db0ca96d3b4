package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Run statuses.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Pipeline stage names recorded on runs and events.
const (
	StageExtract = "extract"
	StageFacts   = "facts"
	StageMerge   = "merge"
	StageReason  = "reason"
	StageReport  = "report"
)

// Run is one uploaded report pair and its progress through the stages.
type Run struct {
	ID           string `json:"id"`
	PropertyName string `json:"property_name"`
	Status       string `json:"status"`
	Stage        string `json:"stage,omitempty"`
	RootDir      string `json:"root_dir"`
	Error        string `json:"error,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

// RunEvent is one entry of a run's progress log.
type RunEvent struct {
	ID        int64  `json:"id"`
	RunID     string `json:"run_id"`
	Stage     string `json:"stage"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// CreateRun inserts a new run. Fills timestamps and defaults the status
// to pending.
func (s *Store) CreateRun(ctx context.Context, r *Run) error {
	now := time.Now().UnixMilli()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = StatusPending
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO runs (id, property_name, status, stage, root_dir, error, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		r.ID, r.PropertyName, r.Status, r.Stage, r.RootDir, r.Error, r.CreatedAt, r.UpdatedAt,
	)
	return err
}

// GetRun retrieves a run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	r := &Run{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, property_name, status, stage, root_dir, error, created_at, updated_at
		FROM runs WHERE id = ?`, id).Scan(
		&r.ID, &r.PropertyName, &r.Status, &r.Stage, &r.RootDir, &r.Error, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, property_name, status, stage, root_dir, error, created_at, updated_at
		FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(
			&r.ID, &r.PropertyName, &r.Status, &r.Stage, &r.RootDir, &r.Error, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SetRunStage records the stage a run is currently in and its status.
func (s *Store) SetRunStage(ctx context.Context, id, stage, status string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE runs SET stage = ?, status = ?, updated_at = ? WHERE id = ?`,
		stage, status, time.Now().UnixMilli(), id)
	if err != nil {
		return err
	}
	return errIfMissing(res)
}

// FinishRun marks a run done or failed. errMsg is kept on the row so the
// UI can surface what went wrong.
func (s *Store) FinishRun(ctx context.Context, id, status, errMsg string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		status, errMsg, time.Now().UnixMilli(), id)
	if err != nil {
		return err
	}
	return errIfMissing(res)
}

// AppendEvent adds one entry to a run's progress log.
func (s *Store) AppendEvent(ctx context.Context, ev *RunEvent) error {
	ev.CreatedAt = time.Now().UnixMilli()
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO run_events (run_id, stage, status, detail, created_at)
		VALUES (?,?,?,?,?)`,
		ev.RunID, ev.Stage, ev.Status, ev.Detail, ev.CreatedAt)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		ev.ID = id
	}
	return nil
}

// ListEvents returns a run's events in append order.
func (s *Store) ListEvents(ctx context.Context, runID string) ([]*RunEvent, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, run_id, stage, status, detail, created_at
		FROM run_events WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*RunEvent
	for rows.Next() {
		ev := &RunEvent{}
		if err := rows.Scan(&ev.ID, &ev.RunID, &ev.Stage, &ev.Status, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func errIfMissing(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
