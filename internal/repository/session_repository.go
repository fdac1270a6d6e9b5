package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ExamSession ties a classroom to one exam sitting.  ConfigJSON stores
// the engine options used for the sitting (batch count, quotas, roll
// templates and so on) exactly as submitted, so a saved allocation can be
// regenerated or audited later.
type ExamSession struct {
	ID          uint64
	ClassroomID uint64
	CreatedBy   uint64
	Title       string
	ExamDate    string // DATE column, formatted YYYY-MM-DD
	NumBatches  int
	ConfigJSON  sql.NullString
	CreatedAt   string
	UpdatedAt   string
}

// ErrSessionNotFound is returned when an exam session lookup fails.
var ErrSessionNotFound = errors.New("exam session not found")

// SessionRepo provides access to the exam_sessions table.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts a session and reads it back to fill timestamps.
func (r *SessionRepo) Create(ctx context.Context, s *ExamSession) error {
	const qInsert = `INSERT INTO exam_sessions (classroom_id, created_by, title, exam_date, num_batches, config_json)
	                 VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		s.ClassroomID, s.CreatedBy, s.Title, s.ExamDate, s.NumBatches, s.ConfigJSON)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	const qSelect = `SELECT id, classroom_id, created_by, title, exam_date, num_batches, config_json, created_at, updated_at
	                 FROM exam_sessions WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, s.ID).
		Scan(&s.ID, &s.ClassroomID, &s.CreatedBy, &s.Title, &s.ExamDate, &s.NumBatches, &s.ConfigJSON, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a session, returning ErrSessionNotFound on no rows.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*ExamSession, error) {
	const q = `SELECT id, classroom_id, created_by, title, exam_date, num_batches, config_json, created_at, updated_at
	           FROM exam_sessions WHERE id = ?`
	var s ExamSession
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.ClassroomID, &s.CreatedBy, &s.Title, &s.ExamDate, &s.NumBatches, &s.ConfigJSON, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByClassroom returns every session held in a classroom, newest first.
func (r *SessionRepo) ListByClassroom(ctx context.Context, classroomID uint64) ([]*ExamSession, error) {
	const q = `SELECT id, classroom_id, created_by, title, exam_date, num_batches, config_json, created_at, updated_at
	           FROM exam_sessions
	           WHERE classroom_id = ?
	           ORDER BY exam_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ExamSession
	for rows.Next() {
		s := new(ExamSession)
		if err := rows.Scan(&s.ID, &s.ClassroomID, &s.CreatedBy, &s.Title, &s.ExamDate, &s.NumBatches, &s.ConfigJSON, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateConfig replaces the stored engine options for a session.
func (r *SessionRepo) UpdateConfig(ctx context.Context, id uint64, configJSON string) error {
	const q = `UPDATE exam_sessions SET config_json = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, configJSON, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a session.  It fails with ErrConflict while saved
// allocations still reference it so history is not silently lost.
func (r *SessionRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM allocations WHERE session_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM exam_sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
