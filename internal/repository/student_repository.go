package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Upload records one committed roster file for a session's batch.  The
// parsed students live in the students table and reference the upload so
// a batch's roster can be replaced atomically.
type Upload struct {
	ID        uint64
	SessionID uint64
	Batch     int
	Filename  string
	RowCount  int
	CreatedAt string
}

// Student is one parsed roster entry.
type Student struct {
	ID       uint64
	UploadID uint64
	Batch    int
	Roll     string
	Name     sql.NullString
}

// ErrUploadNotFound is returned when an upload lookup fails.
var ErrUploadNotFound = errors.New("upload not found")

// StudentRepo persists roster uploads and their parsed students.
type StudentRepo struct {
	db *sql.DB
}

func NewStudentRepo(db *sql.DB) *StudentRepo {
	return &StudentRepo{db: db}
}

// ReplaceBatch commits a roster for one batch of a session inside a
// transaction: the previous upload for that batch (and its students) is
// deleted, the new upload row is inserted, and the students are written
// with a single multi-row insert.  On success the upload's ID and
// RowCount are populated.
func (r *StudentRepo) ReplaceBatch(ctx context.Context, up *Upload, students []Student) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// students rows cascade via the upload reference
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM uploads WHERE session_id = ? AND batch = ?`, up.SessionID, up.Batch); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO uploads (session_id, batch, filename, row_count) VALUES (?, ?, ?, ?)`,
		up.SessionID, up.Batch, up.Filename, len(students))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	up.ID = uint64(id)
	up.RowCount = len(students)

	if len(students) > 0 {
		query := `INSERT INTO students (upload_id, batch, roll, name) VALUES `
		args := make([]interface{}, 0, len(students)*4)
		for i, s := range students {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?)"
			args = append(args, up.ID, up.Batch, s.Roll, s.Name)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetBySessionBatch returns the roster committed for one batch in roll
// order, or ErrUploadNotFound when no upload exists for the batch.
func (r *StudentRepo) GetBySessionBatch(ctx context.Context, sessionID uint64, batch int) ([]Student, error) {
	var uploadID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM uploads WHERE session_id = ? AND batch = ? LIMIT 1`, sessionID, batch).
		Scan(&uploadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}

	const q = `SELECT id, upload_id, batch, roll, name FROM students WHERE upload_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, uploadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.UploadID, &s.Batch, &s.Roll, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUploads returns the committed uploads of a session ordered by batch.
func (r *StudentRepo) ListUploads(ctx context.Context, sessionID uint64) ([]Upload, error) {
	const q = `SELECT id, session_id, batch, filename, row_count, created_at
	           FROM uploads WHERE session_id = ? ORDER BY batch`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.ID, &u.SessionID, &u.Batch, &u.Filename, &u.RowCount, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
