package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Allocation is one saved seating plan for an exam session.  PayloadJSON
// holds the full formatted plan (grid, summary, validation) as produced
// by the engine; the per-seat rows in allocation_seats carry the fields
// needed for SQL-side queries such as "where does roll X sit".
type Allocation struct {
	ID            uint64
	SessionID     uint64
	SavedBy       uint64
	IsValid       bool
	TotalStudents int
	PayloadJSON   string
	CreatedAt     string
}

// AllocationSeat is the flattened per-seat record stored next to the
// payload.  Status uses the engine's names: broken, unallocated, allocated.
type AllocationSeat struct {
	AllocationID uint64
	RowIdx       int
	ColIdx       int
	Position     string
	Batch        sql.NullInt32
	PaperSet     sql.NullString
	RollNumber   sql.NullString
	Status       string
}

// ErrAllocationNotFound is returned when an allocation lookup fails.
var ErrAllocationNotFound = errors.New("allocation not found")

// AllocationRepo persists saved seating plans.
type AllocationRepo struct {
	db *sql.DB
}

func NewAllocationRepo(db *sql.DB) *AllocationRepo {
	return &AllocationRepo{db: db}
}

// Save stores a plan and its per-seat rows in one transaction, replacing
// any previous allocation for the session.  On success a.ID is populated.
func (r *AllocationRepo) Save(ctx context.Context, a *Allocation, seats []AllocationSeat) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM allocations WHERE session_id = ?`, a.SessionID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO allocations (session_id, saved_by, is_valid, total_students, payload_json)
		 VALUES (?, ?, ?, ?, ?)`,
		a.SessionID, a.SavedBy, a.IsValid, a.TotalStudents, a.PayloadJSON)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)

	if len(seats) > 0 {
		query := `INSERT INTO allocation_seats (allocation_id, row_idx, col_idx, position, batch, paper_set, roll_number, status) VALUES `
		args := make([]interface{}, 0, len(seats)*8)
		for i, s := range seats {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?, ?, ?, ?)"
			args = append(args, a.ID, s.RowIdx, s.ColIdx, s.Position, s.Batch, s.PaperSet, s.RollNumber, s.Status)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetBySession returns the saved allocation for a session, or
// ErrAllocationNotFound when none has been saved.
func (r *AllocationRepo) GetBySession(ctx context.Context, sessionID uint64) (*Allocation, error) {
	const q = `SELECT id, session_id, saved_by, is_valid, total_students, payload_json, created_at
	           FROM allocations WHERE session_id = ? LIMIT 1`
	var a Allocation
	err := r.db.QueryRowContext(ctx, q, sessionID).
		Scan(&a.ID, &a.SessionID, &a.SavedBy, &a.IsValid, &a.TotalStudents, &a.PayloadJSON, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAllocationNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindSeatByRoll locates a student's seat inside a session's saved plan.
func (r *AllocationRepo) FindSeatByRoll(ctx context.Context, sessionID uint64, roll string) (*AllocationSeat, error) {
	const q = `SELECT s.allocation_id, s.row_idx, s.col_idx, s.position, s.batch, s.paper_set, s.roll_number, s.status
	           FROM allocation_seats s
	           JOIN allocations a ON a.id = s.allocation_id
	           WHERE a.session_id = ? AND s.roll_number = ?`
	var s AllocationSeat
	err := r.db.QueryRowContext(ctx, q, sessionID, roll).
		Scan(&s.AllocationID, &s.RowIdx, &s.ColIdx, &s.Position, &s.Batch, &s.PaperSet, &s.RollNumber, &s.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAllocationNotFound
		}
		return nil, err
	}
	return &s, nil
}

// DeleteBySession drops the saved allocation (and seat rows via cascade)
// for a session.  Returns ErrAllocationNotFound when nothing was saved.
func (r *AllocationRepo) DeleteBySession(ctx context.Context, sessionID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM allocations WHERE session_id = ?`, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAllocationNotFound
	}
	return nil
}
