package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors package allows sentinel error definitions
)

// Classroom represents one physical exam room.  SeatRows and SeatCols
// describe the seat grid; BlockWidth and BlockStructure capture how the
// columns are partitioned into blocks (structure is a JSON array of widths
// and wins over the uniform width when present).  BrokenSeats is a JSON
// array of [row, col] pairs for physically unusable seats.
type Classroom struct {
	ID             uint64         // ID is the primary key of the classroom
	CreatedBy      uint64         // CreatedBy references the user who registered the room
	Name           string         // Name is a human readable label for the room
	Description    sql.NullString // Description is optional text about the room
	SeatRows       int            // SeatRows is the number of seating rows
	SeatCols       int            // SeatCols is the number of seats per row
	BlockWidth     sql.NullInt32  // BlockWidth is the uniform block width; NULL means the engine default
	BlockStructure sql.NullString // BlockStructure is an optional JSON list of per-block widths
	BrokenSeats    sql.NullString // BrokenSeats is an optional JSON list of [row, col] pairs
	IsActive       bool           // IsActive flag indicates if the room is currently in use
	CreatedAt      string         // CreatedAt stores creation timestamp
	UpdatedAt      string         // UpdatedAt stores last update timestamp
}

// ErrClassroomNotFound is returned when a classroom lookup fails.
var ErrClassroomNotFound = errors.New("classroom not found")

// ClassroomRepo provides methods to create and retrieve classrooms.  It
// embeds a database handle to perform queries and commands.
type ClassroomRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewClassroomRepo constructs a ClassroomRepo with the given DB handle.
func NewClassroomRepo(db *sql.DB) *ClassroomRepo {
	return &ClassroomRepo{db: db}
}

// Create inserts a new classroom.  Name, SeatRows and SeatCols must be
// set.  After insert the record is read back so the timestamp and status
// fields are populated on the returned struct.
func (r *ClassroomRepo) Create(ctx context.Context, room *Classroom) error {
	const qInsert = `INSERT INTO classrooms (created_by, name, description, seat_rows, seat_cols, block_width, block_structure, broken_seats)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		room.CreatedBy, room.Name, room.Description, room.SeatRows, room.SeatCols,
		room.BlockWidth, room.BlockStructure, room.BrokenSeats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)

	const qSelect = `SELECT id, created_by, name, description, seat_rows, seat_cols, block_width, block_structure, broken_seats, is_active, created_at, updated_at
	                 FROM classrooms WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, room.ID).
		Scan(&room.ID, &room.CreatedBy, &room.Name, &room.Description, &room.SeatRows, &room.SeatCols,
			&room.BlockWidth, &room.BlockStructure, &room.BrokenSeats, &room.IsActive, &room.CreatedAt, &room.UpdatedAt)
}

// GetByID retrieves a classroom by its ID.  It returns
// ErrClassroomNotFound when no row is found.
func (r *ClassroomRepo) GetByID(ctx context.Context, id uint64) (*Classroom, error) {
	const q = `SELECT id, created_by, name, description, seat_rows, seat_cols, block_width, block_structure, broken_seats, is_active, created_at, updated_at
	           FROM classrooms WHERE id = ?`
	var room Classroom
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&room.ID, &room.CreatedBy, &room.Name, &room.Description, &room.SeatRows, &room.SeatCols,
			&room.BlockWidth, &room.BlockStructure, &room.BrokenSeats, &room.IsActive, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassroomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// List returns all active classrooms ordered by id.  Useful for
// GET /v1/classrooms.
func (r *ClassroomRepo) List(ctx context.Context) ([]*Classroom, error) {
	const q = `SELECT id, created_by, name, description, seat_rows, seat_cols, block_width, block_structure, broken_seats, is_active, created_at, updated_at
	           FROM classrooms
	           WHERE is_active = 1
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Classroom
	for rows.Next() {
		room := new(Classroom)
		if err := rows.Scan(&room.ID, &room.CreatedBy, &room.Name, &room.Description, &room.SeatRows, &room.SeatCols,
			&room.BlockWidth, &room.BlockStructure, &room.BrokenSeats, &room.IsActive, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the mutable classroom fields (name, description, grid
// geometry, block layout, broken seats).  Returns sql.ErrNoRows when the
// classroom does not exist.
func (r *ClassroomRepo) Update(ctx context.Context, room *Classroom) error {
	const q = `UPDATE classrooms
	           SET name = ?, description = ?, seat_rows = ?, seat_cols = ?, block_width = ?, block_structure = ?, broken_seats = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		room.Name, room.Description, room.SeatRows, room.SeatCols,
		room.BlockWidth, room.BlockStructure, room.BrokenSeats, room.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate soft-deletes a classroom so past sessions keep their
// reference.  Returns sql.ErrNoRows when the classroom does not exist or
// is already inactive.
func (r *ClassroomRepo) Deactivate(ctx context.Context, id uint64) error {
	const q = `UPDATE classrooms SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND is_active = 1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
