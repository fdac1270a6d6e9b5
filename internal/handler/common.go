package handler // handler defines http handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/blazex/seat-allocation/internal/repository"
	"github.com/blazex/seat-allocation/internal/snapshot"
)

// SeatingHandler bundles the repositories and the snapshot store used by
// the classroom, roster, seating and export endpoints.
type SeatingHandler struct {
	Classrooms  *repository.ClassroomRepo
	Sessions    *repository.SessionRepo
	Students    *repository.StudentRepo
	Allocations *repository.AllocationRepo
	Snapshots   *snapshot.Store
}

// NewSeatingHandler constructs a SeatingHandler and panics if any
// repository is nil.  The snapshot store may be disabled but not nil.
func NewSeatingHandler(classrooms *repository.ClassroomRepo, sessions *repository.SessionRepo,
	students *repository.StudentRepo, allocations *repository.AllocationRepo, snapshots *snapshot.Store) *SeatingHandler {
	if classrooms == nil || sessions == nil || students == nil || allocations == nil || snapshots == nil {
		panic("nil dependency passed to NewSeatingHandler")
	}
	return &SeatingHandler{
		Classrooms:  classrooms,
		Sessions:    sessions,
		Students:    students,
		Allocations: allocations,
		Snapshots:   snapshots,
	}
}

// getUserID extracts the user_id from echo.Context and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
