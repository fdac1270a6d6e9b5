package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/blazex/seat-allocation/internal/repository"
	"github.com/blazex/seat-allocation/internal/seating"
)

// ----- DTOs -----

type classroomReq struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Rows           int      `json:"rows"`
	Cols           int      `json:"cols"`
	BlockWidth     int      `json:"block_width"`
	BlockStructure []int    `json:"block_structure"`
	BrokenSeats    [][2]int `json:"broken_seats"`
}

type classroomResp struct {
	ID             uint64   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Rows           int      `json:"rows"`
	Cols           int      `json:"cols"`
	BlockWidth     int      `json:"block_width"`
	BlockStructure []int    `json:"block_structure,omitempty"`
	BrokenSeats    [][2]int `json:"broken_seats"`
	IsActive       bool     `json:"is_active"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

type sessionReq struct {
	Title      string          `json:"title"`
	ExamDate   string          `json:"exam_date"` // YYYY-MM-DD
	NumBatches int             `json:"num_batches"`
	Config     json.RawMessage `json:"config"` // engine options, stored verbatim
}

type sessionResp struct {
	ID          uint64          `json:"id"`
	ClassroomID uint64          `json:"classroom_id"`
	Title       string          `json:"title"`
	ExamDate    string          `json:"exam_date"`
	NumBatches  int             `json:"num_batches"`
	Config      json.RawMessage `json:"config,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

// validateGeometry runs the request through the engine's own checks so a
// classroom that cannot produce a plan is rejected at creation time.
func (r *classroomReq) validateGeometry() []string {
	cfg := seating.Config{
		Rows:           r.Rows,
		Cols:           r.Cols,
		NumBatches:     1,
		BlockWidth:     r.BlockWidth,
		BlockStructure: r.BlockStructure,
		BrokenSeats:    r.BrokenSeats,
	}
	return seating.New(cfg).InitErrors()
}

func (r *classroomReq) toModel() (*repository.Classroom, error) {
	room := &repository.Classroom{
		Name:     strings.TrimSpace(r.Name),
		SeatRows: r.Rows,
		SeatCols: r.Cols,
	}
	if d := strings.TrimSpace(r.Description); d != "" {
		room.Description = sql.NullString{String: d, Valid: true}
	}
	if r.BlockWidth > 0 {
		room.BlockWidth = sql.NullInt32{Int32: int32(r.BlockWidth), Valid: true}
	}
	if len(r.BlockStructure) > 0 {
		b, err := json.Marshal(r.BlockStructure)
		if err != nil {
			return nil, err
		}
		room.BlockStructure = sql.NullString{String: string(b), Valid: true}
	}
	if len(r.BrokenSeats) > 0 {
		b, err := json.Marshal(r.BrokenSeats)
		if err != nil {
			return nil, err
		}
		room.BrokenSeats = sql.NullString{String: string(b), Valid: true}
	}
	return room, nil
}

func classroomToResp(room *repository.Classroom) classroomResp {
	resp := classroomResp{
		ID:          room.ID,
		Name:        room.Name,
		Rows:        room.SeatRows,
		Cols:        room.SeatCols,
		BrokenSeats: [][2]int{},
		IsActive:    room.IsActive,
		CreatedAt:   room.CreatedAt,
		UpdatedAt:   room.UpdatedAt,
	}
	if room.Description.Valid {
		resp.Description = room.Description.String
	}
	if room.BlockWidth.Valid {
		resp.BlockWidth = int(room.BlockWidth.Int32)
	} else {
		resp.BlockWidth = seating.DefaultBlockWidth
	}
	if room.BlockStructure.Valid {
		_ = json.Unmarshal([]byte(room.BlockStructure.String), &resp.BlockStructure)
	}
	if room.BrokenSeats.Valid {
		_ = json.Unmarshal([]byte(room.BrokenSeats.String), &resp.BrokenSeats)
	}
	return resp
}

// CreateClassroom handles POST /v1/classrooms (ADMIN).
func (h *SeatingHandler) CreateClassroom(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req classroomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if errs := req.validateGeometry(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid layout", "details": errs})
	}
	room, err := req.toModel()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	room.CreatedBy = userID

	if err := h.Classrooms.Create(c.Request().Context(), room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create classroom failed"})
	}
	return c.JSON(http.StatusCreated, classroomToResp(room))
}

// ListClassrooms handles GET /v1/classrooms.
func (h *SeatingHandler) ListClassrooms(c echo.Context) error {
	rooms, err := h.Classrooms.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items := make([]classroomResp, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, classroomToResp(room))
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(items), "items": items})
}

// GetClassroom handles GET /v1/classrooms/:id.
func (h *SeatingHandler) GetClassroom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	room, err := h.Classrooms.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrClassroomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "classroom not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, classroomToResp(room))
}

// UpdateClassroom handles PUT /v1/classrooms/:id (ADMIN).
func (h *SeatingHandler) UpdateClassroom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req classroomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if errs := req.validateGeometry(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid layout", "details": errs})
	}
	room, err := req.toModel()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	room.ID = id

	if err := h.Classrooms.Update(c.Request().Context(), room); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "classroom not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update classroom failed"})
	}
	updated, err := h.Classrooms.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, classroomToResp(updated))
}

// DeleteClassroom handles DELETE /v1/classrooms/:id (ADMIN).  Soft delete
// so past sessions keep their reference.
func (h *SeatingHandler) DeleteClassroom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Classrooms.Deactivate(c.Request().Context(), id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "classroom not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete classroom failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateSession handles POST /v1/classrooms/:id/sessions (ADMIN).
func (h *SeatingHandler) CreateSession(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.ExamDate) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and exam_date required"})
	}
	if req.NumBatches <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "num_batches must be positive"})
	}
	if _, err := h.Classrooms.GetByID(c.Request().Context(), classroomID); err != nil {
		if err == repository.ErrClassroomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "classroom not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	s := &repository.ExamSession{
		ClassroomID: classroomID,
		CreatedBy:   userID,
		Title:       strings.TrimSpace(req.Title),
		ExamDate:    strings.TrimSpace(req.ExamDate),
		NumBatches:  req.NumBatches,
	}
	if len(req.Config) > 0 {
		s.ConfigJSON = sql.NullString{String: string(req.Config), Valid: true}
	}
	if err := h.Sessions.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	return c.JSON(http.StatusCreated, sessionToResp(s))
}

// ListSessions handles GET /v1/classrooms/:id/sessions.
func (h *SeatingHandler) ListSessions(c echo.Context) error {
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	sessions, err := h.Sessions.ListByClassroom(c.Request().Context(), classroomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items := make([]sessionResp, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, sessionToResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(items), "items": items})
}

// DeleteSession handles DELETE /v1/sessions/:id (ADMIN).
func (h *SeatingHandler) DeleteSession(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Sessions.Delete(c.Request().Context(), id); err != nil {
		switch err {
		case repository.ErrSessionNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "session has a saved allocation"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete session failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

func sessionToResp(s *repository.ExamSession) sessionResp {
	resp := sessionResp{
		ID:          s.ID,
		ClassroomID: s.ClassroomID,
		Title:       s.Title,
		ExamDate:    s.ExamDate,
		NumBatches:  s.NumBatches,
		CreatedAt:   s.CreatedAt,
	}
	if s.ConfigJSON.Valid {
		resp.Config = json.RawMessage(s.ConfigJSON.String)
	}
	return resp
}
