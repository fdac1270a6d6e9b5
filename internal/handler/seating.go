package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/blazex/seat-allocation/internal/queue"
	"github.com/blazex/seat-allocation/internal/repository"
	"github.com/blazex/seat-allocation/internal/seating"
	queue_publisher "github.com/blazex/seat-allocation/internal/service"
	"github.com/blazex/seat-allocation/internal/snapshot"
)

// planRequest mirrors the engine's Config in the JSON vocabulary the
// front end uses.  Pointer fields distinguish "absent" from zero so a
// request can override only part of a session's stored options.
type planRequest struct {
	Rows           *int  `json:"rows"`
	Cols           *int  `json:"cols"`
	NumBatches     *int  `json:"num_batches"`
	BlockWidth     *int  `json:"block_width"`
	BlockStructure []int `json:"block_structure"`

	BatchByColumn            *bool  `json:"batch_by_column"`
	EnforceNoAdjacentBatches bool   `json:"enforce_no_adjacent_batches"`
	AllowAdjacentSameBatch   bool   `json:"allow_adjacent_same_batch"`
	RandomizeColumns         bool   `json:"randomize_columns"`
	Seed                     int64  `json:"seed"`

	BrokenSeats        [][2]int                    `json:"broken_seats"`
	BatchStudentCounts map[int]int                 `json:"batch_student_counts"`
	BatchRollNumbers   map[int][]seating.RollEntry `json:"batch_roll_numbers"`
	BatchColors        map[int]string              `json:"batch_colors"`
	BatchLabels        map[int]string              `json:"batch_labels"`

	RollTemplate  string            `json:"roll_template"`
	BatchPrefixes map[int]string    `json:"batch_prefixes"`
	Year          int               `json:"year"`
	StartSerial   int               `json:"start_serial"`
	StartSerials  map[int]int       `json:"start_serials"`
	StartRolls    map[int]string    `json:"start_rolls"`
	SerialWidth   int               `json:"serial_width"`
	SerialMode    string            `json:"serial_mode"`
}

// toConfig resolves the request into an engine Config.  BatchByColumn
// defaults to true, matching the service's primary strategy.
func (r *planRequest) toConfig() seating.Config {
	cfg := seating.Config{
		BlockStructure:           r.BlockStructure,
		BatchByColumn:            true,
		EnforceNoAdjacentBatches: r.EnforceNoAdjacentBatches,
		AllowAdjacentSameBatch:   r.AllowAdjacentSameBatch,
		RandomizeColumns:         r.RandomizeColumns,
		Seed:                     r.Seed,
		BrokenSeats:              r.BrokenSeats,
		BatchStudentCounts:       r.BatchStudentCounts,
		BatchRollNumbers:         r.BatchRollNumbers,
		BatchColors:              r.BatchColors,
		BatchLabels:              r.BatchLabels,
		RollTemplate:             r.RollTemplate,
		BatchPrefixes:            r.BatchPrefixes,
		Year:                     r.Year,
		StartSerial:              r.StartSerial,
		StartSerials:             r.StartSerials,
		StartRolls:               r.StartRolls,
		SerialWidth:              r.SerialWidth,
		SerialMode:               r.SerialMode,
	}
	if r.Rows != nil {
		cfg.Rows = *r.Rows
	}
	if r.Cols != nil {
		cfg.Cols = *r.Cols
	}
	if r.NumBatches != nil {
		cfg.NumBatches = *r.NumBatches
	}
	if r.BlockWidth != nil {
		cfg.BlockWidth = *r.BlockWidth
	}
	if r.BatchByColumn != nil {
		cfg.BatchByColumn = *r.BatchByColumn
	}
	return cfg
}

// Preview handles POST /v1/seating/preview: a stateless run of the
// engine straight from the request body.  Useful while an exam cell is
// still tuning a layout.
func (h *SeatingHandler) Preview(c echo.Context) error {
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	out := seating.New(req.toConfig()).Generate().Format()
	return c.JSON(http.StatusOK, out)
}

// ConstraintsStatus handles POST /v1/seating/constraints-status: runs the
// engine and reports the per-rule applied/satisfied summary only.
func (h *SeatingHandler) ConstraintsStatus(c echo.Context) error {
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	grid := seating.New(req.toConfig()).Generate()
	ok, violations := grid.Validate()
	return c.JSON(http.StatusOK, echo.Map{
		"is_valid":           ok,
		"errors":             violations,
		"constraints_status": grid.ConstraintsStatus(),
	})
}

// sessionPlanRequest builds the plan request for a session: defaults,
// then the classroom geometry, then the session's stored options, then
// the request body.  Later sources override earlier ones field by field.
func (h *SeatingHandler) sessionPlanRequest(c echo.Context, session *repository.ExamSession, room *repository.Classroom) (*planRequest, error) {
	req := &planRequest{}
	req.Rows = &room.SeatRows
	req.Cols = &room.SeatCols
	if room.BlockWidth.Valid {
		bw := int(room.BlockWidth.Int32)
		req.BlockWidth = &bw
	}
	if room.BlockStructure.Valid {
		_ = json.Unmarshal([]byte(room.BlockStructure.String), &req.BlockStructure)
	}
	if room.BrokenSeats.Valid {
		_ = json.Unmarshal([]byte(room.BrokenSeats.String), &req.BrokenSeats)
	}
	n := session.NumBatches
	req.NumBatches = &n

	if session.ConfigJSON.Valid {
		if err := json.Unmarshal([]byte(session.ConfigJSON.String), req); err != nil {
			return nil, err
		}
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, req); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// attachRosters fills BatchRollNumbers from committed uploads for every
// batch the request did not supply explicitly.
func (h *SeatingHandler) attachRosters(ctx context.Context, sessionID uint64, req *planRequest) error {
	numBatches := 0
	if req.NumBatches != nil {
		numBatches = *req.NumBatches
	}
	for b := 1; b <= numBatches; b++ {
		if _, ok := req.BatchRollNumbers[b]; ok {
			continue
		}
		students, err := h.Students.GetBySessionBatch(ctx, sessionID, b)
		if err != nil {
			if err == repository.ErrUploadNotFound {
				continue // batch falls back to template or numeric rolls
			}
			return err
		}
		entries := make([]seating.RollEntry, 0, len(students))
		for _, s := range students {
			e := seating.RollEntry{Roll: s.Roll}
			if s.Name.Valid {
				e.Name = s.Name.String
			}
			entries = append(entries, e)
		}
		if req.BatchRollNumbers == nil {
			req.BatchRollNumbers = make(map[int][]seating.RollEntry)
		}
		req.BatchRollNumbers[b] = entries
	}
	return nil
}

// GenerateForSession handles POST /v1/sessions/:id/generate.  The plan is
// computed from the classroom geometry, the session's stored options, the
// request overrides and the committed rosters, then cached as the
// session's snapshot.
func (h *SeatingHandler) GenerateForSession(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()

	session, err := h.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	room, err := h.Classrooms.GetByID(ctx, session.ClassroomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load classroom failed"})
	}

	req, err := h.sessionPlanRequest(c, session, room)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.attachRosters(ctx, sessionID, req); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rosters failed"})
	}

	out := seating.New(req.toConfig()).Generate().Format()
	if err := h.Snapshots.Put(ctx, sessionID, out); err != nil {
		c.Logger().Warnf("snapshot store failed for session %d: %v", sessionID, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetPlan handles GET /v1/sessions/:id/plan.  The snapshot is preferred;
// when it has expired the saved allocation payload is served instead.
func (h *SeatingHandler) GetPlan(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()

	if out, err := h.Snapshots.Get(ctx, sessionID); err == nil {
		return c.JSON(http.StatusOK, out)
	} else if err != snapshot.ErrNotFound {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "snapshot load failed"})
	}

	alloc, err := h.Allocations.GetBySession(ctx, sessionID)
	if err != nil {
		if err == repository.ErrAllocationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no plan generated or saved for this session"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSONBlob(http.StatusOK, []byte(alloc.PayloadJSON))
}

// SaveAllocation handles POST /v1/sessions/:id/save.  The current
// snapshot is persisted to MySQL (payload plus flattened seat rows) and
// an allocation.saved event is published for downstream consumers.
func (h *SeatingHandler) SaveAllocation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()

	session, err := h.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out, err := h.Snapshots.Get(ctx, sessionID)
	if err != nil {
		if err == snapshot.ErrNotFound {
			return c.JSON(http.StatusConflict, echo.Map{"error": "no current plan; generate before saving"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "snapshot load failed"})
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode plan failed"})
	}
	alloc := &repository.Allocation{
		SessionID:     sessionID,
		SavedBy:       userID,
		IsValid:       out.Validation.IsValid,
		TotalStudents: out.Summary.TotalStudents,
		PayloadJSON:   string(payload),
	}
	if err := h.Allocations.Save(ctx, alloc, flattenSeats(out)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save allocation failed"})
	}

	room, err := h.Classrooms.GetByID(ctx, session.ClassroomID)
	roomName := ""
	if err == nil {
		roomName = room.Name
	}
	event := queue.AllocationSavedEvent{
		AllocationID:  alloc.ID,
		SessionID:     sessionID,
		SavedBy:       userID,
		ClassroomID:   session.ClassroomID,
		ClassroomName: roomName,
		SessionTitle:  session.Title,
		ExamDate:      session.ExamDate,
		NumBatches:    session.NumBatches,
		TotalStudents: out.Summary.TotalStudents,
		BrokenSeats:   out.Summary.BrokenSeatsCount,
		IsValid:       out.Validation.IsValid,
		SavedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishAllocationSaved(pubCtx, event)
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"allocation_id":  alloc.ID,
		"session_id":     sessionID,
		"is_valid":       alloc.IsValid,
		"total_students": alloc.TotalStudents,
	})
}

// ResetAllocation handles DELETE /v1/sessions/:id/allocation: drops the
// saved allocation and the snapshot so the session starts clean.
func (h *SeatingHandler) ResetAllocation(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()

	_ = h.Snapshots.Delete(ctx, sessionID)
	if err := h.Allocations.DeleteBySession(ctx, sessionID); err != nil {
		if err == repository.ErrAllocationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no saved allocation"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// FindSeat handles GET /v1/sessions/:id/seat?roll=X against the saved
// allocation.
func (h *SeatingHandler) FindSeat(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	roll := c.QueryParam("roll")
	if roll == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roll query parameter required"})
	}
	seat, err := h.Allocations.FindSeatByRoll(c.Request().Context(), sessionID, roll)
	if err != nil {
		if err == repository.ErrAllocationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "roll not found in saved allocation"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	resp := echo.Map{
		"position": seat.Position,
		"row":      seat.RowIdx,
		"col":      seat.ColIdx,
		"status":   seat.Status,
	}
	if seat.Batch.Valid {
		resp["batch"] = seat.Batch.Int32
	}
	if seat.PaperSet.Valid {
		resp["paper_set"] = seat.PaperSet.String
	}
	return c.JSON(http.StatusOK, resp)
}

// seatPatch is the body of PATCH /v1/sessions/:id/seat.  A roll number
// hands the seat to a student outside every upload; an empty roll number
// takes a previously patched seat back.
type seatPatch struct {
	Row         int    `json:"row"`
	Col         int    `json:"col"`
	RollNumber  string `json:"roll_number"`
	StudentName string `json:"student_name"`
	BatchLabel  string `json:"batch_label"`
	PaperSet    string `json:"paper_set"`
	Color       string `json:"color"`
}

// PatchSeat handles PATCH /v1/sessions/:id/seat: rewrites one seat of the
// current snapshot so an exam cell can fill an unused seat by hand after
// generation.  Only the cached plan changes; saving afterwards persists
// the patched plan like any other.
func (h *SeatingHandler) PatchSeat(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req seatPatch
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()

	out, err := h.Snapshots.Get(ctx, sessionID)
	if err != nil {
		if err == snapshot.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no current plan; generate before patching"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "snapshot load failed"})
	}
	if req.Row < 0 || req.Row >= out.Metadata.Rows || req.Col < 0 || req.Col >= out.Metadata.Cols {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat coordinates out of range"})
	}
	seat := &out.Seating[req.Row][req.Col]

	if req.RollNumber == "" {
		// Only hand-added students can be taken back; seats filled by
		// generation are reset by regenerating.
		if seat.RollNumber == nil || seat.Batch == nil || *seat.Batch != 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no hand-added student at this seat"})
		}
		clearSeat(seat)
	} else {
		if seat.IsBroken {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot assign to a broken seat"})
		}
		if seat.RollNumber != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat already allocated to " + *seat.RollNumber})
		}
		assignSeat(out, seat, &req)
	}

	if err := h.Snapshots.Put(ctx, sessionID, out); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "snapshot store failed"})
	}
	return c.JSON(http.StatusOK, seat)
}

// assignSeat rewrites a free seat with a hand-added student.  Batch 0
// marks the seat as assigned outside the engine's fill.
func assignSeat(out *seating.Output, seat *seating.SeatView, req *seatPatch) {
	set := req.PaperSet
	if set == "" {
		set = patchPaperSet(out, seat.Row, seat.Col)
	}
	color := req.Color
	if color == "" {
		color = "#3B82F6"
	}
	external, roll := 0, req.RollNumber
	seat.Batch = &external
	seat.BatchLabel = req.BatchLabel
	seat.PaperSet = &set
	seat.RollNumber = &roll
	seat.StudentName = req.StudentName
	seat.IsUnallocated = false
	seat.Display = roll + set
	seat.CSSClass = "external set-" + set
	seat.Color = color
}

// clearSeat returns a patched seat to the unallocated state.
func clearSeat(seat *seating.SeatView) {
	seat.Batch = nil
	seat.BatchLabel = ""
	seat.PaperSet = nil
	seat.RollNumber = nil
	seat.StudentName = ""
	seat.IsUnallocated = true
	seat.Display = "UNALLOCATED"
	seat.CSSClass = "seat-unallocated"
	seat.Color = seating.ColorUnallocated
}

// patchPaperSet picks A or B for a hand-assigned seat: the opposite of an
// allocated horizontal neighbour when one exists, else column parity.
func patchPaperSet(out *seating.Output, row, col int) string {
	var sets []string
	for _, nc := range []int{col - 1, col + 1} {
		if nc < 0 || nc >= out.Metadata.Cols {
			continue
		}
		n := out.Seating[row][nc]
		if n.IsBroken || n.IsUnallocated || n.PaperSet == nil {
			continue
		}
		sets = append(sets, *n.PaperSet)
	}
	for _, s := range sets {
		if s == "A" {
			return "B"
		}
	}
	if len(sets) > 0 {
		return "A"
	}
	if col%2 == 0 {
		return "A"
	}
	return "B"
}

// flattenSeats converts the formatted grid into the per-seat rows stored
// beside the payload.
func flattenSeats(out *seating.Output) []repository.AllocationSeat {
	var seats []repository.AllocationSeat
	for _, row := range out.Seating {
		for _, v := range row {
			s := repository.AllocationSeat{
				RowIdx:   v.Row,
				ColIdx:   v.Col,
				Position: v.Position,
				Status:   seatStatus(v),
			}
			if v.Batch != nil {
				s.Batch.Int32, s.Batch.Valid = int32(*v.Batch), true
			}
			if v.PaperSet != nil {
				s.PaperSet.String, s.PaperSet.Valid = *v.PaperSet, true
			}
			if v.RollNumber != nil {
				s.RollNumber.String, s.RollNumber.Valid = *v.RollNumber, true
			}
			seats = append(seats, s)
		}
	}
	return seats
}

func seatStatus(v seating.SeatView) string {
	switch {
	case v.IsBroken:
		return "broken"
	case v.IsUnallocated:
		return "unallocated"
	case v.RollNumber != nil:
		return "allocated"
	}
	return "empty"
}
