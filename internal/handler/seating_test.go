package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blazex/seat-allocation/internal/seating"
	"github.com/blazex/seat-allocation/internal/snapshot"
)

// previewHandler builds a handler with only the dependencies the
// stateless endpoints touch.
func previewHandler() *SeatingHandler {
	return &SeatingHandler{Snapshots: snapshot.New(nil, time.Minute)}
}

func postJSON(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestPreviewReturnsFormattedPlan(t *testing.T) {
	rec := postJSON(t, previewHandler().Preview,
		`{"rows":3,"cols":4,"num_batches":2,"broken_seats":[[0,0]]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out seating.Output
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 3, out.Metadata.Rows)
	assert.Equal(t, 4, out.Metadata.Cols)
	assert.Equal(t, "column_major", out.Metadata.Strategy)
	assert.True(t, out.Validation.IsValid)
	assert.Equal(t, 1, out.Summary.BrokenSeatsCount)
	assert.True(t, out.Seating[0][0].IsBroken)
}

func TestPreviewRejectsMalformedBody(t *testing.T) {
	rec := postJSON(t, previewHandler().Preview, `{"rows":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewReportsInitErrors(t *testing.T) {
	rec := postJSON(t, previewHandler().Preview, `{"rows":0,"cols":4,"num_batches":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out seating.Output
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.False(t, out.Validation.IsValid)
	assert.NotEmpty(t, out.Validation.Errors)
}

func TestConstraintsStatusEndpoint(t *testing.T) {
	rec := postJSON(t, previewHandler().ConstraintsStatus,
		`{"rows":4,"cols":4,"num_batches":2,"batch_student_counts":{"1":5,"2":5}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		IsValid bool                 `json:"is_valid"`
		Status  []seating.Constraint `json:"constraints_status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsValid)
	require.Len(t, resp.Status, 5)

	byName := map[string]seating.Constraint{}
	for _, s := range resp.Status {
		byName[s.Name] = s
	}
	assert.True(t, byName["Batch Quota Limits"].Applied)
	assert.True(t, byName["Batch Quota Limits"].Satisfied)
}

func TestPlanRequestOverrides(t *testing.T) {
	rows, cols, n := 5, 6, 2
	off := false
	req := &planRequest{Rows: &rows, Cols: &cols, NumBatches: &n, BatchByColumn: &off}

	cfg := req.toConfig()
	assert.Equal(t, 5, cfg.Rows)
	assert.Equal(t, 6, cfg.Cols)
	assert.False(t, cfg.BatchByColumn)

	// Absent batch_by_column keeps the column-major default.
	cfg = (&planRequest{Rows: &rows, Cols: &cols, NumBatches: &n}).toConfig()
	assert.True(t, cfg.BatchByColumn)
}

func TestPatchSeatRequiresPlan(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"row":0,"col":0,"roll_number":"EXT9001"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, previewHandler().PatchSeat(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSeatPatchAssignAndClear(t *testing.T) {
	// 2x2 single batch, quota 3: fill order leaves (1,1) unallocated.
	out := seating.New(seating.Config{
		Rows: 2, Cols: 2, NumBatches: 1, BatchByColumn: true,
		AllowAdjacentSameBatch: true,
		BatchStudentCounts:     map[int]int{1: 3},
	}).Generate().Format()
	seat := &out.Seating[1][1]
	require.True(t, seat.IsUnallocated)

	assignSeat(out, seat, &seatPatch{RollNumber: "EXT9001", StudentName: "Walk In", BatchLabel: "External"})
	require.NotNil(t, seat.RollNumber)
	assert.Equal(t, "EXT9001", *seat.RollNumber)
	require.NotNil(t, seat.Batch)
	assert.Equal(t, 0, *seat.Batch)
	assert.False(t, seat.IsUnallocated)
	// Left neighbour (1,0) holds set B, so the patched seat gets A.
	require.NotNil(t, seat.PaperSet)
	assert.Equal(t, "A", *seat.PaperSet)
	assert.Equal(t, "EXT9001A", seat.Display)
	assert.Equal(t, "external set-A", seat.CSSClass)

	clearSeat(seat)
	assert.Nil(t, seat.RollNumber)
	assert.Nil(t, seat.Batch)
	assert.True(t, seat.IsUnallocated)
	assert.Equal(t, "UNALLOCATED", seat.Display)
	assert.Equal(t, seating.ColorUnallocated, seat.Color)
}

func TestSeatPatchPaperSetColumnParity(t *testing.T) {
	// Quota 0 leaves every seat unallocated, so no neighbour decides.
	out := seating.New(seating.Config{
		Rows: 1, Cols: 3, NumBatches: 1, BatchByColumn: true,
		AllowAdjacentSameBatch: true,
		BatchStudentCounts:     map[int]int{1: 0},
	}).Generate().Format()

	assert.Equal(t, "A", patchPaperSet(out, 0, 0))
	assert.Equal(t, "B", patchPaperSet(out, 0, 1))
	assert.Equal(t, "A", patchPaperSet(out, 0, 2))
}

func TestPlanRequestLayeredMerge(t *testing.T) {
	// Stored session options first, request overrides second: decoding
	// into the same struct only touches the fields each layer provides.
	req := &planRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"rows":4,"cols":6,"num_batches":2,"seed":7}`), req))
	require.NoError(t, json.Unmarshal([]byte(`{"num_batches":3}`), req))

	cfg := req.toConfig()
	assert.Equal(t, 4, cfg.Rows)
	assert.Equal(t, 6, cfg.Cols)
	assert.Equal(t, 3, cfg.NumBatches)
	assert.Equal(t, int64(7), cfg.Seed)
}
