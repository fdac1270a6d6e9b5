package handler

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/blazex/seat-allocation/internal/repository"
	"github.com/blazex/seat-allocation/internal/roster"
)

// rosterFile opens the uploaded multipart file under the "file" field and
// parses it.  Both preview and commit share this path so what the exam
// cell previews is exactly what gets stored.
func rosterFile(c echo.Context) (string, *roster.Result, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	src, err := fh.Open()
	if err != nil {
		return "", nil, err
	}
	defer src.Close()

	res, err := roster.Parse(src)
	if err != nil {
		return "", nil, err
	}
	return fh.Filename, res, nil
}

func batchParam(c echo.Context) (int, bool) {
	b, err := strconv.Atoi(c.Param("batch"))
	return b, err == nil && b > 0
}

// PreviewRoster handles POST /v1/sessions/:id/roster/:batch/preview.  It
// parses the file and returns entries plus warnings without persisting
// anything.
func (h *SeatingHandler) PreviewRoster(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	batch, ok := batchParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid batch"})
	}
	if _, err := h.Sessions.GetByID(c.Request().Context(), sessionID); err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	filename, res, err := rosterFile(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable roster file"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"filename": filename,
		"batch":    batch,
		"count":    len(res.Entries),
		"entries":  res.Entries,
		"warnings": res.Warnings,
	})
}

// CommitRoster handles POST /v1/sessions/:id/roster/:batch.  It replaces
// the batch's previous upload with the parsed entries.
func (h *SeatingHandler) CommitRoster(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	batch, ok := batchParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid batch"})
	}
	session, err := h.Sessions.GetByID(c.Request().Context(), sessionID)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if batch > session.NumBatches {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "batch exceeds session's num_batches"})
	}

	filename, res, err := rosterFile(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable roster file"})
	}
	if len(res.Entries) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roster contains no students", "warnings": res.Warnings})
	}

	students := make([]repository.Student, 0, len(res.Entries))
	for _, e := range res.Entries {
		s := repository.Student{Batch: batch, Roll: e.Roll}
		if e.Name != "" {
			s.Name = sql.NullString{String: e.Name, Valid: true}
		}
		students = append(students, s)
	}
	up := &repository.Upload{SessionID: sessionID, Batch: batch, Filename: filename}
	if err := h.Students.ReplaceBatch(c.Request().Context(), up, students); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save roster failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"upload_id": up.ID,
		"batch":     batch,
		"filename":  filename,
		"count":     up.RowCount,
		"warnings":  res.Warnings,
	})
}

// ListUploads handles GET /v1/sessions/:id/uploads.
func (h *SeatingHandler) ListUploads(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	uploads, err := h.Students.ListUploads(c.Request().Context(), sessionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	type uploadResp struct {
		ID        uint64 `json:"id"`
		Batch     int    `json:"batch"`
		Filename  string `json:"filename"`
		RowCount  int    `json:"row_count"`
		CreatedAt string `json:"created_at"`
	}
	items := make([]uploadResp, 0, len(uploads))
	for _, u := range uploads {
		items = append(items, uploadResp{ID: u.ID, Batch: u.Batch, Filename: u.Filename, RowCount: u.RowCount, CreatedAt: u.CreatedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(items), "items": items})
}
