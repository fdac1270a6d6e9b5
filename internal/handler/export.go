package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blazex/seat-allocation/internal/export"
	"github.com/blazex/seat-allocation/internal/repository"
	"github.com/blazex/seat-allocation/internal/seating"
	"github.com/blazex/seat-allocation/internal/snapshot"
)

// ExportExcel handles GET /v1/sessions/:id/export.xlsx.  The current
// snapshot is rendered when present, otherwise the saved allocation; a
// session with neither has nothing to print.
func (h *SeatingHandler) ExportExcel(c echo.Context) error {
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
		if err != snapshot.ErrNotFound {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "snapshot load failed"})
		}
		alloc, err := h.Allocations.GetBySession(ctx, sessionID)
		if err != nil {
			if err == repository.ErrAllocationNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "no plan to export"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		out = new(seating.Output)
		if err := json.Unmarshal([]byte(alloc.PayloadJSON), out); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "decode saved plan failed"})
		}
	}

	room, err := h.Classrooms.GetByID(ctx, session.ClassroomID)
	roomName := ""
	if err == nil {
		roomName = room.Name
	}
	title := fmt.Sprintf("%s - %s - %s", session.Title, roomName, session.ExamDate)

	f, err := export.Excel(title, out)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render workbook failed"})
	}
	defer func() { _ = f.Close() }()

	filename := fmt.Sprintf("seating-session-%d.xlsx", sessionID)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	_, err = f.WriteTo(c.Response())
	return err
}
