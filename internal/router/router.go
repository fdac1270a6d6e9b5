package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework handles routing

	"github.com/blazex/seat-allocation/internal/handler"    // handlers implementing the endpoints
	"github.com/blazex/seat-allocation/internal/middleware" // JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh_token body or an Authorization header and
	// does not require the JWT middleware.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "STAFF"))
	auth.GET("/me", a.Me)
}

// RegisterSeating registers the classroom, session, roster, seating and
// export endpoints.  Reads are open to both roles; writes that change
// rooms, rosters or saved allocations require ADMIN.
func RegisterSeating(e *echo.Echo, h *handler.SeatingHandler, jwtSecret string) {
	read := e.Group("/v1")
	read.Use(middleware.JWTAuth(jwtSecret))
	read.Use(middleware.RequireRole("ADMIN", "STAFF"))

	read.GET("/classrooms", h.ListClassrooms)
	read.GET("/classrooms/:id", h.GetClassroom)
	read.GET("/classrooms/:id/sessions", h.ListSessions)
	read.GET("/sessions/:id/uploads", h.ListUploads)
	read.GET("/sessions/:id/plan", h.GetPlan)
	read.GET("/sessions/:id/seat", h.FindSeat)
	read.GET("/sessions/:id/export.xlsx", h.ExportExcel)
	// Stateless engine runs; nothing is stored, so STAFF may use them
	// while preparing a layout.
	read.POST("/seating/preview", h.Preview)
	read.POST("/seating/constraints-status", h.ConstraintsStatus)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))

	admin.POST("/classrooms", h.CreateClassroom)
	admin.PUT("/classrooms/:id", h.UpdateClassroom)
	admin.DELETE("/classrooms/:id", h.DeleteClassroom)
	admin.POST("/classrooms/:id/sessions", h.CreateSession)
	admin.DELETE("/sessions/:id", h.DeleteSession)
	admin.POST("/sessions/:id/roster/:batch/preview", h.PreviewRoster)
	admin.POST("/sessions/:id/roster/:batch", h.CommitRoster)
	admin.POST("/sessions/:id/generate", h.GenerateForSession)
	admin.PATCH("/sessions/:id/seat", h.PatchSeat)
	admin.POST("/sessions/:id/save", h.SaveAllocation)
	admin.DELETE("/sessions/:id/allocation", h.ResetAllocation)
}
