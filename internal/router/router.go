package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/hammers-calendar/internal/handler"
	"github.com/iliyamo/hammers-calendar/internal/middleware"
	"github.com/iliyamo/hammers-calendar/internal/model"
)

// RegisterRoutes registers routes that do not require authentication: the
// health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring hit this to verify the service is up.
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterCalendar registers the read endpoints the calendar front-end
// loads on every navigation.  Identity is optional so that guests can
// browse; responses are cached per user and rate limited.
//
// The front-end posts to the .json endpoints, so both verbs are accepted.
func RegisterCalendar(e *echo.Echo, h *handler.CalendarHandler, jwtSecret string, mws ...echo.MiddlewareFunc) {
	chain := append([]echo.MiddlewareFunc{middleware.OptionalJWT(jwtSecret)}, mws...)
	verbs := []string{http.MethodGet, http.MethodPost}

	// Routes carry their middleware directly; an empty-prefix group would
	// put its chain in front of every unmatched path.
	e.Match(verbs, "/base.json", h.Base, chain...)
	e.Match(verbs, "/seasons.json", h.Seasons, chain...)
	e.Match(verbs, "/:season/games.json", h.ListGames, chain...)
	e.GET("/game/:id", h.Game, chain...)
	e.GET("/v1/games/search", h.Search, chain...)
}

// RegisterAttendance registers the attend/unattend toggles.  Both need a
// signed-in USER or ADMIN.
func RegisterAttendance(e *echo.Echo, h *handler.AttendanceHandler, jwtSecret string, mws ...echo.MiddlewareFunc) {
	chain := append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	}, mws...)

	e.PUT("/attend/:id", h.Attend, chain...)
	e.PUT("/unattend/:id", h.Unattend, chain...)
}

// RegisterAuth registers all authentication-related routes.  Token
// exchange lives under /v1/auth, the caller's own resources under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, att *handler.AttendanceHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a refresh token in the body or an access token,
	// so identity is optional here.
	g.POST("/logout", a.Logout, middleware.OptionalJWT(jwtSecret))

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)
	auth.GET("/me", a.Me)
	auth.GET("/me/attendance", att.Summary)
}

// RegisterAdmin registers the ADMIN-only maintenance endpoints: adding
// users and loading fixtures.
func RegisterAdmin(e *echo.Echo, a *handler.AuthHandler, cal *handler.CalendarHandler, jwtSecret string) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/users", a.CreateUser)
	g.POST("/games", cal.SaveGame)
}
