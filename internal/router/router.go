// Package router registers the HTTP routes of the reservation API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-reservation/internal/handler"
	"github.com/iliyamo/property-reservation/internal/middleware"
	"github.com/iliyamo/property-reservation/internal/model"
)

// RegisterRoutes registers the unauthenticated health check.
func RegisterRoutes(e *echo.Echo, h handler.Health) {
	e.GET("/healthz", h.Check)
}

// RegisterAuth registers /v1/auth and the protected /v1/me.  Rate limiting,
// when configured, is applied by the caller on the /v1 group.
func RegisterAuth(v1 *echo.Group, a *handler.AuthHandler, jwtSecret string) {
	g := v1.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	v1.GET("/me", a.Me, middleware.JWTAuth(jwtSecret), staffOnly())
}

func staffOnly() echo.MiddlewareFunc {
	return middleware.RequireRole(model.RoleAdmin, model.RoleStaff)
}
