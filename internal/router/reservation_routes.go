package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-reservation/internal/handler"
	"github.com/iliyamo/property-reservation/internal/middleware"
)

// RegisterReservations mounts the reservation endpoints behind JWT auth and
// the staff role check.  cache wraps the read routes and may be nil.
func RegisterReservations(v1 *echo.Group, h *handler.ReservationHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	auth := []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret), staffOnly()}
	reads := auth
	if cache != nil {
		reads = append(append([]echo.MiddlewareFunc{}, auth...), cache)
	}

	v1.POST("/reservations", h.Create, auth...)
	v1.GET("/reservations/:id", h.Get, reads...)
	v1.PATCH("/reservations/:id", h.Update, auth...)
	v1.PUT("/reservations/:id", h.Update, auth...)
	v1.DELETE("/reservations/:id", h.Delete, auth...)

	v1.GET("/properties/:id/reservations", h.List, reads...)
	v1.GET("/properties/:id/reservations/by-code/:code", h.ByCode, reads...)
	v1.GET("/properties/:id/rooms/available", h.AvailableRooms, reads...)
}
