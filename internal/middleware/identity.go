package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys populated by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// UserID returns the authenticated staff user's ID.
func UserID(c echo.Context) (uint64, bool) {
	switch t := c.Get(CtxUserID).(type) {
	case uint64:
		return t, t != 0
	case int64:
		return uint64(t), t > 0
	case int:
		return uint64(t), t > 0
	case float64:
		return uint64(t), t > 0
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, n != 0
		}
	}
	return 0, false
}

// Role returns the authenticated role or "".
func Role(c echo.Context) string {
	s, _ := c.Get(CtxRole).(string)
	return s
}

// actor names the caller for rate-limit keys: the user ID, or "anon".
func actor(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
