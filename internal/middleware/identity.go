package middleware

// identity.go holds the helper the cache and rate limiter use to key
// requests by caller.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Guest is the identity used for unauthenticated requests.
const Guest = "guest"

// userID returns the authenticated user's id as a string, or Guest.
func userID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case uint64:
		if v != 0 {
			return strconv.FormatUint(v, 10)
		}
	case string:
		if v != "" {
			return v
		}
	}
	return Guest
}
