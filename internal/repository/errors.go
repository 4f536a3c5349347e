// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow handlers to distinguish
// between failure scenarios without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrGameNotFound is returned when a game id does not exist.  Handlers
// translate it into an HTTP 404 response.
var ErrGameNotFound = errors.New("game not found")

// ErrForbidden is returned when the caller attempts an operation their
// account does not allow (e.g. a deactivated user).  Handlers translate it
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrTokenRevoked is returned by RevokeByHash when the token was already
// revoked, typically by a concurrent refresh presenting the same token.
var ErrTokenRevoked = errors.New("refresh token already revoked")

// isDuplicate reports whether err is a MySQL duplicate-key error (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
