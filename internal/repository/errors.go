// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios and map each to its
// HTTP status at the boundary.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a record does not exist. Handlers should
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique
// constraint, such as a farm type name or a farmer national_id that already
// exists. Handlers should translate this into an HTTP 409 response.
var ErrDuplicate = errors.New("duplicate")

// ErrForeignKey is returned when an insert references a farm type or crop
// that does not exist. Handlers should translate this into an HTTP 400
// response.
var ErrForeignKey = errors.New("unknown reference")

// isDuplicateErr reports whether a MySQL error is a duplicate-key violation
// (error 1062). The driver does not expose a typed error for this, so the
// code is matched in the message the way every repository in this codebase
// does it.
func isDuplicateErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isForeignKeyErr reports whether a MySQL error is a foreign-key violation:
// 1452 for inserts referencing a missing parent, 1451 for deletes blocked by
// child rows.
func isForeignKeyErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "1452") || strings.Contains(err.Error(), "1451")
}
