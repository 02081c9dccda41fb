// ABOUTME: Sentinel errors shared by the catalog and log stores.
// ABOUTME: Callers match them with errors.Is; SQLite constraint failures are mapped here.
package storage

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a lookup by id or name matches no row.
	ErrNotFound = errors.New("not found")
	// ErrUnresolvedReference is returned when a named equipment, muscle group or
	// exercise does not exist in the target store.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrConstraintViolation is returned for duplicate unique names and invalid rows.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrMalformedInput is returned when a required field such as a date is missing or unparsable.
	ErrMalformedInput = errors.New("malformed input")
)

// modernc does not export typed constraint errors, so match on the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isCheckViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "CHECK constraint failed")
}
