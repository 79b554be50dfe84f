package sql

import (
	"errors"
	"strings"
)

// errorCoder is implemented by pq.Error and modernc.org/sqlite errors.
type errorCoder interface {
	Code() string
}

// errorNumberer is implemented by drivers exposing numeric error codes.
type errorNumberer interface {
	Number() uint16
}

// sqlStateError is implemented by errors exposing SQLSTATE codes.
type sqlStateError interface {
	SQLState() string
}

const (
	pgUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
	sqliteUniqueFailure  = "UNIQUE constraint failed"
	sqlitePrimaryFailure = "PRIMARY KEY constraint failed"
)

// isUniqueConstraintError reports if the error resulted from a uniqueness
// constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == pgUniqueViolation {
		return true
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == pgUniqueViolation {
		return true
	}
	if e, ok := asError[errorNumberer](err); ok && e.Number() == mysqlDuplicateEntry {
		return true
	}
	// Fallback to string matching for drivers that don't implement interfaces
	return containsAny(err.Error(),
		"Error 1062",
		"violates unique constraint",
		sqliteUniqueFailure,
		sqlitePrimaryFailure,
	)
}

func asError[T any](err error) (T, bool) {
	var target T
	if errors.As(err, &target) {
		return target, true
	}
	return target, false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
