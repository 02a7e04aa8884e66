package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlStateUniqueViolation      = "23505"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
)

// IsUniqueViolation reports whether the provided error references a Postgres
// unique violation constraint. When constraintName is provided, the helper looks
// for the constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation {
		return constraintName == "" || pgErr.ConstraintName == constraintName
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// IsDeadlock reports a 40P01 abort.
func IsDeadlock(err error) bool {
	return hasSQLState(err, sqlStateDeadlockDetected)
}

// IsSerializationFailure reports a 40001 abort.
func IsSerializationFailure(err error) bool {
	return hasSQLState(err, sqlStateSerializationFailure)
}

// IsLockTimeout reports a 55P03 abort raised when lock_timeout expires.
func IsLockTimeout(err error) bool {
	return hasSQLState(err, sqlStateLockNotAvailable)
}

// IsConflict reports whether err is a concurrency outcome the caller may
// retry.
func IsConflict(err error) bool {
	return IsUniqueViolation(err, "") ||
		IsDeadlock(err) ||
		IsSerializationFailure(err) ||
		IsLockTimeout(err)
}

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
