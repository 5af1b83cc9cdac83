package errors

// Postgres classification: SQLSTATE to ErrorCode mapping and retry rules

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlstateUniqueViolation     = "23505"
	sqlstateForeignKeyViolation = "23503"
	sqlstateNotNullViolation    = "23502"
	sqlstateCheckViolation      = "23514"
	sqlstateStringTruncation    = "22001"
	sqlstateInvalidText         = "22P02"

	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
	sqlstateLockNotAvailable     = "55P03"
	sqlstateReadOnlyTransaction  = "25006"
	sqlstateCannotConnectNow     = "57P03" // server still starting up
)

// DBErrorCode maps a Postgres error onto an ErrorCode. !ok means err carries
// no PgError and the caller should classify it some other way
func DBErrorCode(err error) (ErrorCode, bool) {
	var pgErr *pgconn.PgError
	if !stderrs.As(err, &pgErr) {
		return ErrorCodeUnknown, false
	}

	switch pgErr.Code {
	case sqlstateUniqueViolation:
		return ErrorCodeDuplicateKey, true
	case sqlstateForeignKeyViolation:
		// input referenced a row that is not there
		return ErrorCodeInvalidArgument, true
	case sqlstateNotNullViolation, sqlstateCheckViolation:
		return ErrorCodeValidation, true
	case sqlstateStringTruncation, sqlstateInvalidText:
		return ErrorCodeInvalidArgument, true
	case sqlstateSerializationFailure, sqlstateDeadlockDetected, sqlstateLockNotAvailable:
		return ErrorCodeDB, true
	case sqlstateReadOnlyTransaction, sqlstateCannotConnectNow:
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgresf wraps a database error with its mapped code and a formatted
// message. nil stays nil so callers can wrap unconditionally
func FromPostgresf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, fmt.Sprintf(format, a...))
}

// IsRetryable reports whether a database error represents transient
// contention worth retrying. Local cancellations never are; the caller
// owns any higher-level retry decision there
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	root := Root(err)

	var pgErr *pgconn.PgError
	if stderrs.As(root, &pgErr) {
		switch pgErr.Code {
		case sqlstateSerializationFailure, sqlstateDeadlockDetected, sqlstateLockNotAvailable:
			return true
		}
		return false
	}

	// pgx surfaces some contention only as text, notably on commit
	s := strings.ToLower(root.Error())
	switch {
	case strings.Contains(s, "commit unexpectedly resulted in rollback"),
		strings.Contains(s, "deadlock detected"),
		strings.Contains(s, "could not serialize access"),
		strings.Contains(s, "serialization failure"),
		strings.Contains(s, "canceling statement due to statement timeout"),
		strings.Contains(s, "canceling statement due to lock timeout"),
		strings.Contains(s, "could not obtain lock on row"),
		strings.Contains(s, "terminating connection due to administrator command"):
		return true
	}
	return false
}
