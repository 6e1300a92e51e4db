package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification tells whether a failed database operation should be
// retried or abandoned.
type ErrorClassification int

const (
	// NonRetryable is the default for unrecognised errors, constraint
	// violations, syntax errors and data exceptions.
	NonRetryable ErrorClassification = iota

	// Retryable marks failures that may succeed if attempted again (e.g.
	// after a transient connection loss or a deadlock rollback). The
	// document API turns them into 503 so sync clients back off and retry.
	Retryable
)

// PostgresErrorClassifier implements [ErrorClassificator] for PostgreSQL by
// inspecting the pgconn error code returned by the pgx driver.
type PostgresErrorClassifier struct{}

// NewPostgresErrorClassifier constructs a [PostgresErrorClassifier].
func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify implements [ErrorClassificator]. A nil error or one that is not a
// PostgreSQL driver error is [NonRetryable].
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	if err == nil {
		return NonRetryable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ClassifyPgError(pgErr)
	}

	return NonRetryable
}

// ClassifyPgError maps a *pgconn.PgError to an [ErrorClassification].
// See https://www.postgresql.org/docs/current/errcodes-appendix.html.
//
// Retryable codes:
//   - Class 08, connection exceptions (08000, 08003, 08006)
//   - Class 40, transaction rollback (40000, 40001, 40P01)
//   - Class 53, insufficient resources (53000, 53300)
//   - Class 57, cannot connect now (57P03)
//
// Anything else is [NonRetryable].
func ClassifyPgError(pgErr *pgconn.PgError) ErrorClassification {
	switch pgErr.Code {
	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure:
		return Retryable

	case pgerrcode.TransactionRollback,
		pgerrcode.SerializationFailure,
		pgerrcode.DeadlockDetected:
		return Retryable

	case pgerrcode.InsufficientResources,
		pgerrcode.TooManyConnections:
		return Retryable

	case pgerrcode.CannotConnectNow:
		return Retryable
	}

	return NonRetryable
}
