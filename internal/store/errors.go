package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrPersistence wraps any failure to read or write local key-value
	// state. It is logged and swallowed by the sync core.
	ErrPersistence = errors.New("local persistence failed")

	// ErrEntryNotFound is returned when a fuel entry with the requested id
	// does not exist in the local journal.
	ErrEntryNotFound = errors.New("fuel entry was not found")

	// ErrDocumentNotFound is returned when a read or update targets a
	// (collection, id) pair that does not exist in the document store.
	ErrDocumentNotFound = errors.New("document was not found")

	// ErrTransient marks a database failure classified as retryable
	// (connection loss, deadlock, serialization failure).
	ErrTransient = errors.New("transient database error")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing an INSERT or UPDATE
	// fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when multi-row iteration fails.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingValue is returned when a value cannot be serialized for
	// storage.
	ErrEncodingValue = errors.New("failed to encode value")
)
