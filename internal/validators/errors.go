package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidUserID     = errors.New("invalid user ID")
	ErrInvalidOdometer   = errors.New("odometer must not be negative")
	ErrInvalidPrice      = errors.New("price must be positive")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidTotal      = errors.New("total must not be negative")
	ErrNoFieldsToUpdate  = errors.New("at least one field must be provided for update")
	ErrInvalidCollection = errors.New("invalid collection name")
	ErrEmptyFields       = errors.New("document fields cannot be empty")
)
