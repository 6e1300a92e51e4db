package validators

import (
	"context"
	"math"
	"regexp"

	"github.com/MKhiriev/go-fuel-sync/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	FieldID         = "id"
	FieldUserID     = "user_id"
	FieldOdometer   = "odo"
	FieldPrice      = "price"
	FieldAmount     = "amount"
	FieldTotal      = "total"
	FieldCollection = "collection"
	FieldFields     = "fields"
)

var collectionName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,63}$`)

// FuelValidator implements the Validator interface for fuel entries, entry
// patches, settings updates and remote documents.
type FuelValidator struct {
}

// NewFuelValidator constructs a new FuelValidator and returns it as the
// Validator interface.
func NewFuelValidator() Validator {
	return &FuelValidator{}
}

// Validate dispatches on the dynamic type of obj. Both value and pointer forms
// are accepted.
//
// Supported types:
//   - models.FuelEntry / *models.FuelEntry
//   - models.EntryPatch / *models.EntryPatch
//   - models.SettingsUpdate / *models.SettingsUpdate
//   - models.Document / *models.Document
//
// Returns ErrUnsupportedType for anything else.
func (v *FuelValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.FuelEntry:
		return v.validateEntry(ctx, value, fields...)
	case *models.FuelEntry:
		return v.validateEntry(ctx, *value, fields...)

	case models.EntryPatch:
		return v.validatePatch(ctx, value)
	case *models.EntryPatch:
		return v.validatePatch(ctx, *value)

	case models.SettingsUpdate:
		return v.validateSettingsUpdate(ctx, value)
	case *models.SettingsUpdate:
		return v.validateSettingsUpdate(ctx, *value)

	case models.Document:
		return v.validateDocument(ctx, value, fields...)
	case *models.Document:
		return v.validateDocument(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validateEntry validates a fuel entry.
//
// Default fields: UserID, Odometer, Price, Amount, Total. The id is only
// checked when FieldID is requested, since new entries get theirs assigned
// after validation.
func (v *FuelValidator) validateEntry(_ context.Context, entry models.FuelEntry, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUserID, FieldOdometer, FieldPrice, FieldAmount, FieldTotal}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if entry.ID == "" {
				return ErrInvalidID
			}
		case FieldUserID:
			if entry.UserID == "" {
				return ErrInvalidUserID
			}
		case FieldOdometer:
			if !validNumber(entry.Odometer) || entry.Odometer < 0 {
				return ErrInvalidOdometer
			}
		case FieldPrice:
			if !validNumber(entry.Price) || entry.Price <= 0 {
				return ErrInvalidPrice
			}
		case FieldAmount:
			if !validNumber(entry.Amount) || entry.Amount <= 0 {
				return ErrInvalidAmount
			}
		case FieldTotal:
			if !validNumber(entry.Total) || entry.Total < 0 {
				return ErrInvalidTotal
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validatePatch requires at least one field and applies the entry rules to
// every field present.
func (v *FuelValidator) validatePatch(_ context.Context, patch models.EntryPatch) error {
	if patch.IsEmpty() {
		return ErrNoFieldsToUpdate
	}
	if patch.Odometer != nil && (!validNumber(*patch.Odometer) || *patch.Odometer < 0) {
		return ErrInvalidOdometer
	}
	if patch.Price != nil && (!validNumber(*patch.Price) || *patch.Price <= 0) {
		return ErrInvalidPrice
	}
	if patch.Amount != nil && (!validNumber(*patch.Amount) || *patch.Amount <= 0) {
		return ErrInvalidAmount
	}
	if patch.Total != nil && (!validNumber(*patch.Total) || *patch.Total < 0) {
		return ErrInvalidTotal
	}
	return nil
}

func (v *FuelValidator) validateSettingsUpdate(_ context.Context, update models.SettingsUpdate) error {
	if update.UserID == "" {
		return ErrInvalidUserID
	}
	return nil
}

// validateDocument validates a document received by the remote store.
//
// Default fields: Collection, Fields.
func (v *FuelValidator) validateDocument(_ context.Context, doc models.Document, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldCollection, FieldFields}
	}

	for _, f := range fields {
		switch f {
		case FieldCollection:
			if !collectionName.MatchString(doc.Collection) {
				return ErrInvalidCollection
			}
		case FieldID:
			if doc.ID == "" {
				return ErrInvalidID
			}
		case FieldFields:
			if len(doc.Fields) == 0 {
				return ErrEmptyFields
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validNumber(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
