package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-fuel-sync/internal/validators"
	"github.com/MKhiriev/go-fuel-sync/models"
)

type DocumentValidationService struct {
	inner     DocumentService
	validator validators.Validator
}

func NewDocumentValidationService() DocumentServiceWrapper {
	return &DocumentValidationService{
		validator: validators.NewFuelValidator(),
	}
}

func (v *DocumentValidationService) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	doc := models.Document{Collection: collection, Fields: fields}
	if err := v.validator.Validate(ctx, doc); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if id, ok := fields["id"]; ok {
		if s, isString := id.(string); !isString || s == "" {
			return "", fmt.Errorf("%w: id must be a non-empty string", ErrInvalidDataProvided)
		}
	}

	return v.inner.Create(ctx, collection, fields)
}

func (v *DocumentValidationService) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	doc := models.Document{ID: id, Collection: collection, Fields: patch}
	if err := v.validator.Validate(ctx, doc, validators.FieldCollection, validators.FieldID, validators.FieldFields); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Update(ctx, collection, id, patch)
}

func (v *DocumentValidationService) Read(ctx context.Context, collection, id string) (models.Document, error) {
	doc := models.Document{ID: id, Collection: collection}
	if err := v.validator.Validate(ctx, doc, validators.FieldCollection, validators.FieldID); err != nil {
		return models.Document{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Read(ctx, collection, id)
}

func (v *DocumentValidationService) Wrap(inner DocumentService) DocumentService {
	v.inner = inner
	return v
}
