package service

import (
	"context"
	"maps"
	"time"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
	"github.com/MKhiriev/go-fuel-sync/internal/utils"
	"github.com/MKhiriev/go-fuel-sync/models"
)

type documentService struct {
	repository store.DocumentRepository
	ids        *utils.UUIDGenerator
	now        func() time.Time

	logger *logger.Logger
}

func NewDocumentService(repository store.DocumentRepository, logger *logger.Logger) DocumentService {
	return &documentService{
		repository: repository,
		ids:        utils.NewUUIDGenerator(),
		now:        time.Now,
		logger:     logger,
	}
}

// Create stamps createdAt and syncedAt into the fields and the row.
func (d *documentService) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	fields = maps.Clone(fields)
	if fields == nil {
		fields = make(map[string]any)
	}

	id, _ := fields["id"].(string)
	if id == "" {
		id = d.ids.Generate()
	}
	now := d.now().UTC()
	fields["id"] = id
	fields["createdAt"] = now
	fields["syncedAt"] = now

	err := d.repository.Create(ctx, models.Document{
		ID:         id,
		Collection: collection,
		Fields:     fields,
		CreatedAt:  now,
		SyncedAt:   &now,
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

// Update stamps updatedAt and syncedAt. The id field cannot be patched.
func (d *documentService) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	patch = maps.Clone(patch)
	if patch == nil {
		patch = make(map[string]any)
	}
	delete(patch, "id")

	now := d.now().UTC()
	patch["updatedAt"] = now
	patch["syncedAt"] = now

	return d.repository.Update(ctx, collection, id, patch, now)
}

func (d *documentService) Read(ctx context.Context, collection, id string) (models.Document, error) {
	return d.repository.Read(ctx, collection, id)
}
