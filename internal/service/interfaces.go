package service

import (
	"context"

	"github.com/MKhiriev/go-fuel-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock -exclude_interfaces=DocumentServiceWrapper

// DocumentService is the server side of the remote document store.
type DocumentService interface {
	// Create stores fields as a new document and returns its id. A string
	// "id" field is used as the document id; otherwise one is generated.
	// Creating an existing id is a no-op that returns the same id.
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Update merges patch into a document. Returns store.ErrDocumentNotFound
	// (wrapped) when it does not exist.
	Update(ctx context.Context, collection, id string, patch map[string]any) error

	// Read returns a document or store.ErrDocumentNotFound (wrapped).
	Read(ctx context.Context, collection, id string) (models.Document, error)
}

// DocumentServiceWrapper defines middleware composition for DocumentService.
// Implementations wrap an existing DocumentService to add behavior such as
// validation.
type DocumentServiceWrapper interface {
	Wrap(DocumentService) DocumentService
}

// AppInfoService reports build information of the running server.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
