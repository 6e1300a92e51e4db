// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client-side view of the remote document store.
//
// The primary abstraction is [RemoteStore], which decouples the sync core from
// the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPRemoteStore]) talking to cmd/server.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrNotFound] for 404, [ErrUnavailable] for 502/503/504).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-fuel-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore is a document database addressed by collection and document id.
// The remote side attaches its own timestamps to every write.
type RemoteStore interface {
	// Create stores fields as a new document in collection and returns the
	// document id. When fields carries a string "id", the remote uses it and a
	// repeated create with the same id is a no-op.
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Update merges patch into the existing document. Returns [ErrNotFound]
	// (wrapped) when the document does not exist.
	Update(ctx context.Context, collection, id string, patch map[string]any) error

	// Read fetches a document. found is false when it does not exist.
	Read(ctx context.Context, collection, id string) (doc models.Document, found bool, err error)

	// Ping checks that the remote is reachable.
	Ping(ctx context.Context) error
}
