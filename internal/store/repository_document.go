// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/models"
)

// documentRepository is the PostgreSQL-backed [DocumentRepository]. Fields
// live in a jsonb column; updates merge the patch with the || operator.
type documentRepository struct {
	*DB
	logger *logger.Logger
}

// NewDocumentRepository constructs a [DocumentRepository] on db.
func NewDocumentRepository(db *DB, logger *logger.Logger) DocumentRepository {
	return &documentRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *documentRepository) Create(ctx context.Context, doc models.Document) error {
	log := logger.FromContext(ctx)

	query, args, err := buildCreateDocumentQuery(doc)
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.Create").
			Str("collection", doc.Collection).
			Msg("failed to create query")
		return err
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.Create").
			Str("collection", doc.Collection).
			Str("id", doc.ID).
			Msg("failed to insert document")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, r.classify(err))
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		log.Debug().
			Str("func", "documentRepository.Create").
			Str("collection", doc.Collection).
			Str("id", doc.ID).
			Msg("document already exists, create is a no-op")
	}

	return nil
}

func (r *documentRepository) Update(ctx context.Context, collection, id string, patch map[string]any, at time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdateDocumentQuery(collection, id, patch, at)
	if err != nil {
		return err
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.Update").
			Str("collection", collection).
			Str("id", id).
			Msg("failed to update document")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, r.classify(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrDocumentNotFound
	}

	return nil
}

func (r *documentRepository) Read(ctx context.Context, collection, id string) (models.Document, error) {
	query, args, err := buildReadDocumentQuery(collection, id)
	if err != nil {
		return models.Document{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		doc       models.Document
		rawFields []byte
		updatedAt sql.NullTime
		syncedAt  sql.NullTime
	)

	err = r.DB.QueryRowContext(ctx, query, args...).Scan(
		&doc.Collection,
		&doc.ID,
		&rawFields,
		&doc.CreatedAt,
		&updatedAt,
		&syncedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Document{}, ErrDocumentNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "documentRepository.Read").
			Str("collection", collection).
			Str("id", id).
			Msg("failed to read document")
		return models.Document{}, fmt.Errorf("%w: %w", ErrScanningRow, r.classify(err))
	}

	doc.Fields = make(map[string]any)
	if err = json.Unmarshal(rawFields, &doc.Fields); err != nil {
		return models.Document{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		doc.UpdatedAt = &t
	}
	if syncedAt.Valid {
		t := syncedAt.Time
		doc.SyncedAt = &t
	}

	return doc, nil
}
