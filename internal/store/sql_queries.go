// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-fuel-sync/models"
)

const (
	kvTable        = "kv_store"
	fillsTable     = "fills"
	documentsTable = "documents"
)

var (
	// sqlite uses ? placeholders, postgres uses $n.
	sqliteBuilder   = sq.StatementBuilder.PlaceholderFormat(sq.Question)
	postgresBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	fillsColumns = []string{
		"id", "user_id", "odo", "price", "amount", "total", "created_at", "updated_at",
	}
	documentColumns = []string{
		"collection", "id", "fields", "created_at", "updated_at", "synced_at",
	}
)

// ── kv_store ─────────────────────────────────────────────────────────────────

func buildGetValueQuery(key string) (string, []any, error) {
	return sqliteBuilder.
		Select("value").
		From(kvTable).
		Where(sq.Eq{"key": key}).
		ToSql()
}

func buildSetValueQuery(key, value string, at time.Time) (string, []any, error) {
	return sqliteBuilder.
		Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, value, at).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
}

// ── fills ────────────────────────────────────────────────────────────────────

func buildSaveEntryQuery(e models.FuelEntry) (string, []any, error) {
	return sqliteBuilder.
		Insert(fillsTable).
		Columns(fillsColumns...).
		Values(e.ID, e.UserID, e.Odometer, e.Price, e.Amount, e.Total, e.CreatedAt, e.UpdatedAt).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			odo = excluded.odo,
			price = excluded.price,
			amount = excluded.amount,
			total = excluded.total,
			updated_at = excluded.updated_at`).
		ToSql()
}

func buildGetEntryQuery(id string) (string, []any, error) {
	return sqliteBuilder.
		Select(fillsColumns...).
		From(fillsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildGetAllEntriesQuery(userID string) (string, []any, error) {
	return sqliteBuilder.
		Select(fillsColumns...).
		From(fillsTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
		ToSql()
}

func buildLatestEntryQuery(userID string) (string, []any, error) {
	return sqliteBuilder.
		Select(fillsColumns...).
		From(fillsTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
}

// ── documents ────────────────────────────────────────────────────────────────

func buildCreateDocumentQuery(doc models.Document) (string, []any, error) {
	fields, err := json.Marshal(doc.Fields)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrEncodingValue, err)
	}

	return postgresBuilder.
		Insert(documentsTable).
		Columns(documentColumns...).
		Values(doc.Collection, doc.ID, string(fields), doc.CreatedAt, doc.UpdatedAt, doc.SyncedAt).
		Suffix("ON CONFLICT (collection, id) DO NOTHING").
		ToSql()
}

func buildUpdateDocumentQuery(collection, id string, patch map[string]any, at time.Time) (string, []any, error) {
	fields, err := json.Marshal(patch)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrEncodingValue, err)
	}

	return postgresBuilder.
		Update(documentsTable).
		Set("fields", sq.Expr("fields || ?::jsonb", string(fields))).
		Set("updated_at", at).
		Set("synced_at", at).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
}

func buildReadDocumentQuery(collection, id string) (string, []any, error) {
	return postgresBuilder.
		Select(documentColumns...).
		From(documentsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
}
