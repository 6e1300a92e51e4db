package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/models"
)

// entryRepository is the SQLite-backed [EntryRepository] over the fills
// table.
type entryRepository struct {
	*DB
	logger *logger.Logger
}

// NewEntryRepository constructs an [EntryRepository] on db.
func NewEntryRepository(db *DB, logger *logger.Logger) EntryRepository {
	return &entryRepository{
		DB:     db,
		logger: logger,
	}
}

// SaveEntry inserts entry or overwrites the tracked fields of an existing
// row with the same id.
func (r *entryRepository) SaveEntry(ctx context.Context, entry models.FuelEntry) error {
	log := logger.FromContext(ctx)

	query, args, err := buildSaveEntryQuery(entry)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "entryRepository.SaveEntry").
			Str("entry_id", entry.ID).
			Msg("failed to save fuel entry")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *entryRepository) GetEntry(ctx context.Context, id string) (models.FuelEntry, error) {
	query, args, err := buildGetEntryQuery(id)
	if err != nil {
		return models.FuelEntry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	entry, err := scanEntry(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if !errors.Is(err, ErrEntryNotFound) {
			logger.FromContext(ctx).Err(err).
				Str("func", "entryRepository.GetEntry").
				Str("entry_id", id).
				Msg("failed to get fuel entry")
		}
		return models.FuelEntry{}, err
	}

	return entry, nil
}

// GetAllEntries returns the user's entries ordered by creation time.
func (r *entryRepository) GetAllEntries(ctx context.Context, userID string) ([]models.FuelEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetAllEntriesQuery(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "entryRepository.GetAllEntries").
			Str("user_id", userID).
			Msg("failed to execute query for getting fuel entries")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.FuelEntry, 0, 50)
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "entryRepository.GetAllEntries").
				Str("user_id", userID).
				Msg("failed to scan fuel entry row")
			return nil, scanErr
		}
		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "entryRepository.GetAllEntries").
			Str("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return entries, nil
}

// LatestEntry returns the most recently created entry of the user, or
// [ErrEntryNotFound] when the journal is empty.
func (r *entryRepository) LatestEntry(ctx context.Context, userID string) (models.FuelEntry, error) {
	query, args, err := buildLatestEntryQuery(userID)
	if err != nil {
		return models.FuelEntry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return scanEntry(r.DB.QueryRowContext(ctx, query, args...))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.FuelEntry, error) {
	var (
		entry     models.FuelEntry
		updatedAt sql.NullTime
	)

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Odometer,
		&entry.Price,
		&entry.Amount,
		&entry.Total,
		&entry.CreatedAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FuelEntry{}, ErrEntryNotFound
	}
	if err != nil {
		return models.FuelEntry{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if updatedAt.Valid {
		t := updatedAt.Time
		entry.UpdatedAt = &t
	}

	return entry, nil
}
