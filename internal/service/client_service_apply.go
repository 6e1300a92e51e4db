package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-fuel-sync/internal/adapter"
	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
	"github.com/MKhiriev/go-fuel-sync/models"
)

type remoteApplier struct {
	remote   adapter.RemoteStore
	entries  store.EntryRepository
	resolver ConflictResolver
	now      func() time.Time

	logger *logger.Logger
}

// NewRemoteApplier returns the Applier that maps queue item kinds onto remote
// store calls. Update-entry items with a base version go through conflict
// detection; the resolved record is written back locally and remotely.
func NewRemoteApplier(remote adapter.RemoteStore, entries store.EntryRepository, resolver ConflictResolver, logger *logger.Logger) Applier {
	return &remoteApplier{
		remote:   remote,
		entries:  entries,
		resolver: resolver,
		now:      time.Now,
		logger:   logger,
	}
}

func (a *remoteApplier) Apply(ctx context.Context, item models.QueueItem) error {
	switch item.Kind {
	case models.KindCreateEntry:
		var entry models.FuelEntry
		if err := decodePayload(item, &entry); err != nil {
			return err
		}
		return a.createEntry(ctx, entry)

	case models.KindUpdateEntry:
		var update models.EntryUpdate
		if err := decodePayload(item, &update); err != nil {
			return err
		}
		return a.updateEntry(ctx, update)

	case models.KindUpdateSettings:
		var update models.SettingsUpdate
		if err := decodePayload(item, &update); err != nil {
			return err
		}
		return a.updateSettings(ctx, update)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownItemKind, item.Kind)
	}
}

// decodePayload reports a malformed payload as ErrUnknownItemKind: neither can
// be fixed by retrying.
func decodePayload(item models.QueueItem, dst any) error {
	if err := json.Unmarshal(item.Payload, dst); err != nil {
		return fmt.Errorf("%w: malformed %s payload: %w", ErrUnknownItemKind, item.Kind, err)
	}
	return nil
}

func remoteErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRemoteApply, op, err)
}

// createEntry sends the local id inside the fields so a repeated create after
// a lost response is a no-op on the remote.
func (a *remoteApplier) createEntry(ctx context.Context, entry models.FuelEntry) error {
	fields, err := models.ToFields(entry)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownItemKind, err)
	}

	id, err := a.remote.Create(ctx, models.FillsCollection, fields)
	if err != nil {
		return remoteErr("create entry", err)
	}
	if id != entry.ID {
		a.logger.Warn().
			Str("func", "remoteApplier.createEntry").
			Str("entry_id", entry.ID).
			Str("remote_id", id).
			Msg("remote assigned a different document id")
	}
	return nil
}

func (a *remoteApplier) updateEntry(ctx context.Context, update models.EntryUpdate) error {
	if update.Base == nil {
		if err := a.remote.Update(ctx, models.FillsCollection, update.TargetID, update.Patch.Fields()); err != nil {
			return remoteErr("update entry", err)
		}
		return nil
	}

	local := update.Patch.Apply(*update.Base)
	local.ID = update.TargetID

	doc, found, err := a.remote.Read(ctx, models.FillsCollection, update.TargetID)
	if err != nil {
		return remoteErr("read entry", err)
	}
	if !found {
		// the entry never reached the remote: write the full local version
		return a.createEntry(ctx, local)
	}

	var remote models.FuelEntry
	if err = doc.Decode(&remote); err != nil {
		return remoteErr("decode remote entry", err)
	}
	remote.ID = update.TargetID

	if remote.SameTrackedFields(*update.Base) || !a.resolver.DetectConflict(local, remote) {
		if err = a.remote.Update(ctx, models.FillsCollection, update.TargetID, update.Patch.Fields()); err != nil {
			return remoteErr("update entry", err)
		}
		return nil
	}

	a.logger.Info().
		Str("func", "remoteApplier.updateEntry").
		Str("entry_id", update.TargetID).
		Msg("remote entry diverged, resolving conflict")

	resolved, err := a.resolver.ResolveConflict(ctx, local, remote, nil)
	if err != nil {
		return fmt.Errorf("resolve conflict for %s: %w", update.TargetID, err)
	}

	resolved.ID = update.TargetID
	now := a.now()
	resolved.UpdatedAt = &now
	if err = a.entries.SaveEntry(ctx, resolved); err != nil {
		return fmt.Errorf("save resolved entry %s: %w", update.TargetID, err)
	}

	if err = a.remote.Update(ctx, models.FillsCollection, update.TargetID, resolved.TrackedFields()); err != nil {
		return remoteErr("write resolved entry", err)
	}
	return nil
}

// updateSettings patches the user's settings document and creates it on the
// first write.
func (a *remoteApplier) updateSettings(ctx context.Context, update models.SettingsUpdate) error {
	fields := update.Settings.Fields()

	err := a.remote.Update(ctx, models.SettingsCollection, update.UserID, fields)
	if err == nil {
		return nil
	}
	if !errors.Is(err, adapter.ErrNotFound) {
		return remoteErr("update settings", err)
	}

	fields["id"] = update.UserID
	if _, err = a.remote.Create(ctx, models.SettingsCollection, fields); err != nil {
		return remoteErr("create settings", err)
	}
	return nil
}
