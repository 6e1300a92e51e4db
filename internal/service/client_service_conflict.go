// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
	"github.com/MKhiriev/go-fuel-sync/models"
)

var availableStrategies = []models.ConflictStrategy{
	{Type: models.StrategyLocalWins, Description: "Always keep your local changes"},
	{Type: models.StrategyRemoteWins, Description: "Always keep server changes"},
	{Type: models.StrategyMerge, Description: "Automatically merge when possible"},
	{Type: models.StrategyManual, Description: "Ask me to decide"},
}

// pendingConflict is an entry of the pending-request table. done is closed
// once a decision is recorded or the case is cleared.
type pendingConflict struct {
	c    models.ConflictCase
	done chan struct{}
}

type conflictResolver struct {
	strategies store.StrategyStore
	graceDelay time.Duration
	now        func() time.Time

	logger *logger.Logger

	mu      sync.Mutex
	table   map[string]models.ConflictStrategy
	pending map[string]*pendingConflict
}

// NewConflictResolver loads the persisted strategy table and returns a
// resolver. Resolved manual cases stay visible for graceDelay.
func NewConflictResolver(ctx context.Context, strategies store.StrategyStore, graceDelay time.Duration, logger *logger.Logger) ConflictResolver {
	return &conflictResolver{
		strategies: strategies,
		graceDelay: graceDelay,
		now:        time.Now,
		logger:     logger,
		table:      strategies.Load(ctx),
		pending:    make(map[string]*pendingConflict),
	}
}

func (r *conflictResolver) DetectConflict(local, remote models.FuelEntry) bool {
	if local.ID != remote.ID {
		return false
	}
	return !local.SameTrackedFields(remote)
}

func (r *conflictResolver) ResolveConflict(ctx context.Context, local, remote models.FuelEntry, strategy *models.StrategyType) (models.FuelEntry, error) {
	st := r.strategyFor(local.ID)
	if strategy != nil {
		st = *strategy
	}

	switch st {
	case models.StrategyLocalWins:
		r.logResolved(local.ID, st)
		return local, nil
	case models.StrategyRemoteWins:
		r.logResolved(local.ID, st)
		return remote, nil
	case models.StrategyMerge:
		r.logResolved(local.ID, st)
		return MergeEntries(local, remote), nil
	case models.StrategyManual:
		return r.awaitDecision(ctx, local, remote)
	default:
		return local, fmt.Errorf("%w: %q", ErrInvalidStrategy, st)
	}
}

// MergeEntries is the field-level merge policy. Remote price is adopted only
// when remote is strictly newer by createdAt; the larger odometer always wins;
// total is recomputed when price or amount changed. It is not commutative.
func MergeEntries(local, remote models.FuelEntry) models.FuelEntry {
	merged := local

	if remote.CreatedAt.After(local.CreatedAt) && remote.Price != local.Price {
		merged.Price = remote.Price
	}
	if remote.Odometer > local.Odometer {
		merged.Odometer = remote.Odometer
	}
	if merged.Price != local.Price || merged.Amount != local.Amount {
		merged.Total = merged.Price * merged.Amount
	}

	return merged
}

func (r *conflictResolver) awaitDecision(ctx context.Context, local, remote models.FuelEntry) (models.FuelEntry, error) {
	r.mu.Lock()
	p, ok := r.pending[local.ID]
	if !ok || p.c.Resolved() {
		p = &pendingConflict{
			c: models.ConflictCase{
				EntryID:       local.ID,
				LocalVersion:  local,
				RemoteVersion: remote,
				DetectedAt:    r.now(),
			},
			done: make(chan struct{}),
		}
		r.pending[local.ID] = p
		r.logger.Info().
			Str("func", "conflictResolver.awaitDecision").
			Str("entry_id", local.ID).
			Msg("conflict waiting for a decision")
	}
	r.mu.Unlock()

	select {
	case <-p.done:
	case <-ctx.Done():
		return local, ctx.Err()
	}

	r.mu.Lock()
	resolution := p.c.Resolution
	r.mu.Unlock()

	switch resolution {
	case models.ResolutionLocal:
		return local, nil
	case models.ResolutionRemote:
		return remote, nil
	case models.ResolutionMerge:
		return MergeEntries(local, remote), nil
	default:
		return local, ErrConflictCleared
	}
}

func (r *conflictResolver) ResolveConflictByID(entryID string, resolution models.Resolution) error {
	if !resolution.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidResolution, resolution)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pending[entryID]
	if !ok || p.c.Resolved() {
		return fmt.Errorf("%w: entry %s", ErrConflictNotFound, entryID)
	}

	p.c.Resolution = resolution
	close(p.done)

	time.AfterFunc(r.graceDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		// a newer case for the same entry must survive
		if r.pending[entryID] == p {
			delete(r.pending, entryID)
		}
	})

	r.logger.Info().
		Str("func", "conflictResolver.ResolveConflictByID").
		Str("entry_id", entryID).
		Str("resolution", string(resolution)).
		Msg("conflict resolved")

	return nil
}

// strategyFor looks the entry id up first, then the fuel-entry category, and
// falls back to manual.
func (r *conflictResolver) strategyFor(entryID string) models.StrategyType {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.table[entryID]; ok {
		return s.Type
	}
	if s, ok := r.table[models.CategoryFuelEntry]; ok {
		return s.Type
	}
	return models.StrategyManual
}

func (r *conflictResolver) SetStrategy(ctx context.Context, key string, strategy models.ConflictStrategy) error {
	idx := slices.IndexFunc(availableStrategies, func(s models.ConflictStrategy) bool {
		return s.Type == strategy.Type
	})
	if key == "" || idx < 0 {
		return fmt.Errorf("%w: %q for %q", ErrInvalidStrategy, strategy.Type, key)
	}
	if strategy.Description == "" {
		strategy.Description = availableStrategies[idx].Description
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	table := r.strategies.Load(ctx)
	table[key] = strategy
	r.strategies.Save(ctx, table)
	r.table = table

	return nil
}

func (r *conflictResolver) GetStrategies() map[string]models.ConflictStrategy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.table)
}

func (r *conflictResolver) AvailableStrategies() []models.ConflictStrategy {
	return slices.Clone(availableStrategies)
}

func (r *conflictResolver) PendingConflicts() []models.ConflictCase {
	return r.cases(func(c models.ConflictCase) bool { return !c.Resolved() })
}

func (r *conflictResolver) Conflicts() []models.ConflictCase {
	return r.cases(func(models.ConflictCase) bool { return true })
}

func (r *conflictResolver) cases(keep func(models.ConflictCase) bool) []models.ConflictCase {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.ConflictCase, 0, len(r.pending))
	for _, p := range r.pending {
		if keep(p.c) {
			out = append(out, p.c)
		}
	}
	slices.SortFunc(out, func(a, b models.ConflictCase) int {
		return a.DetectedAt.Compare(b.DetectedAt)
	})
	return out
}

func (r *conflictResolver) ClearConflicts() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.pending {
		if !p.c.Resolved() {
			close(p.done)
		}
		delete(r.pending, id)
	}
}

func (r *conflictResolver) logResolved(entryID string, st models.StrategyType) {
	r.logger.Debug().
		Str("func", "conflictResolver.ResolveConflict").
		Str("entry_id", entryID).
		Str("strategy", string(st)).
		Msg("conflict resolved")
}
