// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Resolution is the decision applied to a [ConflictCase]. The zero value
// means the case is still unresolved.
type Resolution string

const (
	ResolutionNone   Resolution = ""
	ResolutionLocal  Resolution = "local"
	ResolutionRemote Resolution = "remote"
	ResolutionMerge  Resolution = "merge"
)

// Valid reports whether r is one of local, remote or merge.
func (r Resolution) Valid() bool {
	switch r {
	case ResolutionLocal, ResolutionRemote, ResolutionMerge:
		return true
	}
	return false
}

// ConflictCase is a detected divergence between the local and remote version
// of the same fuel entry.
type ConflictCase struct {
	EntryID       string     `json:"entryId"`
	LocalVersion  FuelEntry  `json:"localVersion"`
	RemoteVersion FuelEntry  `json:"remoteVersion"`
	Resolution    Resolution `json:"resolution,omitempty"`
	DetectedAt    time.Time  `json:"detectedAt"`
}

// Resolved reports whether a decision has been recorded for the case.
func (c ConflictCase) Resolved() bool {
	return c.Resolution != ResolutionNone
}

// StrategyType selects how conflicts are reconciled.
type StrategyType string

const (
	StrategyLocalWins  StrategyType = "local-wins"
	StrategyRemoteWins StrategyType = "remote-wins"
	StrategyMerge      StrategyType = "merge"
	StrategyManual     StrategyType = "manual"
)

// CategoryFuelEntry is the strategy table key applied to every fuel entry
// that has no strategy of its own.
const CategoryFuelEntry = "fuel-entry"

// ConflictStrategy is a persisted strategy table value.
type ConflictStrategy struct {
	Type        StrategyType `json:"type"`
	Description string       `json:"description,omitempty"`
}
