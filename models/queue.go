// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// ItemKind identifies the mutation a [QueueItem] carries. The set is open:
// unknown kinds are rejected at apply time, not at decode time.
type ItemKind string

const (
	// KindCreateEntry creates a new fuel entry remotely. Payload: [FuelEntry].
	KindCreateEntry ItemKind = "create-entry"
	// KindUpdateEntry patches an existing fuel entry. Payload: [EntryUpdate].
	KindUpdateEntry ItemKind = "update-entry"
	// KindUpdateSettings writes the user's settings. Payload: [SettingsUpdate].
	KindUpdateSettings ItemKind = "update-settings"
)

// QueueItem is a pending mutation waiting to be applied to the remote store.
type QueueItem struct {
	ID          string          `json:"id"`
	Kind        ItemKind        `json:"kind"`
	Payload     json.RawMessage `json:"payload"`
	EnqueuedAt  time.Time       `json:"enqueuedAt"`
	RetryCount  int             `json:"retryCount"`
	LastRetryAt *time.Time      `json:"lastRetryAt,omitempty"`
}

// Label returns the human-readable progress label for the item.
func (i QueueItem) Label() string {
	switch i.Kind {
	case KindCreateEntry:
		return "Syncing fuel entry..."
	case KindUpdateEntry:
		return "Updating fuel entry..."
	case KindUpdateSettings:
		return "Updating settings..."
	default:
		return "Syncing data..."
	}
}

// EntryUpdate is the payload of an update-entry queue item.
type EntryUpdate struct {
	TargetID string     `json:"targetId"`
	Patch    EntryPatch `json:"patch"`
	// Base is the locally known version before the patch. When set, the
	// remote copy is compared against it to detect divergence.
	Base *FuelEntry `json:"base,omitempty"`
}

// DeadLetter records a queue item that was discarded without being applied.
type DeadLetter struct {
	Item      QueueItem `json:"item"`
	Reason    string    `json:"reason"`
	DroppedAt time.Time `json:"droppedAt"`
}
