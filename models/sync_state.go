package models

import "time"

// SyncState is the aggregate synchronization state observed by presentation
// layers. Only the queue manager mutates it.
type SyncState struct {
	IsOnline     bool       `json:"isOnline"`
	IsSyncing    bool       `json:"isSyncing"`
	PendingCount int        `json:"pendingCount"`
	LastSyncAt   *time.Time `json:"lastSyncAt,omitempty"`
	LastError    string     `json:"lastError,omitempty"`
}

// SyncProgress describes the item currently being processed within a pass.
type SyncProgress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Item    string `json:"item"`
}

// PassResult summarizes a single pass over the queue snapshot.
type PassResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Dropped   int `json:"dropped"`
	// Deferred counts items held back because an earlier item for the same
	// record stayed queued.
	Deferred int `json:"deferred"`
}
