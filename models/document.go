package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Document is a remote record: named fields addressed by collection and id.
type Document struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Fields     map[string]any `json:"fields"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  *time.Time     `json:"updatedAt,omitempty"`
	SyncedAt   *time.Time     `json:"syncedAt,omitempty"`
}

// Decode unmarshals the document fields into dst.
func (d Document) Decode(dst any) error {
	raw, err := json.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("encode document fields: %w", err)
	}
	if err = json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode document fields: %w", err)
	}
	return nil
}

// ToFields converts v into document fields through its JSON representation.
func ToFields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}

	fields := make(map[string]any)
	if err = json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}

// CreateDocumentResponse is returned by the remote store after a create.
type CreateDocumentResponse struct {
	ID string `json:"id"`
}
