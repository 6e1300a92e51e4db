// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// FillsCollection is the remote collection that holds fuel entries.
const FillsCollection = "fills"

// FuelEntry is a single fill-up logged by the user.
type FuelEntry struct {
	// ID is the client-generated identifier. The same value is used as the
	// remote document id so repeated creates are idempotent.
	ID     string `json:"id"`
	UserID string `json:"userId"`

	// Odometer is the odometer reading at the moment of the fill-up.
	Odometer float64 `json:"odo"`
	// Price is the price per unit of volume.
	Price float64 `json:"price"`
	// Amount is the filled volume.
	Amount float64 `json:"amount"`
	// Total is the paid cost, normally Price * Amount.
	Total float64 `json:"total"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// EntryPatch holds a partial update of a [FuelEntry]. Nil fields are left
// untouched.
type EntryPatch struct {
	Odometer *float64 `json:"odo,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
	Total    *float64 `json:"total,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return p.Odometer == nil && p.Price == nil && p.Amount == nil && p.Total == nil
}

// Apply returns a copy of entry with the patch applied. Total is taken as is;
// recomputation is the caller's decision.
func (p EntryPatch) Apply(entry FuelEntry) FuelEntry {
	if p.Odometer != nil {
		entry.Odometer = *p.Odometer
	}
	if p.Price != nil {
		entry.Price = *p.Price
	}
	if p.Amount != nil {
		entry.Amount = *p.Amount
	}
	if p.Total != nil {
		entry.Total = *p.Total
	}
	return entry
}

// Fields returns the patch as a document patch keyed by JSON field names.
func (p EntryPatch) Fields() map[string]any {
	fields := make(map[string]any, 4)
	if p.Odometer != nil {
		fields["odo"] = *p.Odometer
	}
	if p.Price != nil {
		fields["price"] = *p.Price
	}
	if p.Amount != nil {
		fields["amount"] = *p.Amount
	}
	if p.Total != nil {
		fields["total"] = *p.Total
	}
	return fields
}

// TrackedFields returns the fields compared during conflict detection.
func (e FuelEntry) TrackedFields() map[string]any {
	return map[string]any{
		"odo":    e.Odometer,
		"price":  e.Price,
		"amount": e.Amount,
		"total":  e.Total,
	}
}

// SameTrackedFields reports whether both entries agree on odo, price, amount
// and total.
func (e FuelEntry) SameTrackedFields(other FuelEntry) bool {
	return e.Odometer == other.Odometer &&
		e.Price == other.Price &&
		e.Amount == other.Amount &&
		e.Total == other.Total
}
