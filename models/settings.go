package models

// SettingsCollection is the remote collection holding one settings document
// per user, keyed by user id.
const SettingsCollection = "userSettings"

// Settings are the user's display preferences.
type Settings struct {
	Currency string `json:"currency"`
	Units    string `json:"units"`
}

// SettingsUpdate is the payload of an update-settings queue item.
type SettingsUpdate struct {
	UserID   string   `json:"userId"`
	Settings Settings `json:"settings"`
}

// Fields returns the settings as document fields.
func (s Settings) Fields() map[string]any {
	return map[string]any{
		"currency": s.Currency,
		"units":    s.Units,
	}
}
