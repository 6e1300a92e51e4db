package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags. Durations
// accept either Go duration strings ("30s") or integer nanoseconds.
type StructuredJSONConfig struct {
	App struct {
		HashKey string `json:"hash_key"`
		UserID  string `json:"user_id"`
		Version string `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
		KVFile string `json:"kv_file"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Workers struct {
		SyncInterval     Duration `json:"sync_interval"`
		ProbeInterval    Duration `json:"probe_interval"`
		ReminderSchedule string   `json:"reminder_schedule"`
	} `json:"workers,omitempty"`

	Sync struct {
		MaxRetries         int      `json:"max_retries"`
		BaseDelay          Duration `json:"base_delay"`
		ProgressClearDelay Duration `json:"progress_clear_delay"`
		ConflictGraceDelay Duration `json:"conflict_grace_delay"`
		DeadLetterLimit    int      `json:"dead_letter_limit"`
	} `json:"sync,omitempty"`

	Tracing struct {
		Enabled  bool   `json:"enabled"`
		Exporter string `json:"exporter"`
	} `json:"tracing,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			HashKey: jsonCfg.App.HashKey,
			UserID:  jsonCfg.App.UserID,
			Version: jsonCfg.App.Version,
		},
		Storage: Storage{
			DB:     DB{DSN: jsonCfg.Storage.DB.DSN},
			KVFile: jsonCfg.Storage.KVFile,
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			SyncInterval:     time.Duration(jsonCfg.Workers.SyncInterval),
			ProbeInterval:    time.Duration(jsonCfg.Workers.ProbeInterval),
			ReminderSchedule: jsonCfg.Workers.ReminderSchedule,
		},
		Sync: Sync{
			MaxRetries:         jsonCfg.Sync.MaxRetries,
			BaseDelay:          time.Duration(jsonCfg.Sync.BaseDelay),
			ProgressClearDelay: time.Duration(jsonCfg.Sync.ProgressClearDelay),
			ConflictGraceDelay: time.Duration(jsonCfg.Sync.ConflictGraceDelay),
			DeadLetterLimit:    jsonCfg.Sync.DeadLetterLimit,
		},
		Tracing: Tracing{
			Enabled:  jsonCfg.Tracing.Enabled,
			Exporter: jsonCfg.Tracing.Exporter,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
