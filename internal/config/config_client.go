package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// HashKey is the HMAC key used to sign outbound request bodies.
	HashKey string
	// UserID is the owner of the local journal.
	UserID string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the remote document store address.
	HTTPAddress string
	// RequestTimeout bounds every outbound request.
	RequestTimeout time.Duration
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DSN is the SQLite file path of the local journal.
	DSN string
	// KVFile switches key-value state to a JSON file when set.
	KVFile string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers Workers
	Sync    Sync
	Tracing Tracing
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
func GetClientConfig(args []string) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

// NewClientConfig maps the client-relevant fields of cfg.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			HashKey: cfg.App.HashKey,
			UserID:  cfg.App.UserID,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DSN:    cfg.Storage.DB.DSN,
			KVFile: cfg.Storage.KVFile,
		},
		Workers: cfg.Workers,
		Sync:    cfg.Sync,
		Tracing: cfg.Tracing,
	}
}

// ServerApp holds server-side application settings.
type ServerApp struct {
	// HashKey enables request signature checks when non-empty.
	HashKey string
	// Version is reported by GET /api/ping.
	Version string
}

// ServerConfig is the document store server configuration assembled from
// [StructuredConfig].
type ServerConfig struct {
	App     ServerApp
	Server  Server
	DSN     string
	Tracing Tracing
}

// GetServerConfig builds and validates the server config view.
func GetServerConfig(args []string) (*ServerConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := NewServerConfig(cfg)
	return serverCfg, serverCfg.validate()
}

// NewServerConfig maps the server-relevant fields of cfg.
func NewServerConfig(cfg *StructuredConfig) *ServerConfig {
	return &ServerConfig{
		App: ServerApp{
			HashKey: cfg.App.HashKey,
			Version: cfg.App.Version,
		},
		Server:  cfg.Server,
		DSN:     cfg.Storage.DB.DSN,
		Tracing: cfg.Tracing,
	}
}
