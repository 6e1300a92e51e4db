package service

import (
	"context"

	"github.com/MKhiriev/go-fuel-sync/internal/config"
	"github.com/MKhiriev/go-fuel-sync/internal/logger"
)

type appInfoService struct {
	appVersion string

	logger *logger.Logger
}

// NewAppInfoService returns the service reporting the server version on
// GET /api/ping.
func NewAppInfoService(cfg config.ServerApp, logger *logger.Logger) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{
		appVersion: cfg.Version,
		logger:     logger,
	}, nil
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.appVersion
}
