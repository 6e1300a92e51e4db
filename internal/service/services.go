package service

import (
	"fmt"

	"github.com/MKhiriev/go-fuel-sync/internal/config"
	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
)

type Services struct {
	DocumentService DocumentService
	AppInfoService  AppInfoService
}

func NewServices(storages *store.Storages, cfg config.ServerApp, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("app info service: %w", err)
	}

	return &Services{
		DocumentService: NewDocumentValidationService().Wrap(NewDocumentService(storages.Documents, logger)),
		AppInfoService:  appInfo,
	}, nil
}
