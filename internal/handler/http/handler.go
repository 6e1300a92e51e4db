package http

import (
	"github.com/MKhiriev/go-fuel-sync/internal/config"
	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/service"
	"github.com/MKhiriev/go-fuel-sync/internal/utils"
)

type Handler struct {
	services *service.Services
	hasher   *utils.Hasher

	logger *logger.Logger
}

func NewHandler(services *service.Services, cfg config.ServerApp, logger *logger.Logger) *Handler {
	logger.Info().Bool("signed_requests", cfg.HashKey != "").Msg("http handler created")
	return &Handler{
		services: services,
		hasher:   utils.NewHasher(cfg.HashKey),
		logger:   logger,
	}
}
