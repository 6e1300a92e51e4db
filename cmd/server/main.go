package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-fuel-sync/internal/config"
	"github.com/MKhiriev/go-fuel-sync/internal/handler"
	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/server"
	"github.com/MKhiriev/go-fuel-sync/internal/service"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
	"github.com/MKhiriev/go-fuel-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := printBuildInfo()

	log := logger.NewLogger("go-fuel-sync-server")
	cfg, err := config.GetServerConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildInfo.BuildVersion()
	}

	log.Debug().Str("address", cfg.Server.HTTPAddress).Msg("received configs")

	storages, err := store.NewStorages(context.Background(), cfg.DSN, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	services, err := service.NewServices(storages, cfg.App, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() models.AppBuildInfo {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)

	return models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
}
