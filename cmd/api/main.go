package main

import (
	"os"

	"github.com/alagappainfotech/student-registration-app/internal/pkg/logger"
	"github.com/alagappainfotech/student-registration-app/internal/server"
)

// @title Student Registration API
// @version 1.0
// @description Registration requests, role dashboards and the enrollment ledger of the academic portal
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token as "Bearer <token>"

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
