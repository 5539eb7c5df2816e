package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"habitual/database"
	"habitual/logger"
	"habitual/router"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if err := database.Connect(); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}

			app := router.New(cfg)

			// Graceful shutdown
			go func() {
				<-cmd.Context().Done()
				logger.Info("Shutting down server...")
				if err := app.Shutdown(); err != nil {
					logger.Error("error shutting down", "err", err)
				}
			}()

			addr := fmt.Sprintf(":%s", cfg.ServerPort)
			logger.Info("starting habitual", "addr", addr, "driver", cfg.DatabaseDriver, "config", cfg.Path())
			if err := app.Listen(addr); err != nil {
				logger.Fatal("failed to start server", "addr", addr, "err", err)
			}
			return nil
		},
	}
}
