package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/app"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/config"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP catalog service",
		Long:  "Run the catalog service configured from the environment until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logger.New(config.ServiceName, cfg.LogLevel)
			log.Info("starting catalog service",
				slog.String("environment", cfg.Environment),
				slog.Int("http_port", cfg.HTTPPort),
				slog.String("engine", cfg.Engine),
			)

			application, err := app.NewApp(cmd.Context(), cfg, log)
			if err != nil {
				return fmt.Errorf("initialize application: %w", err)
			}
			return application.Run(cmd.Context())
		},
	}
}
