package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/config"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/engine/memory"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/fixtures"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/repository/postgres"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/service"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/database"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/logger"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/validator"
)

func newSeedCmd(root *rootOptions) *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the bundled fixtures to the listing repository",
		Long: `Run the repository migrations and upsert fixture listings into PostgreSQL.

Connection settings come from the POSTGRES_* and CATALOG_DB_NAME
environment variables. Listings keep stable ids, so seeding twice
updates rather than duplicates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listings, err := loadListings(file)
			if err != nil {
				return err
			}
			if dryRun {
				for i := range listings {
					if err := validator.Validate(&listings[i]); err != nil {
						return fmt.Errorf("listing %q: %w", listings[i].ID, err)
					}
				}
				vendors, products := countKinds(listings)
				fmt.Fprintf(cmd.OutOrStdout(), "would seed %d listings (%d vendors, %d products)\n", len(listings), vendors, products)
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logger.NewWithWriter(config.ServiceName, root.logLevel, cmd.ErrOrStderr())
			ctx := cmd.Context()

			pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			if err := database.RunMigrations(ctx, pool, postgres.Migrations(), log); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			svc := service.NewCatalogService(service.Deps{
				Engine: memory.New(),
				Repo:   postgres.NewListingRepository(pool),
				Logger: log,
			})
			n, err := svc.Seed(ctx, listings)
			if err != nil {
				return err
			}
			log.Info("seed finished", slog.Int("count", n))
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d listings into %s\n", n, cfg.PostgresDB)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML listings file (default: bundled fixtures)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the listings without touching the database")
	return cmd
}

// loadListings reads path, or the bundled fixtures when path is empty.
func loadListings(path string) ([]domain.Listing, error) {
	if path == "" {
		return fixtures.Listings()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open listings: %w", err)
	}
	defer f.Close()

	listings, err := fixtures.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return listings, nil
}

func countKinds(listings []domain.Listing) (vendors, products int) {
	for i := range listings {
		if listings[i].Kind == domain.KindVendor {
			vendors++
		} else {
			products++
		}
	}
	return vendors, products
}
