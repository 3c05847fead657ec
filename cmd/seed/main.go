// Command seed loads deterministic demo catalogs into the catalog database.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	catalogpg "github.com/utafrali/storefront/internal/catalog/postgres"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/logger"
)

func main() {
	catalogs := flag.Int("catalogs", 4, "number of catalogs to generate")
	perCatalog := flag.Int("items", 25, "items per catalog")
	seed := flag.Int64("seed", 42, "random seed for names, prices and flags")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("storefront-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	repo := catalogpg.NewRepository(pool, log)
	if err := repo.Migrate(ctx); err != nil {
		log.Error("failed to migrate catalog schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cs, items := generate(rand.New(rand.NewSource(*seed)), *catalogs, *perCatalog)
	if err := repo.Seed(ctx, cs, items); err != nil {
		log.Error("failed to seed catalogs", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
