// Command seed-db loads stores and products from a JSON seed file (plain
// or gzip-compressed) into PostgreSQL and provisions a store-scoped API
// key for the dashboard.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/storely/storefront/internal/domain/auth"
	"github.com/storely/storefront/internal/domain/product"
	"github.com/storely/storefront/internal/domain/store"
	"github.com/storely/storefront/internal/storage/postgres"
)

type seedFile struct {
	Stores   []storeJSON   `json:"stores"`
	Products []productJSON `json:"products"`
}

type storeJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type productJSON struct {
	ID      string          `json:"id"`
	StoreID string          `json:"storeId"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Stock   int             `json:"stock"`
	Image   string          `json:"image"`
}

func main() {
	var (
		databaseURL  string
		seedPath     string
		apiKey       string
		apiKeyStore  string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/catalog.json", "path to seed JSON file (.json or .json.gz)")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or STOREFRONT_SEED_API_KEY env)")
	flag.StringVar(&apiKeyStore, "api-key-store", "", "store ID the seeded API key operates")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STOREFRONT_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("STOREFRONT_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("STOREFRONT_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath, apiKey, apiKeyStore, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath, apiKey, apiKeyStore, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	seed, err := readSeedFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	if err := seedCatalog(ctx, pool, seed); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if apiKey != "" {
		if err := seedAPIKey(ctx, pool, apiKey, apiKeyStore, pepper); err != nil {
			return errors.Wrap(err, "seed api key")
		}
	}

	return nil
}

// readSeedFile parses a seed file, transparently decompressing .gz files.
func readSeedFile(path string) (*seedFile, error) {
	slog.Info("reading seed file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip")
		}
		defer gz.Close()
		r = gz
	}

	var seed seedFile
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return nil, errors.Wrap(err, "parse seed JSON")
	}
	return &seed, nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, seed *seedFile) error {
	storeRepo := postgres.NewStoreRepository(pool)
	productRepo := postgres.NewProductRepository(pool)

	slog.Info("upserting stores", slog.Int("count", len(seed.Stores)))

	for _, s := range seed.Stores {
		if err := storeRepo.Create(ctx, &store.Store{ID: s.ID, Name: s.Name}); err != nil {
			return errors.Wrapf(err, "upsert store %s", s.ID)
		}
		slog.Info("upserted store", slog.String("id", s.ID), slog.String("name", s.Name))
	}

	slog.Info("upserting products", slog.Int("count", len(seed.Products)))

	for _, p := range seed.Products {
		if err := productRepo.Create(ctx, &product.Product{
			ID:      p.ID,
			StoreID: p.StoreID,
			Name:    p.Name,
			Price:   p.Price,
			Stock:   p.Stock,
			Image:   p.Image,
			Version: 1,
		}); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, storeID, pepper string) error {
	slog.Info("seeding API key", slog.String("store", storeID))

	repo := postgres.NewAPIKeyRepository(pool)
	if err := repo.Upsert(ctx, &auth.APIKeyInfo{
		ID:      "default",
		KeyHash: auth.HashKey(apiKey, []byte(pepper)),
		Name:    "Default store key",
		StoreID: storeID,
		Scopes:  []string{"manage_store"},
	}); err != nil {
		return errors.Wrap(err, "upsert API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"))
	return nil
}
