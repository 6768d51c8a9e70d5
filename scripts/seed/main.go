// Command seed loads a minimal demo dataset for local development.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/fieldline-erp/fieldline-erp/internal/app"
	"github.com/fieldline-erp/fieldline-erp/internal/catalog"
	"github.com/fieldline-erp/fieldline-erp/internal/platform/db"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := app.LoadConfig()
	if err != nil {
		logger.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `
		INSERT INTO stores (code, name, is_active) VALUES
			('ST-001', 'Downtown Flagship', TRUE),
			('ST-002', 'Harbor Mall', TRUE)
		ON CONFLICT (code) DO NOTHING
	`); err != nil {
		logger.Error("seed stores", slog.Any("error", err))
		os.Exit(1)
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO employees (code, name, store_id, is_active) VALUES
			('EMP-001', 'Ava Chen', 1, TRUE),
			('EMP-002', 'Marcus Reed', 2, TRUE)
		ON CONFLICT (code) DO NOTHING
	`); err != nil {
		logger.Error("seed employees", slog.Any("error", err))
		os.Exit(1)
	}

	service := catalog.NewService(catalog.NewRepository(pool), nil, logger)
	sku := "CW-12"
	item, err := service.UpsertProduct(ctx, catalog.UpsertProductInput{
		Code: "P-COLA",
		Name: "Cola 330ml",
		Units: []catalog.UnitSpec{
			{Name: "piece", IsBase: true, MultiplierToBase: 1},
			{Name: "pack", MultiplierToBase: 6},
			{Name: "box", SKU: &sku, MultiplierToBase: 12},
		},
	})
	if err != nil {
		logger.Error("seed catalog", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("seed complete", slog.Int64("product_id", item.Product.ID), slog.Int("units", len(item.Units)))
}
