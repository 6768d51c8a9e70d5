package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/fieldline-erp/fieldline-erp/internal/catalog"
	jobmetrics "github.com/fieldline-erp/fieldline-erp/internal/jobs"
)

// CatalogTaskDeps carries the services catalog tasks operate on.
type CatalogTaskDeps struct {
	Service *catalog.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// HandleCacheWarm rebuilds the catalog cache by forcing a full listing.
func (d CatalogTaskDeps) HandleCacheWarm(ctx context.Context, t *asynq.Task) error {
	tracker := d.Metrics.Track("catalog_cache_warm")
	items, err := d.Service.ListCatalog(ctx)
	if err != nil {
		return tracker.End(err)
	}
	d.Logger.Info("catalog cache warmed", slog.Int("items", len(items)))
	return tracker.End(nil)
}

// HandleIntegrityScan walks every product and reports unit sets that violate
// catalog invariants. The catalog manager rejects these on write, so a hit
// here means rows were touched outside the application.
func (d CatalogTaskDeps) HandleIntegrityScan(ctx context.Context, t *asynq.Task) error {
	tracker := d.Metrics.Track("catalog_integrity_scan")
	items, err := d.Service.ListCatalog(ctx)
	if err != nil {
		return tracker.End(err)
	}

	anomalies := 0
	for _, item := range items {
		baseCount := 0
		for _, u := range item.Units {
			if u.IsBase {
				baseCount++
				if u.MultiplierToBase != 1 {
					anomalies++
					d.Metrics.AddAnomalies("base_multiplier", 1)
					d.Logger.Warn("base unit with non-unit multiplier",
						slog.Int64("product_id", item.Product.ID), slog.Int64("unit_id", u.ID))
				}
			} else if u.MultiplierToBase < 1 {
				anomalies++
				d.Metrics.AddAnomalies("multiplier_below_one", 1)
				d.Logger.Warn("unit multiplier below one",
					slog.Int64("product_id", item.Product.ID), slog.Int64("unit_id", u.ID))
			}
		}
		if baseCount != 1 {
			anomalies++
			d.Metrics.AddAnomalies("base_count", 1)
			d.Logger.Warn("product without single base unit",
				slog.Int64("product_id", item.Product.ID), slog.Int("base_units", baseCount))
		}
	}

	d.Logger.Info("catalog integrity scan finished",
		slog.Int("products", len(items)), slog.Int("anomalies", anomalies))
	return tracker.End(nil)
}
