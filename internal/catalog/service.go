package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/singleflight"

	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

// Service is the catalog manager. It owns the single-base-unit invariant and
// performs full-unit-list replacement on every upsert.
type Service struct {
	repo      Repository
	cache     *Cache
	logger    *slog.Logger
	listGroup singleflight.Group
}

// NewService constructs the catalog service. Cache may be nil.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// UpsertProduct creates or fully replaces a product and its unit list.
// Persisted units missing from the submitted list are hard-deleted together
// with every assignment-unit row referencing them: the unit itself ceases to
// exist, so assignment history for it cannot be kept.
func (s *Service) UpsertProduct(ctx context.Context, in UpsertProductInput) (CatalogItem, error) {
	if err := s.validateUpsert(in); err != nil {
		return CatalogItem{}, err
	}

	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	var item CatalogItem
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product := Product{
			Code:        in.Code,
			Name:        in.Name,
			Description: in.Description,
			IsActive:    isActive,
		}

		var productID int64
		if in.ID != nil {
			existing, err := tx.GetProduct(ctx, *in.ID)
			if err != nil {
				return err
			}
			productID = existing.ID
			if err := tx.UpdateProduct(ctx, productID, product); err != nil {
				return err
			}
			if err := s.replaceUnits(ctx, tx, productID, in.Units); err != nil {
				return err
			}
		} else {
			id, err := tx.InsertProduct(ctx, product)
			if err != nil {
				return err
			}
			productID = id
			for _, spec := range in.Units {
				if _, err := tx.InsertUnit(ctx, ProductUnit{
					ProductID:        productID,
					Name:             spec.Name,
					SKU:              spec.SKU,
					IsBase:           spec.IsBase,
					MultiplierToBase: spec.MultiplierToBase,
				}); err != nil {
					return err
				}
			}
		}

		final, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		units, err := tx.ListUnits(ctx, productID)
		if err != nil {
			return err
		}
		item = CatalogItem{Product: final, Units: sortUnits(units)}
		return nil
	})
	if err != nil {
		return CatalogItem{}, shared.NewPersistenceError("catalog: upsert product", err)
	}

	s.invalidateCache(ctx)
	return item, nil
}

// replaceUnits diffs the submitted unit list against persisted state:
// missing ids are deleted (cascading to assignment units), ids present are
// updated in place, id-less specs are inserted.
func (s *Service) replaceUnits(ctx context.Context, tx TxRepository, productID int64, specs []UnitSpec) error {
	existing, err := tx.ListUnits(ctx, productID)
	if err != nil {
		return err
	}
	existingByID := make(map[int64]ProductUnit, len(existing))
	for _, u := range existing {
		existingByID[u.ID] = u
	}

	submitted := make(map[int64]bool, len(specs))
	for _, spec := range specs {
		if spec.ID == nil {
			continue
		}
		if _, ok := existingByID[*spec.ID]; !ok {
			return shared.NewValidationError(fmt.Sprintf("unit %d does not belong to product %d", *spec.ID, productID))
		}
		submitted[*spec.ID] = true
	}

	for _, u := range existing {
		if submitted[u.ID] {
			continue
		}
		if err := tx.DeleteAssignmentUnitsByUnit(ctx, u.ID); err != nil {
			return err
		}
		if err := tx.DeleteUnit(ctx, u.ID); err != nil {
			return err
		}
	}

	// The base flag may move to another unit. Clearing every flag first keeps
	// the one-base-per-product unique index satisfied regardless of the order
	// the submitted specs are applied in.
	if err := tx.ClearBaseFlags(ctx, productID); err != nil {
		return err
	}

	for _, spec := range specs {
		unit := ProductUnit{
			ProductID:        productID,
			Name:             spec.Name,
			SKU:              spec.SKU,
			IsBase:           spec.IsBase,
			MultiplierToBase: spec.MultiplierToBase,
		}
		if spec.ID != nil {
			unit.ID = *spec.ID
			if err := tx.UpdateUnit(ctx, unit); err != nil {
				return err
			}
		} else if _, err := tx.InsertUnit(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

// DeleteProduct removes a product and everything hanging off it: assignment
// units, assignments, units, then the product row. Deleting a missing id is
// a no-op.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.NewValidationError("invalid product ID")
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeleteAssignmentUnitsByProduct(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteAssignmentsByProduct(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteUnitsByProduct(ctx, id); err != nil {
			return err
		}
		return tx.DeleteProduct(ctx, id)
	})
	if err != nil {
		return shared.NewPersistenceError("catalog: delete product", err)
	}

	s.invalidateCache(ctx)
	return nil
}

// Get returns one materialized catalog item.
func (s *Service) Get(ctx context.Context, id int64) (CatalogItem, error) {
	if id <= 0 {
		return CatalogItem{}, shared.NewValidationError("invalid product ID")
	}
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return CatalogItem{}, shared.NewPersistenceError("catalog: get product", err)
	}
	units, err := s.repo.ListUnits(ctx, id)
	if err != nil {
		return CatalogItem{}, shared.NewPersistenceError("catalog: list units", err)
	}
	return CatalogItem{Product: product, Units: sortUnits(units)}, nil
}

// ListCatalog returns every product with its ordered unit set. Results are
// served from the cache when possible; concurrent misses collapse into one
// rebuild via singleflight.
func (s *Service) ListCatalog(ctx context.Context) ([]CatalogItem, error) {
	if s.cache != nil {
		if items, ok := s.cache.GetItems(ctx); ok {
			return items, nil
		}
	}

	v, err, _ := s.listGroup.Do("catalog", func() (any, error) {
		return s.buildCatalog(ctx)
	})
	if err != nil {
		return nil, shared.NewPersistenceError("catalog: list", err)
	}
	items := v.([]CatalogItem)

	if s.cache != nil {
		if err := s.cache.SetItems(ctx, items); err != nil {
			s.logger.Warn("catalog cache set failed", slog.Any("error", err))
		}
	}
	return items, nil
}

func (s *Service) buildCatalog(ctx context.Context) ([]CatalogItem, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	units, err := s.repo.ListAllUnits(ctx)
	if err != nil {
		return nil, err
	}

	unitsByProduct := make(map[int64][]ProductUnit)
	for _, u := range units {
		unitsByProduct[u.ProductID] = append(unitsByProduct[u.ProductID], u)
	}

	items := make([]CatalogItem, 0, len(products))
	for _, p := range products {
		items = append(items, CatalogItem{Product: p, Units: sortUnits(unitsByProduct[p.ID])})
	}
	return items, nil
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("catalog cache invalidate failed", slog.Any("error", err))
	}
}

// sortUnits orders a unit list for presentation: base unit first, remaining
// units ascending by multiplier.
func sortUnits(units []ProductUnit) []ProductUnit {
	sorted := append([]ProductUnit(nil), units...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsBase != sorted[j].IsBase {
			return sorted[i].IsBase
		}
		return sorted[i].MultiplierToBase < sorted[j].MultiplierToBase
	})
	return sorted
}
