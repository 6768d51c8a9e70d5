package catalog

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

type memAssignmentUnit struct {
	ID           int64
	AssignmentID int64
	UnitID       int64
}

type memCatalogRepo struct {
	products        map[int64]Product
	units           map[int64]ProductUnit
	assignments     map[int64]int64 // assignment id -> product id
	assignmentUnits map[int64]memAssignmentUnit
	nextProductID   int64
	nextUnitID      int64
}

type memCatalogTx struct {
	repo *memCatalogRepo
}

func newMemCatalogRepo() *memCatalogRepo {
	return &memCatalogRepo{
		products:        make(map[int64]Product),
		units:           make(map[int64]ProductUnit),
		assignments:     make(map[int64]int64),
		assignmentUnits: make(map[int64]memAssignmentUnit),
	}
}

func (r *memCatalogRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memCatalogTx{repo: r})
}

func (r *memCatalogRepo) GetProduct(ctx context.Context, id int64) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, shared.NewNotFoundError("product", id)
	}
	return p, nil
}

func (r *memCatalogRepo) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *memCatalogRepo) ListUnits(ctx context.Context, productID int64) ([]ProductUnit, error) {
	var out []ProductUnit
	for _, u := range r.units {
		if u.ProductID == productID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memCatalogRepo) ListAllUnits(ctx context.Context) ([]ProductUnit, error) {
	var out []ProductUnit
	for _, u := range r.units {
		out = append(out, u)
	}
	return out, nil
}

func (t *memCatalogTx) GetProduct(ctx context.Context, id int64) (Product, error) {
	return t.repo.GetProduct(ctx, id)
}

func (t *memCatalogTx) InsertProduct(ctx context.Context, p Product) (int64, error) {
	for _, existing := range t.repo.products {
		if existing.Code == p.Code {
			return 0, shared.ErrDuplicate
		}
	}
	t.repo.nextProductID++
	p.ID = t.repo.nextProductID
	t.repo.products[p.ID] = p
	return p.ID, nil
}

func (t *memCatalogTx) UpdateProduct(ctx context.Context, id int64, p Product) error {
	existing, ok := t.repo.products[id]
	if !ok {
		return nil
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	t.repo.products[id] = p
	return nil
}

func (t *memCatalogTx) DeleteProduct(ctx context.Context, id int64) error {
	delete(t.repo.products, id)
	return nil
}

func (t *memCatalogTx) ListUnits(ctx context.Context, productID int64) ([]ProductUnit, error) {
	return t.repo.ListUnits(ctx, productID)
}

// otherBaseExists mirrors the partial unique index over (product_id) WHERE
// is_base: a second base row for the same product is rejected statement by
// statement, not at commit.
func (r *memCatalogRepo) otherBaseExists(productID, exceptUnitID int64) bool {
	for _, u := range r.units {
		if u.ProductID == productID && u.IsBase && u.ID != exceptUnitID {
			return true
		}
	}
	return false
}

func (t *memCatalogTx) InsertUnit(ctx context.Context, u ProductUnit) (int64, error) {
	if u.IsBase && t.repo.otherBaseExists(u.ProductID, 0) {
		return 0, shared.ErrDuplicate
	}
	t.repo.nextUnitID++
	u.ID = t.repo.nextUnitID
	t.repo.units[u.ID] = u
	return u.ID, nil
}

func (t *memCatalogTx) UpdateUnit(ctx context.Context, u ProductUnit) error {
	if u.IsBase && t.repo.otherBaseExists(u.ProductID, u.ID) {
		return shared.ErrDuplicate
	}
	if _, ok := t.repo.units[u.ID]; ok {
		t.repo.units[u.ID] = u
	}
	return nil
}

func (t *memCatalogTx) ClearBaseFlags(ctx context.Context, productID int64) error {
	for id, u := range t.repo.units {
		if u.ProductID == productID && u.IsBase {
			u.IsBase = false
			t.repo.units[id] = u
		}
	}
	return nil
}

func (t *memCatalogTx) DeleteUnit(ctx context.Context, unitID int64) error {
	delete(t.repo.units, unitID)
	return nil
}

func (t *memCatalogTx) DeleteUnitsByProduct(ctx context.Context, productID int64) error {
	for id, u := range t.repo.units {
		if u.ProductID == productID {
			delete(t.repo.units, id)
		}
	}
	return nil
}

func (t *memCatalogTx) DeleteAssignmentUnitsByUnit(ctx context.Context, unitID int64) error {
	for id, au := range t.repo.assignmentUnits {
		if au.UnitID == unitID {
			delete(t.repo.assignmentUnits, id)
		}
	}
	return nil
}

func (t *memCatalogTx) DeleteAssignmentUnitsByProduct(ctx context.Context, productID int64) error {
	for id, au := range t.repo.assignmentUnits {
		if t.repo.assignments[au.AssignmentID] == productID {
			delete(t.repo.assignmentUnits, id)
		}
	}
	return nil
}

func (t *memCatalogTx) DeleteAssignmentsByProduct(ctx context.Context, productID int64) error {
	for id, pid := range t.repo.assignments {
		if pid == productID {
			delete(t.repo.assignments, id)
		}
	}
	return nil
}

func newTestService(repo *memCatalogRepo) *Service {
	return NewService(repo, nil, slog.Default())
}

func validInput() UpsertProductInput {
	return UpsertProductInput{
		Code: "P-COLA",
		Name: "Cola 330ml",
		Units: []UnitSpec{
			{Name: "piece", IsBase: true, MultiplierToBase: 1},
			{Name: "box", MultiplierToBase: 12},
		},
	}
}

func TestUpsertProductRequiresSingleBaseUnit(t *testing.T) {
	svc := newTestService(newMemCatalogRepo())

	in := validInput()
	in.Units = []UnitSpec{{Name: "box", MultiplierToBase: 12}}
	_, err := svc.UpsertProduct(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrValidation)

	in.Units = []UnitSpec{
		{Name: "piece", IsBase: true, MultiplierToBase: 1},
		{Name: "pack", IsBase: true, MultiplierToBase: 1},
	}
	_, err = svc.UpsertProduct(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpsertProductRejectsBadMultipliers(t *testing.T) {
	svc := newTestService(newMemCatalogRepo())

	in := validInput()
	in.Units[0].MultiplierToBase = 2 // base unit
	_, err := svc.UpsertProduct(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrValidation)

	in = validInput()
	in.Units[1].MultiplierToBase = 0.5
	_, err = svc.UpsertProduct(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpsertProductCreate(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newTestService(repo)

	in := validInput()
	in.Units = append(in.Units, UnitSpec{Name: "pack", MultiplierToBase: 6})
	item, err := svc.UpsertProduct(context.Background(), in)
	require.NoError(t, err)

	require.Equal(t, "P-COLA", item.Product.Code)
	require.True(t, item.Product.IsActive)
	require.Len(t, item.Units, 3)

	// base first, then ascending multiplier
	require.True(t, item.Units[0].IsBase)
	require.Equal(t, "pack", item.Units[1].Name)
	require.Equal(t, "box", item.Units[2].Name)
}

func TestUpsertProductUpdateDiffsUnits(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newTestService(repo)

	item, err := svc.UpsertProduct(context.Background(), validInput())
	require.NoError(t, err)
	pieceID, boxID := item.Units[0].ID, item.Units[1].ID

	// Assignment units referencing the box unit should cascade away when it
	// is dropped from the submitted list.
	repo.assignments[1] = item.Product.ID
	repo.assignmentUnits[100] = memAssignmentUnit{ID: 100, AssignmentID: 1, UnitID: boxID}
	repo.assignmentUnits[101] = memAssignmentUnit{ID: 101, AssignmentID: 1, UnitID: pieceID}

	update := UpsertProductInput{
		ID:   &item.Product.ID,
		Code: "P-COLA",
		Name: "Cola 330ml Can",
		Units: []UnitSpec{
			{ID: &pieceID, Name: "piece", IsBase: true, MultiplierToBase: 1},
			{Name: "crate", MultiplierToBase: 24},
		},
	}
	updated, err := svc.UpsertProduct(context.Background(), update)
	require.NoError(t, err)

	require.Equal(t, "Cola 330ml Can", updated.Product.Name)
	require.Len(t, updated.Units, 2)
	require.Equal(t, pieceID, updated.Units[0].ID, "kept unit retains its id")
	require.Equal(t, "crate", updated.Units[1].Name)

	_, boxExists := repo.units[boxID]
	require.False(t, boxExists, "removed unit is deleted")
	_, auExists := repo.assignmentUnits[100]
	require.False(t, auExists, "assignment units for the removed unit cascade")
	_, pieceAU := repo.assignmentUnits[101]
	require.True(t, pieceAU, "assignment units for kept units survive")
}

func TestUpsertProductMovesBaseUnit(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newTestService(repo)

	item, err := svc.UpsertProduct(context.Background(), validInput())
	require.NoError(t, err)
	pieceID, boxID := item.Units[0].ID, item.Units[1].ID

	// The new base unit comes first in the submitted list, so it is applied
	// before the old base is touched. The upsert must still succeed: exactly
	// one base is submitted.
	update := UpsertProductInput{
		ID:   &item.Product.ID,
		Code: "P-COLA",
		Name: "Cola 330ml",
		Units: []UnitSpec{
			{ID: &boxID, Name: "box", IsBase: true, MultiplierToBase: 1},
			{ID: &pieceID, Name: "piece", MultiplierToBase: 12},
		},
	}
	updated, err := svc.UpsertProduct(context.Background(), update)
	require.NoError(t, err)

	require.Len(t, updated.Units, 2)
	require.Equal(t, boxID, updated.Units[0].ID, "base moved to the box unit")
	require.True(t, updated.Units[0].IsBase)
	require.Equal(t, pieceID, updated.Units[1].ID)
	require.False(t, updated.Units[1].IsBase)
	require.Equal(t, float64(12), updated.Units[1].MultiplierToBase)
}

func TestUpsertProductDuplicateCode(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newTestService(repo)

	_, err := svc.UpsertProduct(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.UpsertProduct(context.Background(), validInput())
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpsertProductRejectsForeignUnitID(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newTestService(repo)

	item, err := svc.UpsertProduct(context.Background(), validInput())
	require.NoError(t, err)

	bogus := item.Units[1].ID + 999
	update := UpsertProductInput{
		ID:   &item.Product.ID,
		Code: "P-COLA",
		Name: "Cola",
		Units: []UnitSpec{
			{ID: &bogus, Name: "piece", IsBase: true, MultiplierToBase: 1},
		},
	}
	_, err = svc.UpsertProduct(context.Background(), update)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpsertProductUpdateMissingProduct(t *testing.T) {
	svc := newTestService(newMemCatalogRepo())

	missing := int64(42)
	in := validInput()
	in.ID = &missing
	_, err := svc.UpsertProduct(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteProductCascades(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newTestService(repo)

	item, err := svc.UpsertProduct(context.Background(), validInput())
	require.NoError(t, err)

	repo.assignments[7] = item.Product.ID
	repo.assignmentUnits[200] = memAssignmentUnit{ID: 200, AssignmentID: 7, UnitID: item.Units[0].ID}

	require.NoError(t, svc.DeleteProduct(context.Background(), item.Product.ID))

	require.Empty(t, repo.products)
	require.Empty(t, repo.units)
	require.Empty(t, repo.assignments)
	require.Empty(t, repo.assignmentUnits)

	// deleting again is a no-op
	require.NoError(t, svc.DeleteProduct(context.Background(), item.Product.ID))
}

func TestListCatalogAssemblesItems(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newTestService(repo)

	_, err := svc.UpsertProduct(context.Background(), validInput())
	require.NoError(t, err)

	second := validInput()
	second.Code = "P-WATER"
	second.Name = "Water 500ml"
	_, err = svc.UpsertProduct(context.Background(), second)
	require.NoError(t, err)

	items, err := svc.ListCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		require.Len(t, item.Units, 2)
		require.True(t, item.Units[0].IsBase)
	}
}
