package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invalidations struct{ n int }

func (i *invalidations) Invalidate() { i.n++ }

func movement(productID string) *entity.StockMovement {
	return &entity.StockMovement{
		ID: uuid.New().String(), ProductID: productID, Quantity: 1, Type: entity.MovementTypeIn,
		CostWithoutTax: decimal.Zero, TaxAmount: decimal.Zero, MovementDate: time.Now(), CreatedAt: time.Now(),
	}
}

func TestCategory_CRUD(t *testing.T) {
	store := testutil.NewMemStore()
	cache := &invalidations{}
	uc := NewCategoryUseCase(store.Categories(), store.TxRunner(), cache)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CategoryRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := uc.Create(ctx, dto.CategoryRequest{Name: "Herramientas"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CategoryRequest{Name: "Herramientas"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	up, err := uc.Update(ctx, c.ID, dto.CategoryRequest{Name: "Útiles", Description: "manuales"})
	require.NoError(t, err)
	assert.Equal(t, "Útiles", up.Name)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 2, cache.n)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryDelete_DejaProductosSinCategoria(t *testing.T) {
	store := testutil.NewMemStore()
	catID := store.SeedCategory("Herramientas")
	pid := store.SeedProduct("Martillo", "", 1)
	store.SetProductRefs(pid, &catID, nil)
	uc := NewCategoryUseCase(store.Categories(), store.TxRunner(), nil)

	require.NoError(t, uc.Delete(context.Background(), catID))
	p := store.Product(pid)
	require.NotNil(t, p)
	assert.Nil(t, p.CategoryID)

	assert.ErrorIs(t, uc.Delete(context.Background(), catID), domain.ErrNotFound)
}

func TestSupplierDelete_DejaProductosYMovimientosSinProveedor(t *testing.T) {
	store := testutil.NewMemStore()
	supID := store.SeedSupplier("ACME")
	pid := store.SeedProduct("Martillo", "", 1)
	store.SetProductRefs(pid, nil, &supID)
	m := movement(pid)
	m.SupplierID = &supID
	require.NoError(t, store.Movements().Create(context.Background(), m))
	cache := &invalidations{}
	uc := NewSupplierUseCase(store.Suppliers(), store.TxRunner(), cache)

	require.NoError(t, uc.Delete(context.Background(), supID))
	assert.Nil(t, store.Product(pid).SupplierID)
	movs := store.AllMovements()
	require.Len(t, movs, 1)
	assert.Nil(t, movs[0].SupplierID)
	assert.Equal(t, 1, cache.n)
}

func TestSupplier_CRUDYBusqueda(t *testing.T) {
	store := testutil.NewMemStore()
	uc := NewSupplierUseCase(store.Suppliers(), store.TxRunner(), nil)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.SupplierRequest{Email: "x@y.z"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	acme, err := uc.Create(ctx, dto.SupplierRequest{Name: "ACME", Email: "ventas@acme.sk", CompanyIDNumber: "12345678"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.SupplierRequest{Name: "Bolt", Phone: "+421 900"})
	require.NoError(t, err)

	found, err := uc.Search(ctx, "ACME.SK")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, acme.ID, found[0].ID)

	found, err = uc.Search(ctx, "5678")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	all, err := uc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	up, err := uc.Update(ctx, acme.ID, dto.SupplierRequest{Name: "ACME s.r.o.", TaxID: "SK202"})
	require.NoError(t, err)
	assert.Equal(t, "SK202", up.TaxID)
	assert.Equal(t, acme.CreatedAt, up.CreatedAt)

	_, err = uc.Update(ctx, "nope", dto.SupplierRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// catalogRuns cuenta las transacciones abiertas sobre el almacén en memoria.
type catalogRuns struct {
	CatalogTxRunner
	n int
}

func (r *catalogRuns) RunCatalog(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
) error) error {
	r.n++
	return r.CatalogTxRunner.RunCatalog(ctx, fn)
}

func TestDelete_IDMalformadoEsNoEncontradoSinAbrirTransaccion(t *testing.T) {
	store := testutil.NewMemStore()
	store.SeedCategory("Herramientas")
	store.SeedSupplier("ACME")
	runs := &catalogRuns{CatalogTxRunner: store.TxRunner()}
	cache := &invalidations{}
	ctx := context.Background()

	err := NewCategoryUseCase(store.Categories(), runs, cache).Delete(ctx, "no-es-un-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = NewSupplierUseCase(store.Suppliers(), runs, cache).Delete(ctx, "123")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Zero(t, runs.n)
	assert.Zero(t, cache.n)
}
