package usecase

import (
	"context"
	"testing"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/query"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newProductUC(store *testutil.MemStore) *ProductUseCase {
	catalog := query.NewCatalog(store.Products())
	return NewProductUseCase(store.Products(), store.Categories(), store.Suppliers(), store.TxRunner(), catalog)
}

func TestProductCreate_CalculaPrecioConImpuesto(t *testing.T) {
	store := testutil.NewMemStore()
	uc := newProductUC(store)

	p, err := uc.Create(context.Background(), dto.CreateProductRequest{
		Name: " Martillo ", SKU: "8580001", Price: ptr(dec("10")), Cost: ptr(dec("4")), Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Martillo", p.Name)
	assert.True(t, p.TaxRate.Equal(dec("23")))
	assert.True(t, p.PriceWithTax.Equal(dec("12.30")))
	assert.True(t, p.CostWithTax.Equal(dec("4.92")))
	assert.Equal(t, 3, p.Quantity)
	assert.Equal(t, 10, p.ReorderLevel)
	assert.Equal(t, "pcs", p.Unit)
	assert.Equal(t, "low-stock", p.Status)
}

func TestProductCreate_SoloPrecioConImpuesto(t *testing.T) {
	uc := newProductUC(testutil.NewMemStore())

	p, err := uc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Sierra", PriceWithTax: ptr(dec("123")), TaxRate: ptr(dec("23")),
	})
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(dec("100")), p.Price.String())
	assert.True(t, p.PriceWithTax.Equal(dec("123")))
}

func TestProductCreate_Validaciones(t *testing.T) {
	store := testutil.NewMemStore()
	uc := newProductUC(store)
	ctx := context.Background()
	store.SeedProduct("Existente", "111", 1)

	tests := []struct {
		name string
		in   dto.CreateProductRequest
		err  error
	}{
		{"sin nombre", dto.CreateProductRequest{Name: "  "}, domain.ErrInvalidInput},
		{"tasa fuera de rango", dto.CreateProductRequest{Name: "x", TaxRate: ptr(dec("101"))}, domain.ErrInvalidInput},
		{"precio negativo", dto.CreateProductRequest{Name: "x", Price: ptr(dec("-1"))}, domain.ErrInvalidInput},
		{"cantidad negativa", dto.CreateProductRequest{Name: "x", Quantity: -1}, domain.ErrInvalidInput},
		{"sku duplicado", dto.CreateProductRequest{Name: "x", SKU: "111"}, domain.ErrDuplicate},
		{"categoría inexistente", dto.CreateProductRequest{Name: "x", CategoryID: ptr("nope")}, domain.ErrNotFound},
		{"proveedor inexistente", dto.CreateProductRequest{Name: "x", SupplierID: ptr("nope")}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestProductCreate_SkuVacioNoEsUnico(t *testing.T) {
	uc := newProductUC(testutil.NewMemStore())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{Name: "a"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "b"})
	require.NoError(t, err)
}

func TestProductUpdate_NoCambiaCantidadYRecalculaConNuevaTasa(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "1", 7)
	uc := newProductUC(store)

	p, err := uc.Update(context.Background(), id, dto.UpdateProductRequest{TaxRate: ptr(dec("10"))})
	require.NoError(t, err)
	assert.Equal(t, 7, p.Quantity)
	assert.True(t, p.Price.Equal(dec("10")))
	assert.True(t, p.PriceWithTax.Equal(dec("11")), p.PriceWithTax.String())
	assert.True(t, p.CostWithTax.Equal(dec("5.5")), p.CostWithTax.String())
	assert.Equal(t, 7, store.Quantity(id))
}

func TestProductUpdate_SkuPropioNoEsDuplicado(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "1", 7)
	store.SeedProduct("Tuerca", "2", 7)
	uc := newProductUC(store)
	ctx := context.Background()

	_, err := uc.Update(ctx, id, dto.UpdateProductRequest{SKU: ptr("1"), Name: ptr("Tornillo M4")})
	require.NoError(t, err)
	_, err = uc.Update(ctx, id, dto.UpdateProductRequest{SKU: ptr("2")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.Update(ctx, "nope", dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUpdate_QuitarCategoria(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "", 1)
	catID := store.SeedCategory("Ferretería")
	uc := newProductUC(store)
	ctx := context.Background()

	p, err := uc.Update(ctx, id, dto.UpdateProductRequest{CategoryID: &catID})
	require.NoError(t, err)
	assert.Equal(t, "Ferretería", p.CategoryName)

	p, err = uc.Update(ctx, id, dto.UpdateProductRequest{CategoryID: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, p.CategoryID)
}

func TestProductDelete_BorraMovimientos(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "", 1)
	other := store.SeedProduct("Tuerca", "", 1)
	require.NoError(t, store.Movements().Create(context.Background(), movement(id)))
	require.NoError(t, store.Movements().Create(context.Background(), movement(other)))
	uc := newProductUC(store)

	require.NoError(t, uc.Delete(context.Background(), id))
	assert.Nil(t, store.Product(id))
	movs := store.AllMovements()
	require.Len(t, movs, 1)
	assert.Equal(t, other, movs[0].ProductID)

	assert.ErrorIs(t, uc.Delete(context.Background(), id), domain.ErrNotFound)
}

func TestCheckSkuAvailability(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "858", 1)
	uc := newProductUC(store)
	ctx := context.Background()

	ok, err := uc.CheckSkuAvailability(ctx, "", "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = uc.CheckSkuAvailability(ctx, "858", "")
	assert.False(t, ok)
	ok, _ = uc.CheckSkuAvailability(ctx, "858", id)
	assert.True(t, ok)
	ok, _ = uc.CheckSkuAvailability(ctx, "999", "")
	assert.True(t, ok)
}

func TestProductList_CacheSeInvalidaTrasMutaciones(t *testing.T) {
	store := testutil.NewMemStore()
	uc := newProductUC(store)
	ctx := context.Background()

	list, err := uc.List(ctx, dto.ProductFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)

	created, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Nuevo", Quantity: 50})
	require.NoError(t, err)
	list, err = uc.List(ctx, dto.ProductFilterRequest{Status: "in-stock"})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)

	_, err = uc.Update(ctx, created.ID, dto.UpdateProductRequest{Name: ptr("Renombrado")})
	require.NoError(t, err)
	got, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renombrado", got.Name)

	require.NoError(t, uc.Delete(ctx, created.ID))
	_, err = uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductList_FiltrosDeQueryInvalidos(t *testing.T) {
	uc := newProductUC(testutil.NewMemStore())
	ctx := context.Background()

	_, err := uc.List(ctx, dto.ProductFilterRequest{PriceMin: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.List(ctx, dto.ProductFilterRequest{Sort: "random"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.List(ctx, dto.ProductFilterRequest{MarginMin: "12,5"})
	assert.NoError(t, err, "acepta coma decimal")
}

func TestProductLowStockYSearch(t *testing.T) {
	store := testutil.NewMemStore()
	store.SeedProduct("Alfa", "A1", 3)
	store.SeedProduct("Beta", "B1", 0)
	store.SeedProduct("Gamma", "G1", 30)
	uc := newProductUC(store)
	ctx := context.Background()

	low, err := uc.LowStock(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, low.Total)
	assert.Equal(t, "Beta", low.Items[0].Name)
	assert.Equal(t, "out-of-stock", low.Items[0].Status)

	found, err := uc.Search(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, 1, found.Total)
	assert.Equal(t, "Gamma", found.Items[0].Name)
}
