package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	mu sync.Mutex
	n  int
}

func (c *countingCache) Invalidate() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func newEngine(store *testutil.MemStore) (*StockEngine, *countingCache) {
	cache := &countingCache{}
	e := NewStockEngine(store.TxRunner(), store.Movements(), cache, nil, nil)
	e.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return e, cache
}

func TestApplyMovement_EntradaSumaYRegistraMovimiento(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "111", 5)
	e, cache := newEngine(store)

	res, err := e.ApplyMovement(context.Background(), MovementInput{ProductID: id, Type: entity.MovementTypeIn, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, res.PreviousQuantity)
	assert.Equal(t, 8, res.NewQuantity)
	assert.Equal(t, 8, store.Quantity(id))
	assert.Equal(t, 1, cache.n)

	movs := store.AllMovements()
	require.Len(t, movs, 1)
	assert.Equal(t, res.MovementID, movs[0].ID)
	assert.Equal(t, entity.MovementTypeIn, movs[0].Type)
	assert.Equal(t, 3, movs[0].Quantity)
	assert.Equal(t, "STK-1700000000123", movs[0].Reference)
	assert.Equal(t, "Entrada de stock", movs[0].Notes)
	assert.True(t, movs[0].CostWithoutTax.IsZero())
	assert.Nil(t, movs[0].SupplierID)
}

func TestApplyMovement_SalidaPuedeDejarNegativo(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "", 2)
	e, _ := newEngine(store)

	res, err := e.ApplyMovement(context.Background(), MovementInput{ProductID: id, Type: entity.MovementTypeOut, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, -3, res.NewQuantity)
	assert.Equal(t, -3, store.Quantity(id))
	assert.Equal(t, "Salida de stock", store.AllMovements()[0].Notes)
}

func TestApplyMovement_AjusteFijaCantidad(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "", 40)
	e, _ := newEngine(store)

	res, err := e.ApplyMovement(context.Background(), MovementInput{
		ProductID: id, Type: entity.MovementTypeAdjustment, Quantity: 7,
		Reference: "R-1", Notes: "recuento",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, res.NewQuantity)
	mov := store.AllMovements()[0]
	assert.Equal(t, "R-1", mov.Reference)
	assert.Equal(t, "recuento", mov.Notes)
	assert.Equal(t, 7, mov.Quantity)
}

func TestApplyMovement_CantidadCeroDejaRastro(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "", 4)
	e, _ := newEngine(store)

	_, err := e.ApplyMovement(context.Background(), MovementInput{ProductID: id, Type: entity.MovementTypeIn, Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, 4, store.Quantity(id))
	assert.Len(t, store.AllMovements(), 1)
}

func TestApplyMovement_AjusteConCeroVaciaExistencia(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "", 4)
	e, _ := newEngine(store)

	res, err := e.ApplyMovement(context.Background(), MovementInput{ProductID: id, Type: entity.MovementTypeAdjustment, Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, res.NewQuantity)
	assert.Equal(t, 0, store.Quantity(id))
	require.Len(t, store.AllMovements(), 1)
	assert.Equal(t, "Ajuste de stock", store.AllMovements()[0].Notes)
}

func TestApplyMovement_CantidadFueraDeRango(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "", 4)
	e, _ := newEngine(store)
	ctx := context.Background()

	_, err := e.ApplyMovement(ctx, MovementInput{ProductID: id, Type: entity.MovementTypeIn, Quantity: domaininv.MaxQuantity + 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.ApplyMovement(ctx, MovementInput{ProductID: id, Type: entity.MovementTypeIn, Quantity: domaininv.MaxQuantity})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "4 + MaxQuantity no cabe en la columna")

	assert.Equal(t, 4, store.Quantity(id))
	assert.Empty(t, store.AllMovements())
}

func TestApplyMovement_MetadatosOpcionales(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "", 0)
	supID := store.SeedSupplier("ACME")
	e, _ := newEngine(store)
	cost := decimal.RequireFromString("4.50")
	tax := decimal.RequireFromString("1.04")
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := e.ApplyMovement(context.Background(), MovementInput{
		ProductID: id, Type: entity.MovementTypeIn, Quantity: 1,
		CostWithoutTax: &cost, TaxAmount: &tax, SupplierID: &supID, MovementDate: &date,
	})
	require.NoError(t, err)
	mov := store.AllMovements()[0]
	assert.True(t, mov.CostWithoutTax.Equal(cost))
	assert.True(t, mov.TaxAmount.Equal(tax))
	require.NotNil(t, mov.SupplierID)
	assert.Equal(t, supID, *mov.SupplierID)
	assert.True(t, mov.MovementDate.Equal(date))
}

func TestApplyMovement_EntradaInvalida(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "", 4)
	e, cache := newEngine(store)

	tests := []struct {
		name string
		in   MovementInput
	}{
		{"tipo desconocido", MovementInput{ProductID: id, Type: "transfer", Quantity: 1}},
		{"cantidad negativa", MovementInput{ProductID: id, Type: entity.MovementTypeIn, Quantity: -1}},
		{"sin producto", MovementInput{Type: entity.MovementTypeIn, Quantity: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ApplyMovement(context.Background(), tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, 4, store.Quantity(id))
	assert.Empty(t, store.AllMovements())
	assert.Zero(t, cache.n)
}

func TestApplyMovement_ProductoInexistente(t *testing.T) {
	store := testutil.NewMemStore()
	e, _ := newEngine(store)

	_, err := e.ApplyMovement(context.Background(), MovementInput{ProductID: "nope", Type: entity.MovementTypeIn, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, store.AllMovements())
}

func TestApplyMovement_FalloAlInsertarNoCambiaCantidad(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "", 10)
	store.FailMovementAfter = 1
	e, cache := newEngine(store)

	_, err := e.ApplyMovement(context.Background(), MovementInput{ProductID: id, Type: entity.MovementTypeOut, Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, 10, store.Quantity(id))
	assert.Empty(t, store.AllMovements())
	assert.Zero(t, cache.n)
}

// La cantidad final coincide con reproducir el historial desde la cantidad inicial.
func TestApplyMovement_ConcurrenteSinPerderActualizaciones(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "", 100)
	e, _ := newEngine(store)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			typ := entity.MovementTypeIn
			if i%2 == 1 {
				typ = entity.MovementTypeOut
			}
			_, err := e.ApplyMovement(context.Background(), MovementInput{ProductID: id, Type: typ, Quantity: i % 7})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	replay := 100
	for _, m := range store.AllMovements() {
		replay = NextQuantity(replay, m.Type, m.Quantity)
	}
	assert.Equal(t, replay, store.Quantity(id))
	assert.Len(t, store.AllMovements(), 50)
}

func TestListMovements_MasRecientePrimero(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "", 0)
	e, _ := newEngine(store)
	ctx := context.Background()

	_, err := e.ApplyMovement(ctx, MovementInput{ProductID: id, Type: entity.MovementTypeIn, Quantity: 5, Reference: "A"})
	require.NoError(t, err)
	_, err = e.ApplyMovement(ctx, MovementInput{ProductID: id, Type: entity.MovementTypeOut, Quantity: 2, Reference: "B"})
	require.NoError(t, err)

	list, err := e.ListMovements(ctx, id)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].Reference)
	assert.Equal(t, "A", list[1].Reference)
	assert.Equal(t, "Tornillo", list[0].ProductName)
}

func TestNextQuantity(t *testing.T) {
	assert.Equal(t, 15, NextQuantity(10, entity.MovementTypeIn, 5))
	assert.Equal(t, 5, NextQuantity(10, entity.MovementTypeOut, 5))
	assert.Equal(t, -5, NextQuantity(0, entity.MovementTypeOut, 5))
	assert.Equal(t, 3, NextQuantity(10, entity.MovementTypeAdjustment, 3))
}
