package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

func snapshot(qty ...int) []entity.ProductView {
	out := make([]entity.ProductView, 0, len(qty))
	ids := []string{"p1", "p2", "p3", "p4"}
	for i, q := range qty {
		out = append(out, entity.ProductView{Product: entity.Product{ID: ids[i], Name: "Producto " + ids[i], Quantity: q}})
	}
	return out
}

func TestStartCount_TodoPendiente(t *testing.T) {
	s := inventory.StartCount(snapshot(10, 3), time.Now())

	lines := s.Lines()
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, entity.CountLinePending, l.State)
		assert.Equal(t, l.Expected, l.Counted, "counted se inicializa con expected")
	}
	assert.Equal(t, inventory.CountSummary{Total: 2, Pending: 2}, s.Summary())
	assert.Empty(t, s.Corrections(), "sin conteos no hay correcciones")
}

func TestRecord_TransicionesYRecuento(t *testing.T) {
	s := inventory.StartCount(snapshot(10), time.Now())

	line, err := s.Record("p1", 7)
	require.NoError(t, err)
	assert.Equal(t, entity.CountLineDiffering, line.State)

	line, err = s.Record("p1", 10)
	require.NoError(t, err)
	assert.Equal(t, entity.CountLineMatched, line.State, "volver a contar reevalúa el estado")
}

func TestRecord_Errores(t *testing.T) {
	s := inventory.StartCount(snapshot(10), time.Now())

	_, err := s.Record("nope", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Record("p1", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCorrections_FaltanteSobranteYCoincidente(t *testing.T) {
	s := inventory.StartCount(snapshot(10, 10, 10), time.Now())
	_, _ = s.Record("p1", 7)
	_, _ = s.Record("p2", 10)
	_, _ = s.Record("p3", 15)

	corr := s.Corrections()
	require.Len(t, corr, 2, "la línea coincidente no genera movimiento")

	assert.Equal(t, "p1", corr[0].ProductID)
	assert.Equal(t, entity.MovementTypeOut, corr[0].Type)
	assert.Equal(t, 3, corr[0].Quantity)
	assert.Equal(t, inventory.CorrectionReference, corr[0].Reference)
	assert.Equal(t, "Corrección de inventario: 10 → 7", corr[0].Notes)

	assert.Equal(t, "p3", corr[1].ProductID)
	assert.Equal(t, entity.MovementTypeIn, corr[1].Type)
	assert.Equal(t, 5, corr[1].Quantity)

	assert.Equal(t, inventory.CountSummary{Total: 3, Matched: 1, Differing: 2}, s.Summary())
}

func TestArchive_CopiaLineasYTotales(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := inventory.StartCount(snapshot(4, 2), now)
	_, _ = s.Record("p1", 3)

	a := s.Archive("a1", now, true)
	assert.Equal(t, "a1", a.ID)
	assert.True(t, a.Committed)
	assert.Equal(t, 2, a.Total)
	assert.Equal(t, 1, a.Differing)
	assert.Equal(t, 1, a.Pending)
	require.Len(t, a.Lines, 2)

	a.Lines[0].Counted = 99
	assert.Equal(t, 3, s.Lines()[0].Counted, "el archivo no comparte memoria con la sesión")
}
