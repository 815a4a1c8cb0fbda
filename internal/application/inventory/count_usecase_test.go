package inventory

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	got *entity.CountArchive
	err error
}

func (f *fakeRenderer) RenderCountReport(a *entity.CountArchive) ([]byte, error) {
	f.got = a
	return []byte("%PDF"), f.err
}

func newCountUC(store *testutil.MemStore) (*CountUseCase, *fakeRenderer) {
	r := &fakeRenderer{}
	uc := NewCountUseCase(store.Products(), store.Archives(), store.TxRunner(), r, nil, nil, nil)
	uc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return uc, r
}

func TestCount_FlujoCompletoAplicaCorrecciones(t *testing.T) {
	store := testutil.NewMemStore()
	a := store.SeedProduct("A", "1", 10)
	b := store.SeedProduct("B", "2", 5)
	c := store.SeedProduct("C", "3", 0)
	uc, _ := newCountUC(store)
	ctx := context.Background()

	session, err := uc.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.CountSummaryResponse{Total: 3, Pending: 3}, session.Summary)

	_, err = uc.Record(ctx, dto.RecordCountRequest{ProductID: a, Counted: 8})
	require.NoError(t, err)
	_, err = uc.Record(ctx, dto.RecordCountRequest{ProductID: b, Counted: 5})
	require.NoError(t, err)
	_, err = uc.Record(ctx, dto.RecordCountRequest{ProductID: c, Counted: 4})
	require.NoError(t, err)

	cur, err := uc.Current(false)
	require.NoError(t, err)
	assert.Equal(t, dto.CountSummaryResponse{Total: 3, Matched: 1, Differing: 2}, cur.Summary)
	assert.Empty(t, cur.Lines)

	res, err := uc.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)
	assert.Len(t, res.MovementIDs, 2)

	assert.Equal(t, 8, store.Quantity(a))
	assert.Equal(t, 5, store.Quantity(b))
	assert.Equal(t, 4, store.Quantity(c))

	for _, m := range store.AllMovements() {
		assert.Equal(t, domaininv.CorrectionReference, m.Reference)
		switch m.ProductID {
		case a:
			assert.Equal(t, entity.MovementTypeOut, m.Type)
			assert.Equal(t, 2, m.Quantity)
			assert.Equal(t, "Corrección de inventario: 10 → 8", m.Notes)
		case c:
			assert.Equal(t, entity.MovementTypeIn, m.Type)
			assert.Equal(t, 4, m.Quantity)
		default:
			t.Fatalf("movimiento inesperado para %s", m.ProductID)
		}
	}

	archive, err := uc.GetArchive(ctx, res.ArchiveID)
	require.NoError(t, err)
	assert.True(t, archive.Committed)
	assert.Len(t, archive.Lines, 3)

	// La sesión se cerró: otro commit no vuelve a aplicar nada.
	_, err = uc.Commit(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveCount)
	assert.Len(t, store.AllMovements(), 2)
}

func TestCount_StartConSesionActiva(t *testing.T) {
	store := testutil.NewMemStore()
	store.SeedProduct("A", "", 1)
	uc, _ := newCountUC(store)

	_, err := uc.Start(context.Background())
	require.NoError(t, err)
	_, err = uc.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCount_SinSesion(t *testing.T) {
	uc, _ := newCountUC(testutil.NewMemStore())
	ctx := context.Background()

	_, err := uc.Record(ctx, dto.RecordCountRequest{ProductID: "x", Counted: 1})
	assert.ErrorIs(t, err, domain.ErrNoActiveCount)
	_, err = uc.Commit(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveCount)
	_, err = uc.Save(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveCount)
	assert.ErrorIs(t, uc.Cancel(), domain.ErrNoActiveCount)
	_, err = uc.ExportCSV(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNoActiveCount)
}

func TestCount_RecordInvalido(t *testing.T) {
	store := testutil.NewMemStore()
	a := store.SeedProduct("A", "", 1)
	uc, _ := newCountUC(store)
	ctx := context.Background()
	_, err := uc.Start(ctx)
	require.NoError(t, err)

	_, err = uc.Record(ctx, dto.RecordCountRequest{ProductID: a, Counted: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Record(ctx, dto.RecordCountRequest{ProductID: "otro", Counted: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCount_CommitFallidoNoEscribeNadaYConservaSesion(t *testing.T) {
	store := testutil.NewMemStore()
	a := store.SeedProduct("A", "", 10)
	b := store.SeedProduct("B", "", 10)
	uc, _ := newCountUC(store)
	ctx := context.Background()
	_, err := uc.Start(ctx)
	require.NoError(t, err)
	_, err = uc.Record(ctx, dto.RecordCountRequest{ProductID: a, Counted: 1})
	require.NoError(t, err)
	_, err = uc.Record(ctx, dto.RecordCountRequest{ProductID: b, Counted: 2})
	require.NoError(t, err)

	store.FailMovementAfter = 2
	_, err = uc.Commit(ctx)
	require.Error(t, err)
	assert.Equal(t, 10, store.Quantity(a))
	assert.Equal(t, 10, store.Quantity(b))
	assert.Empty(t, store.AllMovements())
	archives, err := uc.ListArchives(ctx)
	require.NoError(t, err)
	assert.Empty(t, archives)

	// Se puede reintentar.
	store.FailMovementAfter = 0
	res, err := uc.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 1, store.Quantity(a))
}

func TestCount_CancelNoEscribe(t *testing.T) {
	store := testutil.NewMemStore()
	a := store.SeedProduct("A", "", 10)
	uc, _ := newCountUC(store)
	ctx := context.Background()
	_, err := uc.Start(ctx)
	require.NoError(t, err)
	_, err = uc.Record(ctx, dto.RecordCountRequest{ProductID: a, Counted: 3})
	require.NoError(t, err)

	require.NoError(t, uc.Cancel())
	assert.Equal(t, 10, store.Quantity(a))
	_, err = uc.Current(true)
	assert.ErrorIs(t, err, domain.ErrNoActiveCount)
}

func TestCount_SaveArchivaSinAplicar(t *testing.T) {
	store := testutil.NewMemStore()
	a := store.SeedProduct("A", "", 10)
	uc, _ := newCountUC(store)
	ctx := context.Background()
	_, err := uc.Start(ctx)
	require.NoError(t, err)
	_, err = uc.Record(ctx, dto.RecordCountRequest{ProductID: a, Counted: 3})
	require.NoError(t, err)

	saved, err := uc.Save(ctx)
	require.NoError(t, err)
	assert.False(t, saved.Committed)
	assert.Equal(t, 1, saved.Summary.Differing)
	assert.Equal(t, 10, store.Quantity(a))

	_, err = uc.Current(false)
	assert.NoError(t, err, "la sesión sigue activa tras guardar")

	list, err := uc.ListArchives(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Lines)

	n, err := uc.ClearArchives(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.ErrorIs(t, uc.DeleteArchive(ctx, saved.ID), domain.ErrNotFound)
}

func TestCount_ExportCSV(t *testing.T) {
	store := testutil.NewMemStore()
	a := store.SeedProduct("Martillo", "777", 10)
	store.SeedProduct("Clavo", "888", 2)
	uc, _ := newCountUC(store)
	ctx := context.Background()
	_, err := uc.Start(ctx)
	require.NoError(t, err)
	_, err = uc.Record(ctx, dto.RecordCountRequest{ProductID: a, Counted: 7})
	require.NoError(t, err)

	out, err := uc.ExportCSV(ctx, "")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("\uFEFF")))

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(out), "\uFEFF")))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Producto", rows[0][0])
	// Productos ordenados por nombre: Clavo, Martillo.
	assert.Equal(t, []string{"Martillo", "777", "10", "7", "-3", "", "", "Diferencia"}, rows[2])
	assert.Equal(t, []string{"Sin contar"}, rows[1][7:])
	assert.Equal(t, []string{"Diferencias", "1"}, rows[len(rows)-2])
}

func TestCount_ExportPDF(t *testing.T) {
	store := testutil.NewMemStore()
	store.SeedProduct("A", "", 1)
	uc, r := newCountUC(store)
	ctx := context.Background()
	_, err := uc.Start(ctx)
	require.NoError(t, err)

	out, err := uc.ExportPDF(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), out)
	require.NotNil(t, r.got)
	assert.Len(t, r.got.Lines, 1)

	r.err = errors.New("boom")
	_, err = uc.ExportPDF(ctx, "")
	assert.Error(t, err)

	_, err = uc.ExportPDF(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
