package exchange

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/query"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

type recordingMetrics struct {
	format                   string
	created, updated, failed int
}

func (*recordingMetrics) MovementApplied(string) {}
func (*recordingMetrics) CountCommitted(int)     {}
func (m *recordingMetrics) ImportFinished(format string, created, updated, failed int) {
	m.format, m.created, m.updated, m.failed = format, created, updated, failed
}
func (*recordingMetrics) BackupFinished(bool, int64) {}

func newExchange(store *testutil.MemStore, metrics *recordingMetrics) *ExchangeUseCase {
	catalog := query.NewCatalog(store.Products())
	products := usecase.NewProductUseCase(store.Products(), store.Categories(), store.Suppliers(), store.TxRunner(), catalog)
	engine := inventory.NewStockEngine(store.TxRunner(), store.Movements(), catalog, nil, nil)
	if metrics == nil {
		metrics = &recordingMetrics{}
	}
	return NewExchangeUseCase(store.Products(), store.Categories(), store.Suppliers(), products, engine, metrics, nil)
}

func TestExportCSV_BOMYPuntoYComa(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "858", 4)
	cat := store.SeedCategory("Ferretería")
	store.SetProductRefs(id, &cat, nil)
	uc := newExchange(store, nil)

	data, err := uc.Export(context.Background(), FormatCSV)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("\uFEFF")))

	lines := strings.Split(strings.TrimSpace(string(data[3:])), "\r\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(Headers(), ";"), lines[0])
	fields := strings.Split(lines[1], ";")
	require.Len(t, fields, len(Columns))
	assert.Equal(t, "Tornillo", fields[0])
	assert.Equal(t, "858", fields[1])
	assert.Equal(t, "Ferretería", fields[3])
	assert.Equal(t, "4", fields[5])
	assert.Equal(t, "10.00", fields[6])
	assert.Equal(t, "12.30", fields[7])
	assert.Equal(t, "50.00", fields[11])
	assert.Equal(t, "low-stock", fields[12])
	assert.Equal(t, "2024-01-01 10:00:00", fields[15])
}

func TestExportXLSX_Legible(t *testing.T) {
	store := testutil.NewMemStore()
	store.SeedProduct("Tornillo", "858", 40)
	uc := newExchange(store, nil)

	data, err := uc.Export(context.Background(), FormatXLSX)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Headers(), rows[0])
	assert.Equal(t, "Tornillo", rows[1][0])
	assert.Equal(t, "40", rows[1][5])
	assert.Equal(t, "in-stock", rows[1][12])
}

func TestExport_FormatoDesconocido(t *testing.T) {
	uc := newExchange(testutil.NewMemStore(), nil)
	_, err := uc.Export(context.Background(), "pdf")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestImportCSV_ComasYBOMCreaProductosYCategorias(t *testing.T) {
	store := testutil.NewMemStore()
	metrics := &recordingMetrics{}
	uc := newExchange(store, metrics)
	csv := "\uFEFFname,sku,category,quantity,price,taxrate\n" +
		"Martillo,111,Herramientas,5,\"10,00\",20\n" +
		"Sierra,222,herramientas,0,20,\n\n"

	report, err := uc.Import(context.Background(), FormatCSV, []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, recordingMetrics{format: FormatCSV, created: 2}, *metrics)

	cats, err := store.Categories().List(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1, "la categoría se resuelve sin distinguir mayúsculas")

	p, err := store.Products().GetBySKU(context.Background(), "111")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 5, p.Quantity)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(10)))
	assert.True(t, p.PriceWithTax.Equal(decimal.NewFromInt(12)), p.PriceWithTax.String())
	require.NotNil(t, p.CategoryID)
	assert.Equal(t, cats[0].ID, *p.CategoryID)
}

func TestImportCSV_Windows1250PuntoYComa(t *testing.T) {
	store := testutil.NewMemStore()
	uc := newExchange(store, nil)
	src := "Názov produktu;EAN;Množstvo;Dodávateľ\nČokoláda horká;333;7;Žilina s.r.o.\n"
	encoded, err := charmap.Windows1250.NewEncoder().Bytes([]byte(src))
	require.NoError(t, err)

	report, err := uc.Import(context.Background(), FormatCSV, encoded)
	require.NoError(t, err)
	require.Equal(t, 1, report.Created, report.Errors)

	p, _ := store.Products().GetBySKU(context.Background(), "333")
	require.NotNil(t, p)
	assert.Equal(t, "Čokoláda horká", p.Name)
	sup, _ := store.Suppliers().GetByName(context.Background(), "Žilina s.r.o.")
	require.NotNil(t, sup)
	assert.Equal(t, sup.ID, *p.SupplierID)
}

func TestImport_ExistenteActualizaYSumaCantidad(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "858", 4)
	uc := newExchange(store, nil)
	csv := "Name;SKU;Quantity;Price;Description\nTornillo M4;858;6;11;acero\n"

	report, err := uc.Import(context.Background(), FormatCSV, []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Created)

	p := store.Product(id)
	assert.Equal(t, "Tornillo M4", p.Name)
	assert.Equal(t, "acero", p.Description)
	assert.Equal(t, 10, p.Quantity)
	assert.True(t, p.PriceWithTax.Equal(decimal.RequireFromString("13.53")), p.PriceWithTax.String())

	movs := store.AllMovements()
	require.Len(t, movs, 1)
	assert.Equal(t, "IMPORT", movs[0].Reference)
	assert.Equal(t, 6, movs[0].Quantity)
}

func TestImport_SinSkuEmparejaPorNombre(t *testing.T) {
	store := testutil.NewMemStore()
	id := store.SeedProduct("Tornillo", "", 1)
	uc := newExchange(store, nil)

	report, err := uc.Import(context.Background(), FormatCSV, []byte("Name;Unit\ntornillo;kg\nTornillo nuevo;\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, "kg", store.Product(id).Unit)
}

func TestImport_SinColumnaNameSeRechaza(t *testing.T) {
	uc := newExchange(testutil.NewMemStore(), nil)

	_, err := uc.Import(context.Background(), FormatCSV, []byte("SKU;Quantity\n111;4\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Import(context.Background(), FormatCSV, []byte(""))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestImport_ErroresPorFilaNoDetienenLaImportacion(t *testing.T) {
	store := testutil.NewMemStore()
	store.SeedProduct("Existente", "999", 1)
	metrics := &recordingMetrics{}
	uc := newExchange(store, metrics)
	csv := "Name;SKU;Quantity;TaxRate\n" +
		"Bueno;1;1;\n" +
		";2;1;\n" +
		"Malo;3;abc;\n" +
		"Tasa;4;1;150\n" +
		"Negativo;999;-2;\n" +
		"Otro bueno;5;2;\n"

	report, err := uc.Import(context.Background(), FormatCSV, []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 6, report.Rows)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 4, report.Failed)
	require.Len(t, report.Errors, 4)
	assert.Equal(t, 2, report.Errors[0].Row)
	assert.Equal(t, 3, report.Errors[1].Row)
	assert.Contains(t, report.Errors[1].Message, "Quantity")
	assert.Equal(t, 4, report.Errors[2].Row)
	assert.Equal(t, 5, report.Errors[3].Row)
	assert.Equal(t, 4, metrics.failed)
	assert.Equal(t, 1, store.Quantity(mustSKU(t, store, "999")), "la fila negativa no toca el stock")
}

func mustSKU(t *testing.T, store *testutil.MemStore, sku string) string {
	t.Helper()
	p, err := store.Products().GetBySKU(context.Background(), sku)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.ID
}

func TestImportXLSX_DesdeExportacion(t *testing.T) {
	src := testutil.NewMemStore()
	src.SeedProduct("Alfa", "A1", 3)
	src.SeedProduct("Beta", "B1", 0)
	data, err := newExchange(src, nil).Export(context.Background(), FormatXLSX)
	require.NoError(t, err)

	dst := testutil.NewMemStore()
	report, err := newExchange(dst, nil).Import(context.Background(), DetectFormat("backup.xlsx", data), data)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created, report.Errors)

	p, _ := dst.Products().GetBySKU(context.Background(), "A1")
	require.NotNil(t, p)
	assert.Equal(t, 3, p.Quantity)
	assert.True(t, p.CostWithTax.Equal(decimal.RequireFromString("6.15")), p.CostWithTax.String())
	assert.Equal(t, 2024, p.CreatedAt.Year())
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatXLSX, DetectFormat("x.XLSX", nil))
	assert.Equal(t, FormatCSV, DetectFormat("x.csv", []byte("PK\x03\x04")))
	assert.Equal(t, FormatXLSX, DetectFormat("", []byte("PK\x03\x04rest")))
	assert.Equal(t, FormatCSV, DetectFormat("", []byte("Name;SKU")))
}

func TestParseHelpers(t *testing.T) {
	d, err := parseDecimal("Price", " 12,50 € ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("12.5")))

	d, err = parseDecimal("Price", "1,234.50")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("1234.5")))

	n, err := parseInt("Quantity", "12.0")
	require.NoError(t, err)
	assert.Equal(t, 12, *n)

	_, err = parseInt("Quantity", "1.5")
	assert.Error(t, err)

	_, err = parseInt("Quantity", "99999999999999999999")
	assert.Error(t, err)

	_, err = parseInt("Quantity", "2147483648")
	assert.Error(t, err)

	n, err = parseInt("Quantity", "2147483647")
	require.NoError(t, err)
	assert.Equal(t, 2147483647, *n)

	empty, err := parseDecimal("Price", "  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	ts, err := parseTime("CreatedAt", "31.12.2023")
	require.NoError(t, err)
	assert.Equal(t, 2023, ts.Year())
}
