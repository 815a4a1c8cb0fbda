package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Referencia de los movimientos de entrada generados al importar cantidades de productos existentes.
const importReference = "IMPORT"

// ProductWriter altas y modificaciones del catálogo (validación, precios, caché).
type ProductWriter interface {
	Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error)
}

// StockApplier aplica movimientos de stock.
type StockApplier interface {
	ApplyMovement(ctx context.Context, in inventory.MovementInput) (*inventory.MovementResult, error)
}

// ExchangeUseCase exportación e importación del catálogo.
type ExchangeUseCase struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	writer     ProductWriter
	stock      StockApplier
	metrics    ports.Metrics
	log        *logger.Logger
}

// NewExchangeUseCase construye el caso de uso.
func NewExchangeUseCase(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	suppliers repository.SupplierRepository,
	writer ProductWriter,
	stock StockApplier,
	metrics ports.Metrics,
	log *logger.Logger,
) *ExchangeUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ExchangeUseCase{
		products:   products,
		categories: categories,
		suppliers:  suppliers,
		writer:     writer,
		stock:      stock,
		metrics:    metrics,
		log:        log.Component("exchange"),
	}
}

// Export genera el fichero con todos los productos ordenados por nombre.
func (uc *ExchangeUseCase) Export(ctx context.Context, format string) ([]byte, error) {
	views, err := uc.products.ListViews(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(views)+1)
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c.Header
	}
	rows = append(rows, header)
	for _, v := range views {
		row := make([]any, len(Columns))
		for i, c := range Columns {
			row[i] = c.value(v)
		}
		rows = append(rows, row)
	}

	switch format {
	case FormatCSV:
		return writeCSV(rows)
	case FormatXLSX:
		return writeXLSX(rows)
	default:
		return nil, fmt.Errorf("%w: formato %q no soportado", domain.ErrInvalidInput, format)
	}
}

// ExportFilename nombre sugerido para la descarga.
func ExportFilename(format string, now time.Time) string {
	return fmt.Sprintf("products_%s.%s", now.Format("20060102_150405"), format)
}

// Import lee el fichero y da de alta o actualiza cada fila. Los productos se emparejan por SKU
// o, sin SKU, por nombre. Las filas con error se anotan en el informe y la importación continúa.
func (uc *ExchangeUseCase) Import(ctx context.Context, format string, data []byte) (*dto.ImportReport, error) {
	rows, err := readRows(format, data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: fichero vacío", domain.ErrInvalidInput)
	}
	mapping, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	run := &importRun{uc: uc, categories: map[string]*string{}, suppliers: map[string]*string{}}
	if err := run.loadNames(ctx); err != nil {
		return nil, err
	}

	report := &dto.ImportReport{Format: format, Errors: []dto.ImportRowError{}}
	for i, raw := range rows[1:] {
		if blank(raw) {
			continue
		}
		report.Rows++
		rowNum := i + 1
		created, err := run.importRow(ctx, mapping, raw)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			report.Failed++
			report.Errors = append(report.Errors, dto.ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	uc.metrics.ImportFinished(format, report.Created, report.Updated, report.Failed)
	uc.log.Info().
		Str("format", format).
		Int("rows", report.Rows).
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("failed", report.Failed).
		Msg("importación de productos")
	return report, nil
}

// mapHeader índice de columna del fichero -> columna del esquema. Cabeceras desconocidas se ignoran.
func mapHeader(header []string) (map[int]Column, error) {
	mapping := make(map[int]Column, len(header))
	found := make(map[string]bool, len(Columns))
	for i, h := range header {
		for _, c := range Columns {
			if c.ExportOnly() || !c.matches(h) || found[c.Header] {
				continue
			}
			mapping[i] = c
			found[c.Header] = true
			break
		}
	}
	for _, c := range Columns {
		if c.Required && !found[c.Header] {
			return nil, fmt.Errorf("%w: falta la columna obligatoria %s", domain.ErrInvalidInput, c.Header)
		}
	}
	return mapping, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// importRun estado de una importación: nombres ya vistos y categorías/proveedores resueltos.
type importRun struct {
	uc         *ExchangeUseCase
	byName     map[string]string // nombre en minúsculas -> id, para filas sin SKU
	categories map[string]*string
	suppliers  map[string]*string
}

func (r *importRun) loadNames(ctx context.Context) error {
	views, err := r.uc.products.ListViews(ctx)
	if err != nil {
		return err
	}
	r.byName = make(map[string]string, len(views))
	for _, v := range views {
		key := strings.ToLower(v.Name)
		if _, ok := r.byName[key]; !ok {
			r.byName[key] = v.ID
		}
	}
	return nil
}

// importRow devuelve true si creó el producto, false si lo actualizó.
func (r *importRun) importRow(ctx context.Context, mapping map[int]Column, raw []string) (bool, error) {
	var row importRow
	for i, c := range mapping {
		if i >= len(raw) {
			continue
		}
		if err := c.parse(&row, strings.TrimSpace(raw[i])); err != nil {
			return false, err
		}
	}
	if row.Name == "" {
		return false, errors.New("nombre obligatorio")
	}

	existingID, err := r.findExisting(ctx, row)
	if err != nil {
		return false, err
	}
	categoryID, err := r.resolveCategory(ctx, row.Category)
	if err != nil {
		return false, err
	}
	supplierID, err := r.resolveSupplier(ctx, row.Supplier)
	if err != nil {
		return false, err
	}

	if existingID == "" {
		req := dto.CreateProductRequest{
			Name:         row.Name,
			SKU:          row.SKU,
			CategoryID:   categoryID,
			SupplierID:   supplierID,
			Price:        row.Price,
			PriceWithTax: row.PriceWithTax,
			Cost:         row.Cost,
			CostWithTax:  row.CostWithTax,
			TaxRate:      row.TaxRate,
			CreatedAt:    row.CreatedAt,
		}
		if row.PLU != nil {
			req.PLU = *row.PLU
		}
		if row.Unit != nil {
			req.Unit = *row.Unit
		}
		if row.Description != nil {
			req.Description = *row.Description
		}
		if row.Quantity != nil {
			req.Quantity = *row.Quantity
		}
		p, err := r.uc.writer.Create(ctx, req)
		if err != nil {
			return false, err
		}
		r.byName[strings.ToLower(p.Name)] = p.ID
		return true, nil
	}

	req := dto.UpdateProductRequest{
		Name:         &row.Name,
		PLU:          row.PLU,
		Description:  row.Description,
		CategoryID:   categoryID,
		SupplierID:   supplierID,
		Price:        row.Price,
		PriceWithTax: row.PriceWithTax,
		Cost:         row.Cost,
		CostWithTax:  row.CostWithTax,
		TaxRate:      row.TaxRate,
		Unit:         row.Unit,
	}
	if row.Quantity != nil && *row.Quantity < 0 {
		return false, fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	if _, err := r.uc.writer.Update(ctx, existingID, req); err != nil {
		return false, err
	}
	// La cantidad del fichero se suma como entrada de stock.
	if row.Quantity != nil && *row.Quantity > 0 {
		_, err := r.uc.stock.ApplyMovement(ctx, inventory.MovementInput{
			ProductID: existingID,
			Type:      entity.MovementTypeIn,
			Quantity:  *row.Quantity,
			Reference: importReference,
			Notes:     "Importación de productos",
		})
		if err != nil {
			return false, err
		}
	}
	return false, nil
}

func (r *importRun) findExisting(ctx context.Context, row importRow) (string, error) {
	if row.SKU != "" {
		p, err := r.uc.products.GetBySKU(ctx, row.SKU)
		if err != nil {
			return "", err
		}
		if p == nil {
			return "", nil
		}
		return p.ID, nil
	}
	return r.byName[strings.ToLower(row.Name)], nil
}

// resolveCategory busca la categoría por nombre y la crea si no existe. "" = sin cambio.
func (r *importRun) resolveCategory(ctx context.Context, name string) (*string, error) {
	if name == "" {
		return nil, nil
	}
	key := strings.ToLower(name)
	if id, ok := r.categories[key]; ok {
		return id, nil
	}
	c, err := r.uc.categories.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &entity.Category{ID: uuid.New().String(), Name: name, CreatedAt: time.Now()}
		if err := r.uc.categories.Create(ctx, c); err != nil {
			return nil, err
		}
	}
	r.categories[key] = &c.ID
	return &c.ID, nil
}

// resolveSupplier igual que resolveCategory para proveedores.
func (r *importRun) resolveSupplier(ctx context.Context, name string) (*string, error) {
	if name == "" {
		return nil, nil
	}
	key := strings.ToLower(name)
	if id, ok := r.suppliers[key]; ok {
		return id, nil
	}
	s, err := r.uc.suppliers.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = &entity.Supplier{ID: uuid.New().String(), Name: name, CreatedAt: time.Now()}
		if err := r.uc.suppliers.Create(ctx, s); err != nil {
			return nil, err
		}
	}
	r.suppliers[key] = &s.ID
	return &s.ID, nil
}
