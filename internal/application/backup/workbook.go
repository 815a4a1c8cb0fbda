package backup

import (
	"bytes"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const timeLayout = "2006-01-02 15:04:05"

// writeWorkbook una hoja por tabla, con todas las columnas.
func writeWorkbook(snap *repository.LedgerSnapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheets := []struct {
		name   string
		header []interface{}
		rows   [][]interface{}
	}{
		{
			name:   "Categories",
			header: []interface{}{"id", "name", "description", "created_at"},
			rows:   categoryRows(snap),
		},
		{
			name:   "Suppliers",
			header: []interface{}{"id", "name", "email", "phone", "address", "company_id_number", "tax_id", "created_at"},
			rows:   supplierRows(snap),
		},
		{
			name: "Products",
			header: []interface{}{"id", "name", "sku", "plu", "description", "category_id", "supplier_id",
				"price", "price_with_tax", "cost", "cost_with_tax", "tax_rate", "quantity", "reorder_level",
				"unit", "created_at", "updated_at"},
			rows: productRows(snap),
		},
		{
			name: "StockMovements",
			header: []interface{}{"id", "product_id", "type", "quantity", "reference", "notes",
				"cost_without_tax", "tax_amount", "supplier_id", "movement_date", "created_at"},
			rows: movementRows(snap),
		},
	}

	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
			return nil, err
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			row := row
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return nil, err
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// money como texto para no perder precisión decimal.
func money(d decimal.Decimal) string { return d.String() }

func categoryRows(snap *repository.LedgerSnapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		rows = append(rows, []interface{}{c.ID, c.Name, c.Description, c.CreatedAt.Format(timeLayout)})
	}
	return rows
}

func supplierRows(snap *repository.LedgerSnapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(snap.Suppliers))
	for _, s := range snap.Suppliers {
		rows = append(rows, []interface{}{s.ID, s.Name, s.Email, s.Phone, s.Address, s.CompanyIDNumber, s.TaxID,
			s.CreatedAt.Format(timeLayout)})
	}
	return rows
}

func productRows(snap *repository.LedgerSnapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(snap.Products))
	for _, p := range snap.Products {
		rows = append(rows, []interface{}{p.ID, p.Name, p.SKU, p.PLU, p.Description, str(p.CategoryID), str(p.SupplierID),
			money(p.Price), money(p.PriceWithTax), money(p.Cost), money(p.CostWithTax), money(p.TaxRate),
			p.Quantity, p.ReorderLevel, p.Unit, p.CreatedAt.Format(timeLayout), p.UpdatedAt.Format(timeLayout)})
	}
	return rows
}

func movementRows(snap *repository.LedgerSnapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(snap.Movements))
	for _, m := range snap.Movements {
		rows = append(rows, []interface{}{m.ID, m.ProductID, string(m.Type), m.Quantity, m.Reference, m.Notes,
			money(m.CostWithoutTax), money(m.TaxAmount), str(m.SupplierID),
			m.MovementDate.Format(timeLayout), m.CreatedAt.Format(timeLayout)})
	}
	return rows
}
