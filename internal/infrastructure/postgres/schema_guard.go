package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// columnSpec columna que el código necesita y su definición para ALTER TABLE ... ADD COLUMN.
type columnSpec struct {
	table      string
	column     string
	definition string
}

// requiredColumns columnas añadidas después del esquema inicial. Bases creadas por versiones
// anteriores pueden no tenerlas aunque goose marque la migración como aplicada.
var requiredColumns = []columnSpec{
	{"suppliers", "company_id_number", "TEXT NOT NULL DEFAULT ''"},
	{"suppliers", "tax_id", "TEXT NOT NULL DEFAULT ''"},
	{"products", "tax_rate", "NUMERIC(5, 2) NOT NULL DEFAULT 23"},
	{"products", "price_with_tax", "NUMERIC(14, 2) NOT NULL DEFAULT 0"},
	{"products", "cost_with_tax", "NUMERIC(14, 2) NOT NULL DEFAULT 0"},
	{"products", "reorder_level", "INTEGER NOT NULL DEFAULT 10"},
	{"products", "unit", "TEXT NOT NULL DEFAULT 'pcs'"},
	{"stock_movements", "cost_without_tax", "NUMERIC(14, 2) NOT NULL DEFAULT 0"},
	{"stock_movements", "tax_amount", "NUMERIC(14, 2) NOT NULL DEFAULT 0"},
	{"stock_movements", "supplier_id", "UUID REFERENCES suppliers (id)"},
	{"stock_movements", "movement_date", "TIMESTAMPTZ NOT NULL DEFAULT now()"},
}

// EnsureColumns añade las columnas que falten. Cada fallo se loguea y se continúa con la siguiente;
// el error devuelto solo indica que al menos una no se pudo añadir.
func EnsureColumns(ctx context.Context, q Querier, log *logger.Logger) ([]string, error) {
	existing, err := existingColumns(ctx, q)
	if err != nil {
		return nil, persistenceErr("leer information_schema", err)
	}
	var added []string
	var failed int
	for _, c := range requiredColumns {
		key := c.table + "." + c.column
		if existing[key] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s", c.table, c.column, c.definition)
		if _, err := q.Exec(ctx, stmt); err != nil {
			failed++
			log.Error().Err(err).Str("column", key).Msg("no se pudo añadir columna")
			continue
		}
		log.Info().Str("column", key).Msg("columna añadida")
		added = append(added, key)
	}
	if failed > 0 {
		return added, fmt.Errorf("%w: %d columnas sin añadir", ErrSchemaIncomplete, failed)
	}
	return added, nil
}

// ErrSchemaIncomplete el esquema quedó sin alguna columna requerida.
var ErrSchemaIncomplete = errors.New("esquema incompleto")

func existingColumns(ctx context.Context, q Querier) (map[string]bool, error) {
	rows, err := q.Query(ctx, `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		  AND table_name IN ('suppliers', 'products', 'stock_movements')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, err
		}
		out[table+"."+column] = true
	}
	return out, rows.Err()
}
