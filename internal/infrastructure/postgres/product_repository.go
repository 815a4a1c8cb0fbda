package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `p.id, p.name, COALESCE(p.sku, ''), p.plu, p.description, p.category_id, p.supplier_id,
	p.price, p.price_with_tax, p.cost, p.cost_with_tax, p.tax_rate, p.quantity, p.reorder_level, p.unit,
	p.created_at, p.updated_at`

const productViewQuery = `
	SELECT ` + productColumns + `, COALESCE(c.name, ''), COALESCE(s.name, '')
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN suppliers s ON s.id = p.supplier_id`

func productDest(p *entity.Product) []any {
	return []any{
		&p.ID, &p.Name, &p.SKU, &p.PLU, &p.Description, &p.CategoryID, &p.SupplierID,
		&p.Price, &p.PriceWithTax, &p.Cost, &p.CostWithTax, &p.TaxRate, &p.Quantity, &p.ReorderLevel, &p.Unit,
		&p.CreatedAt, &p.UpdatedAt,
	}
}

// Create persiste un nuevo producto. SKU vacío se guarda como NULL.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, name, sku, plu, description, category_id, supplier_id, price, price_with_tax,
			cost, cost_with_tax, tax_rate, quantity, reorder_level, unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, nullIfEmpty(product.SKU), product.PLU, product.Description,
		product.CategoryID, product.SupplierID, product.Price, product.PriceWithTax,
		product.Cost, product.CostWithTax, product.TaxRate, product.Quantity, product.ReorderLevel,
		product.Unit, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, product.SKU)
		}
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return fmt.Errorf("%w: categoría o proveedor", domain.ErrNotFound)
		}
		return persistenceErr("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE). Solo tiene sentido dentro de una tx.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1 FOR UPDATE`, id)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	if sku == "" {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products p WHERE p.sku = $1`, sku)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg any) (*entity.Product, error) {
	var p entity.Product
	if err := r.q.QueryRow(ctx, query, arg).Scan(productDest(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, persistenceErr("get product", err)
	}
	return &p, nil
}

// Update actualiza un producto existente. No modifica Quantity (se maneja vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, sku = $3, plu = $4, description = $5, category_id = $6, supplier_id = $7,
			price = $8, price_with_tax = $9, cost = $10, cost_with_tax = $11, tax_rate = $12,
			reorder_level = $13, unit = $14, updated_at = $15
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.Name, nullIfEmpty(product.SKU), product.PLU, product.Description,
		product.CategoryID, product.SupplierID, product.Price, product.PriceWithTax,
		product.Cost, product.CostWithTax, product.TaxRate, product.ReorderLevel, product.Unit, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, product.SKU)
		}
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return fmt.Errorf("%w: categoría o proveedor", domain.ErrNotFound)
		}
		return persistenceErr("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, product.ID)
	}
	return nil
}

// UpdateQuantity fija la cantidad (usado por el motor de stock dentro de la tx).
func (r *ProductRepo) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	cmd, err := r.q.Exec(ctx, `UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
	if err != nil {
		if isInvalidText(err) {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		return persistenceErr("update product quantity", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return nil
}

// CountBySKU cuenta productos con el SKU, excluyendo excludeID si no está vacío.
func (r *ProductRepo) CountBySKU(ctx context.Context, sku, excludeID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE sku = $1 AND ($2 = '' OR id::text <> $2)`,
		sku, excludeID,
	).Scan(&n)
	if err != nil {
		return 0, persistenceErr("count sku", err)
	}
	return n, nil
}

// ListViews lista todos los productos con nombres de categoría y proveedor, por nombre.
func (r *ProductRepo) ListViews(ctx context.Context) ([]*entity.ProductView, error) {
	return r.listViews(ctx, productViewQuery+` ORDER BY p.name`)
}

func (r *ProductRepo) listViews(ctx context.Context, query string, args ...any) ([]*entity.ProductView, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, persistenceErr("list products", err)
	}
	defer rows.Close()
	var list []*entity.ProductView
	for rows.Next() {
		var v entity.ProductView
		dest := append(productDest(&v.Product), &v.CategoryName, &v.SupplierName)
		if err := rows.Scan(dest...); err != nil {
			return nil, persistenceErr("scan product", err)
		}
		list = append(list, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("list products", err)
	}
	return list, nil
}

// Delete elimina un producto por ID. Los movimientos deben borrarse antes en la misma tx.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		return persistenceErr("delete product", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return nil
}
