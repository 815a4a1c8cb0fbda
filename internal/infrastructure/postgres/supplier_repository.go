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

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación de SupplierRepository (pool o tx).
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador de proveedores.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, name, email, phone, address, company_id_number, tax_id, created_at`

func supplierDest(s *entity.Supplier) []any {
	return []any{&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.CompanyIDNumber, &s.TaxID, &s.CreatedAt}
}

// Create persiste un proveedor.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO suppliers (`+supplierColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.Name, s.Email, s.Phone, s.Address, s.CompanyIDNumber, s.TaxID, s.CreatedAt,
	)
	if err != nil {
		return persistenceErr("insert supplier", err)
	}
	return nil
}

// GetByID obtiene un proveedor; nil si no existe.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	return r.getOne(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
}

// GetByName búsqueda exacta sin distinguir mayúsculas; si hay varios, el más antiguo.
func (r *SupplierRepo) GetByName(ctx context.Context, name string) (*entity.Supplier, error) {
	return r.getOne(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE lower(name) = lower($1) ORDER BY created_at LIMIT 1`, name)
}

func (r *SupplierRepo) getOne(ctx context.Context, query string, arg any) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := r.q.QueryRow(ctx, query, arg).Scan(supplierDest(&s)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, persistenceErr("get supplier", err)
	}
	return &s, nil
}

// Update actualiza los datos de contacto del proveedor.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE suppliers SET name = $2, email = $3, phone = $4, address = $5, company_id_number = $6, tax_id = $7
		WHERE id = $1`,
		s.ID, s.Name, s.Email, s.Phone, s.Address, s.CompanyIDNumber, s.TaxID,
	)
	if err != nil {
		if isInvalidText(err) {
			return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, s.ID)
		}
		return persistenceErr("update supplier", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, s.ID)
	}
	return nil
}

// List todos los proveedores por nombre.
func (r *SupplierRepo) List(ctx context.Context) ([]*entity.Supplier, error) {
	return r.list(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY name`)
}

// Search coincidencia parcial sin distinguir mayúsculas en nombre, contacto e identificadores.
func (r *SupplierRepo) Search(ctx context.Context, term string) ([]*entity.Supplier, error) {
	return r.list(ctx, `
		SELECT `+supplierColumns+` FROM suppliers
		WHERE name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1 OR address ILIKE $1
		   OR company_id_number ILIKE $1 OR tax_id ILIKE $1
		ORDER BY name`, "%"+escapeLike(term)+"%")
}

func (r *SupplierRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, persistenceErr("list suppliers", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		var s entity.Supplier
		if err := rows.Scan(supplierDest(&s)...); err != nil {
			return nil, persistenceErr("scan supplier", err)
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("list suppliers", err)
	}
	return list, nil
}

// Delete elimina el proveedor. Productos y movimientos deben quedar sin referencia antes.
func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
		}
		return persistenceErr("delete supplier", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
	}
	return nil
}

// ClearFromProducts deja los productos del proveedor sin proveedor.
func (r *SupplierRepo) ClearFromProducts(ctx context.Context, supplierID string) (int64, error) {
	cmd, err := r.q.Exec(ctx, `UPDATE products SET supplier_id = NULL, updated_at = now() WHERE supplier_id = $1`, supplierID)
	if err != nil {
		if isInvalidText(err) {
			return 0, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, supplierID)
		}
		return 0, persistenceErr("clear product supplier", err)
	}
	return cmd.RowsAffected(), nil
}
