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

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación de CategoryRepository (pool o tx).
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador de categorías.
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// Create persiste una categoría nueva. Nombre repetido -> ErrDuplicate.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO categories (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Description, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: categoría %q", domain.ErrDuplicate, c.Name)
		}
		return persistenceErr("insert category", err)
	}
	return nil
}

// GetByID obtiene una categoría; nil si no existe.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	return r.getOne(ctx, `SELECT id, name, description, created_at FROM categories WHERE id = $1`, id)
}

// GetByName búsqueda exacta sin distinguir mayúsculas (import por nombre).
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	return r.getOne(ctx, `SELECT id, name, description, created_at FROM categories WHERE lower(name) = lower($1) LIMIT 1`, name)
}

func (r *CategoryRepo) getOne(ctx context.Context, query string, arg any) (*entity.Category, error) {
	var c entity.Category
	err := r.q.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, persistenceErr("get category", err)
	}
	return &c, nil
}

// Update actualiza nombre y descripción.
func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	cmd, err := r.q.Exec(ctx, `UPDATE categories SET name = $2, description = $3 WHERE id = $1`, c.ID, c.Name, c.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: categoría %q", domain.ErrDuplicate, c.Name)
		}
		if isInvalidText(err) {
			return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, c.ID)
		}
		return persistenceErr("update category", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, c.ID)
	}
	return nil
}

// List todas las categorías por nombre.
func (r *CategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, description, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, persistenceErr("list categories", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, persistenceErr("scan category", err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("list categories", err)
	}
	return list, nil
}

// Delete elimina la categoría. Los productos deben quedar sin referencia antes (ClearFromProducts).
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, id)
		}
		return persistenceErr("delete category", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, id)
	}
	return nil
}

// ClearFromProducts deja los productos de la categoría sin categoría.
func (r *CategoryRepo) ClearFromProducts(ctx context.Context, categoryID string) (int64, error) {
	cmd, err := r.q.Exec(ctx, `UPDATE products SET category_id = NULL, updated_at = now() WHERE category_id = $1`, categoryID)
	if err != nil {
		if isInvalidText(err) {
			return 0, fmt.Errorf("%w: categoría %s", domain.ErrNotFound, categoryID)
		}
		return 0, persistenceErr("clear product category", err)
	}
	return cmd.RowsAffected(), nil
}
