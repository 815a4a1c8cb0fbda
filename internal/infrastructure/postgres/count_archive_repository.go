package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.CountArchiveRepository = (*CountArchiveRepo)(nil)

// CountArchiveRepo inventarios guardados; las líneas van en una columna JSONB.
type CountArchiveRepo struct {
	q Querier
}

// NewCountArchiveRepository construye el adaptador.
func NewCountArchiveRepository(q Querier) *CountArchiveRepo {
	return &CountArchiveRepo{q: q}
}

// Create guarda el inventario con todas sus líneas.
func (r *CountArchiveRepo) Create(ctx context.Context, a *entity.CountArchive) error {
	items, err := json.Marshal(a.Lines)
	if err != nil {
		return fmt.Errorf("serializar líneas: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO count_archives (id, created_at, committed, total, matched, differing, pending, items)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.CreatedAt, a.Committed, a.Total, a.Matched, a.Differing, a.Pending, items,
	)
	if err != nil {
		return persistenceErr("insert count archive", err)
	}
	return nil
}

// GetByID devuelve el inventario con líneas; nil si no existe.
func (r *CountArchiveRepo) GetByID(ctx context.Context, id string) (*entity.CountArchive, error) {
	var a entity.CountArchive
	var items []byte
	err := r.q.QueryRow(ctx, `
		SELECT id, created_at, committed, total, matched, differing, pending, items
		FROM count_archives WHERE id = $1`, id,
	).Scan(&a.ID, &a.CreatedAt, &a.Committed, &a.Total, &a.Matched, &a.Differing, &a.Pending, &items)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, persistenceErr("get count archive", err)
	}
	if err := json.Unmarshal(items, &a.Lines); err != nil {
		return nil, persistenceErr("leer líneas del inventario", err)
	}
	return &a, nil
}

// List cabeceras de los inventarios guardados, el más reciente primero.
func (r *CountArchiveRepo) List(ctx context.Context) ([]*entity.CountArchive, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, created_at, committed, total, matched, differing, pending
		FROM count_archives ORDER BY created_at DESC`)
	if err != nil {
		return nil, persistenceErr("list count archives", err)
	}
	defer rows.Close()
	var list []*entity.CountArchive
	for rows.Next() {
		var a entity.CountArchive
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.Committed, &a.Total, &a.Matched, &a.Differing, &a.Pending); err != nil {
			return nil, persistenceErr("scan count archive", err)
		}
		list = append(list, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("list count archives", err)
	}
	return list, nil
}

// Delete elimina un inventario guardado.
func (r *CountArchiveRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM count_archives WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return fmt.Errorf("%w: inventario %s", domain.ErrNotFound, id)
		}
		return persistenceErr("delete count archive", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: inventario %s", domain.ErrNotFound, id)
	}
	return nil
}

// DeleteAll vacía el historial de inventarios.
func (r *CountArchiveRepo) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM count_archives`)
	if err != nil {
		return 0, persistenceErr("delete count archives", err)
	}
	return cmd.RowsAffected(), nil
}
