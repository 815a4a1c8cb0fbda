package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// CountArchiveRepository inventarios físicos guardados.
type CountArchiveRepository interface {
	Create(ctx context.Context, archive *entity.CountArchive) error
	GetByID(ctx context.Context, id string) (*entity.CountArchive, error)
	// List devuelve los archivos más recientes primero, sin líneas.
	List(ctx context.Context) ([]*entity.CountArchive, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}
