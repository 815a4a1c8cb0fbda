package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// CategoryUseCase CRUD de categorías. Nombre obligatorio y único.
type CategoryUseCase struct {
	repo     repository.CategoryRepository
	txRunner CatalogTxRunner
	cache    ports.CacheInvalidator
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository, txRunner CatalogTxRunner, cache ports.CacheInvalidator) *CategoryUseCase {
	if cache == nil {
		cache = ports.NopInvalidator{}
	}
	return &CategoryUseCase{repo: repo, txRunner: txRunner, cache: cache}
}

// Create crea una categoría.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre obligatorio", domain.ErrInvalidInput)
	}
	c := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		CreatedAt:   time.Now(),
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.cache.Invalidate()
	return toCategoryResponse(c), nil
}

// GetByID obtiene una categoría; no existe -> ErrNotFound.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: categoría %s", domain.ErrNotFound, id)
	}
	return toCategoryResponse(c), nil
}

// Update cambia nombre y descripción. Los productos muestran el nombre nuevo tras invalidar la caché.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre obligatorio", domain.ErrInvalidInput)
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: categoría %s", domain.ErrNotFound, id)
	}
	c.Name = name
	c.Description = in.Description
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	uc.cache.Invalidate()
	return toCategoryResponse(c), nil
}

// List todas las categorías por nombre.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

// Delete deja sin categoría a sus productos y la elimina, en una sola transacción.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, id)
	}
	err := uc.txRunner.RunCatalog(ctx, func(
		_ repository.ProductRepository,
		_ repository.StockMovementRepository,
		categoryRepo repository.CategoryRepository,
		_ repository.SupplierRepository,
	) error {
		if _, err := categoryRepo.ClearFromProducts(ctx, id); err != nil {
			return err
		}
		return categoryRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.cache.Invalidate()
	return nil
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}
