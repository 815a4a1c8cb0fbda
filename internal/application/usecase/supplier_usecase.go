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

// SupplierUseCase CRUD y búsqueda de proveedores.
type SupplierUseCase struct {
	repo     repository.SupplierRepository
	txRunner CatalogTxRunner
	cache    ports.CacheInvalidator
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, txRunner CatalogTxRunner, cache ports.CacheInvalidator) *SupplierUseCase {
	if cache == nil {
		cache = ports.NopInvalidator{}
	}
	return &SupplierUseCase{repo: repo, txRunner: txRunner, cache: cache}
}

// Create crea un proveedor. Solo el nombre es obligatorio.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	s := supplierFromRequest(in)
	if s.Name == "" {
		return nil, fmt.Errorf("%w: nombre obligatorio", domain.ErrInvalidInput)
	}
	s.ID = uuid.New().String()
	s.CreatedAt = time.Now()
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.cache.Invalidate()
	return toSupplierResponse(s), nil
}

// GetByID obtiene un proveedor; no existe -> ErrNotFound.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
	}
	return toSupplierResponse(s), nil
}

// Update reemplaza los datos del proveedor.
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	next := supplierFromRequest(in)
	if next.Name == "" {
		return nil, fmt.Errorf("%w: nombre obligatorio", domain.ErrInvalidInput)
	}
	cur, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
	}
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	if err := uc.repo.Update(ctx, next); err != nil {
		return nil, err
	}
	uc.cache.Invalidate()
	return toSupplierResponse(next), nil
}

// List todos los proveedores por nombre.
func (uc *SupplierUseCase) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toSupplierList(list), nil
}

// Search coincidencia parcial sin distinguir mayúsculas en nombre, email, teléfono, dirección e identificadores.
// Término vacío = todos.
func (uc *SupplierUseCase) Search(ctx context.Context, term string) ([]dto.SupplierResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return uc.List(ctx)
	}
	list, err := uc.repo.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	return toSupplierList(list), nil
}

// Delete deja sin proveedor a productos y movimientos, y lo elimina, en una sola transacción.
func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
	}
	err := uc.txRunner.RunCatalog(ctx, func(
		_ repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		_ repository.CategoryRepository,
		supplierRepo repository.SupplierRepository,
	) error {
		if _, err := supplierRepo.ClearFromProducts(ctx, id); err != nil {
			return err
		}
		if err := movRepo.ClearSupplier(ctx, id); err != nil {
			return err
		}
		return supplierRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.cache.Invalidate()
	return nil
}

func supplierFromRequest(in dto.SupplierRequest) *entity.Supplier {
	return &entity.Supplier{
		Name:            strings.TrimSpace(in.Name),
		Email:           strings.TrimSpace(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		Address:         strings.TrimSpace(in.Address),
		CompanyIDNumber: strings.TrimSpace(in.CompanyIDNumber),
		TaxID:           strings.TrimSpace(in.TaxID),
	}
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:              s.ID,
		Name:            s.Name,
		Email:           s.Email,
		Phone:           s.Phone,
		Address:         s.Address,
		CompanyIDNumber: s.CompanyIDNumber,
		TaxID:           s.TaxID,
		CreatedAt:       s.CreatedAt,
	}
}

func toSupplierList(list []*entity.Supplier) []dto.SupplierResponse {
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toSupplierResponse(s))
	}
	return out
}
