package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/query"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso CRUD para productos. La cantidad solo se fija al crear;
// después cambia únicamente vía movimientos de stock.
type ProductUseCase struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	txRunner   CatalogTxRunner
	catalog    *query.Catalog
	now        func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	suppliers repository.SupplierRepository,
	txRunner CatalogTxRunner,
	catalog *query.Catalog,
) *ProductUseCase {
	return &ProductUseCase{
		repo:       repo,
		categories: categories,
		suppliers:  suppliers,
		txRunner:   txRunner,
		catalog:    catalog,
		now:        time.Now,
	}
}

// Create crea un nuevo producto con precios calculados a partir de la tasa.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre obligatorio", domain.ErrInvalidInput)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: cantidad inicial negativa", domain.ErrInvalidInput)
	}
	if in.Quantity > domaininv.MaxQuantity {
		return nil, fmt.Errorf("%w: cantidad inicial fuera de rango", domain.ErrInvalidInput)
	}
	sku := strings.TrimSpace(in.SKU)
	if err := uc.ensureSkuFree(ctx, sku, ""); err != nil {
		return nil, err
	}

	rate := decimal.NewFromInt(entity.DefaultTaxRate)
	if in.TaxRate != nil {
		rate = *in.TaxRate
	}
	if !domaininv.ValidTaxRate(rate) {
		return nil, fmt.Errorf("%w: tasa de impuesto fuera de 0..100", domain.ErrInvalidInput)
	}
	if err := nonNegative(in.Price, in.PriceWithTax, in.Cost, in.CostWithTax); err != nil {
		return nil, err
	}
	price := domaininv.ResolvePair(in.Price, in.PriceWithTax, rate, domaininv.PricePair{})
	cost := domaininv.ResolvePair(in.Cost, in.CostWithTax, rate, domaininv.PricePair{})

	refs, err := uc.resolveRefs(ctx, in.CategoryID, in.SupplierID)
	if err != nil {
		return nil, err
	}

	reorder := entity.DefaultReorderLevel
	if in.ReorderLevel != nil {
		if *in.ReorderLevel < 0 {
			return nil, fmt.Errorf("%w: nivel de reposición negativo", domain.ErrInvalidInput)
		}
		reorder = *in.ReorderLevel
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = entity.DefaultUnit
	}

	now := uc.now()
	created := now
	if in.CreatedAt != nil && !in.CreatedAt.IsZero() {
		created = *in.CreatedAt
	}
	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         name,
		SKU:          sku,
		PLU:          strings.TrimSpace(in.PLU),
		Description:  in.Description,
		CategoryID:   refs.categoryID,
		SupplierID:   refs.supplierID,
		Price:        price.Net,
		PriceWithTax: price.Gross,
		Cost:         cost.Net,
		CostWithTax:  cost.Gross,
		TaxRate:      rate,
		Quantity:     in.Quantity,
		ReorderLevel: reorder,
		Unit:         unit,
		CreatedAt:    created,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.catalog.Invalidate()
	resp := ToProductResponse(&entity.ProductView{Product: *product, CategoryName: refs.categoryName, SupplierName: refs.supplierName})
	return &resp, nil
}

// GetByID obtiene un producto con nombres resueltos. No existe -> ErrNotFound.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	v, err := uc.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	resp := ToProductResponse(v)
	return &resp, nil
}

// Update actualiza los campos informados. Un cambio de tasa sin precios recalcula los importes con impuesto
// desde los netos guardados. La cantidad no es editable.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: nombre obligatorio", domain.ErrInvalidInput)
		}
		product.Name = name
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if err := uc.ensureSkuFree(ctx, sku, id); err != nil {
			return nil, err
		}
		product.SKU = sku
	}
	if in.PLU != nil {
		product.PLU = strings.TrimSpace(*in.PLU)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.TaxRate != nil {
		if !domaininv.ValidTaxRate(*in.TaxRate) {
			return nil, fmt.Errorf("%w: tasa de impuesto fuera de 0..100", domain.ErrInvalidInput)
		}
		product.TaxRate = *in.TaxRate
	}
	if err := nonNegative(in.Price, in.PriceWithTax, in.Cost, in.CostWithTax); err != nil {
		return nil, err
	}
	price := domaininv.ResolvePair(in.Price, in.PriceWithTax, product.TaxRate,
		domaininv.PricePair{Net: product.Price, Gross: product.PriceWithTax})
	cost := domaininv.ResolvePair(in.Cost, in.CostWithTax, product.TaxRate,
		domaininv.PricePair{Net: product.Cost, Gross: product.CostWithTax})
	product.Price, product.PriceWithTax = price.Net, price.Gross
	product.Cost, product.CostWithTax = cost.Net, cost.Gross

	catID, supID := product.CategoryID, product.SupplierID
	if in.CategoryID != nil {
		catID = in.CategoryID
	}
	if in.SupplierID != nil {
		supID = in.SupplierID
	}
	refs, err := uc.resolveRefs(ctx, catID, supID)
	if err != nil {
		return nil, err
	}
	product.CategoryID, product.SupplierID = refs.categoryID, refs.supplierID

	if in.ReorderLevel != nil {
		if *in.ReorderLevel < 0 {
			return nil, fmt.Errorf("%w: nivel de reposición negativo", domain.ErrInvalidInput)
		}
		product.ReorderLevel = *in.ReorderLevel
	}
	if in.Unit != nil && strings.TrimSpace(*in.Unit) != "" {
		product.Unit = strings.TrimSpace(*in.Unit)
	}
	product.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.catalog.Invalidate()
	resp := ToProductResponse(&entity.ProductView{Product: *product, CategoryName: refs.categoryName, SupplierName: refs.supplierName})
	return &resp, nil
}

// Delete borra el historial de movimientos y el producto en una sola transacción.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	err := uc.txRunner.RunCatalog(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		_ repository.CategoryRepository,
		_ repository.SupplierRepository,
	) error {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		if err := movRepo.DeleteByProduct(ctx, id); err != nil {
			return err
		}
		return productRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.catalog.Invalidate()
	return nil
}

// CheckSkuAvailability SKU vacío siempre disponible; si no, libre si ningún otro producto lo usa.
// Consulta siempre el store, nunca la caché.
func (uc *ProductUseCase) CheckSkuAvailability(ctx context.Context, sku, excludeID string) (bool, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return true, nil
	}
	n, err := uc.repo.CountBySKU(ctx, sku, excludeID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// List filtra y ordena el catálogo.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductFilterRequest) (*dto.ProductListResponse, error) {
	criteria, err := CriteriaFromRequest(in)
	if err != nil {
		return nil, err
	}
	list, err := uc.catalog.List(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return toListResponse(list), nil
}

// Search búsqueda de texto en nombre, SKU y PLU.
func (uc *ProductUseCase) Search(ctx context.Context, term string) (*dto.ProductListResponse, error) {
	list, err := uc.catalog.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	return toListResponse(list), nil
}

// LowStock productos con cantidad <= 10, de menor a mayor.
func (uc *ProductUseCase) LowStock(ctx context.Context) (*dto.ProductListResponse, error) {
	list, err := uc.catalog.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	return toListResponse(list), nil
}

func (uc *ProductUseCase) ensureSkuFree(ctx context.Context, sku, excludeID string) error {
	ok, err := uc.CheckSkuAvailability(ctx, sku, excludeID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: SKU %s ya existe", domain.ErrDuplicate, sku)
	}
	return nil
}

type productRefs struct {
	categoryID   *string
	supplierID   *string
	categoryName string
	supplierName string
}

// resolveRefs comprueba que categoría y proveedor existan. "" o nil = sin referencia.
func (uc *ProductUseCase) resolveRefs(ctx context.Context, categoryID, supplierID *string) (productRefs, error) {
	var refs productRefs
	if categoryID != nil && *categoryID != "" {
		c, err := uc.categories.GetByID(ctx, *categoryID)
		if err != nil {
			return refs, err
		}
		if c == nil {
			return refs, fmt.Errorf("%w: categoría %s", domain.ErrNotFound, *categoryID)
		}
		refs.categoryID, refs.categoryName = &c.ID, c.Name
	}
	if supplierID != nil && *supplierID != "" {
		s, err := uc.suppliers.GetByID(ctx, *supplierID)
		if err != nil {
			return refs, err
		}
		if s == nil {
			return refs, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, *supplierID)
		}
		refs.supplierID, refs.supplierName = &s.ID, s.Name
	}
	return refs, nil
}

func nonNegative(values ...*decimal.Decimal) error {
	for _, v := range values {
		if v != nil && v.IsNegative() {
			return fmt.Errorf("%w: importe negativo", domain.ErrInvalidInput)
		}
	}
	return nil
}

// CriteriaFromRequest convierte los parámetros de la query string en criterios de filtro.
func CriteriaFromRequest(in dto.ProductFilterRequest) (query.Criteria, error) {
	c := query.Criteria{
		Text:        in.Text,
		CategoryID:  in.CategoryID,
		SupplierID:  in.SupplierID,
		Status:      domaininv.StockStatus(in.Status),
		QuantityMin: in.QuantityMin,
		QuantityMax: in.QuantityMax,
		Sort:        query.SortKey(in.Sort),
	}
	var err error
	if c.PriceMin, err = parseOptionalDecimal("price_min", in.PriceMin); err != nil {
		return c, err
	}
	if c.PriceMax, err = parseOptionalDecimal("price_max", in.PriceMax); err != nil {
		return c, err
	}
	if c.MarginMin, err = parseOptionalDecimal("margin_min", in.MarginMin); err != nil {
		return c, err
	}
	if c.MarginMax, err = parseOptionalDecimal("margin_max", in.MarginMax); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func parseOptionalDecimal(field, s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s no es un número", domain.ErrInvalidInput, field)
	}
	return &d, nil
}

// ToProductResponse mapea la vista a su DTO con estado y margen calculados.
func ToProductResponse(v *entity.ProductView) dto.ProductResponse {
	return dto.ProductResponse{
		ID:           v.ID,
		Name:         v.Name,
		SKU:          v.SKU,
		PLU:          v.PLU,
		Description:  v.Description,
		CategoryID:   v.CategoryID,
		CategoryName: v.CategoryName,
		SupplierID:   v.SupplierID,
		SupplierName: v.SupplierName,
		Price:        v.Price,
		PriceWithTax: v.PriceWithTax,
		Cost:         v.Cost,
		CostWithTax:  v.CostWithTax,
		TaxRate:      v.TaxRate,
		Margin:       query.ProductMargin(&v.Product).Round(2),
		Quantity:     v.Quantity,
		ReorderLevel: v.ReorderLevel,
		Unit:         v.Unit,
		Status:       string(domaininv.ClassifyStock(v.Quantity)),
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func toListResponse(list []*entity.ProductView) *dto.ProductListResponse {
	items := make([]dto.ProductResponse, 0, len(list))
	for _, v := range list {
		items = append(items, ToProductResponse(v))
	}
	return &dto.ProductListResponse{Items: items, Total: len(items)}
}
