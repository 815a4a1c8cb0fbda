package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SeedProduct inserta un producto con precio 10 / 12.30 (IVA 23) y la cantidad dada. Devuelve su id.
func (s *MemStore) SeedProduct(name, sku string, quantity int) string {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	p := &entity.Product{
		ID:           uuid.New().String(),
		Name:         name,
		SKU:          sku,
		Price:        decimal.NewFromInt(10),
		PriceWithTax: decimal.RequireFromString("12.30"),
		Cost:         decimal.NewFromInt(5),
		CostWithTax:  decimal.RequireFromString("6.15"),
		TaxRate:      decimal.NewFromInt(entity.DefaultTaxRate),
		Quantity:     quantity,
		ReorderLevel: entity.DefaultReorderLevel,
		Unit:         entity.DefaultUnit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Products().Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p.ID
}

// SeedCategory inserta una categoría y devuelve su id.
func (s *MemStore) SeedCategory(name string) string {
	c := &entity.Category{ID: uuid.New().String(), Name: name, CreatedAt: time.Now()}
	if err := s.Categories().Create(context.Background(), c); err != nil {
		panic(err)
	}
	return c.ID
}

// SeedSupplier inserta un proveedor y devuelve su id.
func (s *MemStore) SeedSupplier(name string) string {
	sup := &entity.Supplier{ID: uuid.New().String(), Name: name, CreatedAt: time.Now()}
	if err := s.Suppliers().Create(context.Background(), sup); err != nil {
		panic(err)
	}
	return sup.ID
}

// SetProductRefs asigna categoría/proveedor directamente (tests de borrado con referencias).
func (s *MemStore) SetProductRefs(productID string, categoryID, supplierID *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[productID]
	p.CategoryID = categoryID
	p.SupplierID = supplierID
}

// Product copia del producto o nil.
func (s *MemStore) Product(id string) *entity.Product {
	p, _ := s.Products().GetByID(context.Background(), id)
	return p
}
