package query

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ProductLister lo que necesita el catálogo del repositorio de productos.
type ProductLister interface {
	ListViews(ctx context.Context) ([]*entity.ProductView, error)
}

var _ ports.CacheInvalidator = (*Catalog)(nil)

// Catalog caché de lectura de la lista de productos con nombres resueltos.
// Se carga del store en el primer acceso tras cada Invalidate. Las comprobaciones de unicidad
// nunca pasan por aquí.
type Catalog struct {
	repo ProductLister

	mu     sync.RWMutex
	items  []*entity.ProductView
	loaded bool
	gen    uint64
}

// NewCatalog construye el catálogo sobre el repositorio (normalmente repository.ProductRepository).
func NewCatalog(repo ProductLister) *Catalog {
	return &Catalog{repo: repo}
}

var _ ProductLister = (repository.ProductRepository)(nil)

// Invalidate descarta la lista en memoria.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.items = nil
	c.loaded = false
	c.gen++
	c.mu.Unlock()
}

// All devuelve la lista cacheada, cargándola si hace falta. El slice devuelto es propio del caller;
// los elementos son compartidos y no se deben modificar.
func (c *Catalog) All(ctx context.Context) ([]*entity.ProductView, error) {
	c.mu.RLock()
	if c.loaded {
		out := append([]*entity.ProductView(nil), c.items...)
		c.mu.RUnlock()
		return out, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	items, err := c.repo.ListViews(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Si hubo un Invalidate durante la carga, no guardar datos posiblemente viejos.
	if c.gen == gen {
		c.items = items
		c.loaded = true
	}
	c.mu.Unlock()
	return append([]*entity.ProductView(nil), items...), nil
}

// List aplica Filter sobre la lista cacheada.
func (c *Catalog) List(ctx context.Context, criteria Criteria) ([]*entity.ProductView, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, criteria), nil
}

// Search coincidencia de texto en nombre, SKU o PLU, por nombre.
func (c *Catalog) Search(ctx context.Context, term string) ([]*entity.ProductView, error) {
	return c.List(ctx, Criteria{Text: term, Sort: SortName})
}

// LowStock productos con cantidad <= umbral, de menor a mayor cantidad.
func (c *Catalog) LowStock(ctx context.Context) ([]*entity.ProductView, error) {
	max := domaininv.LowStockThreshold
	return c.List(ctx, Criteria{QuantityMax: &max, Sort: SortQuantity})
}

// Get producto por id desde la caché; nil si no está.
func (c *Catalog) Get(ctx context.Context, id string) (*entity.ProductView, error) {
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}
