// Package testutil repositorios en memoria para tests de casos de uso y handlers.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// MemStore estado compartido por los repos en memoria.
// mu protege los mapas; txMu serializa las transacciones (equivale al bloqueo de fila).
type MemStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	products   map[string]*entity.Product
	categories map[string]*entity.Category
	suppliers  map[string]*entity.Supplier
	movements  []*entity.StockMovement
	archives   map[string]*entity.CountArchive

	// FailMovementAfter hace fallar el Create de movimientos a partir de la N-ésima llamada (1 = la primera).
	FailMovementAfter int
	movementCalls     int
}

// NewMemStore crea un almacén vacío.
func NewMemStore() *MemStore {
	return &MemStore{
		products:   map[string]*entity.Product{},
		categories: map[string]*entity.Category{},
		suppliers:  map[string]*entity.Supplier{},
		archives:   map[string]*entity.CountArchive{},
	}
}

// Products repositorio de productos.
func (s *MemStore) Products() *ProductRepo { return &ProductRepo{s: s} }

// Movements repositorio de movimientos.
func (s *MemStore) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Categories repositorio de categorías.
func (s *MemStore) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

// Suppliers repositorio de proveedores.
func (s *MemStore) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

// Archives repositorio de inventarios guardados.
func (s *MemStore) Archives() *ArchiveRepo { return &ArchiveRepo{s: s} }

// TxRunner runner transaccional: si fn falla, el estado vuelve al de antes de la tx.
func (s *MemStore) TxRunner() *TxRunner { return &TxRunner{s: s} }

// Dashboard repositorio de estadísticas.
func (s *MemStore) Dashboard() *DashboardRepo { return &DashboardRepo{s: s} }

// SnapshotRepo repositorio de copias completas.
func (s *MemStore) SnapshotRepo() *SnapshotRepo { return &SnapshotRepo{s: s} }

// AllMovements copia de todos los movimientos en orden de inserción.
func (s *MemStore) AllMovements() []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.StockMovement, 0, len(s.movements))
	for _, m := range s.movements {
		out = append(out, *m)
	}
	return out
}

// Quantity cantidad actual de un producto (-1 si no existe).
func (s *MemStore) Quantity(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return -1
	}
	return p.Quantity
}

type memState struct {
	products   map[string]entity.Product
	categories map[string]entity.Category
	suppliers  map[string]entity.Supplier
	movements  []entity.StockMovement
	archives   map[string]entity.CountArchive
}

func (s *MemStore) save() memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := memState{
		products:   make(map[string]entity.Product, len(s.products)),
		categories: make(map[string]entity.Category, len(s.categories)),
		suppliers:  make(map[string]entity.Supplier, len(s.suppliers)),
		movements:  make([]entity.StockMovement, 0, len(s.movements)),
		archives:   make(map[string]entity.CountArchive, len(s.archives)),
	}
	for k, v := range s.products {
		st.products[k] = *v
	}
	for k, v := range s.categories {
		st.categories[k] = *v
	}
	for k, v := range s.suppliers {
		st.suppliers[k] = *v
	}
	for _, m := range s.movements {
		st.movements = append(st.movements, *m)
	}
	for k, v := range s.archives {
		st.archives[k] = *v
	}
	return st
}

func (s *MemStore) restore(st memState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = map[string]*entity.Product{}
	for k, v := range st.products {
		v := v
		s.products[k] = &v
	}
	s.categories = map[string]*entity.Category{}
	for k, v := range st.categories {
		v := v
		s.categories[k] = &v
	}
	s.suppliers = map[string]*entity.Supplier{}
	for k, v := range st.suppliers {
		v := v
		s.suppliers[k] = &v
	}
	s.movements = nil
	for _, m := range st.movements {
		m := m
		s.movements = append(s.movements, &m)
	}
	s.archives = map[string]*entity.CountArchive{}
	for k, v := range st.archives {
		v := v
		s.archives[k] = &v
	}
}

// TxRunner implementa los runners transaccionales de los casos de uso sobre MemStore.
type TxRunner struct {
	s *MemStore
}

func (r *TxRunner) run(fn func() error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	before := r.s.save()
	if err := fn(); err != nil {
		r.s.restore(before)
		return err
	}
	return nil
}

// Run repos de stock y de inventarios.
func (r *TxRunner) Run(_ context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	archiveRepo repository.CountArchiveRepository,
) error) error {
	return r.run(func() error { return fn(r.s.Movements(), r.s.Products(), r.s.Archives()) })
}

// RunCatalog repos del catálogo (borrados con limpieza de referencias).
func (r *TxRunner) RunCatalog(_ context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
) error) error {
	return r.run(func() error { return fn(r.s.Products(), r.s.Movements(), r.s.Categories(), r.s.Suppliers()) })
}

// ProductRepo repositorio de productos en memoria.
type ProductRepo struct{ s *MemStore }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; ok {
		return fmt.Errorf("%w: id %s", domain.ErrDuplicate, p.ID)
	}
	if p.SKU != "" {
		for _, other := range r.s.products {
			if other.SKU == p.SKU {
				return fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, p.SKU)
			}
		}
	}
	if err := r.checkRefs(p); err != nil {
		return err
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) checkRefs(p *entity.Product) error {
	if p.CategoryID != nil {
		if _, ok := r.s.categories[*p.CategoryID]; !ok {
			return fmt.Errorf("%w: categoría o proveedor", domain.ErrNotFound)
		}
	}
	if p.SupplierID != nil {
		if _, ok := r.s.suppliers[*p.SupplierID]; !ok {
			return fmt.Errorf("%w: categoría o proveedor", domain.ErrNotFound)
		}
	}
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sku == "" {
		return nil, nil
	}
	for _, p := range r.s.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, p.ID)
	}
	if p.SKU != "" {
		for id, other := range r.s.products {
			if id != p.ID && other.SKU == p.SKU {
				return fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, p.SKU)
			}
		}
	}
	if err := r.checkRefs(p); err != nil {
		return err
	}
	cp := *p
	cp.Quantity = cur.Quantity
	cp.CreatedAt = cur.CreatedAt
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) UpdateQuantity(_ context.Context, id string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	p.Quantity = quantity
	return nil
}

func (r *ProductRepo) CountBySKU(_ context.Context, sku, excludeID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, p := range r.s.products {
		if p.SKU == sku && id != excludeID {
			n++
		}
	}
	return n, nil
}

func (r *ProductRepo) ListViews(_ context.Context) ([]*entity.ProductView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.views(func(*entity.Product) bool { return true }), nil
}

func (r *ProductRepo) views(keep func(*entity.Product) bool) []*entity.ProductView {
	var list []*entity.ProductView
	for _, p := range r.s.products {
		if !keep(p) {
			continue
		}
		v := &entity.ProductView{Product: *p}
		if p.CategoryID != nil {
			if c, ok := r.s.categories[*p.CategoryID]; ok {
				v.CategoryName = c.Name
			}
		}
		if p.SupplierID != nil {
			if sup, ok := r.s.suppliers[*p.SupplierID]; ok {
				v.SupplierName = sup.Name
			}
		}
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	for _, m := range r.s.movements {
		if m.ProductID == id {
			return fmt.Errorf("%w: el producto tiene movimientos", domain.ErrPersistence)
		}
	}
	delete(r.s.products, id)
	return nil
}

// MovementRepo repositorio de movimientos en memoria.
type MovementRepo struct{ s *MemStore }

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movementCalls++
	if r.s.FailMovementAfter > 0 && r.s.movementCalls >= r.s.FailMovementAfter {
		return fmt.Errorf("%w: fallo simulado", domain.ErrPersistence)
	}
	if _, ok := r.s.products[m.ProductID]; !ok {
		return fmt.Errorf("%w: producto o proveedor del movimiento", domain.ErrNotFound)
	}
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockMovementView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.views(func(m *entity.StockMovement) bool { return m.ProductID == productID }, 0), nil
}

func (r *MovementRepo) ListRecent(_ context.Context, limit int) ([]*entity.StockMovementView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.views(func(*entity.StockMovement) bool { return true }, limit), nil
}

// views del más reciente al más antiguo (orden inverso de inserción).
func (r *MovementRepo) views(keep func(*entity.StockMovement) bool, limit int) []*entity.StockMovementView {
	var list []*entity.StockMovementView
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if !keep(m) {
			continue
		}
		v := &entity.StockMovementView{StockMovement: *m}
		if p, ok := r.s.products[m.ProductID]; ok {
			v.ProductName = p.Name
		}
		if m.SupplierID != nil {
			if sup, ok := r.s.suppliers[*m.SupplierID]; ok {
				v.SupplierName = sup.Name
			}
		}
		list = append(list, v)
		if limit > 0 && len(list) == limit {
			break
		}
	}
	return list
}

func (r *MovementRepo) DeleteByProduct(_ context.Context, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.movements[:0:0]
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			kept = append(kept, m)
		}
	}
	r.s.movements = kept
	return nil
}

func (r *MovementRepo) ClearSupplier(_ context.Context, supplierID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.SupplierID != nil && *m.SupplierID == supplierID {
			m.SupplierID = nil
		}
	}
	return nil
}

// CategoryRepo repositorio de categorías en memoria.
type CategoryRepo struct{ s *MemStore }

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.categories {
		if other.Name == c.Name {
			return fmt.Errorf("%w: categoría %q", domain.ErrDuplicate, c.Name)
		}
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.categories[c.ID]
	if !ok {
		return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, c.ID)
	}
	for id, other := range r.s.categories {
		if id != c.ID && other.Name == c.Name {
			return fmt.Errorf("%w: categoría %q", domain.ErrDuplicate, c.Name)
		}
	}
	cur.Name = c.Name
	cur.Description = c.Description
	return nil
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Category
	for _, c := range r.s.categories {
		cp := *c
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, id)
	}
	for _, p := range r.s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			return fmt.Errorf("%w: categoría referenciada", domain.ErrPersistence)
		}
	}
	delete(r.s.categories, id)
	return nil
}

func (r *CategoryRepo) ClearFromProducts(_ context.Context, categoryID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			p.CategoryID = nil
			n++
		}
	}
	return n, nil
}

// SupplierRepo repositorio de proveedores en memoria.
type SupplierRepo struct{ s *MemStore }

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

func (r *SupplierRepo) Create(_ context.Context, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sup
	r.s.suppliers[sup.ID] = &cp
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sup, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	cp := *sup
	return &cp, nil
}

func (r *SupplierRepo) GetByName(_ context.Context, name string) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sup := range r.s.suppliers {
		if strings.EqualFold(sup.Name, name) {
			cp := *sup
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *SupplierRepo) Update(_ context.Context, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.suppliers[sup.ID]
	if !ok {
		return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, sup.ID)
	}
	cp := *sup
	cp.CreatedAt = cur.CreatedAt
	r.s.suppliers[sup.ID] = &cp
	return nil
}

func (r *SupplierRepo) List(_ context.Context) ([]*entity.Supplier, error) {
	return r.filter(func(*entity.Supplier) bool { return true }), nil
}

func (r *SupplierRepo) Search(_ context.Context, term string) ([]*entity.Supplier, error) {
	t := strings.ToLower(term)
	return r.filter(func(sup *entity.Supplier) bool {
		for _, f := range []string{sup.Name, sup.Email, sup.Phone, sup.Address, sup.CompanyIDNumber, sup.TaxID} {
			if strings.Contains(strings.ToLower(f), t) {
				return true
			}
		}
		return false
	}), nil
}

func (r *SupplierRepo) filter(keep func(*entity.Supplier) bool) []*entity.Supplier {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Supplier
	for _, sup := range r.s.suppliers {
		if keep(sup) {
			cp := *sup
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (r *SupplierRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[id]; !ok {
		return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
	}
	for _, p := range r.s.products {
		if p.SupplierID != nil && *p.SupplierID == id {
			return fmt.Errorf("%w: proveedor referenciado por productos", domain.ErrPersistence)
		}
	}
	for _, m := range r.s.movements {
		if m.SupplierID != nil && *m.SupplierID == id {
			return fmt.Errorf("%w: proveedor referenciado por movimientos", domain.ErrPersistence)
		}
	}
	delete(r.s.suppliers, id)
	return nil
}

func (r *SupplierRepo) ClearFromProducts(_ context.Context, supplierID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.products {
		if p.SupplierID != nil && *p.SupplierID == supplierID {
			p.SupplierID = nil
			n++
		}
	}
	return n, nil
}

// ArchiveRepo repositorio de inventarios guardados en memoria.
type ArchiveRepo struct{ s *MemStore }

var _ repository.CountArchiveRepository = (*ArchiveRepo)(nil)

func (r *ArchiveRepo) Create(_ context.Context, a *entity.CountArchive) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *a
	cp.Lines = append([]entity.CountLine(nil), a.Lines...)
	r.s.archives[a.ID] = &cp
	return nil
}

func (r *ArchiveRepo) GetByID(_ context.Context, id string) (*entity.CountArchive, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.archives[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	cp.Lines = append([]entity.CountLine(nil), a.Lines...)
	return &cp, nil
}

func (r *ArchiveRepo) List(_ context.Context) ([]*entity.CountArchive, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.CountArchive
	for _, a := range r.s.archives {
		cp := *a
		cp.Lines = nil
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *ArchiveRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.archives[id]; !ok {
		return fmt.Errorf("%w: inventario %s", domain.ErrNotFound, id)
	}
	delete(r.s.archives, id)
	return nil
}

func (r *ArchiveRepo) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.archives))
	r.s.archives = map[string]*entity.CountArchive{}
	return n, nil
}
