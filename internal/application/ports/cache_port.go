package ports

// CacheInvalidator lo llama todo caso de uso que modifica productos, categorías o proveedores.
type CacheInvalidator interface {
	Invalidate()
}

// NopInvalidator para cuando no hay caché.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate() {}
