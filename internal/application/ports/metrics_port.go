package ports

// Metrics define el puerto de salida para contadores de negocio.
// El adaptador de Prometheus lo implementa; los tests usan NopMetrics.
type Metrics interface {
	MovementApplied(movementType string)
	CountCommitted(corrections int)
	ImportFinished(format string, created, updated, failed int)
	BackupFinished(ok bool, sizeBytes int64)
}

// NopMetrics descarta todo.
type NopMetrics struct{}

func (NopMetrics) MovementApplied(string)              {}
func (NopMetrics) CountCommitted(int)                  {}
func (NopMetrics) ImportFinished(string, int, int, int) {}
func (NopMetrics) BackupFinished(bool, int64)          {}

var _ Metrics = NopMetrics{}
