package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// CorrectionReference referencia fija de los movimientos que genera un inventario físico.
const CorrectionReference = "INVENTARIO"

// CountSummary totales de un inventario físico.
type CountSummary struct {
	Total     int `json:"total"`
	Matched   int `json:"matched"`
	Differing int `json:"differing"`
	Pending   int `json:"pending"`
}

// Correction movimiento que lleva la cantidad del sistema a la contada.
type Correction struct {
	ProductID string
	Type      entity.MovementType
	Quantity  int
	Expected  int
	Counted   int
	Reference string
	Notes     string
}

// CountSession inventario físico en curso (máquina de estados por línea).
// No es seguro para uso concurrente; el caso de uso lo protege.
type CountSession struct {
	startedAt time.Time
	lines     []entity.CountLine
	index     map[string]int
}

// StartCount toma una foto de las cantidades actuales: expected = counted = quantity, todo pending.
func StartCount(snapshot []entity.ProductView, now time.Time) *CountSession {
	s := &CountSession{
		startedAt: now,
		lines:     make([]entity.CountLine, 0, len(snapshot)),
		index:     make(map[string]int, len(snapshot)),
	}
	for _, p := range snapshot {
		s.index[p.ID] = len(s.lines)
		s.lines = append(s.lines, entity.CountLine{
			ProductID:    p.ID,
			Name:         p.Name,
			SKU:          p.SKU,
			CategoryName: p.CategoryName,
			SupplierName: p.SupplierName,
			Expected:     p.Quantity,
			Counted:      p.Quantity,
			State:        entity.CountLinePending,
		})
	}
	return s
}

// StartedAt momento en que se tomó la foto.
func (s *CountSession) StartedAt() time.Time {
	return s.startedAt
}

// Record registra la cantidad contada de un producto y reevalúa su estado.
// Se puede volver a contar la misma línea.
func (s *CountSession) Record(productID string, counted int) (entity.CountLine, error) {
	if counted < 0 {
		return entity.CountLine{}, fmt.Errorf("%w: cantidad contada negativa", domain.ErrInvalidInput)
	}
	i, ok := s.index[productID]
	if !ok {
		return entity.CountLine{}, fmt.Errorf("%w: producto %s no está en el inventario", domain.ErrNotFound, productID)
	}
	line := &s.lines[i]
	line.Counted = counted
	if counted == line.Expected {
		line.State = entity.CountLineMatched
	} else {
		line.State = entity.CountLineDiffering
	}
	return *line, nil
}

// Summary cuenta líneas por estado.
func (s *CountSession) Summary() CountSummary {
	return summarize(s.lines)
}

// Lines copia de las líneas en el orden de la foto.
func (s *CountSession) Lines() []entity.CountLine {
	out := make([]entity.CountLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Corrections un movimiento por cada línea con diferencia; las coincidentes se omiten.
func (s *CountSession) Corrections() []Correction {
	var out []Correction
	for _, l := range s.lines {
		if l.State != entity.CountLineDiffering {
			continue
		}
		delta := l.Difference()
		if delta == 0 {
			continue
		}
		c := Correction{
			ProductID: l.ProductID,
			Type:      entity.MovementTypeIn,
			Quantity:  delta,
			Expected:  l.Expected,
			Counted:   l.Counted,
			Reference: CorrectionReference,
			Notes:     fmt.Sprintf("Corrección de inventario: %d → %d", l.Expected, l.Counted),
		}
		if delta < 0 {
			c.Type = entity.MovementTypeOut
			c.Quantity = -delta
		}
		out = append(out, c)
	}
	return out
}

// Archive convierte la sesión en un registro para guardar.
func (s *CountSession) Archive(id string, now time.Time, committed bool) entity.CountArchive {
	sum := s.Summary()
	return entity.CountArchive{
		ID:        id,
		CreatedAt: now,
		Committed: committed,
		Total:     sum.Total,
		Matched:   sum.Matched,
		Differing: sum.Differing,
		Pending:   sum.Pending,
		Lines:     s.Lines(),
	}
}

// SummarizeLines totales de un conjunto de líneas (p.ej. de un inventario archivado).
func SummarizeLines(lines []entity.CountLine) CountSummary {
	return summarize(lines)
}

func summarize(lines []entity.CountLine) CountSummary {
	sum := CountSummary{Total: len(lines)}
	for _, l := range lines {
		switch l.State {
		case entity.CountLineMatched:
			sum.Matched++
		case entity.CountLineDiffering:
			sum.Differing++
		default:
			sum.Pending++
		}
	}
	return sum
}
