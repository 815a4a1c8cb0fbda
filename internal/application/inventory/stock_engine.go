package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// Notas por defecto según tipo de movimiento.
var defaultNotes = map[entity.MovementType]string{
	entity.MovementTypeIn:         "Entrada de stock",
	entity.MovementTypeOut:        "Salida de stock",
	entity.MovementTypeAdjustment: "Ajuste de stock",
}

// StockEngine aplica movimientos de stock de forma transaccional: bloquea la fila del producto
// (SELECT FOR UPDATE), escribe la nueva cantidad e inserta el movimiento en la misma tx.
type StockEngine struct {
	txRunner  TxRunner
	movements repository.StockMovementRepository
	cache     ports.CacheInvalidator
	metrics   ports.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewStockEngine construye el motor. cache y metrics pueden ser nil.
func NewStockEngine(
	txRunner TxRunner,
	movements repository.StockMovementRepository,
	cache ports.CacheInvalidator,
	metrics ports.Metrics,
	log *logger.Logger,
) *StockEngine {
	if cache == nil {
		cache = ports.NopInvalidator{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StockEngine{
		txRunner:  txRunner,
		movements: movements,
		cache:     cache,
		metrics:   metrics,
		log:       log.Component("stock_engine"),
		now:       time.Now,
	}
}

// MovementInput entrada del motor. Quantity es la magnitud (>= 0); el efecto lo decide Type.
type MovementInput struct {
	ProductID      string
	Type           entity.MovementType
	Quantity       int
	Reference      string
	Notes          string
	CostWithoutTax *decimal.Decimal
	TaxAmount      *decimal.Decimal
	SupplierID     *string
	MovementDate   *time.Time
}

// MovementResult id del movimiento y cantidades antes/después.
type MovementResult struct {
	MovementID       string
	PreviousQuantity int
	NewQuantity      int
}

// Validate comprueba tipo y cantidad antes de abrir la transacción.
func (in MovementInput) Validate() error {
	if in.ProductID == "" {
		return fmt.Errorf("%w: producto obligatorio", domain.ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Quantity < 0 {
		return fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	if in.Quantity > domaininv.MaxQuantity {
		return fmt.Errorf("%w: cantidad %d fuera de rango", domain.ErrInvalidInput, in.Quantity)
	}
	return nil
}

// NextQuantity cantidad resultante: in suma, out resta (puede quedar negativa), adjustment fija.
func NextQuantity(current int, typ entity.MovementType, quantity int) int {
	switch typ {
	case entity.MovementTypeIn:
		return current + quantity
	case entity.MovementTypeOut:
		return current - quantity
	default:
		return quantity
	}
}

// ApplyMovement valida, abre la transacción y aplica el movimiento.
// Producto inexistente -> ErrNotFound sin escribir nada.
func (e *StockEngine) ApplyMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := e.now()
	var res *MovementResult
	err := e.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		_ repository.CountArchiveRepository,
	) error {
		r, err := ApplyInTx(ctx, movRepo, productRepo, in, now)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.cache.Invalidate()
	e.metrics.MovementApplied(string(in.Type))
	e.log.Info().
		Str("product_id", in.ProductID).
		Str("type", string(in.Type)).
		Int("quantity", in.Quantity).
		Int("from", res.PreviousQuantity).
		Int("to", res.NewQuantity).
		Msg("movimiento aplicado")
	return res, nil
}

// ApplyInTx aplica un movimiento con los repositorios de una transacción ya abierta por el caller
// (el inventario físico confirma todas sus correcciones en una sola tx).
func ApplyInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	in MovementInput,
	now time.Time,
) (*MovementResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	product, err := productRepo.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}

	next := NextQuantity(product.Quantity, in.Type, in.Quantity)
	if next > domaininv.MaxQuantity || next < -domaininv.MaxQuantity {
		return nil, fmt.Errorf("%w: la existencia resultante %d queda fuera de rango", domain.ErrInvalidInput, next)
	}
	if err := productRepo.UpdateQuantity(ctx, product.ID, next); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      product.ID,
		Quantity:       in.Quantity,
		Type:           in.Type,
		Reference:      in.Reference,
		Notes:          in.Notes,
		CostWithoutTax: decimal.Zero,
		TaxAmount:      decimal.Zero,
		SupplierID:     in.SupplierID,
		MovementDate:   now,
		CreatedAt:      now,
	}
	if mov.Reference == "" {
		mov.Reference = fmt.Sprintf("STK-%d", now.UnixMilli())
	}
	if mov.Notes == "" {
		mov.Notes = defaultNotes[in.Type]
	}
	if in.CostWithoutTax != nil {
		mov.CostWithoutTax = *in.CostWithoutTax
	}
	if in.TaxAmount != nil {
		mov.TaxAmount = *in.TaxAmount
	}
	if in.MovementDate != nil && !in.MovementDate.IsZero() {
		mov.MovementDate = *in.MovementDate
	}
	if mov.SupplierID != nil && *mov.SupplierID == "" {
		mov.SupplierID = nil
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return &MovementResult{MovementID: mov.ID, PreviousQuantity: product.Quantity, NewQuantity: next}, nil
}

// ApplyMovementFromRequest adapta el request HTTP al motor.
func (e *StockEngine) ApplyMovementFromRequest(ctx context.Context, req dto.ApplyMovementRequest) (*dto.ApplyMovementResponse, error) {
	res, err := e.ApplyMovement(ctx, MovementInput{
		ProductID:      req.ProductID,
		Type:           entity.MovementType(req.Type),
		Quantity:       req.Quantity,
		Reference:      req.Reference,
		Notes:          req.Notes,
		CostWithoutTax: req.CostWithoutTax,
		TaxAmount:      req.TaxAmount,
		SupplierID:     req.SupplierID,
		MovementDate:   req.MovementDate,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ApplyMovementResponse{MovementID: res.MovementID, NewQuantity: res.NewQuantity}, nil
}

// ListMovements historial del producto, el más reciente primero.
func (e *StockEngine) ListMovements(ctx context.Context, productID string) ([]dto.MovementResponse, error) {
	list, err := e.movements.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(*m))
	}
	return out, nil
}

// ToMovementResponse mapea la vista de movimiento a su DTO.
func ToMovementResponse(m entity.StockMovementView) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		Type:           string(m.Type),
		Quantity:       m.Quantity,
		Reference:      m.Reference,
		Notes:          m.Notes,
		CostWithoutTax: m.CostWithoutTax,
		TaxAmount:      m.TaxAmount,
		SupplierID:     m.SupplierID,
		SupplierName:   m.SupplierName,
		MovementDate:   m.MovementDate,
		CreatedAt:      m.CreatedAt,
	}
}
