package inventory

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// CountUseCase inventario físico: como mucho una sesión activa a la vez, protegida por mu.
type CountUseCase struct {
	mu       sync.Mutex
	session  *domaininv.CountSession
	products ProductSource
	archives repository.CountArchiveRepository
	txRunner TxRunner
	renderer CountReportRenderer
	cache    ports.CacheInvalidator
	metrics  ports.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewCountUseCase construye el caso de uso. renderer puede ser nil (sin exportación PDF).
func NewCountUseCase(
	products ProductSource,
	archives repository.CountArchiveRepository,
	txRunner TxRunner,
	renderer CountReportRenderer,
	cache ports.CacheInvalidator,
	metrics ports.Metrics,
	log *logger.Logger,
) *CountUseCase {
	if cache == nil {
		cache = ports.NopInvalidator{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CountUseCase{
		products: products,
		archives: archives,
		txRunner: txRunner,
		renderer: renderer,
		cache:    cache,
		metrics:  metrics,
		log:      log.Component("count"),
		now:      time.Now,
	}
}

// Start toma la foto de todos los productos. Con una sesión ya activa -> ErrConflict.
func (uc *CountUseCase) Start(ctx context.Context) (*dto.CountSessionResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.session != nil {
		return nil, fmt.Errorf("%w: ya hay un inventario en curso", domain.ErrConflict)
	}
	views, err := uc.products.ListViews(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := make([]entity.ProductView, 0, len(views))
	for _, v := range views {
		snapshot = append(snapshot, *v)
	}
	uc.session = domaininv.StartCount(snapshot, uc.now())
	uc.log.Info().Int("products", len(snapshot)).Msg("inventario iniciado")
	return uc.sessionResponse(true), nil
}

// Record registra la cantidad contada de un producto.
func (uc *CountUseCase) Record(_ context.Context, req dto.RecordCountRequest) (*dto.CountLineResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.session == nil {
		return nil, domain.ErrNoActiveCount
	}
	line, err := uc.session.Record(req.ProductID, req.Counted)
	if err != nil {
		return nil, err
	}
	resp := toCountLineResponse(line)
	return &resp, nil
}

// Current sesión activa; withLines=false solo devuelve el resumen.
func (uc *CountUseCase) Current(withLines bool) (*dto.CountSessionResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.session == nil {
		return nil, domain.ErrNoActiveCount
	}
	return uc.sessionResponse(withLines), nil
}

// Cancel descarta la sesión sin escribir nada.
func (uc *CountUseCase) Cancel() error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.session == nil {
		return domain.ErrNoActiveCount
	}
	uc.session = nil
	uc.log.Info().Msg("inventario cancelado")
	return nil
}

// Commit aplica todas las correcciones y archiva la sesión en una sola transacción.
// Si algo falla no se escribe nada y la sesión sigue activa. Tras confirmar, la sesión se cierra,
// así que un segundo Commit devuelve ErrNoActiveCount.
func (uc *CountUseCase) Commit(ctx context.Context) (*dto.CommitCountResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.session == nil {
		return nil, domain.ErrNoActiveCount
	}
	corrections := uc.session.Corrections()
	now := uc.now()
	archive := uc.session.Archive(uuid.New().String(), now, true)

	var ids []string
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		archiveRepo repository.CountArchiveRepository,
	) error {
		ids = ids[:0]
		for _, c := range corrections {
			res, err := ApplyInTx(ctx, movRepo, productRepo, MovementInput{
				ProductID: c.ProductID,
				Type:      c.Type,
				Quantity:  c.Quantity,
				Reference: c.Reference,
				Notes:     c.Notes,
			}, now)
			if err != nil {
				return fmt.Errorf("corrección de %s: %w", c.ProductID, err)
			}
			ids = append(ids, res.MovementID)
		}
		return archiveRepo.Create(ctx, &archive)
	})
	if err != nil {
		uc.log.Error().Err(err).Msg("no se pudo confirmar el inventario")
		return nil, err
	}

	uc.session = nil
	uc.cache.Invalidate()
	uc.metrics.CountCommitted(len(ids))
	uc.log.Info().Str("archive_id", archive.ID).Int("corrections", len(ids)).Msg("inventario confirmado")
	if ids == nil {
		ids = []string{}
	}
	return &dto.CommitCountResponse{ArchiveID: archive.ID, Applied: len(ids), MovementIDs: ids}, nil
}

// Save archiva la sesión sin aplicar correcciones; la sesión sigue activa.
func (uc *CountUseCase) Save(ctx context.Context) (*dto.CountArchiveResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.session == nil {
		return nil, domain.ErrNoActiveCount
	}
	archive := uc.session.Archive(uuid.New().String(), uc.now(), false)
	if err := uc.archives.Create(ctx, &archive); err != nil {
		return nil, err
	}
	resp := toArchiveResponse(&archive, false)
	return &resp, nil
}

// ListArchives inventarios guardados, sin líneas.
func (uc *CountUseCase) ListArchives(ctx context.Context) ([]dto.CountArchiveResponse, error) {
	list, err := uc.archives.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CountArchiveResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toArchiveResponse(a, false))
	}
	return out, nil
}

// GetArchive inventario guardado con sus líneas.
func (uc *CountUseCase) GetArchive(ctx context.Context, id string) (*dto.CountArchiveResponse, error) {
	a, err := uc.loadArchive(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toArchiveResponse(a, true)
	return &resp, nil
}

// DeleteArchive elimina un inventario guardado.
func (uc *CountUseCase) DeleteArchive(ctx context.Context, id string) error {
	return uc.archives.Delete(ctx, id)
}

// ClearArchives elimina todos los inventarios guardados.
func (uc *CountUseCase) ClearArchives(ctx context.Context) (int64, error) {
	return uc.archives.DeleteAll(ctx)
}

// ExportCSV CSV con BOM de la sesión activa (archiveID vacío) o de un inventario guardado.
func (uc *CountUseCase) ExportCSV(ctx context.Context, archiveID string) ([]byte, error) {
	a, err := uc.resolve(ctx, archiveID)
	if err != nil {
		return nil, err
	}
	return WriteCountCSV(a.Lines)
}

// ExportPDF informe PDF de la sesión activa (archiveID vacío) o de un inventario guardado.
func (uc *CountUseCase) ExportPDF(ctx context.Context, archiveID string) ([]byte, error) {
	if uc.renderer == nil {
		return nil, fmt.Errorf("%w: exportación PDF no configurada", domain.ErrInvalidInput)
	}
	a, err := uc.resolve(ctx, archiveID)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderCountReport(a)
}

func (uc *CountUseCase) resolve(ctx context.Context, archiveID string) (*entity.CountArchive, error) {
	if archiveID != "" {
		return uc.loadArchive(ctx, archiveID)
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.session == nil {
		return nil, domain.ErrNoActiveCount
	}
	a := uc.session.Archive("", uc.now(), false)
	return &a, nil
}

func (uc *CountUseCase) loadArchive(ctx context.Context, id string) (*entity.CountArchive, error) {
	a, err := uc.archives.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: inventario %s", domain.ErrNotFound, id)
	}
	return a, nil
}

func (uc *CountUseCase) sessionResponse(withLines bool) *dto.CountSessionResponse {
	resp := &dto.CountSessionResponse{
		StartedAt: uc.session.StartedAt(),
		Summary:   toSummaryResponse(uc.session.Summary()),
	}
	if withLines {
		lines := uc.session.Lines()
		resp.Lines = make([]dto.CountLineResponse, 0, len(lines))
		for _, l := range lines {
			resp.Lines = append(resp.Lines, toCountLineResponse(l))
		}
	}
	return resp
}

// Etiquetas de estado en exportaciones.
var countStateLabels = map[entity.CountLineState]string{
	entity.CountLineMatched:   "Coincide",
	entity.CountLineDiffering: "Diferencia",
	entity.CountLinePending:   "Sin contar",
}

// WriteCountCSV CSV separado por comas con BOM UTF-8: una fila por línea y al final un bloque de resumen.
func WriteCountCSV(lines []entity.CountLine) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	w := csv.NewWriter(&buf)
	rows := [][]string{{"Producto", "SKU", "Cantidad sistema", "Cantidad contada", "Diferencia", "Categoría", "Proveedor", "Estado"}}
	for _, l := range lines {
		rows = append(rows, []string{
			l.Name, l.SKU,
			strconv.Itoa(l.Expected), strconv.Itoa(l.Counted), strconv.Itoa(l.Difference()),
			l.CategoryName, l.SupplierName, countStateLabels[l.State],
		})
	}
	sum := domaininv.SummarizeLines(lines)
	rows = append(rows,
		[]string{},
		[]string{"Resumen del inventario"},
		[]string{"Concepto", "Valor"},
		[]string{"Total productos", strconv.Itoa(sum.Total)},
		[]string{"Coinciden", strconv.Itoa(sum.Matched)},
		[]string{"Diferencias", strconv.Itoa(sum.Differing)},
		[]string{"Sin contar", strconv.Itoa(sum.Pending)},
	)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("escribir csv: %w", err)
	}
	return buf.Bytes(), nil
}

func toSummaryResponse(s domaininv.CountSummary) dto.CountSummaryResponse {
	return dto.CountSummaryResponse{Total: s.Total, Matched: s.Matched, Differing: s.Differing, Pending: s.Pending}
}

func toCountLineResponse(l entity.CountLine) dto.CountLineResponse {
	return dto.CountLineResponse{
		ProductID:    l.ProductID,
		Name:         l.Name,
		SKU:          l.SKU,
		CategoryName: l.CategoryName,
		SupplierName: l.SupplierName,
		Expected:     l.Expected,
		Counted:      l.Counted,
		Difference:   l.Difference(),
		State:        string(l.State),
	}
}

func toArchiveResponse(a *entity.CountArchive, withLines bool) dto.CountArchiveResponse {
	resp := dto.CountArchiveResponse{
		ID:        a.ID,
		CreatedAt: a.CreatedAt,
		Committed: a.Committed,
		Summary:   dto.CountSummaryResponse{Total: a.Total, Matched: a.Matched, Differing: a.Differing, Pending: a.Pending},
	}
	if withLines {
		resp.Lines = make([]dto.CountLineResponse, 0, len(a.Lines))
		for _, l := range a.Lines {
			resp.Lines = append(resp.Lines, toCountLineResponse(l))
		}
	}
	return resp
}
