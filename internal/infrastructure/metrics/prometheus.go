// Package metrics implementa ports.Metrics con Prometheus y expone el middleware HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ ports.Metrics = (*Recorder)(nil)

// Recorder agrupa los contadores del servicio, registrados en su propio registry.
type Recorder struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	movements       *prometheus.CounterVec
	countCommits    prometheus.Counter
	corrections     prometheus.Counter
	importRows      *prometheus.CounterVec
	backups         *prometheus.CounterVec
	backupSize      prometheus.Gauge
}

// New registra todas las métricas con el prefijo (namespace) indicado.
func New(namespace string) *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		movements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Stock movements applied, by type",
		}, []string{"type"}),
		countCommits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "count_commits_total",
			Help:      "Physical counts committed",
		}),
		corrections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "count_corrections_total",
			Help:      "Correction movements generated by committed counts",
		}),
		importRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Imported product rows, by format and result",
		}, []string{"format", "result"}),
		backups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Backups run, by result",
		}, []string{"result"}),
		backupSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_backup_size_bytes",
			Help:      "Size of the last successful backup",
		}),
	}
}

// MovementApplied cuenta un movimiento por tipo.
func (r *Recorder) MovementApplied(movementType string) {
	r.movements.WithLabelValues(movementType).Inc()
}

// CountCommitted cuenta un inventario confirmado y sus correcciones.
func (r *Recorder) CountCommitted(corrections int) {
	r.countCommits.Inc()
	r.corrections.Add(float64(corrections))
}

// ImportFinished suma filas creadas, actualizadas y fallidas.
func (r *Recorder) ImportFinished(format string, created, updated, failed int) {
	r.importRows.WithLabelValues(format, "created").Add(float64(created))
	r.importRows.WithLabelValues(format, "updated").Add(float64(updated))
	r.importRows.WithLabelValues(format, "failed").Add(float64(failed))
}

// BackupFinished cuenta la copia y guarda el tamaño de la última correcta.
func (r *Recorder) BackupFinished(ok bool, sizeBytes int64) {
	if !ok {
		r.backups.WithLabelValues("error").Inc()
		return
	}
	r.backups.WithLabelValues("ok").Inc()
	r.backupSize.Set(float64(sizeBytes))
}

// Handler endpoint /metrics en formato Prometheus.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// FiberHandler adapta Handler a fiber.
func (r *Recorder) FiberHandler() fiber.Handler {
	return adaptor.HTTPHandler(r.Handler())
}

// Middleware registra método, ruta, estado y duración de cada petición.
// Se usa la ruta registrada (con parámetros) para no disparar la cardinalidad.
func (r *Recorder) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < http.StatusBadRequest {
				status = http.StatusInternalServerError
			}
		}
		path := c.Route().Path
		if path == "" {
			path = "unmatched"
		}
		method := c.Method()
		r.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		r.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		return err
	}
}
