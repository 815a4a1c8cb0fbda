package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ContadoresDeNegocio(t *testing.T) {
	r := New("test")

	r.MovementApplied("in")
	r.MovementApplied("in")
	r.MovementApplied("out")
	r.CountCommitted(3)
	r.ImportFinished("csv", 2, 1, 4)
	r.BackupFinished(true, 2048)
	r.BackupFinished(false, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.movements.WithLabelValues("in")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.movements.WithLabelValues("out")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.countCommits))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.corrections))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.importRows.WithLabelValues("csv", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.backups.WithLabelValues("error")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(r.backupSize))
}

func TestMiddleware_RegistraRutaYEstado(t *testing.T) {
	r := New("test")
	app := fiber.New()
	app.Use(r.Middleware())
	app.Get("/metrics", r.FiberHandler())
	app.Get("/api/products/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/products/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("GET", "/api/products/:id", "404")))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "test_http_requests_total")
	assert.Contains(t, string(body), "go_goroutines")
}
