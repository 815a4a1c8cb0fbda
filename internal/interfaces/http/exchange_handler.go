package http

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/exchange"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExchangeHandler importación y exportación del catálogo en CSV/XLSX.
type ExchangeHandler struct {
	uc *exchange.ExchangeUseCase
}

func NewExchangeHandler(uc *exchange.ExchangeUseCase) *ExchangeHandler {
	return &ExchangeHandler{uc: uc}
}

// Export godoc
// @Summary      Exportar productos
// @Tags         exchange
// @Security     Bearer
// @Produce      text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format  query  string  false  "csv (por defecto) o xlsx"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/exchange/products [get]
func (h *ExchangeHandler) Export(c *fiber.Ctx) error {
	format := c.Query("format", exchange.FormatCSV)
	data, err := h.uc.Export(c.UserContext(), format)
	if err != nil {
		return respondError(c, err)
	}
	contentType := "text/csv; charset=utf-8"
	if format == exchange.FormatXLSX {
		contentType = xlsxContentType
	}
	return sendFile(c, contentType, exchange.ExportFilename(format, time.Now()), data)
}

// Import godoc
// @Summary      Importar productos
// @Description  Acepta multipart con campo "file" o el fichero como cuerpo. El formato se deduce
// @Description  de la extensión o del contenido; ?format= lo fuerza.
// @Tags         exchange
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file    formData  file    false  "Fichero CSV o XLSX"
// @Param        format  query     string  false  "csv o xlsx"
// @Success      200  {object}  dto.ImportReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/exchange/products [post]
func (h *ExchangeHandler) Import(c *fiber.Ctx) error {
	var (
		filename string
		data     []byte
	)
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return badBody(c)
		}
		defer f.Close()
		if data, err = io.ReadAll(f); err != nil {
			return badBody(c)
		}
		filename = fh.Filename
	} else {
		data = c.Body()
	}
	if len(data) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fichero vacío"})
	}
	format := c.Query("format")
	if format == "" {
		format = exchange.DetectFormat(filename, data)
	}
	report, err := h.uc.Import(c.UserContext(), format, data)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
