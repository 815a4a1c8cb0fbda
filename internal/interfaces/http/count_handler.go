package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// CountHandler expone el recuento físico de inventario y sus archivos.
type CountHandler struct {
	uc *inventory.CountUseCase
}

func NewCountHandler(uc *inventory.CountUseCase) *CountHandler {
	return &CountHandler{uc: uc}
}

// Start godoc
// @Summary      Iniciar recuento con la foto actual del stock
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.CountSessionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/counts [post]
func (h *CountHandler) Start(c *fiber.Ctx) error {
	out, err := h.uc.Start(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Current godoc
// @Summary      Resumen del recuento activo
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CountSessionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/counts/current [get]
func (h *CountHandler) Current(c *fiber.Ctx) error {
	out, err := h.uc.Current(false)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// @Router       /api/counts/current/lines [get]
func (h *CountHandler) Lines(c *fiber.Ctx) error {
	out, err := h.uc.Current(true)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Record godoc
// @Summary      Anotar cantidad contada de un producto
// @Tags         counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordCountRequest  true  "product_id y counted"
// @Success      200   {object}  dto.CountLineResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/counts/current/lines [put]
func (h *CountHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordCountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Record(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Commit godoc
// @Summary      Aplicar correcciones y archivar el recuento
// @Description  Todas las correcciones van en una sola transacción. Sin recuento activo -> 409.
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CommitCountResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/counts/current/commit [post]
func (h *CountHandler) Commit(c *fiber.Ctx) error {
	out, err := h.uc.Commit(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// @Router       /api/counts/current/save [post]
func (h *CountHandler) Save(c *fiber.Ctx) error {
	out, err := h.uc.Save(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// @Router       /api/counts/current [delete]
func (h *CountHandler) Cancel(c *fiber.Ctx) error {
	if err := h.uc.Cancel(); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Export godoc
// @Summary      Exportar recuento activo o archivado
// @Tags         counts
// @Security     Bearer
// @Produce      text/csv,application/pdf
// @Param        format   query  string  true   "csv o pdf"
// @Param        archive  query  string  false  "ID del archivo; vacío = recuento activo"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/counts/export [get]
func (h *CountHandler) Export(c *fiber.Ctx) error {
	archiveID := c.Query("archive")
	stamp := time.Now().Format("20060102_150405")
	switch format := c.Query("format", "csv"); format {
	case "csv":
		data, err := h.uc.ExportCSV(c.UserContext(), archiveID)
		if err != nil {
			return respondError(c, err)
		}
		return sendFile(c, "text/csv; charset=utf-8", fmt.Sprintf("inventory_count_%s.csv", stamp), data)
	case "pdf":
		data, err := h.uc.ExportPDF(c.UserContext(), archiveID)
		if err != nil {
			return respondError(c, err)
		}
		return sendFile(c, "application/pdf", fmt.Sprintf("inventory_count_%s.pdf", stamp), data)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "format debe ser csv o pdf"})
	}
}

// ListArchives godoc
// @Summary      Recuentos guardados
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CountArchiveResponse
// @Router       /api/counts/archives [get]
func (h *CountHandler) ListArchives(c *fiber.Ctx) error {
	out, err := h.uc.ListArchives(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// @Router       /api/counts/archives/{id} [get]
func (h *CountHandler) GetArchive(c *fiber.Ctx) error {
	out, err := h.uc.GetArchive(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// @Router       /api/counts/archives/{id} [delete]
func (h *CountHandler) DeleteArchive(c *fiber.Ctx) error {
	if err := h.uc.DeleteArchive(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// @Router       /api/counts/archives [delete]
func (h *CountHandler) ClearArchives(c *fiber.Ctx) error {
	n, err := h.uc.ClearArchives(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DeletedResponse{Deleted: n})
}
