package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/backup"
)

// BackupHandler copias de seguridad bajo demanda.
type BackupHandler struct {
	uc *backup.BackupUseCase
}

func NewBackupHandler(uc *backup.BackupUseCase) *BackupHandler {
	return &BackupHandler{uc: uc}
}

// Run godoc
// @Summary      Crear copia de seguridad
// @Tags         backup
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.BackupInfo
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/backup [post]
func (h *BackupHandler) Run(c *fiber.Ctx) error {
	out, err := h.uc.Run(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Info godoc
// @Summary      Última copia de seguridad
// @Tags         backup
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BackupInfo
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/backup [get]
func (h *BackupHandler) Info(c *fiber.Ctx) error {
	out, err := h.uc.Info(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// @Router       /api/backup/cleanup [post]
func (h *BackupHandler) Cleanup(c *fiber.Ctx) error {
	out, err := h.uc.Cleanup(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
