package scheduling

import (
	"fmt"

	"mes-backend/internal/api"
	"mes-backend/internal/audit"
	"mes-backend/internal/database"
	"mes-backend/internal/models"
	"mes-backend/internal/workorder"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// DELETE /api/batches/:id
// Partiyi ve tüm pick/plan satırlarını ANINDA siler. Parti ekleme ve
// düzenleme kaydedilene kadar yerelken, silme sunucuda hemen gerçekleşir:
// serbest kalan stok diğer iş emirlerinin kullanımına açılır.
func DeleteBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var batch models.Batch
		if err := database.DB.Preload("Materials").Preload("Materials.Picks").
			Preload("Materials.Plans").First(&batch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Parti bulunamadı")
		}

		var wo models.WorkOrder
		if err := database.DB.First(&wo, "id = ?", batch.WorkOrderID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İş emri yüklenemedi")
		}
		if !workorder.EditableStatus(wo.Status) {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Bu durumdaki iş emrinin partisi silinemez: %s", wo.Status))
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			return deleteBatchTree(tx, batch.ID)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Parti silinemedi")
		}

		userID, userName, workCenterID, uerr := getUserInfo(c)
		if uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WorkCenterID: workCenterID,
				UserID:       userID,
				UserName:     userName,
				EntityType:   "batch",
				EntityID:     batch.ID,
				Action:       models.AuditActionDelete,
				Description:  fmt.Sprintf("Parti silindi: %s (iş emri %s)", batch.BatchCode, wo.Code),
				Before:       batch,
				After:        nil,
			})
		}

		return api.Message(c, "Parti silindi, rezervasyonlar serbest bırakıldı")
	}
}
