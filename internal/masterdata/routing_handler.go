package masterdata

import (
	"strings"

	"mes-backend/internal/api"
	"mes-backend/internal/database"
	"mes-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RoutingOperationRequest struct {
	Sequence    int    `json:"sequence"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	EquipmentID *uint  `json:"equipment_id"`
	RequiresQC  bool   `json:"requires_qc"`
}

type CreateRoutingRequest struct {
	ProductID  uint                      `json:"product_id"`
	Version    string                    `json:"version"`
	Operations []RoutingOperationRequest `json:"operations"`
}

type RoutingOperationResponse struct {
	ID          uint   `json:"id"`
	Sequence    int    `json:"sequence"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	EquipmentID *uint  `json:"equipment_id"`
	RequiresQC  bool   `json:"requires_qc"`
}

type RoutingResponse struct {
	ID         uint                       `json:"id"`
	ProductID  uint                       `json:"product_id"`
	Version    string                     `json:"version"`
	Active     bool                       `json:"active"`
	Operations []RoutingOperationResponse `json:"operations"`
}

func routingResponse(r *models.Routing) RoutingResponse {
	ops := make([]RoutingOperationResponse, 0, len(r.Operations))
	for _, op := range r.Operations {
		ops = append(ops, RoutingOperationResponse{
			ID:          op.ID,
			Sequence:    op.Sequence,
			Code:        op.Code,
			Name:        op.Name,
			EquipmentID: op.EquipmentID,
			RequiresQC:  op.RequiresQualityControl,
		})
	}
	return RoutingResponse{
		ID:         r.ID,
		ProductID:  r.ProductID,
		Version:    r.Version,
		Active:     r.Active,
		Operations: ops,
	}
}

// GET /api/products/:id/routings
// Ürünün rota versiyonlarını döndürür; editör parti oluştururken bunları kullanır
func GetProductRoutingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID := c.Params("id")

		var routings []models.Routing
		if err := database.DB.
			Preload("Operations", func(db *gorm.DB) *gorm.DB { return db.Order("sequence asc") }).
			Where("product_id = ? AND active = ?", productID, true).
			Order("version asc").
			Find(&routings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rotalar listelenemedi")
		}

		res := make([]RoutingResponse, 0, len(routings))
		for i := range routings {
			res = append(res, routingResponse(&routings[i]))
		}
		return api.Data(c, res)
	}
}

// POST /api/admin/routings
func CreateRoutingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRoutingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Version = strings.TrimSpace(body.Version)
		if body.ProductID == 0 || body.Version == "" {
			return fiber.NewError(fiber.StatusBadRequest, "product_id ve version zorunlu")
		}
		if len(body.Operations) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "En az bir operasyon eklenmelidir")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
		}

		var existing models.Routing
		if err := database.DB.Where("product_id = ? AND version = ?", body.ProductID, body.Version).
			First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu ürün için aynı versiyon zaten var")
		}

		ops := make([]models.RoutingOperation, 0, len(body.Operations))
		for _, op := range body.Operations {
			if strings.TrimSpace(op.Code) == "" || strings.TrimSpace(op.Name) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Her operasyon için code ve name zorunlu")
			}
			ops = append(ops, models.RoutingOperation{
				Sequence:               op.Sequence,
				Code:                   strings.TrimSpace(op.Code),
				Name:                   strings.TrimSpace(op.Name),
				EquipmentID:            op.EquipmentID,
				RequiresQualityControl: op.RequiresQC,
			})
		}

		routing := models.Routing{
			ProductID:  body.ProductID,
			Version:    body.Version,
			Active:     true,
			Operations: ops,
		}

		if err := database.DB.Create(&routing).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rota oluşturulamadı")
		}

		return api.Created(c, routingResponse(&routing))
	}
}

// PUT /api/admin/routings/:id
// Operasyon listesi verildiyse eskiler silinip yenileri yazılır
func UpdateRoutingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var routing models.Routing
		if err := database.DB.Preload("Operations").First(&routing, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rota bulunamadı")
		}

		var body struct {
			Version    *string                   `json:"version"`
			Active     *bool                     `json:"active"`
			Operations []RoutingOperationRequest `json:"operations"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Version != nil {
			v := strings.TrimSpace(*body.Version)
			if v == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Versiyon boş olamaz")
			}
			routing.Version = v
		}
		if body.Active != nil {
			routing.Active = *body.Active
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if body.Operations != nil {
				if err := tx.Where("routing_id = ?", routing.ID).
					Delete(&models.RoutingOperation{}).Error; err != nil {
					return err
				}
				ops := make([]models.RoutingOperation, 0, len(body.Operations))
				for _, op := range body.Operations {
					ops = append(ops, models.RoutingOperation{
						RoutingID:              routing.ID,
						Sequence:               op.Sequence,
						Code:                   strings.TrimSpace(op.Code),
						Name:                   strings.TrimSpace(op.Name),
						EquipmentID:            op.EquipmentID,
						RequiresQualityControl: op.RequiresQC,
					})
				}
				if err := tx.Create(&ops).Error; err != nil {
					return err
				}
				routing.Operations = ops
			}
			return tx.Save(&routing).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rota güncellenemedi")
		}

		return api.Data(c, routingResponse(&routing))
	}
}

// DELETE /api/admin/routings/:id
func DeleteRoutingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var routing models.Routing
		if err := database.DB.First(&routing, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rota bulunamadı")
		}

		var refCount int64
		database.DB.Model(&models.Batch{}).Where("routing_id = ?", routing.ID).Count(&refCount)
		if refCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Partilerde kullanılan rota silinemez")
		}

		if err := database.DB.Select("Operations").Delete(&routing).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rota silinemedi")
		}

		return api.Message(c, "Rota silindi")
	}
}
