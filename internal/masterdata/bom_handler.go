package masterdata

import (
	"strings"

	"mes-backend/internal/api"
	"mes-backend/internal/database"
	"mes-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BOMItemRequest struct {
	ComponentID uint    `json:"component_id"`
	Quantity    float64 `json:"quantity"`     // 1 birim ana ürün için
	UnitID      uint    `json:"unit_id"`
	VendorID    *uint   `json:"vendor_id"`
}

type CreateBOMRequest struct {
	ProductID uint             `json:"product_id"`
	Version   string           `json:"version"`
	Items     []BOMItemRequest `json:"items"`
}

type BOMItemResponse struct {
	ID            uint    `json:"id"`
	ComponentID   uint    `json:"component_id"`
	ComponentCode string  `json:"component_code"`
	ComponentName string  `json:"component_name"`
	Quantity      float64 `json:"quantity"`
	UnitID        uint    `json:"unit_id"`
	VendorID      *uint   `json:"vendor_id"`
}

type BOMResponse struct {
	ID        uint              `json:"id"`
	ProductID uint              `json:"product_id"`
	Version   string            `json:"version"`
	Active    bool              `json:"active"`
	Items     []BOMItemResponse `json:"items"`
}

func bomResponse(b *models.BOM) BOMResponse {
	items := make([]BOMItemResponse, 0, len(b.Items))
	for _, item := range b.Items {
		items = append(items, BOMItemResponse{
			ID:            item.ID,
			ComponentID:   item.ComponentID,
			ComponentCode: item.Component.Code,
			ComponentName: item.Component.Name,
			Quantity:      item.Quantity,
			UnitID:        item.UnitOfMeasureID,
			VendorID:      item.VendorID,
		})
	}
	return BOMResponse{
		ID:        b.ID,
		ProductID: b.ProductID,
		Version:   b.Version,
		Active:    b.Active,
		Items:     items,
	}
}

// GET /api/products/:id/boms
// Ürünün reçete versiyonlarını döndürür
func GetProductBOMsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID := c.Params("id")

		var boms []models.BOM
		if err := database.DB.
			Preload("Items.Component").
			Where("product_id = ? AND active = ?", productID, true).
			Order("version asc").
			Find(&boms).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçeteler listelenemedi")
		}

		res := make([]BOMResponse, 0, len(boms))
		for i := range boms {
			res = append(res, bomResponse(&boms[i]))
		}
		return api.Data(c, res)
	}
}

func validateBOMItems(items []BOMItemRequest) ([]models.BOMItem, error) {
	out := make([]models.BOMItem, 0, len(items))
	for _, item := range items {
		if item.ComponentID == 0 || item.UnitID == 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Her kalem için component_id ve unit_id zorunlu")
		}
		if item.Quantity <= 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Kalem miktarı 0'dan büyük olmalı")
		}
		var component models.Product
		if err := database.DB.First(&component, "id = ?", item.ComponentID).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Bileşen ürün bulunamadı")
		}
		out = append(out, models.BOMItem{
			ComponentID:     item.ComponentID,
			Quantity:        item.Quantity,
			UnitOfMeasureID: item.UnitID,
			VendorID:        item.VendorID,
		})
	}
	return out, nil
}

// POST /api/admin/boms
func CreateBOMHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBOMRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Version = strings.TrimSpace(body.Version)
		if body.ProductID == 0 || body.Version == "" {
			return fiber.NewError(fiber.StatusBadRequest, "product_id ve version zorunlu")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "En az bir reçete kalemi eklenmelidir")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
		}

		var existing models.BOM
		if err := database.DB.Where("product_id = ? AND version = ?", body.ProductID, body.Version).
			First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu ürün için aynı versiyon zaten var")
		}

		items, err := validateBOMItems(body.Items)
		if err != nil {
			return err
		}

		bom := models.BOM{
			ProductID: body.ProductID,
			Version:   body.Version,
			Active:    true,
			Items:     items,
		}

		if err := database.DB.Create(&bom).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete oluşturulamadı")
		}

		if err := database.DB.Preload("Items.Component").First(&bom, bom.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete kalemleri yüklenemedi")
		}

		return api.Created(c, bomResponse(&bom))
	}
}

// PUT /api/admin/boms/:id
func UpdateBOMHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var bom models.BOM
		if err := database.DB.Preload("Items").First(&bom, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}

		var body struct {
			Version *string          `json:"version"`
			Active  *bool            `json:"active"`
			Items   []BOMItemRequest `json:"items"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Version != nil {
			v := strings.TrimSpace(*body.Version)
			if v == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Versiyon boş olamaz")
			}
			bom.Version = v
		}
		if body.Active != nil {
			bom.Active = *body.Active
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if body.Items != nil {
				items, err := validateBOMItems(body.Items)
				if err != nil {
					return err
				}
				if err := tx.Where("bom_id = ?", bom.ID).Delete(&models.BOMItem{}).Error; err != nil {
					return err
				}
				for i := range items {
					items[i].BOMID = bom.ID
				}
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
			return tx.Save(&bom).Error
		})
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete güncellenemedi")
		}

		if err := database.DB.Preload("Items.Component").First(&bom, bom.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete kalemleri yüklenemedi")
		}

		return api.Data(c, bomResponse(&bom))
	}
}

// DELETE /api/admin/boms/:id
func DeleteBOMHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var bom models.BOM
		if err := database.DB.First(&bom, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}

		var refCount int64
		database.DB.Model(&models.Batch{}).Where("bom_id = ?", bom.ID).Count(&refCount)
		if refCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Partilerde kullanılan reçete silinemez")
		}

		if err := database.DB.Select("Items").Delete(&bom).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete silinemedi")
		}

		return api.Message(c, "Reçete silindi")
	}
}
