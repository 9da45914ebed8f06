package masterdata

import (
	"strings"

	"mes-backend/internal/api"
	"mes-backend/internal/database"
	"mes-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProductResponse struct {
	ID         uint   `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	UnitID     uint   `json:"unit_id"`
	UnitCode   string `json:"unit_code"`
	IsProduced bool   `json:"is_produced"`
}

type CreateProductRequest struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	UnitID     uint   `json:"unit_id"`
	IsProduced bool   `json:"is_produced"`
}

type UpdateProductRequest struct {
	Code       *string `json:"code"`
	Name       *string `json:"name"`
	UnitID     *uint   `json:"unit_id"`
	IsProduced *bool   `json:"is_produced"`
}

func productResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		Code:       p.Code,
		Name:       p.Name,
		UnitID:     p.UnitOfMeasureID,
		UnitCode:   p.UnitOfMeasure.Code,
		IsProduced: p.IsProduced,
	}
}

// GET /api/products?is_produced=true
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{}).Preload("UnitOfMeasure")

		// Üretilen / satın alınan filtresi
		if v := c.Query("is_produced"); v == "true" {
			dbq = dbq.Where("is_produced = ?", true)
		} else if v == "false" {
			dbq = dbq.Where("is_produced = ?", false)
		}

		var products []models.Product
		if err := dbq.Order("code asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, productResponse(&products[i]))
		}
		return api.Data(c, res)
	}
}

// POST /api/admin/products (sadece super_admin)
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Code = strings.TrimSpace(body.Code)
		body.Name = strings.TrimSpace(body.Name)

		if body.Code == "" || body.Name == "" || body.UnitID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Code, name ve unit_id zorunlu")
		}

		var existing models.Product
		if err := database.DB.Where("code = ?", body.Code).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu ürün kodu zaten kullanılıyor")
		}

		var unit models.UnitOfMeasure
		if err := database.DB.First(&unit, "id = ?", body.UnitID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Birim bulunamadı")
		}

		p := models.Product{
			Code:            body.Code,
			Name:            body.Name,
			UnitOfMeasureID: body.UnitID,
			IsProduced:      body.IsProduced,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}
		p.UnitOfMeasure = unit

		return api.Created(c, productResponse(&p))
	}
}

// PUT /api/admin/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.Preload("UnitOfMeasure").First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Code != nil {
			code := strings.TrimSpace(*body.Code)
			if code == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün kodu boş olamaz")
			}
			var existing models.Product
			if err := database.DB.Where("code = ? AND id <> ?", code, p.ID).First(&existing).Error; err == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Bu ürün kodu zaten kullanılıyor")
			}
			p.Code = code
		}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
			}
			p.Name = name
		}
		if body.UnitID != nil {
			var unit models.UnitOfMeasure
			if err := database.DB.First(&unit, "id = ?", *body.UnitID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Birim bulunamadı")
			}
			p.UnitOfMeasureID = *body.UnitID
			p.UnitOfMeasure = unit
		}
		if body.IsProduced != nil {
			p.IsProduced = *body.IsProduced
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		return api.Data(c, productResponse(&p))
	}
}

// DELETE /api/admin/products/:id
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		// Reçetede veya iş emrinde geçen ürün silinemez
		var refCount int64
		database.DB.Model(&models.BOMItem{}).Where("component_id = ?", p.ID).Count(&refCount)
		if refCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Reçetelerde kullanılan ürün silinemez")
		}
		database.DB.Model(&models.WorkOrder{}).Where("product_id = ?", p.ID).Count(&refCount)
		if refCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İş emirlerinde kullanılan ürün silinemez")
		}

		if err := database.DB.Delete(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		return api.Message(c, "Ürün silindi")
	}
}
