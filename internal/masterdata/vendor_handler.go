package masterdata

import (
	"strings"

	"mes-backend/internal/api"
	"mes-backend/internal/database"
	"mes-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type VendorRequest struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// POST /api/admin/vendors
func CreateVendorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body VendorRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Code = strings.TrimSpace(body.Code)
		body.Name = strings.TrimSpace(body.Name)
		if body.Code == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Code ve name zorunlu")
		}

		var existing models.Vendor
		if err := database.DB.Where("code = ?", body.Code).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu tedarikçi kodu zaten kullanılıyor")
		}

		v := models.Vendor{Code: body.Code, Name: body.Name, Phone: body.Phone}
		if err := database.DB.Create(&v).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi oluşturulamadı")
		}
		return api.Created(c, v)
	}
}

// GET /api/vendors
func ListVendorsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var vendors []models.Vendor
		if err := database.DB.Order("code asc").Find(&vendors).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçiler listelenemedi")
		}
		return api.Data(c, vendors)
	}
}

type UnitRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// POST /api/admin/units
func CreateUnitHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UnitRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Code = strings.TrimSpace(body.Code)
		body.Name = strings.TrimSpace(body.Name)
		if body.Code == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Code ve name zorunlu")
		}

		u := models.UnitOfMeasure{Code: body.Code, Name: body.Name}
		if err := database.DB.Create(&u).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Birim oluşturulamadı")
		}
		return api.Created(c, u)
	}
}

// GET /api/units
func ListUnitsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var units []models.UnitOfMeasure
		if err := database.DB.Order("code asc").Find(&units).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Birimler listelenemedi")
		}
		return api.Data(c, units)
	}
}
