package inventory

import (
	"fmt"
	"strings"
	"time"

	"mes-backend/internal/api"
	"mes-backend/internal/audit"
	"mes-backend/internal/database"
	"mes-backend/internal/models"
	"mes-backend/internal/quantity"

	"github.com/gofiber/fiber/v2"
)

type CreatePlannedSupplyRequest struct {
	ProductID  uint    `json:"product_id"`
	VendorID   *uint   `json:"vendor_id"`
	SourceType string  `json:"source_type"` // PURCHASE_ORDER | PRODUCTION_ORDER
	SourceCode string  `json:"source_code"`
	Quantity   float64 `json:"quantity"`
	ExpectedAt string  `json:"expected_at"` // "2026-09-15"
}

type PlannedSupplyResponse struct {
	ID         uint    `json:"id"`
	ProductID  uint    `json:"product_id"`
	VendorID   *uint   `json:"vendor_id"`
	SourceType string  `json:"source_type"`
	SourceCode string  `json:"source_code"`
	Quantity   float64 `json:"quantity"`
	Reserved   float64 `json:"reserved"`
	Available  float64 `json:"available"`
	ExpectedAt string  `json:"expected_at"`
	Closed     bool    `json:"closed"`
}

func plannedSupplyResponse(ps *models.PlannedSupply, reserved float64) PlannedSupplyResponse {
	return PlannedSupplyResponse{
		ID:         ps.ID,
		ProductID:  ps.ProductID,
		VendorID:   ps.VendorID,
		SourceType: string(ps.SourceType),
		SourceCode: ps.SourceCode,
		Quantity:   ps.Quantity,
		Reserved:   quantity.Round(reserved),
		Available:  quantity.Sum(ps.Quantity, -reserved),
		ExpectedAt: ps.ExpectedAt.Format("2006-01-02"),
		Closed:     ps.Closed,
	}
}

// ReservedForPlannedSupply: Tedarik kaydına karşı kayıtlı tüm planların toplamı.
func ReservedForPlannedSupply(supplyID uint) float64 {
	var reserved float64
	database.DB.Model(&models.MaterialPlan{}).
		Where("planned_supply_id = ?", supplyID).
		Select("COALESCE(SUM(pick_qty), 0)").
		Scan(&reserved)
	return reserved
}

// POST /api/planned-supplies
func CreatePlannedSupplyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePlannedSupplyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id zorunlu")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Miktar 0'dan büyük olmalı")
		}

		sourceType := models.PlannedSupplySource(strings.ToUpper(strings.TrimSpace(body.SourceType)))
		if sourceType != models.SupplySourcePurchaseOrder && sourceType != models.SupplySourceProductionOrder {
			return fiber.NewError(fiber.StatusBadRequest, "source_type PURCHASE_ORDER veya PRODUCTION_ORDER olmalı")
		}
		if strings.TrimSpace(body.SourceCode) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "source_code zorunlu")
		}

		expectedAt, err := time.Parse("2006-01-02", body.ExpectedAt)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
		}

		supply := models.PlannedSupply{
			ProductID:  body.ProductID,
			VendorID:   body.VendorID,
			SourceType: sourceType,
			SourceCode: strings.TrimSpace(body.SourceCode),
			Quantity:   quantity.Round(body.Quantity),
			ExpectedAt: expectedAt,
		}

		if err := database.DB.Create(&supply).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Planlı tedarik oluşturulamadı")
		}

		userID, userName, workCenterID, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WorkCenterID: workCenterID,
				UserID:       userID,
				UserName:     userName,
				EntityType:   "planned_supply",
				EntityID:     supply.ID,
				Action:       models.AuditActionCreate,
				Description:  fmt.Sprintf("Planlı tedarik eklendi: %s, %.2f", supply.SourceCode, supply.Quantity),
				Before:       nil,
				After:        supply,
			})
		}

		return api.Created(c, plannedSupplyResponse(&supply, 0))
	}
}

// GET /api/planned-supplies?product_id=1&open=true
func ListPlannedSuppliesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.PlannedSupply{})
		if productID := c.Query("product_id"); productID != "" {
			dbq = dbq.Where("product_id = ?", productID)
		}
		if c.Query("open") == "true" {
			dbq = dbq.Where("closed = ?", false)
		}

		var supplies []models.PlannedSupply
		if err := dbq.Order("expected_at asc").Find(&supplies).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Planlı tedarikler listelenemedi")
		}

		res := make([]PlannedSupplyResponse, 0, len(supplies))
		for i := range supplies {
			res = append(res, plannedSupplyResponse(&supplies[i], ReservedForPlannedSupply(supplies[i].ID)))
		}
		return api.Data(c, res)
	}
}

// PUT /api/planned-supplies/:id/close
// Tedarik gerçekleşti işaretlenir; yeni planlamalarda listelenmez
func ClosePlannedSupplyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var supply models.PlannedSupply
		if err := database.DB.First(&supply, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Planlı tedarik bulunamadı")
		}

		if supply.Closed {
			return fiber.NewError(fiber.StatusBadRequest, "Planlı tedarik zaten kapatılmış")
		}

		before := supply
		supply.Closed = true
		if err := database.DB.Save(&supply).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Planlı tedarik kapatılamadı")
		}

		userID, userName, workCenterID, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WorkCenterID: workCenterID,
				UserID:       userID,
				UserName:     userName,
				EntityType:   "planned_supply",
				EntityID:     supply.ID,
				Action:       models.AuditActionUpdate,
				Description:  fmt.Sprintf("Planlı tedarik kapatıldı: %s", supply.SourceCode),
				Before:       before,
				After:        supply,
			})
		}

		return api.Data(c, plannedSupplyResponse(&supply, ReservedForPlannedSupply(supply.ID)))
	}
}
