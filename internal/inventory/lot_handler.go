package inventory

import (
	"fmt"
	"strings"
	"time"

	"mes-backend/internal/api"
	"mes-backend/internal/audit"
	"mes-backend/internal/auth"
	"mes-backend/internal/database"
	"mes-backend/internal/models"
	"mes-backend/internal/quantity"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateLotRequest struct {
	ProductID    uint    `json:"product_id"`
	VendorID     *uint   `json:"vendor_id"`
	LotCode      string  `json:"lot_code"`      // Boşsa otomatik üretilir
	Quantity     float64 `json:"quantity"`
	ExpirationAt *string `json:"expiration_at"` // "2026-09-30"
	ReceivedAt   string  `json:"received_at"`   // "2026-08-30"
}

type LotResponse struct {
	ID           uint    `json:"id"`
	ProductID    uint    `json:"product_id"`
	VendorID     *uint   `json:"vendor_id"`
	LotCode      string  `json:"lot_code"`
	Quantity     float64 `json:"quantity"`
	Reserved     float64 `json:"reserved"`
	Available    float64 `json:"available"`
	ExpirationAt *string `json:"expiration_at"`
	ReceivedAt   string  `json:"received_at"`
}

func lotResponse(lot *models.InventoryLot, reserved float64) LotResponse {
	var expiration *string
	if lot.ExpirationAt != nil {
		s := lot.ExpirationAt.Format("2006-01-02")
		expiration = &s
	}
	return LotResponse{
		ID:           lot.ID,
		ProductID:    lot.ProductID,
		VendorID:     lot.VendorID,
		LotCode:      lot.LotCode,
		Quantity:     lot.Quantity,
		Reserved:     quantity.Round(reserved),
		Available:    quantity.Sum(lot.Quantity, -reserved),
		ExpirationAt: expiration,
		ReceivedAt:   lot.ReceivedAt.Format("2006-01-02"),
	}
}

// ReservedForLot: Lota karşı kayıtlı tüm pick'lerin toplamı.
// Kaydedilmiş pick satırları sunucuda tutulan rezervasyonun kendisidir.
func ReservedForLot(lotID uint) float64 {
	var reserved float64
	database.DB.Model(&models.MaterialPick{}).
		Where("lot_id = ?", lotID).
		Select("COALESCE(SUM(pick_qty), 0)").
		Scan(&reserved)
	return reserved
}

// POST /api/inventory-lots
// Mal kabul: yeni stok partisi oluşturur
func CreateLotHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLotRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id zorunlu")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Miktar 0'dan büyük olmalı")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
		}

		receivedAt := time.Now()
		if body.ReceivedAt != "" {
			d, err := time.Parse("2006-01-02", body.ReceivedAt)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			receivedAt = d
		}

		var expirationAt *time.Time
		if body.ExpirationAt != nil && *body.ExpirationAt != "" {
			d, err := time.Parse("2006-01-02", *body.ExpirationAt)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Son kullanma tarihi formatı 'YYYY-MM-DD' olmalı")
			}
			expirationAt = &d
		}

		lotCode := strings.TrimSpace(body.LotCode)
		if lotCode == "" {
			lotCode = "LOT-" + strings.ToUpper(uuid.NewString()[:8])
		}

		lot := models.InventoryLot{
			ProductID:    body.ProductID,
			VendorID:     body.VendorID,
			LotCode:      lotCode,
			Quantity:     quantity.Round(body.Quantity),
			ExpirationAt: expirationAt,
			ReceivedAt:   receivedAt,
		}

		if err := database.DB.Create(&lot).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok partisi oluşturulamadı")
		}

		userID, userName, workCenterID, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WorkCenterID: workCenterID,
				UserID:       userID,
				UserName:     userName,
				EntityType:   "inventory_lot",
				EntityID:     lot.ID,
				Action:       models.AuditActionCreate,
				Description:  fmt.Sprintf("Stok partisi eklendi: %s, %.2f", lot.LotCode, lot.Quantity),
				Before:       nil,
				After:        lot,
			})
		}

		return api.Created(c, lotResponse(&lot, 0))
	}
}

// GET /api/inventory-lots?product_id=1&vendor_id=2
func ListLotsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.InventoryLot{})
		if productID := c.Query("product_id"); productID != "" {
			dbq = dbq.Where("product_id = ?", productID)
		}
		if vendorID := c.Query("vendor_id"); vendorID != "" {
			dbq = dbq.Where("vendor_id = ?", vendorID)
		}

		var lots []models.InventoryLot
		if err := dbq.Order("expiration_at asc NULLS LAST, received_at asc").Find(&lots).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok partileri listelenemedi")
		}

		res := make([]LotResponse, 0, len(lots))
		for i := range lots {
			res = append(res, lotResponse(&lots[i], ReservedForLot(lots[i].ID)))
		}
		return api.Data(c, res)
	}
}

// getUserInfo: Context'ten kullanıcı ve iş merkezi bilgisini çözer
func getUserInfo(c *fiber.Ctx) (uint, string, *uint, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", nil, fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	var workCenterID *uint
	wcVal := c.Locals(auth.CtxWorkCenterIDKey)
	if wcPtr, ok := wcVal.(*uint); ok && wcPtr != nil {
		workCenterID = wcPtr
	}

	return userID, user.Name, workCenterID, nil
}
