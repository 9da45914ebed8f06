package scheduling

import (
	"fmt"

	"mes-backend/internal/api"
	"mes-backend/internal/audit"
	"mes-backend/internal/auth"
	"mes-backend/internal/database"
	"mes-backend/internal/models"
	"mes-backend/internal/workorder"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type WorkOrderListItem struct {
	ID                uint    `json:"id"`
	Code              string  `json:"code"`
	ProductID         uint    `json:"product_id"`
	ProductName       string  `json:"product_name"`
	Quantity          float64 `json:"quantity"`
	UnitOfMeasureCode string  `json:"unit_of_measure_code"`
	WorkCenterID      uint    `json:"work_center_id"`
	Status            string  `json:"status"`
	PlannedStart      *string `json:"planned_start"`
	PlannedEnd        *string `json:"planned_end"`
	BatchCount        int     `json:"batch_count"`
}

type MaterialPickResponse struct {
	ID           uint    `json:"id"`
	LotID        uint    `json:"lot_id"`
	PickQty      float64 `json:"pick_qty"`
	LotCode      string  `json:"lot_code"`
	ExpirationAt *string `json:"expiration_at"`
}

type MaterialPlanResponse struct {
	ID              uint    `json:"id"`
	PlannedSupplyID uint    `json:"planned_supply_id"`
	PickQty         float64 `json:"pick_qty"`
	SourceType      string  `json:"source_type"`
	SourceCode      string  `json:"source_code"`
	ExpectedAt      string  `json:"expected_at"`
}

type BatchMaterialResponse struct {
	ID               uint                   `json:"id"`
	ComponentID      uint                   `json:"component_id"`
	ComponentName    string                 `json:"component_name"`
	VendorID         *uint                  `json:"vendor_id"`
	RequiredQuantity float64                `json:"required_quantity"`
	UnitOfMeasureID  uint                   `json:"unit_of_measure_id"`
	Shortage         float64                `json:"shortage"`
	Picks            []MaterialPickResponse `json:"picks"`
	Plans            []MaterialPlanResponse `json:"plans"`
}

type BatchOperationResponse struct {
	ID                     uint   `json:"id"`
	Sequence               int    `json:"sequence"`
	OperationCode          string `json:"operation_code"`
	Name                   string `json:"name"`
	EquipmentID            *uint  `json:"equipment_id"`
	RequiresQualityControl bool   `json:"requires_quality_control"`
	Status                 string `json:"status"`
}

type BatchResponse struct {
	ID                     uint                     `json:"id"`
	BatchCode              string                   `json:"batch_code"`
	Quantity               float64                  `json:"quantity"`
	RoutingID              uint                     `json:"routing_id"`
	BOMID                  uint                     `json:"bom_id"`
	AssignedEmployeeID     *uint                    `json:"assigned_employee_id"`
	RequiresQualityControl bool                     `json:"requires_quality_control"`
	Status                 string                   `json:"status"`
	Operations             []BatchOperationResponse `json:"operations"`
	Materials              []BatchMaterialResponse  `json:"materials"`
}

type WorkOrderDetailsResponse struct {
	ID                 uint            `json:"id"`
	Code               string          `json:"code"`
	ProductID          uint            `json:"product_id"`
	ProductName        string          `json:"product_name"`
	Quantity           float64         `json:"quantity"`
	UnitOfMeasureCode  string          `json:"unit_of_measure_code"`
	WorkCenterID       uint            `json:"work_center_id"`
	AssignedEmployeeID *uint           `json:"assigned_employee_id"`
	Status             string          `json:"status"`
	PlannedStart       *string         `json:"planned_start"`
	PlannedEnd         *string         `json:"planned_end"`
	Batches            []BatchResponse `json:"batches"`
}

func workOrderDetailsResponse(wo *models.WorkOrder) WorkOrderDetailsResponse {
	var plannedStart, plannedEnd *string
	if wo.PlannedStart != nil {
		s := wo.PlannedStart.Format("2006-01-02")
		plannedStart = &s
	}
	if wo.PlannedEnd != nil {
		s := wo.PlannedEnd.Format("2006-01-02")
		plannedEnd = &s
	}

	batches := make([]BatchResponse, 0, len(wo.Batches))
	for bi := range wo.Batches {
		b := &wo.Batches[bi]

		ops := make([]BatchOperationResponse, 0, len(b.Operations))
		for _, op := range b.Operations {
			ops = append(ops, BatchOperationResponse{
				ID:                     op.ID,
				Sequence:               op.Sequence,
				OperationCode:          op.OperationCode,
				Name:                   op.Name,
				EquipmentID:            op.EquipmentID,
				RequiresQualityControl: op.RequiresQualityControl,
				Status:                 string(op.Status),
			})
		}

		materials := make([]BatchMaterialResponse, 0, len(b.Materials))
		for mi := range b.Materials {
			m := &b.Materials[mi]

			picks := make([]MaterialPickResponse, 0, len(m.Picks))
			for _, p := range m.Picks {
				var exp *string
				if p.ExpirationAt != nil {
					s := p.ExpirationAt.Format("2006-01-02")
					exp = &s
				}
				picks = append(picks, MaterialPickResponse{
					ID:           p.ID,
					LotID:        p.LotID,
					PickQty:      p.PickQty,
					LotCode:      p.LotCode,
					ExpirationAt: exp,
				})
			}

			plans := make([]MaterialPlanResponse, 0, len(m.Plans))
			for _, p := range m.Plans {
				plans = append(plans, MaterialPlanResponse{
					ID:              p.ID,
					PlannedSupplyID: p.PlannedSupplyID,
					PickQty:         p.PickQty,
					SourceType:      string(p.SourceType),
					SourceCode:      p.SourceCode,
					ExpectedAt:      p.ExpectedAt.Format("2006-01-02"),
				})
			}

			materials = append(materials, BatchMaterialResponse{
				ID:               m.ID,
				ComponentID:      m.ComponentID,
				ComponentName:    m.Component.Name,
				VendorID:         m.VendorID,
				RequiredQuantity: m.RequiredQuantity,
				UnitOfMeasureID:  m.UnitOfMeasureID,
				Shortage:         m.Shortage,
				Picks:            picks,
				Plans:            plans,
			})
		}

		batches = append(batches, BatchResponse{
			ID:                     b.ID,
			BatchCode:              b.BatchCode,
			Quantity:               b.Quantity,
			RoutingID:              b.RoutingID,
			BOMID:                  b.BOMID,
			AssignedEmployeeID:     b.AssignedEmployeeID,
			RequiresQualityControl: b.RequiresQualityControl,
			Status:                 string(b.Status),
			Operations:             ops,
			Materials:              materials,
		})
	}

	return WorkOrderDetailsResponse{
		ID:                 wo.ID,
		Code:               wo.Code,
		ProductID:          wo.ProductID,
		ProductName:        wo.Product.Name,
		Quantity:           wo.Quantity,
		UnitOfMeasureCode:  wo.UnitOfMeasureCode,
		WorkCenterID:       wo.WorkCenterID,
		AssignedEmployeeID: wo.AssignedEmployeeID,
		Status:             string(wo.Status),
		PlannedStart:       plannedStart,
		PlannedEnd:         plannedEnd,
		Batches:            batches,
	}
}

// loadWorkOrderAggregate: İş emrini tüm alt ağaçlarıyla birlikte yükler.
// Parti operasyonları sırayla, malzemeler bileşen bilgisiyle gelir.
func loadWorkOrderAggregate(db *gorm.DB, id string) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	err := db.
		Preload("Product").
		Preload("Batches", func(db *gorm.DB) *gorm.DB {
			return db.Order("batches.id asc")
		}).
		Preload("Batches.Operations", func(db *gorm.DB) *gorm.DB {
			return db.Order("batch_operations.sequence asc")
		}).
		Preload("Batches.Materials").
		Preload("Batches.Materials.Component").
		Preload("Batches.Materials.Picks").
		Preload("Batches.Materials.Plans").
		First(&wo, "work_orders.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

// GET /api/work-orders?status=DRAFT&work_center_id=1
func ListWorkOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.WorkOrder{}).Preload("Product").Preload("Batches")
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if wcID := c.Query("work_center_id"); wcID != "" {
			dbq = dbq.Where("work_center_id = ?", wcID)
		}

		var orders []models.WorkOrder
		if err := dbq.Order("created_at desc").Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İş emirleri listelenemedi")
		}

		res := make([]WorkOrderListItem, 0, len(orders))
		for i := range orders {
			wo := &orders[i]
			var plannedStart, plannedEnd *string
			if wo.PlannedStart != nil {
				s := wo.PlannedStart.Format("2006-01-02")
				plannedStart = &s
			}
			if wo.PlannedEnd != nil {
				s := wo.PlannedEnd.Format("2006-01-02")
				plannedEnd = &s
			}
			res = append(res, WorkOrderListItem{
				ID:                wo.ID,
				Code:              wo.Code,
				ProductID:         wo.ProductID,
				ProductName:       wo.Product.Name,
				Quantity:          wo.Quantity,
				UnitOfMeasureCode: wo.UnitOfMeasureCode,
				WorkCenterID:      wo.WorkCenterID,
				Status:            string(wo.Status),
				PlannedStart:      plannedStart,
				PlannedEnd:        plannedEnd,
				BatchCount:        len(wo.Batches),
			})
		}
		return api.Data(c, res)
	}
}

// GET /api/work-orders/:id
func GetWorkOrderDetailsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		wo, err := loadWorkOrderAggregate(database.DB, c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İş emri bulunamadı")
		}
		return api.Data(c, workOrderDetailsResponse(wo))
	}
}

// DELETE /api/work-orders/:id
// Sadece henüz üretime girmemiş (düzenlenebilir) iş emirleri silinebilir
func DeleteWorkOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var wo models.WorkOrder
		if err := database.DB.First(&wo, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İş emri bulunamadı")
		}

		if !workorder.EditableStatus(wo.Status) {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Bu durumdaki iş emri silinemez: %s", wo.Status))
		}

		if err := database.DB.Select("Batches").Delete(&wo).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İş emri silinemedi")
		}

		userID, userName, workCenterID, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WorkCenterID: workCenterID,
				UserID:       userID,
				UserName:     userName,
				EntityType:   "work_order",
				EntityID:     wo.ID,
				Action:       models.AuditActionDelete,
				Description:  fmt.Sprintf("İş emri silindi: %s", wo.Code),
				Before:       wo,
				After:        nil,
			})
		}

		return api.Message(c, "İş emri silindi")
	}
}

// POST /api/work-orders/:id/cancel
// İptal partilere ve bekleyen operasyonlara yayılır; rezervasyonlar serbest kalır
func CancelWorkOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		wo, err := loadWorkOrderAggregate(database.DB, id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İş emri bulunamadı")
		}

		if !workorder.CanCancel(wo.Status) {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Bu durumdaki iş emri iptal edilemez: %s", wo.Status))
		}

		before := wo.Status
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.WorkOrder{}).Where("id = ?", wo.ID).
				Update("status", models.WOStatusCanceled).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Batch{}).Where("work_order_id = ?", wo.ID).
				Update("status", models.WOStatusCanceled).Error; err != nil {
				return err
			}
			// Başlamamış operasyonlar iptal olur, tamamlananlar tarihe kalır
			if err := tx.Model(&models.BatchOperation{}).
				Where("batch_id IN (?) AND status IN ?",
					tx.Model(&models.Batch{}).Select("id").Where("work_order_id = ?", wo.ID),
					[]models.BatchOperationStatus{models.BatchOpPending, models.BatchOpRunning}).
				Update("status", models.BatchOpCanceled).Error; err != nil {
				return err
			}
			// İptal edilen iş emrinin rezervasyonları stoğa geri döner
			for bi := range wo.Batches {
				for mi := range wo.Batches[bi].Materials {
					m := &wo.Batches[bi].Materials[mi]
					if err := tx.Where("batch_material_id = ?", m.ID).Delete(&models.MaterialPick{}).Error; err != nil {
						return err
					}
					if err := tx.Where("batch_material_id = ?", m.ID).Delete(&models.MaterialPlan{}).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İş emri iptal edilemedi")
		}

		userID, userName, workCenterID, uerr := getUserInfo(c)
		if uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WorkCenterID: workCenterID,
				UserID:       userID,
				UserName:     userName,
				EntityType:   "work_order",
				EntityID:     wo.ID,
				Action:       models.AuditActionCancel,
				Description:  fmt.Sprintf("İş emri iptal edildi: %s (önceki durum: %s)", wo.Code, before),
				Before:       fiber.Map{"status": before},
				After:        fiber.Map{"status": models.WOStatusCanceled},
			})
		}

		return api.Message(c, "İş emri iptal edildi")
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
