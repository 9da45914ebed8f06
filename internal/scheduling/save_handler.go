package scheduling

import (
	"fmt"
	"strings"
	"time"

	"mes-backend/internal/api"
	"mes-backend/internal/audit"
	"mes-backend/internal/database"
	"mes-backend/internal/models"
	"mes-backend/internal/quantity"
	"mes-backend/internal/workorder"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SavePickInput struct {
	LotID   uint    `json:"lot_id"`
	PickQty float64 `json:"pick_qty"`
}

type SavePlanInput struct {
	PlannedSupplyID uint    `json:"planned_supply_id"`
	PickQty         float64 `json:"pick_qty"`
}

type SaveMaterialInput struct {
	ComponentID uint            `json:"component_id"`
	Picks       []SavePickInput `json:"picks"`
	Plans       []SavePlanInput `json:"plans"`
}

type SaveBatchInput struct {
	BatchCode              string              `json:"batch_code"`               // Boşsa yeni parti
	Quantity               float64             `json:"quantity"`
	RoutingID              uint                `json:"routing_id"`
	BOMID                  uint                `json:"bom_id"`
	AssignedEmployeeID     *uint               `json:"assigned_employee_id"`
	RequiresQualityControl bool                `json:"requires_quality_control"`
	Materials              []SaveMaterialInput `json:"materials"`
}

type SaveWorkOrderData struct {
	ProductID          uint             `json:"product_id"`
	Quantity           float64          `json:"quantity"`
	UnitOfMeasureCode  string           `json:"unit_of_measure_code"`
	WorkCenterID       uint             `json:"work_center_id"`
	AssignedEmployeeID *uint            `json:"assigned_employee_id"`
	PlannedStart       *string          `json:"planned_start"`        // "2026-09-10"
	PlannedEnd         *string          `json:"planned_end"`
	Batches            []SaveBatchInput `json:"batches"`
}

type SaveWorkOrderRequest struct {
	WorkOrderID             uint              `json:"work_order_id"`             // 0 ise yeni iş emri
	StatusIntent            string            `json:"status_intent"`             // Opsiyonel: istenen hedef durum
	ConfirmDraft            bool              `json:"confirm_draft"`
	ConfirmMissingMaterials bool              `json:"confirm_missing_materials"`
	Data                    SaveWorkOrderData `json:"data"`
}

// POST /api/work-orders/save
// İş emri toplamını tek seferde kaydeder. Onay gereken durumlar 409 ile
// confirm türünü döner; istemci ilgili bayrakla isteği tekrarlar.
// Son kaydeden kazanır: toplam her kayıtta bütün olarak değiştirilir.
func SaveWorkOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaveWorkOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		// Mevcut iş emri (varsa) yüklenir; durum ve eski tahsisler oradan gelir
		var existing *models.WorkOrder
		if body.WorkOrderID > 0 {
			wo, err := loadWorkOrderAggregate(database.DB, fmt.Sprint(body.WorkOrderID))
			if err != nil {
				return fiber.NewError(fiber.StatusNotFound, "İş emri bulunamadı")
			}
			existing = wo
			if !workorder.EditableStatus(existing.Status) {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("İş emri artık düzenlenemez (durum: %s)", existing.Status))
			}
		}

		if body.Data.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün seçilmeden iş emri kaydedilemez")
		}
		if existing != nil && existing.ProductID != body.Data.ProductID {
			return fiber.NewError(fiber.StatusBadRequest, "Kayıtlı iş emrinin ürünü değiştirilemez")
		}

		catalog, err := loadCatalog(database.DB, body.Data.ProductID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rota ve reçete versiyonları yüklenemedi")
		}
		if len(body.Data.Batches) > 0 && !catalog.Ready() {
			return fiber.NewError(fiber.StatusBadRequest,
				"Ürün için aktif rota ve reçete versiyonu tanımlı değil")
		}

		session, err := buildSession(existing, &body.Data, catalog)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		opts := workorder.SaveOptions{
			ConfirmDraft:            body.ConfirmDraft,
			ConfirmMissingMaterials: body.ConfirmMissingMaterials,
		}
		check := workorder.ValidateForSave(session, opts, time.Now())
		if check.Confirm != workorder.ConfirmNone {
			return api.Confirm(c, string(check.Confirm), check.Reason)
		}
		if !check.OK {
			return fiber.NewError(fiber.StatusBadRequest, check.Reason)
		}

		finalStatus := check.ProposedStatus
		if intent := models.WorkOrderStatus(strings.ToUpper(strings.TrimSpace(body.StatusIntent))); intent != "" {
			finalStatus, err = resolveStatusIntent(existing, intent, check.ProposedStatus)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		session.WorkOrder.Status = finalStatus
		for bi := range session.WorkOrder.Batches {
			session.WorkOrder.Batches[bi].Status = finalStatus
		}

		var saved *models.WorkOrder
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := checkAvailability(tx, session, existing); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			wo, err := persistAggregate(tx, session, existing)
			if err != nil {
				return err
			}
			saved = wo
			return nil
		})
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "İş emri kaydedilemedi")
		}

		action := models.AuditActionCreate
		desc := fmt.Sprintf("İş emri oluşturuldu: %s (%s)", saved.Code, saved.Status)
		var before any
		if existing != nil {
			action = models.AuditActionUpdate
			desc = fmt.Sprintf("İş emri güncellendi: %s (%s -> %s)", saved.Code, existing.Status, saved.Status)
			before = fiber.Map{"status": existing.Status, "quantity": existing.Quantity}
		}
		userID, userName, workCenterID, uerr := getUserInfo(c)
		if uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WorkCenterID: workCenterID,
				UserID:       userID,
				UserName:     userName,
				EntityType:   "work_order",
				EntityID:     saved.ID,
				Action:       action,
				Description:  desc,
				Before:       before,
				After:        fiber.Map{"status": saved.Status, "quantity": saved.Quantity},
			})
		}

		reloaded, err := loadWorkOrderAggregate(database.DB, fmt.Sprint(saved.ID))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İş emri yüklenemedi")
		}
		if existing == nil {
			return api.Created(c, workOrderDetailsResponse(reloaded))
		}
		return api.Data(c, workOrderDetailsResponse(reloaded))
	}
}

// loadCatalog: Ürünün aktif rota ve reçete versiyonlarını yükler
func loadCatalog(db *gorm.DB, productID uint) (*workorder.Catalog, error) {
	var routings []models.Routing
	err := db.Preload("Operations", func(db *gorm.DB) *gorm.DB {
		return db.Order("routing_operations.sequence asc")
	}).Where("product_id = ? AND active = ?", productID, true).Find(&routings).Error
	if err != nil {
		return nil, err
	}

	var boms []models.BOM
	err = db.Preload("Items").Where("product_id = ? AND active = ?", productID, true).Find(&boms).Error
	if err != nil {
		return nil, err
	}

	return &workorder.Catalog{Routings: routings, BOMs: boms}, nil
}

// buildSession: İstek gövdesindeki toplamı motor oturumuna dönüştürür.
// Mevcut partiler parti koduyla eşleştirilir, eşleşmeyenler atılır (silme
// kaydetmeden bağımsız çalıştığı için burada sadece gövde esas alınır).
func buildSession(existing *models.WorkOrder, data *SaveWorkOrderData, catalog *workorder.Catalog) (*workorder.EditSession, error) {
	wo := models.WorkOrder{
		ProductID:          data.ProductID,
		Quantity:           quantity.Round(data.Quantity),
		UnitOfMeasureCode:  data.UnitOfMeasureCode,
		WorkCenterID:       data.WorkCenterID,
		AssignedEmployeeID: data.AssignedEmployeeID,
	}
	if existing != nil {
		wo.ID = existing.ID
		wo.Code = existing.Code
		wo.Status = existing.Status
	}

	if data.PlannedStart != nil && *data.PlannedStart != "" {
		d, err := time.Parse("2006-01-02", *data.PlannedStart)
		if err != nil {
			return nil, fmt.Errorf("planlanan başlangıç tarihi 'YYYY-MM-DD' formatında olmalı")
		}
		wo.PlannedStart = &d
	}
	if data.PlannedEnd != nil && *data.PlannedEnd != "" {
		d, err := time.Parse("2006-01-02", *data.PlannedEnd)
		if err != nil {
			return nil, fmt.Errorf("planlanan bitiş tarihi 'YYYY-MM-DD' formatında olmalı")
		}
		wo.PlannedEnd = &d
	}

	session := workorder.NewEditSession(wo, catalog)

	for _, in := range data.Batches {
		var batch *models.Batch
		if in.BatchCode != "" && existing != nil {
			if prev := findExistingBatch(existing, in.BatchCode); prev != nil {
				// Mevcut parti: eski tahsisler korunur, düzenleme motor üzerinden
				clone := cloneBatch(prev)
				session.WorkOrder.Batches = append(session.WorkOrder.Batches, clone)
				patch := workorder.BatchPatch{
					Quantity:   &in.Quantity,
					EmployeeID: in.AssignedEmployeeID,
					RoutingID:  &in.RoutingID,
					BOMID:      &in.BOMID,
					RequiresQC: &in.RequiresQualityControl,
				}
				if err := workorder.EditBatch(session, in.BatchCode, patch); err != nil {
					return nil, err
				}
				batch = session.FindBatch(in.BatchCode)
			}
		}
		if batch == nil {
			created, err := workorder.CreateBatch(session, workorder.CreateBatchInput{
				Quantity:   in.Quantity,
				EmployeeID: in.AssignedEmployeeID,
				RoutingID:  in.RoutingID,
				BOMID:      in.BOMID,
				RequiresQC: in.RequiresQualityControl,
			})
			if err != nil {
				return nil, err
			}
			batch = created
		}

		for _, mIn := range in.Materials {
			material := findMaterial(batch, mIn.ComponentID)
			if material == nil {
				return nil, fmt.Errorf("reçetede olmayan bileşen için tahsis gönderildi: %d", mIn.ComponentID)
			}
			pickUpdates, planUpdates, err := resolveAllocationInputs(material, mIn)
			if err != nil {
				return nil, err
			}
			workorder.Reconcile(material, pickUpdates, planUpdates)
		}
	}

	return session, nil
}

func findExistingBatch(wo *models.WorkOrder, batchCode string) *models.Batch {
	for i := range wo.Batches {
		if wo.Batches[i].BatchCode == batchCode {
			return &wo.Batches[i]
		}
	}
	return nil
}

func findMaterial(b *models.Batch, componentID uint) *models.BatchMaterial {
	for i := range b.Materials {
		if b.Materials[i].ComponentID == componentID {
			return &b.Materials[i]
		}
	}
	return nil
}

// cloneBatch: Veritabanından gelen partiyi oturum kopyası olarak hazırlar.
// Alt listeler kopyalanır ki oturumda yapılan değişiklik yüklü kaydı bozmasın.
func cloneBatch(src *models.Batch) models.Batch {
	clone := *src
	clone.Operations = append([]models.BatchOperation(nil), src.Operations...)
	clone.Materials = make([]models.BatchMaterial, len(src.Materials))
	for i := range src.Materials {
		m := src.Materials[i]
		m.Picks = append([]models.MaterialPick(nil), src.Materials[i].Picks...)
		m.Plans = append([]models.MaterialPlan(nil), src.Materials[i].Plans...)
		clone.Materials[i] = m
	}
	return clone
}

// lotEligible: Lot, malzemenin bileşen + tedarikçi anahtarına uymalı.
// Aday listeleriyle aynı kural; kayıt yolu istemciden gelen id'ye güvenmez.
func lotEligible(m *models.BatchMaterial, lot *models.InventoryLot) error {
	if lot.ProductID != m.ComponentID {
		return fmt.Errorf("lot %s bu malzemenin bileşenine ait değil", lot.LotCode)
	}
	if m.VendorID != nil && (lot.VendorID == nil || *lot.VendorID != *m.VendorID) {
		return fmt.Errorf("lot %s malzemenin tedarikçisinden gelmiyor", lot.LotCode)
	}
	return nil
}

// supplyEligible: Planlı tedarik için lotEligible'ın karşılığı
func supplyEligible(m *models.BatchMaterial, s *models.PlannedSupply) error {
	if s.ProductID != m.ComponentID {
		return fmt.Errorf("planlı tedarik %s bu malzemenin bileşenine ait değil", s.SourceCode)
	}
	if m.VendorID != nil && (s.VendorID == nil || *s.VendorID != *m.VendorID) {
		return fmt.Errorf("planlı tedarik %s malzemenin tedarikçisinden gelmiyor", s.SourceCode)
	}
	return nil
}

// resolveAllocationInputs: İstekteki lot/tedarik id'lerini doğrular ve
// denormalize alanları (kod, tarih) sunucu kayıtlarından doldurur.
// İstemciden gelen kod/tarih bilgisine güvenilmez.
func resolveAllocationInputs(m *models.BatchMaterial, in SaveMaterialInput) ([]workorder.PickUpdate, []workorder.PlanUpdate, error) {
	pickUpdates := make([]workorder.PickUpdate, 0, len(in.Picks))
	for _, p := range in.Picks {
		if p.PickQty < 0 {
			return nil, nil, fmt.Errorf("tahsis miktarı negatif olamaz")
		}
		var lot models.InventoryLot
		if err := database.DB.First(&lot, "id = ?", p.LotID).Error; err != nil {
			return nil, nil, fmt.Errorf("stok partisi bulunamadı: %d", p.LotID)
		}
		if err := lotEligible(m, &lot); err != nil {
			return nil, nil, err
		}
		pickUpdates = append(pickUpdates, workorder.PickUpdate{
			LotID:        p.LotID,
			PickQty:      p.PickQty,
			LotCode:      lot.LotCode,
			ExpirationAt: lot.ExpirationAt,
		})
	}

	planUpdates := make([]workorder.PlanUpdate, 0, len(in.Plans))
	for _, p := range in.Plans {
		if p.PickQty < 0 {
			return nil, nil, fmt.Errorf("tahsis miktarı negatif olamaz")
		}
		var supply models.PlannedSupply
		if err := database.DB.First(&supply, "id = ?", p.PlannedSupplyID).Error; err != nil {
			return nil, nil, fmt.Errorf("planlı tedarik bulunamadı: %d", p.PlannedSupplyID)
		}
		if supply.Closed {
			return nil, nil, fmt.Errorf("kapatılmış planlı tedarike tahsis yapılamaz: %s", supply.SourceCode)
		}
		if err := supplyEligible(m, &supply); err != nil {
			return nil, nil, err
		}
		planUpdates = append(planUpdates, workorder.PlanUpdate{
			PlannedSupplyID: p.PlannedSupplyID,
			PickQty:         p.PickQty,
			SourceType:      supply.SourceType,
			SourceCode:      supply.SourceCode,
			ExpectedAt:      supply.ExpectedAt,
		})
	}

	return pickUpdates, planUpdates, nil
}

// resolveStatusIntent: İstemcinin istediği hedef durumu doğrular. İstenen
// durum motor önerisinden ileri olamaz; geri (ör. READY_TO_START yerine
// DRAFT tutmak) mümkündür.
func resolveStatusIntent(existing *models.WorkOrder, intent, proposed models.WorkOrderStatus) (models.WorkOrderStatus, error) {
	if !workorder.EditableStatus(intent) {
		return "", fmt.Errorf("geçersiz hedef durum: %s", intent)
	}

	from := models.WorkOrderStatus("")
	if existing != nil {
		from = existing.Status
	}
	if !workorder.CanTransition(from, intent) {
		return "", fmt.Errorf("durum geçişine izin verilmiyor: %s -> %s", from, intent)
	}

	rank := map[models.WorkOrderStatus]int{
		models.WOStatusDraft:               0,
		models.WOStatusWaitingForMaterials: 1,
		models.WOStatusReadyToStart:        2,
	}
	if rank[intent] > rank[proposed] {
		return "", fmt.Errorf("iş emri %s durumuna alınamaz, mevcut doğrulama sonucu: %s", intent, proposed)
	}
	return intent, nil
}

// pickTotalsByLot: İş emrinin tüm partilerindeki lot rezervasyonlarını
// lot bazında toplar. İkinci dönüş mesajlar için lot kodlarıdır.
func pickTotalsByLot(wo *models.WorkOrder) (map[uint]float64, map[uint]string) {
	totals := map[uint]float64{}
	codes := map[uint]string{}
	if wo == nil {
		return totals, codes
	}
	for bi := range wo.Batches {
		for mi := range wo.Batches[bi].Materials {
			for _, p := range wo.Batches[bi].Materials[mi].Picks {
				totals[p.LotID] = quantity.Sum(totals[p.LotID], p.PickQty)
				codes[p.LotID] = p.LotCode
			}
		}
	}
	return totals, codes
}

// planTotalsBySupply: pickTotalsByLot'un planlı tedarik karşılığı
func planTotalsBySupply(wo *models.WorkOrder) (map[uint]float64, map[uint]string) {
	totals := map[uint]float64{}
	codes := map[uint]string{}
	if wo == nil {
		return totals, codes
	}
	for bi := range wo.Batches {
		for mi := range wo.Batches[bi].Materials {
			for _, p := range wo.Batches[bi].Materials[mi].Plans {
				totals[p.PlannedSupplyID] = quantity.Sum(totals[p.PlannedSupplyID], p.PickQty)
				codes[p.PlannedSupplyID] = p.SourceCode
			}
		}
	}
	return totals, codes
}

// availableForOrder: Kapasiteden kayıtlı tüm rezervasyonlar düşülür; bu iş
// emrinin mevcut rezervasyonları kayıt sırasında değiştirileceği için geri
// eklenir.
func availableForOrder(capacity, reserved, own float64) float64 {
	return quantity.Sum(capacity, -reserved, own)
}

// checkAvailability: Oturumdaki lot ve planlı tedarik tahsislerinin,
// ilgili kaynağın kullanılabilir miktarını aşmadığını doğrular.
func checkAvailability(tx *gorm.DB, s *workorder.EditSession, existing *models.WorkOrder) error {
	requested, codes := pickTotalsByLot(&s.WorkOrder)
	own, _ := pickTotalsByLot(existing)
	for lotID, want := range requested {
		var lot models.InventoryLot
		if err := tx.First(&lot, "id = ?", lotID).Error; err != nil {
			return fmt.Errorf("stok partisi bulunamadı: %d", lotID)
		}
		var reserved float64
		tx.Model(&models.MaterialPick{}).
			Where("lot_id = ?", lotID).
			Select("COALESCE(SUM(pick_qty), 0)").
			Scan(&reserved)

		available := availableForOrder(lot.Quantity, reserved, own[lotID])
		if want > available {
			return fmt.Errorf("lot %s için yeterli stok yok: istenen %v, kullanılabilir %v",
				codes[lotID], want, available)
		}
	}

	requestedPlans, planCodes := planTotalsBySupply(&s.WorkOrder)
	ownPlans, _ := planTotalsBySupply(existing)
	for supplyID, want := range requestedPlans {
		var supply models.PlannedSupply
		if err := tx.First(&supply, "id = ?", supplyID).Error; err != nil {
			return fmt.Errorf("planlı tedarik bulunamadı: %d", supplyID)
		}
		var reserved float64
		tx.Model(&models.MaterialPlan{}).
			Where("planned_supply_id = ?", supplyID).
			Select("COALESCE(SUM(pick_qty), 0)").
			Scan(&reserved)

		available := availableForOrder(supply.Quantity, reserved, ownPlans[supplyID])
		if want > available {
			return fmt.Errorf("planlı tedarik %s için yeterli miktar yok: istenen %v, kullanılabilir %v",
				planCodes[supplyID], want, available)
		}
	}
	return nil
}

// persistAggregate: Oturumdaki toplamı tek seferde yazar. Partiler topluca
// değiştirilir; eski pick/plan satırları silinir, yenileri oluşur.
func persistAggregate(tx *gorm.DB, s *workorder.EditSession, existing *models.WorkOrder) (*models.WorkOrder, error) {
	wo := s.WorkOrder

	if existing == nil {
		wo.Code = newWorkOrderCode()
		batches := wo.Batches
		wo.Batches = nil
		if err := tx.Create(&wo).Error; err != nil {
			return nil, err
		}
		wo.Batches = batches
	} else {
		if err := tx.Model(&models.WorkOrder{}).Where("id = ?", wo.ID).Updates(map[string]interface{}{
			"quantity":             wo.Quantity,
			"unit_of_measure_code": wo.UnitOfMeasureCode,
			"work_center_id":       wo.WorkCenterID,
			"assigned_employee_id": wo.AssignedEmployeeID,
			"planned_start":        wo.PlannedStart,
			"planned_end":          wo.PlannedEnd,
			"status":               wo.Status,
		}).Error; err != nil {
			return nil, err
		}
		// Eski parti ağacı topluca düşer (pick/plan satırları dahil)
		var oldBatches []models.Batch
		if err := tx.Where("work_order_id = ?", wo.ID).Find(&oldBatches).Error; err != nil {
			return nil, err
		}
		for i := range oldBatches {
			if err := deleteBatchTree(tx, oldBatches[i].ID); err != nil {
				return nil, err
			}
		}
	}

	for bi := range wo.Batches {
		batch := wo.Batches[bi]
		batch.ID = 0
		batch.WorkOrderID = wo.ID
		for oi := range batch.Operations {
			batch.Operations[oi].ID = 0
			batch.Operations[oi].BatchID = 0
		}
		for mi := range batch.Materials {
			batch.Materials[mi].ID = 0
			batch.Materials[mi].BatchID = 0
			for pi := range batch.Materials[mi].Picks {
				batch.Materials[mi].Picks[pi].ID = 0
				batch.Materials[mi].Picks[pi].BatchMaterialID = 0
			}
			for pi := range batch.Materials[mi].Plans {
				batch.Materials[mi].Plans[pi].ID = 0
				batch.Materials[mi].Plans[pi].BatchMaterialID = 0
			}
		}
		if err := tx.Create(&batch).Error; err != nil {
			return nil, err
		}
	}

	return &wo, nil
}

// deleteBatchTree: Partiyi ve tüm alt kayıtlarını siler
func deleteBatchTree(tx *gorm.DB, batchID uint) error {
	var materials []models.BatchMaterial
	if err := tx.Where("batch_id = ?", batchID).Find(&materials).Error; err != nil {
		return err
	}
	for i := range materials {
		if err := tx.Where("batch_material_id = ?", materials[i].ID).Delete(&models.MaterialPick{}).Error; err != nil {
			return err
		}
		if err := tx.Where("batch_material_id = ?", materials[i].ID).Delete(&models.MaterialPlan{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("batch_id = ?", batchID).Delete(&models.BatchMaterial{}).Error; err != nil {
		return err
	}
	if err := tx.Where("batch_id = ?", batchID).Delete(&models.BatchOperation{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Batch{}, "id = ?", batchID).Error
}

func newWorkOrderCode() string {
	return "WO-" + strings.ToUpper(uuid.NewString()[:8])
}
