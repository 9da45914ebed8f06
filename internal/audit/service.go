package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"mes-backend/internal/database"
	"mes-backend/internal/models"
)

type LogOptions struct {
	WorkCenterID *uint
	UserID       uint
	UserName     string
	EntityType   string
	EntityID     uint
	Action       models.AuditAction
	Description  string
	Before       any
	After        any
}

func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null" // Default: null JSON
	afterStr := "null"  // Default: null JSON

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		WorkCenterID: opts.WorkCenterID,
		UserID:       opts.UserID,
		UserName:     opts.UserName,
		EntityType:   opts.EntityType,
		EntityID:     opts.EntityID,
		Action:       opts.Action,
		Description:  opts.Description,
		BeforeData:   beforeStr,
		AfterData:    afterStr,
		Undone:       false,
		IsUndone:     false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// UndoLog - Bir audit log'u undo et
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log bulunamadı: %w", err)
	}

	// Zaten undo edilmiş mi?
	if log.IsUndone {
		return fmt.Errorf("bu işlem zaten geri alınmış")
	}

	// Undo işlemini gerçekleştir
	switch log.Action {
	case models.AuditActionCreate:
		// Create ise entity'yi sil
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("entity silinemedi: %w", err)
		}

	case models.AuditActionUpdate:
		// Update ise önceki haline geri döndür
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("entity geri yüklenemedi: %w", err)
		}

	case models.AuditActionDelete:
		// Delete ise entity'yi geri oluştur (create)
		if err := recreateEntity(log.EntityType, log.AfterData); err != nil {
			return fmt.Errorf("entity geri oluşturulamadı: %w", err)
		}

	default:
		return fmt.Errorf("bu işlem türü geri alınamaz")
	}

	// Log'u işaretle
	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("log güncellenemedi: %w", err)
	}

	// Undo işlemi için yeni bir log oluştur
	undoLog := models.AuditLog{
		WorkCenterID: log.WorkCenterID,
		UserID:       userID,
		UserName:     userName,
		EntityType:   log.EntityType,
		EntityID:     log.EntityID,
		Action:       models.AuditActionUndo,
		Description:  fmt.Sprintf("Geri alındı: %s", log.Description),
		BeforeData:   log.AfterData,
		AfterData:    log.BeforeData,
		Undone:       true,
		IsUndone:     false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("undo log kaydedilemedi: %w", err)
	}

	return nil
}

// deleteEntity - Entity'yi sil
func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "inventory_lot":
		// Rezervasyonlu lot silinemez, önce pick'ler kontrol edilir
		var pickCount int64
		database.DB.Model(&models.MaterialPick{}).Where("lot_id = ?", entityID).Count(&pickCount)
		if pickCount > 0 {
			return fmt.Errorf("lota bağlı malzeme tahsisleri var, geri alınamaz")
		}
		return database.DB.Delete(&models.InventoryLot{}, "id = ?", entityID).Error
	case "planned_supply":
		var planCount int64
		database.DB.Model(&models.MaterialPlan{}).Where("planned_supply_id = ?", entityID).Count(&planCount)
		if planCount > 0 {
			return fmt.Errorf("tedarike bağlı malzeme planları var, geri alınamaz")
		}
		return database.DB.Delete(&models.PlannedSupply{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

// recreateEntity - Silinen entity'yi geri oluştur
func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "inventory_lot":
		var lot models.InventoryLot
		if err := json.Unmarshal([]byte(dataJSON), &lot); err != nil {
			return err
		}
		lot.ID = 0 // Yeni entity oluştur
		return database.DB.Create(&lot).Error

	case "planned_supply":
		var supply models.PlannedSupply
		if err := json.Unmarshal([]byte(dataJSON), &supply); err != nil {
			return err
		}
		supply.ID = 0
		return database.DB.Create(&supply).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

// restoreEntity - Entity'yi geri yükle (update)
func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "inventory_lot":
		var lot models.InventoryLot
		if err := json.Unmarshal([]byte(dataJSON), &lot); err != nil {
			return err
		}
		lot.ID = entityID
		return database.DB.Model(&models.InventoryLot{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"product_id":    lot.ProductID,
			"vendor_id":     lot.VendorID,
			"lot_code":      lot.LotCode,
			"quantity":      lot.Quantity,
			"expiration_at": lot.ExpirationAt,
			"received_at":   lot.ReceivedAt,
		}).Error

	case "planned_supply":
		var supply models.PlannedSupply
		if err := json.Unmarshal([]byte(dataJSON), &supply); err != nil {
			return err
		}
		supply.ID = entityID
		return database.DB.Model(&models.PlannedSupply{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"product_id":  supply.ProductID,
			"vendor_id":   supply.VendorID,
			"source_type": supply.SourceType,
			"source_code": supply.SourceCode,
			"quantity":    supply.Quantity,
			"expected_at": supply.ExpectedAt,
			"closed":      supply.Closed,
		}).Error

	case "work_order":
		var wo models.WorkOrder
		if err := json.Unmarshal([]byte(dataJSON), &wo); err != nil {
			return err
		}
		wo.ID = entityID
		return database.DB.Model(&models.WorkOrder{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"product_id":           wo.ProductID,
			"quantity":             wo.Quantity,
			"unit_of_measure_code": wo.UnitOfMeasureCode,
			"work_center_id":       wo.WorkCenterID,
			"status":               wo.Status,
			"planned_start":        wo.PlannedStart,
			"planned_end":          wo.PlannedEnd,
		}).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}
