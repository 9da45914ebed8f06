package models

import "time"

type WorkOrderStatus string

const (
	WOStatusDraft               WorkOrderStatus = "DRAFT"
	WOStatusWaitingForMaterials WorkOrderStatus = "WAITING_FOR_MATERIALS"
	WOStatusReadyToStart        WorkOrderStatus = "READY_TO_START"
	WOStatusInProgress          WorkOrderStatus = "IN_PROGRESS"
	WOStatusCompleted           WorkOrderStatus = "COMPLETED"
	WOStatusCanceled            WorkOrderStatus = "CANCELED"
)

// WorkOrder: Bir ürün için hedef miktarda üretim talebi
type WorkOrder struct {
	ID                 uint            `gorm:"primaryKey"`
	Code               string          `gorm:"size:50;not null;uniqueIndex"`
	ProductID          uint            `gorm:"index;not null"`
	Product            Product
	Quantity           float64         `gorm:"not null"`                       // Hedef üretim miktarı
	UnitOfMeasureCode  string          `gorm:"size:20;not null"`
	WorkCenterID       uint            `gorm:"index;not null"`
	WorkCenter         WorkCenter
	AssignedEmployeeID *uint
	AssignedEmployee   *Employee       `gorm:"foreignKey:AssignedEmployeeID"`
	PlannedStart       *time.Time
	PlannedEnd         *time.Time
	Status             WorkOrderStatus `gorm:"size:30;not null;default:DRAFT"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Batches []Batch `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE"`
}
