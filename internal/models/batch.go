package models

import "time"

type BatchOperationStatus string

const (
	BatchOpPending   BatchOperationStatus = "PENDING"
	BatchOpRunning   BatchOperationStatus = "RUNNING"
	BatchOpCompleted BatchOperationStatus = "COMPLETED"
	BatchOpCanceled  BatchOperationStatus = "CANCELED"
)

// Batch: İş emrinin tek rota/reçete versiyonuyla birlikte üretilen alt miktarı
type Batch struct {
	ID                     uint            `gorm:"primaryKey"`
	WorkOrderID            uint            `gorm:"index;not null"`
	BatchCode              string          `gorm:"size:50;not null;uniqueIndex"`
	Quantity               float64         `gorm:"not null"`                       // > 0 olmalı
	RoutingID              uint            `gorm:"not null"`
	BOMID                  uint            `gorm:"not null"`
	AssignedEmployeeID     *uint
	AssignedEmployee       *Employee       `gorm:"foreignKey:AssignedEmployeeID"`
	RequiresQualityControl bool            `gorm:"not null;default:false"`
	Status                 WorkOrderStatus `gorm:"size:30;not null;default:DRAFT"`
	CreatedAt              time.Time
	UpdatedAt              time.Time

	Operations []BatchOperation `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`
	Materials  []BatchMaterial  `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`
}

// BatchOperation: Rota şablonundan birebir kopyalanan parti operasyonu.
// Status alanı sadece üretim yürütme akışında değişir.
type BatchOperation struct {
	ID                     uint                 `gorm:"primaryKey"`
	BatchID                uint                 `gorm:"index;not null"`
	Sequence               int                  `gorm:"not null"`
	OperationCode          string               `gorm:"size:50;not null"`
	Name                   string               `gorm:"size:100;not null"`
	EquipmentID            *uint
	RequiresQualityControl bool                 `gorm:"not null;default:false"`
	Status                 BatchOperationStatus `gorm:"size:20;not null;default:PENDING"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// BatchMaterial: Reçete kaleminden türetilen malzeme ihtiyacı.
// ComponentID + VendorID ikilisi, hangi lot ve planlı tedariklerin aday olduğunu belirler.
type BatchMaterial struct {
	ID               uint      `gorm:"primaryKey"`
	BatchID          uint      `gorm:"index;not null"`
	ComponentID      uint      `gorm:"index;not null"`
	Component        Product   `gorm:"foreignKey:ComponentID"`
	VendorID         *uint
	RequiredQuantity float64   `gorm:"not null"`               // Round(reçete miktarı × parti miktarı)
	UnitOfMeasureID  uint      `gorm:"not null"`
	Shortage         float64   `gorm:"not null;default:0"`     // Karşılanmamış miktar (türetilmiş)
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Picks []MaterialPick `gorm:"foreignKey:BatchMaterialID;constraint:OnDelete:CASCADE"`
	Plans []MaterialPlan `gorm:"foreignKey:BatchMaterialID;constraint:OnDelete:CASCADE"`
}

// MaterialPick: Belirli bir stok lotuna karşı rezervasyon
type MaterialPick struct {
	ID              uint       `gorm:"primaryKey"`
	BatchMaterialID uint       `gorm:"index;not null"`
	LotID           uint       `gorm:"index;not null"`
	PickQty         float64    `gorm:"not null"`
	LotCode         string     `gorm:"size:50"`        // Denormalize
	ExpirationAt    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MaterialPlan: Belirli bir planlı tedarike karşı rezervasyon
type MaterialPlan struct {
	ID              uint                `gorm:"primaryKey"`
	BatchMaterialID uint                `gorm:"index;not null"`
	PlannedSupplyID uint                `gorm:"index;not null"`
	PickQty         float64             `gorm:"not null"`
	SourceType      PlannedSupplySource `gorm:"size:20"`        // Denormalize
	SourceCode      string              `gorm:"size:50"`        // Denormalize
	ExpectedAt      time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
