package models

import "time"

// InventoryLot: Eldeki stok partisi (lot takipli)
type InventoryLot struct {
	ID           uint       `gorm:"primaryKey"`
	ProductID    uint       `gorm:"index;not null"`
	Product      Product
	VendorID     *uint
	Vendor       *Vendor
	LotCode      string     `gorm:"size:50;not null;uniqueIndex"`
	Quantity     float64    `gorm:"not null"`                     // Eldeki toplam miktar
	ExpirationAt *time.Time `gorm:"index"`                        // Son kullanma tarihi (opsiyonel)
	ReceivedAt   time.Time  `gorm:"index;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PlannedSupplySource string

const (
	SupplySourcePurchaseOrder   PlannedSupplySource = "PURCHASE_ORDER"
	SupplySourceProductionOrder PlannedSupplySource = "PRODUCTION_ORDER"
)

// PlannedSupply: Henüz elde olmayan, gelmesi beklenen tedarik
type PlannedSupply struct {
	ID         uint                `gorm:"primaryKey"`
	ProductID  uint                `gorm:"index;not null"`
	Product    Product
	VendorID   *uint
	Vendor     *Vendor
	SourceType PlannedSupplySource `gorm:"size:20;not null"`
	SourceCode string              `gorm:"size:50;not null"`       // Sipariş/iş emri kodu
	Quantity   float64             `gorm:"not null"`
	ExpectedAt time.Time           `gorm:"index;not null"`         // Beklenen geliş tarihi
	Closed     bool                `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
