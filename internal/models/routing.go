package models

import "time"

// Routing: Bir ürün versiyonunun operasyon sırası
type Routing struct {
	ID        uint      `gorm:"primaryKey"`
	ProductID uint      `gorm:"index;not null"`
	Product   Product
	Version   string    `gorm:"size:16;not null"`      // ör: "v1", "2024-A"
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Operations []RoutingOperation `gorm:"foreignKey:RoutingID;constraint:OnDelete:CASCADE"`
}

// RoutingOperation: Rotadaki her operasyon şablonu
type RoutingOperation struct {
	ID                     uint       `gorm:"primaryKey"`
	RoutingID              uint       `gorm:"index;not null"`
	Sequence               int        `gorm:"not null"`               // Operasyon sırası
	Code                   string     `gorm:"size:50;not null"`
	Name                   string     `gorm:"size:100;not null"`
	EquipmentID            *uint
	Equipment              *Equipment
	RequiresQualityControl bool       `gorm:"not null;default:false"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// BOM: Ürün reçetesi (malzeme listesi) versiyonu
type BOM struct {
	ID        uint      `gorm:"primaryKey"`
	ProductID uint      `gorm:"index;not null"`
	Product   Product
	Version   string    `gorm:"size:16;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []BOMItem `gorm:"foreignKey:BOMID;constraint:OnDelete:CASCADE"`
}

// BOMItem: Reçetedeki her bileşen (1 birim ana ürün için gereken miktar)
type BOMItem struct {
	ID              uint          `gorm:"primaryKey"`
	BOMID           uint          `gorm:"index;not null"`
	ComponentID     uint          `gorm:"index;not null"`
	Component       Product       `gorm:"foreignKey:ComponentID"`
	Quantity        float64       `gorm:"not null"`               // 1 birim başına miktar
	UnitOfMeasureID uint          `gorm:"not null"`
	UnitOfMeasure   UnitOfMeasure
	VendorID        *uint
	Vendor          *Vendor
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
