package models

import "time"

type Product struct {
	ID              uint          `gorm:"primaryKey"`
	Code            string        `gorm:"size:50;not null;unique"` // Stok kodu
	Name            string        `gorm:"size:100;not null"`
	UnitOfMeasureID uint          `gorm:"index;not null"`
	UnitOfMeasure   UnitOfMeasure
	IsProduced      bool          `gorm:"not null;default:false"`  // Üretilen ürün mü (rotası/reçetesi var)?
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type UnitOfMeasure struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:20;not null;unique"` // kg, adet, lt vs.
	Name      string    `gorm:"size:50;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Vendor struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:50;not null;unique"`
	Name      string    `gorm:"size:100;not null"`
	Phone     string    `gorm:"size:50"`                 // Opsiyonel telefon
	CreatedAt time.Time
	UpdatedAt time.Time
}
