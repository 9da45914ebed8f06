package models

import "time"

// WorkCenter: Üretim alanı (atölye/hat). Planlamacılar bir iş merkezine bağlıdır.
type WorkCenter struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:50;not null;unique"`
	Name      string    `gorm:"size:100;not null"`
	Location  string    `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Users []User
}

// Employee: Parti/operasyona atanabilen saha çalışanı
type Employee struct {
	ID           uint       `gorm:"primaryKey"`
	WorkCenterID uint       `gorm:"index;not null"`
	WorkCenter   WorkCenter
	Name         string     `gorm:"size:100;not null"`
	Title        string     `gorm:"size:100"`              // Opsiyonel unvan
	Active       bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Equipment: Operasyon şablonlarının referans verdiği ekipman
type Equipment struct {
	ID           uint       `gorm:"primaryKey"`
	WorkCenterID uint       `gorm:"index;not null"`
	WorkCenter   WorkCenter
	Code         string     `gorm:"size:50;not null;unique"`
	Name         string     `gorm:"size:100;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
