package database

import (
	"log"

	"mes-backend/internal/config"
	"mes-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.WorkCenter{},
		&models.User{},
		&models.Employee{},
		&models.Equipment{},
		&models.UnitOfMeasure{},
		&models.Vendor{},
		&models.Product{},
		&models.Routing{},
		&models.RoutingOperation{},
		&models.BOM{},
		&models.BOMItem{},
		&models.InventoryLot{},
		&models.PlannedSupply{},
		&models.WorkOrder{},
		&models.Batch{},
		&models.BatchOperation{},
		&models.BatchMaterial{},
		&models.MaterialPick{},
		&models.MaterialPlan{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
