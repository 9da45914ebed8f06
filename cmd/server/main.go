package main

import (
	"log"
	"strings"

	"mes-backend/internal/api"
	"mes-backend/internal/audit"
	"mes-backend/internal/auth"
	"mes-backend/internal/config"
	"mes-backend/internal/database"
	"mes-backend/internal/inventory"
	"mes-backend/internal/masterdata"
	"mes-backend/internal/models"
	"mes-backend/internal/scheduling"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return api.Fail(c, e.Code, e.Message)
			}
			log.Println("Unexpected error:", err)
			return api.Fail(c, fiber.StatusInternalServerError, "Beklenmeyen sunucu hatası")
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	root := app.Group("/api")

	// Public auth
	root.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(cfg))
	root.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := root.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Super admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	// Kullanıcı yönetimi
	adminRoutes.Post("/planners", auth.CreatePlannerHandler())

	// İş merkezi yönetimi
	adminRoutes.Post("/work-centers", masterdata.CreateWorkCenterHandler())
	adminRoutes.Put("/work-centers/:id", masterdata.UpdateWorkCenterHandler())
	adminRoutes.Post("/employees", masterdata.CreateEmployeeHandler())
	adminRoutes.Post("/equipment", masterdata.CreateEquipmentHandler())

	// Ürün yönetimi
	adminRoutes.Post("/products", masterdata.CreateProductHandler())
	adminRoutes.Put("/products/:id", masterdata.UpdateProductHandler())
	adminRoutes.Delete("/products/:id", masterdata.DeleteProductHandler())

	// Rota versiyonları
	adminRoutes.Post("/routings", masterdata.CreateRoutingHandler())
	adminRoutes.Put("/routings/:id", masterdata.UpdateRoutingHandler())
	adminRoutes.Delete("/routings/:id", masterdata.DeleteRoutingHandler())

	// Reçete versiyonları
	adminRoutes.Post("/boms", masterdata.CreateBOMHandler())
	adminRoutes.Put("/boms/:id", masterdata.UpdateBOMHandler())
	adminRoutes.Delete("/boms/:id", masterdata.DeleteBOMHandler())
	adminRoutes.Post("/boms/:id/import-items", masterdata.ImportBOMItemsHandler())

	// Tedarikçi ve birim yönetimi
	adminRoutes.Post("/vendors", masterdata.CreateVendorHandler())
	adminRoutes.Post("/units", masterdata.CreateUnitHandler())

	// Ortak (auth gerektiren) route’lar

	// Ana veri listeleri
	protected.Get("/products", masterdata.ListProductsHandler())
	protected.Get("/products/:id/routings", masterdata.GetProductRoutingsHandler())
	protected.Get("/products/:id/boms", masterdata.GetProductBOMsHandler())
	protected.Get("/work-centers", masterdata.ListWorkCentersHandler())
	protected.Get("/employees", masterdata.ListEmployeesHandler())
	protected.Get("/equipment", masterdata.ListEquipmentHandler())
	protected.Get("/vendors", masterdata.ListVendorsHandler())
	protected.Get("/units", masterdata.ListUnitsHandler())

	// Stok partileri ve planlı tedarikler
	protected.Post("/inventory-lots", inventory.CreateLotHandler())
	protected.Get("/inventory-lots", inventory.ListLotsHandler())
	protected.Post("/planned-supplies", inventory.CreatePlannedSupplyHandler())
	protected.Get("/planned-supplies", inventory.ListPlannedSuppliesHandler())
	protected.Put("/planned-supplies/:id/close", inventory.ClosePlannedSupplyHandler())

	// İş emri planlama
	protected.Get("/work-orders", scheduling.ListWorkOrdersHandler())
	protected.Get("/work-orders/:id", scheduling.GetWorkOrderDetailsHandler())
	protected.Post("/work-orders/save", scheduling.SaveWorkOrderHandler())
	protected.Delete("/work-orders/:id", scheduling.DeleteWorkOrderHandler())
	protected.Post("/work-orders/:id/cancel", scheduling.CancelWorkOrderHandler())
	protected.Delete("/batches/:id", scheduling.DeleteBatchHandler())

	// Lot seçim editörü
	protected.Post("/lot-selection/batch", scheduling.ProposeBatchPicksHandler())
	protected.Get("/lot-selection/lots", scheduling.ListLotCandidatesHandler())
	protected.Get("/lot-selection/planned", scheduling.ListPlannedCandidatesHandler())
	protected.Post("/lot-selection/check", scheduling.CheckAllocationHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
