package masterdata

import (
	"strings"

	"mes-backend/internal/api"
	"mes-backend/internal/database"
	"mes-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type WorkCenterRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// POST /api/admin/work-centers (sadece super_admin)
func CreateWorkCenterHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body WorkCenterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Code = strings.TrimSpace(body.Code)
		body.Name = strings.TrimSpace(body.Name)
		if body.Code == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Code ve name zorunlu")
		}

		wc := models.WorkCenter{Code: body.Code, Name: body.Name, Location: body.Location}
		if err := database.DB.Create(&wc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İş merkezi oluşturulamadı")
		}

		return api.Created(c, wc)
	}
}

// GET /api/work-centers
func ListWorkCentersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var centers []models.WorkCenter
		if err := database.DB.Order("code asc").Find(&centers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İş merkezleri listelenemedi")
		}
		return api.Data(c, centers)
	}
}

// PUT /api/admin/work-centers/:id
func UpdateWorkCenterHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var wc models.WorkCenter
		if err := database.DB.First(&wc, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İş merkezi bulunamadı")
		}

		var body struct {
			Code     *string `json:"code"`
			Name     *string `json:"name"`
			Location *string `json:"location"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Code != nil && strings.TrimSpace(*body.Code) != "" {
			wc.Code = strings.TrimSpace(*body.Code)
		}
		if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
			wc.Name = strings.TrimSpace(*body.Name)
		}
		if body.Location != nil {
			wc.Location = *body.Location
		}

		if err := database.DB.Save(&wc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İş merkezi güncellenemedi")
		}
		return api.Data(c, wc)
	}
}

type EmployeeRequest struct {
	WorkCenterID uint   `json:"work_center_id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
}

// POST /api/admin/employees
func CreateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body EmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.WorkCenterID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Name ve work_center_id zorunlu")
		}

		var wc models.WorkCenter
		if err := database.DB.First(&wc, "id = ?", body.WorkCenterID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "İş merkezi bulunamadı")
		}

		emp := models.Employee{
			WorkCenterID: body.WorkCenterID,
			Name:         body.Name,
			Title:        body.Title,
			Active:       true,
		}
		if err := database.DB.Create(&emp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çalışan oluşturulamadı")
		}
		return api.Created(c, emp)
	}
}

// GET /api/employees?work_center_id=1
func ListEmployeesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Employee{}).Where("active = ?", true)
		if wcID := c.Query("work_center_id"); wcID != "" {
			dbq = dbq.Where("work_center_id = ?", wcID)
		}

		var employees []models.Employee
		if err := dbq.Order("name asc").Find(&employees).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çalışanlar listelenemedi")
		}
		return api.Data(c, employees)
	}
}

type EquipmentRequest struct {
	WorkCenterID uint   `json:"work_center_id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
}

// POST /api/admin/equipment
func CreateEquipmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body EquipmentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Code = strings.TrimSpace(body.Code)
		body.Name = strings.TrimSpace(body.Name)
		if body.Code == "" || body.Name == "" || body.WorkCenterID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Code, name ve work_center_id zorunlu")
		}

		eq := models.Equipment{WorkCenterID: body.WorkCenterID, Code: body.Code, Name: body.Name}
		if err := database.DB.Create(&eq).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ekipman oluşturulamadı")
		}
		return api.Created(c, eq)
	}
}

// GET /api/equipment?work_center_id=1
func ListEquipmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Equipment{})
		if wcID := c.Query("work_center_id"); wcID != "" {
			dbq = dbq.Where("work_center_id = ?", wcID)
		}

		var equipment []models.Equipment
		if err := dbq.Order("code asc").Find(&equipment).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ekipmanlar listelenemedi")
		}
		return api.Data(c, equipment)
	}
}
