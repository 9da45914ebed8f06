package auth

import (
	"strings"

	"mes-backend/internal/api"
	"mes-backend/internal/config"
	"mes-backend/internal/database"
	"mes-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterSuperAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreatePlannerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	WorkCenterID uint   `json:"work_center_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func RegisterSuperAdminHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterSuperAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunlu")
		}

		// İkinci super admin engellenir
		var count int64
		database.DB.Model(&models.User{}).
			Where("role = ?", models.RoleSuperAdmin).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Zaten bir super admin var")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleSuperAdmin,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return api.Created(c, fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

// POST /api/auth/planners (super admin)
// İş merkezine bağlı planlamacı hesabı açar
func CreatePlannerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePlannerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || body.Password == "" || body.Name == "" || body.WorkCenterID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email, şifre ve work_center_id zorunlu")
		}

		var workCenter models.WorkCenter
		if err := database.DB.First(&workCenter, "id = ?", body.WorkCenterID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "İş merkezi bulunamadı")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			WorkCenterID: &body.WorkCenterID,
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RolePlanner,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return api.Created(c, fiber.Map{
			"id":             user.ID,
			"email":          user.Email,
			"role":           user.Role,
			"work_center_id": user.WorkCenterID,
		})
	}
}

func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email veya şifre hatalı")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email veya şifre hatalı")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token oluşturulamadı")
		}

		return api.Data(c, fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":             user.ID,
				"name":           user.Name,
				"email":          user.Email,
				"role":           user.Role,
				"work_center_id": user.WorkCenterID,
			},
		})
	}
}

func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userIDVal := c.Locals(CtxUserIDKey)
		userID, ok := userIDVal.(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
		}

		response := fiber.Map{
			"user_id":        user.ID,
			"name":           user.Name,
			"email":          user.Email,
			"role":           user.Role,
			"work_center_id": user.WorkCenterID,
		}

		// Planlamacıysa iş merkezi bilgisi de eklenir
		if user.WorkCenterID != nil {
			var workCenter models.WorkCenter
			if err := database.DB.First(&workCenter, *user.WorkCenterID).Error; err == nil {
				response["work_center"] = fiber.Map{
					"id":       workCenter.ID,
					"code":     workCenter.Code,
					"name":     workCenter.Name,
					"location": workCenter.Location,
				}
			}
		}

		return api.Data(c, response)
	}
}
