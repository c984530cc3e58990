package controllers

import (
	"errors"

	"edulabs/backend/config"
	"edulabs/backend/models"
	"edulabs/backend/services"
	"edulabs/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetProfile returns the caller's profile together with derived level data.
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Profile not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":               user.ID,
		"username":         user.Username,
		"email":            user.Email,
		"full_name":        user.FullName,
		"avatar_url":       user.AvatarURL,
		"total_xp":         user.TotalXP,
		"level":            services.Level(user.TotalXP, uc.Cfg.XPPerLevel),
		"level_progress":   services.LevelProgress(user.TotalXP, uc.Cfg.XPPerLevel),
		"xp_to_next_level": services.XPToNextLevel(user.TotalXP, uc.Cfg.XPPerLevel),
	})
}

// UpdateProfile changes the editable profile fields. XP is not editable:
// it only moves through lesson completions and achievement awards.
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type UpdateInput struct {
		FullName  *string `json:"full_name"`
		AvatarURL *string `json:"avatar_url"`
	}
	var input UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	updates := map[string]interface{}{}
	if input.FullName != nil {
		updates["full_name"] = *input.FullName
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = *input.AvatarURL
	}
	if len(updates) == 0 {
		return utils.BadRequest(c, "Nothing to update")
	}

	if err := uc.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"updated": true})
}
