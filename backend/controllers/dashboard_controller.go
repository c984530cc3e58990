package controllers

import (
	"edulabs/backend/config"
	"edulabs/backend/models"
	"edulabs/backend/services"
	"edulabs/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DashboardController struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Dashboard    *services.DashboardService
	Achievements *services.AchievementService
}

func NewDashboardController(db *gorm.DB, cfg *config.Config, dashboard *services.DashboardService, achievements *services.AchievementService) *DashboardController {
	return &DashboardController{DB: db, Cfg: cfg, Dashboard: dashboard, Achievements: achievements}
}

// GetDashboard godoc
// @Summary Get the full dashboard payload
// @Description Stats, courses in progress, favorites and recent activity in one response
// @Tags dashboard
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /dashboard [get]
func (dc *DashboardController) GetDashboard(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	data := dc.Dashboard.GetDashboardData(c.UserContext(), userID)
	return utils.Success(c, fiber.StatusOK, data)
}

// GetStats returns only the headline statistics block.
func (dc *DashboardController) GetStats(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	stats := dc.Dashboard.GetStats(c.UserContext(), userID)
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"stats":          stats,
		"level":          services.Level(stats.TotalXP, dc.Cfg.XPPerLevel),
		"level_progress": services.LevelProgress(stats.TotalXP, dc.Cfg.XPPerLevel),
	})
}

// GetAchievements returns every achievement with the caller's unlock status.
func (dc *DashboardController) GetAchievements(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	achievements, err := dc.Achievements.ListWithStatus(c.UserContext(), userID)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch achievements")
	}

	return utils.Success(c, fiber.StatusOK, achievements)
}

// GetRecommended returns published courses the caller has not started yet.
func (dc *DashboardController) GetRecommended(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	recommended := dc.Dashboard.GetRecommendedCourses(c.UserContext(), userID)
	return utils.Success(c, fiber.StatusOK, recommended)
}

// CreateAchievement adds an achievement definition (admin only).
func (dc *DashboardController) CreateAchievement(c *fiber.Ctx) error {
	type AchievementInput struct {
		Slug        string `json:"slug"`
		Title       string `json:"title"`
		Description string `json:"description"`
		IconURL     string `json:"icon_url"`
		XPReward    int    `json:"xp_reward"`
	}
	var input AchievementInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Slug == "" || input.Title == "" {
		return utils.BadRequest(c, "slug and title are required")
	}

	achievement := models.Achievement{
		Slug:        input.Slug,
		Title:       input.Title,
		Description: input.Description,
		IconURL:     input.IconURL,
		XPReward:    input.XPReward,
	}
	if err := dc.DB.Create(&achievement).Error; err != nil {
		return utils.Conflict(c, "Could not create achievement")
	}

	return utils.Created(c, achievement)
}
