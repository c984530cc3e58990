package controllers

import (
	"errors"
	"log"
	"strings"

	"edulabs/backend/config"
	"edulabs/backend/models"
	"edulabs/backend/services"
	"edulabs/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Progression *services.ProgressionService
	Logger      *log.Logger
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, progression *services.ProgressionService, logger *log.Logger) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Progression: progression, Logger: logger}
}

// GetCourses godoc
// @Summary List published courses
// @Description Returns the course catalog, optionally filtered by level, category and search query
// @Tags courses
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /courses [get]
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	level := c.Query("level", "all")
	category := c.Query("category", "all")
	search := c.Query("search")

	query := cc.DB.Model(&models.Course{}).Where("status = ?", models.CourseStatusPublished)

	if level != "all" {
		query = query.Where("level = ?", level)
	}
	if category != "all" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var courses []models.Course
	if err := query.Order("avg_rating DESC").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch courses")
	}

	return utils.Success(c, fiber.StatusOK, courses)
}

// GetCourseBySlug returns a single published course.
func (cc *CoursesController) GetCourseBySlug(c *fiber.Ctx) error {
	var course models.Course
	err := cc.DB.Where("slug = ? AND status = ?", c.Params("slug"), models.CourseStatusPublished).
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Failed to fetch course")
	}

	return utils.Success(c, fiber.StatusOK, course)
}

// GetCourseRoadmap returns the course structure (modules with their ordered
// published lessons) plus the caller's completed lesson ids.
func (cc *CoursesController) GetCourseRoadmap(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var course models.Course
	if err := cc.DB.Where("slug = ? AND status = ?", c.Params("slug"), models.CourseStatusPublished).
		First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Failed to fetch course")
	}

	var modules []models.CourseModule
	if err := cc.DB.
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Where("published = ?", true).Order("order_index ASC")
		}).
		Where("course_id = ?", course.ID).
		Order("order_index ASC").
		Find(&modules).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch roadmap")
	}

	var completed []models.UserLessonProgress
	if err := cc.DB.Where("user_id = ? AND course_id = ?", userID, course.ID).
		Find(&completed).Error; err != nil {
		// degraded roadmap: structure still renders, checkmarks missing
		cc.Logger.Printf("roadmap: completion fetch failed for user %d: %v", userID, err)
	}
	completedIDs := make([]uint, 0, len(completed))
	for _, lp := range completed {
		completedIDs = append(completedIDs, lp.LessonID)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"course":               course,
		"modules":              modules,
		"completed_lesson_ids": completedIDs,
	})
}

// CompleteLesson godoc
// @Summary Mark a lesson as completed
// @Description Awards XP and updates course progress; idempotent per lesson
// @Tags courses
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{slug}/lessons/{lessonSlug}/complete [post]
func (cc *CoursesController) CompleteLesson(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var course models.Course
	if err := cc.DB.Where("slug = ? AND status = ?", c.Params("slug"), models.CourseStatusPublished).
		First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Failed to fetch course")
	}

	var lesson models.Lesson
	if err := cc.DB.Where("course_id = ? AND slug = ?", course.ID, c.Params("lessonSlug")).
		First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Failed to fetch lesson")
	}

	result, err := cc.Progression.CompleteLesson(c.UserContext(), userID, &lesson, &course)
	if err != nil {
		if errors.Is(err, services.ErrLessonNotPublished) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Failed to complete lesson")
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// AddFavorite marks a course as a favorite. Adding twice is a no-op.
func (cc *CoursesController) AddFavorite(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var course models.Course
	if err := cc.DB.Where("slug = ? AND status = ?", c.Params("slug"), models.CourseStatusPublished).
		First(&course).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}

	favorite := models.FavoriteCourse{UserID: userID, CourseID: course.ID}
	if err := cc.DB.Where("user_id = ? AND course_id = ?", userID, course.ID).
		FirstOrCreate(&favorite).Error; err != nil {
		return utils.InternalServerError(c, "Failed to add favorite")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"favorited": true})
}

func (cc *CoursesController) RemoveFavorite(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var course models.Course
	if err := cc.DB.Where("slug = ?", c.Params("slug")).First(&course).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}

	if err := cc.DB.Where("user_id = ? AND course_id = ?", userID, course.ID).
		Delete(&models.FavoriteCourse{}).Error; err != nil {
		return utils.InternalServerError(c, "Failed to remove favorite")
	}

	return utils.NoContent(c)
}

// CreateReview adds a course review, one per user per course.
func (cc *CoursesController) CreateReview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type ReviewInput struct {
		Rating int    `json:"rating"`
		Text   string `json:"text"`
	}
	var input ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Rating < 0 || input.Rating > 5 {
		return utils.BadRequest(c, "Rating must be between 0 and 5")
	}

	var course models.Course
	if err := cc.DB.Where("slug = ? AND status = ?", c.Params("slug"), models.CourseStatusPublished).
		First(&course).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}

	var count int64
	cc.DB.Model(&models.CourseReview{}).
		Where("user_id = ? AND course_id = ?", userID, course.ID).
		Count(&count)
	if count > 0 {
		return utils.Conflict(c, "Course already reviewed")
	}

	review := models.CourseReview{
		CourseID: course.ID,
		UserID:   userID,
		Rating:   input.Rating,
		Text:     input.Text,
	}
	if err := cc.DB.Create(&review).Error; err != nil {
		return utils.InternalServerError(c, "Failed to create review")
	}

	return utils.Created(c, review)
}

// CreateCourse creates a draft course (admin only). The slug is generated
// from the title.
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	type CourseInput struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		Level         string `json:"level"`
		Category      string `json:"category"`
		ThumbnailURL  string `json:"thumbnail_url"`
		EstimatedTime int    `json:"estimated_time"`
	}
	var input CourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	authorID, _ := utils.ExtractUserIDFromToken(c, cc.Cfg)

	course := models.Course{
		Slug:          slug.Make(input.Title),
		Title:         input.Title,
		Description:   input.Description,
		Status:        models.CourseStatusDraft,
		Level:         input.Level,
		Category:      input.Category,
		ThumbnailURL:  input.ThumbnailURL,
		EstimatedTime: input.EstimatedTime,
		AuthorID:      authorID,
	}
	if course.Level == "" {
		course.Level = "junior"
	}
	if course.Category == "" {
		course.Category = "fullstack"
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.Conflict(c, "Could not create course")
	}

	return utils.Created(c, course)
}

// UpdateCourseStatus moves a course through its lifecycle
// (draft, in_review, published, archived).
func (cc *CoursesController) UpdateCourseStatus(c *fiber.Ctx) error {
	type StatusInput struct {
		Status string `json:"status"`
	}
	var input StatusInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	switch input.Status {
	case models.CourseStatusDraft, models.CourseStatusInReview,
		models.CourseStatusPublished, models.CourseStatusArchived:
	default:
		return utils.BadRequest(c, "Unknown course status")
	}

	res := cc.DB.Model(&models.Course{}).
		Where("slug = ?", c.Params("slug")).
		Update("status", input.Status)
	if res.Error != nil {
		return utils.InternalServerError(c, "Could not update course")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Course not found")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"status": input.Status})
}

// AddModule appends a module to a course.
func (cc *CoursesController) AddModule(c *fiber.Ctx) error {
	type ModuleInput struct {
		Title      string `json:"title"`
		OrderIndex int    `json:"order_index"`
	}
	var input ModuleInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var course models.Course
	if err := cc.DB.Where("slug = ?", c.Params("slug")).First(&course).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}

	module := models.CourseModule{
		CourseID:   course.ID,
		Title:      input.Title,
		OrderIndex: input.OrderIndex,
	}
	if err := cc.DB.Create(&module).Error; err != nil {
		return utils.InternalServerError(c, "Could not create module")
	}

	return utils.Created(c, module)
}

// AddLesson appends a lesson to a course module.
func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	type LessonInput struct {
		ModuleID      uint   `json:"module_id"`
		Title         string `json:"title"`
		Content       string `json:"content"`
		OrderIndex    int    `json:"order_index"`
		EstimatedTime int    `json:"estimated_time"`
		XPReward      int    `json:"xp_reward"`
		HasQuiz       bool   `json:"has_quiz"`
		Published     bool   `json:"published"`
	}
	var input LessonInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	var course models.Course
	if err := cc.DB.Where("slug = ?", c.Params("slug")).First(&course).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}

	lesson := models.Lesson{
		CourseID:      course.ID,
		ModuleID:      input.ModuleID,
		Slug:          slug.Make(input.Title),
		Title:         input.Title,
		Content:       input.Content,
		OrderIndex:    input.OrderIndex,
		EstimatedTime: input.EstimatedTime,
		XPReward:      input.XPReward,
		HasQuiz:       input.HasQuiz,
		Published:     input.Published,
	}
	if lesson.XPReward == 0 {
		lesson.XPReward = cc.Cfg.XPPerLesson
	}

	if err := cc.DB.Create(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not create lesson")
	}

	return utils.Created(c, lesson)
}
