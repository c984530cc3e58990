package services

import (
	"context"
	"errors"
	"log"
	"time"

	"edulabs/backend/models"

	"gorm.io/gorm"
)

// Achievement rarity tiers, derived from the configured XP reward.
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// RarityForXP maps an achievement's XP reward to its display rarity.
// Highest threshold wins.
func RarityForXP(xpReward int) string {
	switch {
	case xpReward >= 100:
		return RarityLegendary
	case xpReward >= 50:
		return RarityEpic
	case xpReward >= 20:
		return RarityRare
	default:
		return RarityCommon
	}
}

// ResolveStatuses joins the achievement catalog with a user's earned records.
// The catalog is authoritative: earned records for achievements that no
// longer exist are dropped. Output order follows the catalog order.
func ResolveStatuses(catalog []models.Achievement, earned []models.UserAchievement) []models.AchievementWithStatus {
	earnedAt := make(map[uint]time.Time, len(earned))
	for _, ua := range earned {
		earnedAt[ua.AchievementID] = ua.EarnedAt
	}

	statuses := make([]models.AchievementWithStatus, 0, len(catalog))
	for _, a := range catalog {
		status := models.AchievementWithStatus{
			ID:          a.ID,
			Slug:        a.Slug,
			Title:       a.Title,
			Description: a.Description,
			IconURL:     a.IconURL,
			XPReward:    a.XPReward,
			Rarity:      RarityForXP(a.XPReward),
		}
		if at, ok := earnedAt[a.ID]; ok {
			status.Unlocked = true
			t := at
			status.UnlockedAt = &t
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// achievementTrigger awards an achievement once a user's counters reach
// every listed threshold. Keys: lessons_completed, courses_completed, level.
type achievementTrigger struct {
	Slug      string
	Threshold map[string]int
}

var achievementTriggers = []achievementTrigger{
	{Slug: "first-steps", Threshold: map[string]int{"lessons_completed": 1}},
	{Slug: "getting-serious", Threshold: map[string]int{"lessons_completed": 10}},
	{Slug: "lesson-marathon", Threshold: map[string]int{"lessons_completed": 50}},
	{Slug: "graduate", Threshold: map[string]int{"courses_completed": 1}},
	{Slug: "collector", Threshold: map[string]int{"courses_completed": 5}},
	{Slug: "level-5", Threshold: map[string]int{"level": 5}},
	{Slug: "level-10", Threshold: map[string]int{"level": 10}},
}

// DefaultAchievements is the seed catalog matching the triggers above.
var DefaultAchievements = []models.Achievement{
	{Slug: "first-steps", Title: "First Steps", Description: "Complete your first lesson", XPReward: 10},
	{Slug: "getting-serious", Title: "Getting Serious", Description: "Complete 10 lessons", XPReward: 25},
	{Slug: "lesson-marathon", Title: "Lesson Marathon", Description: "Complete 50 lessons", XPReward: 75},
	{Slug: "graduate", Title: "Graduate", Description: "Finish a course", XPReward: 50},
	{Slug: "collector", Title: "Collector", Description: "Finish 5 courses", XPReward: 120},
	{Slug: "level-5", Title: "Rising Star", Description: "Reach level 5", XPReward: 30},
	{Slug: "level-10", Title: "Veteran", Description: "Reach level 10", XPReward: 100},
}

type AchievementService struct {
	DB         *gorm.DB
	Logger     *log.Logger
	XPPerLevel int
}

func NewAchievementService(db *gorm.DB, logger *log.Logger, xpPerLevel int) *AchievementService {
	return &AchievementService{DB: db, Logger: logger, XPPerLevel: xpPerLevel}
}

// SeedCatalog inserts the default achievement definitions if missing.
func (s *AchievementService) SeedCatalog() error {
	for _, a := range DefaultAchievements {
		def := a
		if err := s.DB.Where("slug = ?", def.Slug).FirstOrCreate(&def).Error; err != nil {
			return err
		}
	}
	return nil
}

// ListWithStatus returns every achievement with the caller's unlock status,
// ordered by XP reward descending. A failed earned-records fetch degrades to
// an all-locked listing instead of an error.
func (s *AchievementService) ListWithStatus(ctx context.Context, userID uint) ([]models.AchievementWithStatus, error) {
	var catalog []models.Achievement
	if err := s.DB.WithContext(ctx).
		Order("xp_reward DESC").
		Find(&catalog).Error; err != nil {
		return nil, err
	}

	var earned []models.UserAchievement
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&earned).Error; err != nil {
		s.Logger.Printf("achievements: earned fetch failed for user %d: %v", userID, err)
		earned = nil
	}

	return ResolveStatuses(catalog, earned), nil
}

// Award grants an achievement to a user. Returns false without error when
// the user already has it; first earns also credit the achievement's XP and
// log activity.
func (s *AchievementService) Award(ctx context.Context, userID uint, achievementSlug string) (bool, error) {
	awarded := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var achievement models.Achievement
		if err := tx.Where("slug = ?", achievementSlug).First(&achievement).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.UserAchievement{}).
			Where("user_id = ? AND achievement_id = ?", userID, achievement.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		record := models.UserAchievement{
			UserID:        userID,
			AchievementID: achievement.ID,
			EarnedAt:      time.Now(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("total_xp", gorm.Expr("total_xp + ?", achievement.XPReward)).Error; err != nil {
			return err
		}

		activity := models.ActivityLog{
			UserID:     userID,
			ActionType: models.ActivityAchievementUnlocked,
			TargetID:   achievement.ID,
			Title:      achievement.Title,
			XP:         achievement.XPReward,
		}
		if err := tx.Create(&activity).Error; err != nil {
			return err
		}

		awarded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if awarded {
		s.Logger.Printf("achievement awarded: %s -> user %d", achievementSlug, userID)
	}
	return awarded, nil
}

// AutoAward checks every trigger against the user's current counters and
// awards whatever newly qualifies. Called after progress updates.
func (s *AchievementService) AutoAward(ctx context.Context, userID uint) error {
	counters, err := s.loadCounters(ctx, userID)
	if err != nil {
		return err
	}

	for _, trigger := range achievementTriggers {
		if !meetsThreshold(counters, trigger.Threshold) {
			continue
		}
		if _, err := s.Award(ctx, userID, trigger.Slug); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// trigger references an achievement missing from the catalog
				continue
			}
			return err
		}
	}
	return nil
}

func (s *AchievementService) loadCounters(ctx context.Context, userID uint) (map[string]int, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}

	var lessonsCompleted int64
	if err := s.DB.WithContext(ctx).Model(&models.UserLessonProgress{}).
		Where("user_id = ?", userID).
		Count(&lessonsCompleted).Error; err != nil {
		return nil, err
	}

	var progressRows []models.UserCourseProgress
	if err := s.DB.WithContext(ctx).Preload("Course").
		Where("user_id = ?", userID).
		Find(&progressRows).Error; err != nil {
		return nil, err
	}
	coursesCompleted := 0
	for _, row := range progressRows {
		if ClassifyProgress(row.CompletedLessonsCount, row.Course.LessonsCount) == StatusCompleted {
			coursesCompleted++
		}
	}

	return map[string]int{
		"lessons_completed": int(lessonsCompleted),
		"courses_completed": coursesCompleted,
		"level":             Level(user.TotalXP, s.XPPerLevel),
	}, nil
}

func meetsThreshold(counters map[string]int, threshold map[string]int) bool {
	for key, required := range threshold {
		if counters[key] < required {
			return false
		}
	}
	return true
}
