package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"edulabs/backend/models"

	"gorm.io/gorm"
)

// ErrLessonNotPublished is returned when completing a lesson that is not
// visible to learners.
var ErrLessonNotPublished = errors.New("lesson is not published")

// CompletionResult describes what a lesson completion changed.
type CompletionResult struct {
	AlreadyCompleted bool                      `json:"already_completed"`
	XPAwarded        int                       `json:"xp_awarded"`
	TotalXP          int                       `json:"total_xp"`
	Level            int                       `json:"level"`
	LeveledUp        bool                      `json:"leveled_up"`
	CourseCompleted  bool                      `json:"course_completed"`
	Progress         models.UserCourseProgress `json:"progress"`
}

// ProgressionService owns the only writes in the progress domain: marking
// lessons complete and the bookkeeping that follows (XP, per-course
// aggregates, activity feed, achievements).
type ProgressionService struct {
	DB           *gorm.DB
	Logger       *log.Logger
	Achievements *AchievementService
	XPPerLevel   int
}

func NewProgressionService(db *gorm.DB, logger *log.Logger, achievements *AchievementService, xpPerLevel int) *ProgressionService {
	return &ProgressionService{
		DB:           db,
		Logger:       logger,
		Achievements: achievements,
		XPPerLevel:   xpPerLevel,
	}
}

// CompleteLesson marks a lesson as completed for a user. Completing the same
// lesson twice is a no-op: the first completion is the only one that counts.
func (s *ProgressionService) CompleteLesson(ctx context.Context, userID uint, lesson *models.Lesson, course *models.Course) (*CompletionResult, error) {
	if !lesson.Published {
		return nil, ErrLessonNotPublished
	}

	result := &CompletionResult{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.UserLessonProgress
		err := tx.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&existing).Error
		if err == nil {
			result.AlreadyCompleted = true
			return tx.Where("user_id = ? AND course_id = ?", userID, course.ID).
				First(&result.Progress).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		lessonProgress := models.UserLessonProgress{
			UserID:      userID,
			LessonID:    lesson.ID,
			CourseID:    course.ID,
			CompletedAt: now,
		}
		if err := tx.Create(&lessonProgress).Error; err != nil {
			return err
		}

		// Create or bump the per-course aggregate.
		var progress models.UserCourseProgress
		firstLesson := false
		err = tx.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			firstLesson = true
			progress = models.UserCourseProgress{
				UserID:   userID,
				CourseID: course.ID,
			}
		} else if err != nil {
			return err
		}
		progress.CompletedLessonsCount++
		progress.TotalXPEarned += lesson.XPReward
		progress.LastAccessed = now
		if err := tx.Save(&progress).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		levelBefore := Level(user.TotalXP, s.XPPerLevel)
		user.TotalXP += lesson.XPReward
		levelAfter := Level(user.TotalXP, s.XPPerLevel)
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		activities := []models.ActivityLog{{
			UserID:     userID,
			ActionType: models.ActivityLessonCompleted,
			TargetID:   lesson.ID,
			Title:      lesson.Title,
			XP:         lesson.XPReward,
		}}
		if firstLesson {
			activities = append(activities, models.ActivityLog{
				UserID:     userID,
				ActionType: models.ActivityCourseStarted,
				TargetID:   course.ID,
				Title:      course.Title,
			})
		}
		if ClassifyProgress(progress.CompletedLessonsCount, course.LessonsCount) == StatusCompleted {
			result.CourseCompleted = true
			activities = append(activities, models.ActivityLog{
				UserID:     userID,
				ActionType: models.ActivityCourseCompleted,
				TargetID:   course.ID,
				Title:      course.Title,
			})
		}
		if levelAfter > levelBefore {
			result.LeveledUp = true
			activities = append(activities, models.ActivityLog{
				UserID:     userID,
				ActionType: models.ActivityLevelUp,
				TargetID:   uint(levelAfter),
				Title:      fmt.Sprintf("Reached level %d", levelAfter),
			})
		}
		if err := tx.Create(&activities).Error; err != nil {
			return err
		}

		result.XPAwarded = lesson.XPReward
		result.TotalXP = user.TotalXP
		result.Level = levelAfter
		result.Progress = progress
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyCompleted {
		// Achievement checks run outside the transaction; a failure here
		// must not undo the completion itself.
		if err := s.Achievements.AutoAward(ctx, userID); err != nil {
			s.Logger.Printf("progression: achievement check failed for user %d: %v", userID, err)
		}
		s.Logger.Printf("lesson completed: user=%d lesson=%d xp=+%d level=%d",
			userID, lesson.ID, result.XPAwarded, result.Level)
	}

	return result, nil
}
