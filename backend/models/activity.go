package models

import "gorm.io/gorm"

// Activity types shown in the dashboard feed.
const (
	ActivityLessonCompleted     = "lesson_completed"
	ActivityCourseStarted       = "course_started"
	ActivityCourseCompleted     = "course_completed"
	ActivityAchievementUnlocked = "achievement_unlocked"
	ActivityLevelUp             = "level_up"
)

type ActivityLog struct {
	gorm.Model
	UserID     uint   `gorm:"index;not null"`
	ActionType string // one of the Activity* constants
	TargetID   uint   // lesson, course or achievement id
	Title      string
	XP         int
}
