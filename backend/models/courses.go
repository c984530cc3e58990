package models

import (
	"time"

	"gorm.io/gorm"
)

// Course statuses. Only published courses are visible in the catalog
// and in dashboard lists.
const (
	CourseStatusDraft     = "draft"
	CourseStatusInReview  = "in_review"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

type Course struct {
	gorm.Model
	Slug          string `gorm:"uniqueIndex;not null"`
	Title         string `gorm:"not null"`
	Description   string
	Status        string `gorm:"default:draft"`
	Level         string `gorm:"default:junior"`    // junior, middle, senior
	Category      string `gorm:"default:fullstack"` // fullstack, frontend, backend, qa, devops
	ThumbnailURL  string
	EstimatedTime int     // minutes
	TotalXP       int     `gorm:"default:0"`
	LessonsCount  int     `gorm:"default:0"` // denormalized, refreshed by the aggregate scheduler
	ReviewsCount  int     `gorm:"default:0"`
	AvgRating     float64 `gorm:"default:0"`
	AuthorID      uint
	Modules       []CourseModule
	Lessons       []Lesson
}

type CourseModule struct {
	gorm.Model
	CourseID   uint `gorm:"index;not null"`
	Title      string
	OrderIndex int
	Lessons    []Lesson `gorm:"foreignKey:ModuleID"`
}

type Lesson struct {
	gorm.Model
	CourseID      uint   `gorm:"index;not null"`
	ModuleID      uint   `gorm:"index"`
	Slug          string `gorm:"index;not null"`
	Title         string `gorm:"not null"`
	Content       string
	OrderIndex    int
	EstimatedTime int  // minutes
	XPReward      int  `gorm:"default:10"`
	HasQuiz       bool `gorm:"default:false"`
	Published     bool `gorm:"default:false"`
}

// UserCourseProgress is the per (user, course) aggregate. A row appears on
// the first completed lesson and is updated on every completion afterwards.
// CompletedLessonsCount must not exceed Course.LessonsCount; the classifier
// tolerates a violation by clamping instead of failing.
type UserCourseProgress struct {
	gorm.Model
	UserID                uint `gorm:"uniqueIndex:idx_user_course;not null"`
	CourseID              uint `gorm:"uniqueIndex:idx_user_course;not null"`
	CompletedLessonsCount int  `gorm:"default:0"`
	TotalXPEarned         int  `gorm:"default:0"`
	LastAccessed          time.Time
	Course                Course
}

// UserLessonProgress marks a single lesson as completed. The unique pair
// index is what makes lesson completion idempotent.
type UserLessonProgress struct {
	gorm.Model
	UserID      uint `gorm:"uniqueIndex:idx_user_lesson;not null"`
	LessonID    uint `gorm:"uniqueIndex:idx_user_lesson;not null"`
	CourseID    uint `gorm:"index;not null"`
	CompletedAt time.Time
}

type FavoriteCourse struct {
	gorm.Model
	UserID   uint `gorm:"uniqueIndex:idx_user_favorite;not null"`
	CourseID uint `gorm:"uniqueIndex:idx_user_favorite;not null"`
	Course   Course
}

type CourseReview struct {
	gorm.Model
	CourseID uint `gorm:"uniqueIndex:idx_user_review;not null"`
	UserID   uint `gorm:"uniqueIndex:idx_user_review;not null"`
	Rating   int  `gorm:"check:rating>=0 AND rating<=5"`
	Text     string
}
