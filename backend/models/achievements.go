package models

import (
	"time"

	"gorm.io/gorm"
)

type Achievement struct {
	gorm.Model
	Slug        string `gorm:"uniqueIndex;not null"`
	Title       string `gorm:"not null"`
	Description string
	IconURL     string
	XPReward    int `gorm:"default:0"` // also drives the display rarity tier
}

// UserAchievement records that a user earned an achievement. Created exactly
// once per (user, achievement) pair; re-earning is a no-op.
type UserAchievement struct {
	gorm.Model
	UserID        uint `gorm:"uniqueIndex:idx_user_achievement;not null"`
	AchievementID uint `gorm:"uniqueIndex:idx_user_achievement;not null"`
	EarnedAt      time.Time
}
