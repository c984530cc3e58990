package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:user"` // user, admin
	FullName     string
	AvatarURL    string
	TotalXP      int `gorm:"default:0"` // cumulative, never decreases
}
