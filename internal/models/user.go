package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	GoogleID     string    `gorm:"index" json:"-"`
	Username     string    `gorm:"uniqueIndex;size:255" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Picture      string    `json:"profile_image"`
	Bio          string    `json:"bio"`
	RoleID       uint      `json:"role_id"`
	Role         Role      `gorm:"foreignKey:RoleID" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
