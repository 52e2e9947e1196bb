package database

import (
	"github.com/s/videoShare/internal/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Video{},
		&models.Comment{},
		&models.Rating{},
		&models.VideoLike{},
	)
}
