package database

import (
	"os"

	"github.com/s/videoShare/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Seed(db *gorm.DB) error {
	db.FirstOrCreate(&models.Role{}, models.Role{ID: models.RoleConsumer, Name: "Consumer"})
	db.FirstOrCreate(&models.Role{}, models.Role{ID: models.RoleCreator, Name: "Creator"})

	// Дефолтный аккаунт создателя, чтобы на пустой базе можно было
	// сразу загружать видео. Пароль задается через .env.
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     "admin",
		Email:        "admin@example.com",
		Name:         "Administrator",
		PasswordHash: string(hash),
		RoleID:       models.RoleCreator,
	}
	return db.Where(models.User{Username: "admin"}).FirstOrCreate(&admin).Error
}
