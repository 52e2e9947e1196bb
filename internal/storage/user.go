package storage

import (
	"errors"
	"strings"

	"github.com/s/videoShare/internal/models"
	"gorm.io/gorm"
)

// SaveGoogleUser ищет пользователя по Google ID; найденного обновляет,
// нового создает с ролью Consumer. Роль при повторном входе не трогаем -
// ею управляет администратор.
func SaveGoogleUser(db *gorm.DB, userInfo models.User) (uint, error) {
	var existingUser models.User

	result := db.Where("google_id = ?", userInfo.GoogleID).First(&existingUser)

	if result.Error == nil {
		updates := map[string]interface{}{
			"email":   userInfo.Email,
			"name":    userInfo.Name,
			"picture": userInfo.Picture,
		}

		if err := db.Model(&existingUser).Updates(updates).Error; err != nil {
			return 0, err
		}
		return existingUser.ID, nil

	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		userInfo.RoleID = models.RoleConsumer
		if userInfo.Username == "" {
			// username обязан быть уникальным; для OAuth-пользователей
			// берем локальную часть почты плюс google id
			local := userInfo.Email
			if i := strings.Index(local, "@"); i > 0 {
				local = local[:i]
			}
			userInfo.Username = local + "-" + userInfo.GoogleID
		}

		if err := db.Create(&userInfo).Error; err != nil {
			return 0, err
		}
		return userInfo.ID, nil

	} else {
		return 0, result.Error
	}
}
