package models

type Role struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`

	Users []User
}

// Константы для RoleID, используемые по всему приложению.
// Creator одновременно играет роль администратора платформы
// (загрузка видео, управление своими видео, панель статистики).
const (
	RoleGuest    uint = 0
	RoleConsumer uint = 1
	RoleCreator  uint = 2
)
