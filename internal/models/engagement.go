package models

import "time"

// Comment - Комментарий к видео
type Comment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	VideoID uint   `gorm:"not null;index" json:"video_id"`
	UserID  uint   `gorm:"not null" json:"user_id"`
	Content string `gorm:"not null" json:"content"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

// Rating - Оценка видео от 1 до 5.
// Уникальный составной индекс гарантирует не более одной строки
// на пару (video_id, user_id).
type Rating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	VideoID uint `gorm:"not null;uniqueIndex:uq_video_user_rating" json:"video_id"`
	UserID  uint `gorm:"not null;uniqueIndex:uq_video_user_rating" json:"user_id"`
	Rating  int  `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// VideoLike - Лайк видео. Наличие строки = лайк поставлен.
type VideoLike struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	VideoID uint `gorm:"not null;uniqueIndex:uq_video_user_like" json:"video_id"`
	UserID  uint `gorm:"not null;uniqueIndex:uq_video_user_like" json:"user_id"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
