package models

import (
	"time"

	"gorm.io/datatypes"
)

// Video (Видео)
type Video struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`

	// Ссылка на загруженный файл. Самими байтами управляет слой загрузки,
	// каталог только читает и отдает ссылку.
	Filename string `gorm:"not null" json:"filename"`
	FilePath string `json:"-"`
	FileSize int64  `json:"file_size"`

	Publisher string `gorm:"not null;index" json:"publisher"`
	Producer  string `gorm:"not null" json:"producer"`
	Genre     string `gorm:"not null;index" json:"genre"`
	AgeRating string `gorm:"not null;index" json:"age_rating"`

	CreatorID uint  `gorm:"not null;index" json:"creator_id"`
	Views     int64 `gorm:"not null;default:0" json:"views"`

	// Метаданные файла от слоя загрузки (оригинальное имя, mime-тип).
	Metadata datatypes.JSON `json:"metadata,omitempty"`

	Creator  User        `json:"-" gorm:"foreignKey:CreatorID"`
	Comments []Comment   `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Ratings  []Rating    `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Likes    []VideoLike `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
}
