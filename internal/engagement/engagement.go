package engagement

import (
	"errors"
	"fmt"

	"github.com/s/videoShare/internal/catalog"
	"github.com/s/videoShare/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrVideoNotFound = errors.New("video not found")
)

// Service хранит инварианты вовлеченности: не более одной оценки и не
// более одного лайка на пару (видео, пользователь), toggle-семантика лайков,
// и свежие агрегаты после каждой записи.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type RatingStats struct {
	AverageRating string `json:"averageRating"`
	RatingCount   int64  `json:"ratingCount"`
}

type LikeStatus struct {
	Liked      bool  `json:"liked"`
	TotalLikes int64 `json:"totalLikes"`
}

// SubmitRating ставит или заменяет оценку пользователя.
// Upsert выражен одним условным INSERT ... ON CONFLICT по уникальному
// индексу (video_id, user_id): две одновременные оценки одной пары не
// могут породить две строки, побеждает последняя запись.
// Запись и пересчет агрегата идут в одной транзакции, поэтому ответ
// всегда включает только что примененную оценку.
func (s *Service) SubmitRating(videoID, userID uint, rating int) (RatingStats, error) {
	if rating < 1 || rating > 5 {
		return RatingStats{}, ErrInvalidRating
	}

	var stats RatingStats
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Video{}).Where("id = ?", videoID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrVideoNotFound
		}

		r := models.Rating{VideoID: videoID, UserID: userID, Rating: rating}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "video_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"rating": rating}),
		}).Create(&r).Error
		if err != nil {
			return err
		}

		// Среднее и количество из одного SELECT, одного снимка данных
		var agg struct {
			AverageRating float64
			RatingCount   int64
		}
		err = tx.Model(&models.Rating{}).
			Select("COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS rating_count").
			Where("video_id = ?", videoID).
			Scan(&agg).Error
		if err != nil {
			return err
		}

		stats = RatingStats{
			AverageRating: catalog.FormatAverage(agg.AverageRating),
			RatingCount:   agg.RatingCount,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			return RatingStats{}, ErrVideoNotFound
		}
		return RatingStats{}, fmt.Errorf("submit rating: %w", err)
	}
	return stats, nil
}

// UserRating возвращает оценку пользователя или nil, если оценки нет.
func (s *Service) UserRating(videoID, userID uint) (*int, error) {
	var r models.Rating
	err := s.DB.Where("video_id = ? AND user_id = ?", videoID, userID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user rating: %w", err)
	}
	return &r.Rating, nil
}

// ToggleLike переключает лайк пары (видео, пользователь).
// Сначала пробуем удалить существующую строку: если что-то удалилось,
// лайк снят; иначе вставляем новую через ON CONFLICT DO NOTHING.
// Гонка двух одновременных вставок упирается в уникальный индекс и
// разрешается как "уже лайкнуто": проигравшая вставка не получает
// ошибку уникальности, поэтому на Postgres транзакция не переходит
// в aborted-состояние и последующий Count выполняется нормально.
func (s *Service) ToggleLike(videoID, userID uint) (LikeStatus, error) {
	var status LikeStatus
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Video{}).Where("id = ?", videoID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrVideoNotFound
		}

		res := tx.Where("video_id = ? AND user_id = ?", videoID, userID).Delete(&models.VideoLike{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			status.Liked = false
		} else {
			// Если параллельный запрос успел вставить первым,
			// вставка молча пропускается - пара все равно лайкнута
			if err := insertLike(tx, videoID, userID); err != nil {
				return err
			}
			status.Liked = true
		}

		return tx.Model(&models.VideoLike{}).
			Where("video_id = ?", videoID).
			Count(&status.TotalLikes).Error
	})
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			return LikeStatus{}, ErrVideoNotFound
		}
		return LikeStatus{}, fmt.Errorf("toggle like: %w", err)
	}
	return status, nil
}

// insertLike ставит лайк одним условным INSERT: при конфликте по
// уникальному индексу (video_id, user_id) строка не вставляется и
// ошибка не возвращается, так что транзакция остается рабочей.
func insertLike(tx *gorm.DB, videoID, userID uint) error {
	like := models.VideoLike{VideoID: videoID, UserID: userID}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "video_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&like).Error
}

// IsLiked сообщает, стоит ли лайк пользователя на видео.
func (s *Service) IsLiked(videoID, userID uint) (bool, error) {
	var count int64
	err := s.DB.Model(&models.VideoLike{}).
		Where("video_id = ? AND user_id = ?", videoID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("get like status: %w", err)
	}
	return count > 0, nil
}
