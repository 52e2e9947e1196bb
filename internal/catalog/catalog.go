package catalog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/s/videoShare/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultPageSize - размер страницы, если клиент не передал limit.
const DefaultPageSize = 12

var ErrNotFound = errors.New("video not found")

// Service отвечает за каталог видео: фильтрация, пагинация и агрегаты
// (средняя оценка, количество оценок и комментариев). Все точки входа
// (список, детали, "мои видео") используют один и тот же агрегатный запрос,
// чтобы производные поля везде считались одинаково.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Filters - фильтры списка. Пустое значение или "all" означает
// отсутствие ограничения по этому полю.
type Filters struct {
	Genre     string
	AgeRating string
	Publisher string
	Search    string
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// VideoItem - видео с производными полями для выдачи наружу.
// AverageRating всегда строка с одним знаком после запятой ("0.0" без оценок).
type VideoItem struct {
	ID            uint           `json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Filename      string         `json:"filename"`
	FileSize      int64          `json:"file_size"`
	Publisher     string         `json:"publisher"`
	Producer      string         `json:"producer"`
	Genre         string         `json:"genre"`
	AgeRating     string         `json:"age_rating"`
	CreatorID     uint           `json:"creator_id"`
	CreatorName   string         `json:"creator_name"`
	Views         int64          `json:"views"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`
	AverageRating string         `json:"average_rating"`
	RatingCount   int            `json:"rating_count"`
	CommentCount  int            `json:"comment_count"`
}

// videoRow - сырая строка агрегатного запроса до форматирования.
type videoRow struct {
	ID            uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Title         string
	Description   string
	Filename      string
	FileSize      int64
	Publisher     string
	Producer      string
	Genre         string
	AgeRating     string
	CreatorID     uint
	CreatorName   string
	Views         int64
	Metadata      datatypes.JSON
	AverageRating float64
	RatingCount   int
	CommentCount  int
}

// aggregateQuery - единый запрос каталога: средняя оценка и счетчики
// считаются живьем через LEFT JOIN + GROUP BY в одном SELECT, так что
// rating_count и average_rating всегда из одного снимка данных.
func (s *Service) aggregateQuery() *gorm.DB {
	return s.DB.Model(&models.Video{}).
		Select(`videos.*, users.username AS creator_name,
			COALESCE(AVG(ratings.rating), 0) AS average_rating,
			COUNT(DISTINCT ratings.id) AS rating_count,
			COUNT(DISTINCT comments.id) AS comment_count`).
		Joins("LEFT JOIN users ON users.id = videos.creator_id").
		Joins("LEFT JOIN ratings ON ratings.video_id = videos.id").
		Joins("LEFT JOIN comments ON comments.video_id = videos.id").
		Group("videos.id, users.username")
}

func applyFilters(q *gorm.DB, f Filters) *gorm.DB {
	if f.Genre != "" && f.Genre != "all" {
		q = q.Where("videos.genre = ?", f.Genre)
	}
	if f.AgeRating != "" && f.AgeRating != "all" {
		q = q.Where("videos.age_rating = ?", f.AgeRating)
	}
	if f.Publisher != "" && f.Publisher != "all" {
		q = q.Where("videos.publisher = ?", f.Publisher)
	}
	if f.Search != "" {
		// LOWER + LIKE вместо ILIKE, чтобы поиск одинаково работал
		// на Postgres и на SQLite в тестах
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where(
			"(LOWER(videos.title) LIKE ? OR LOWER(videos.description) LIKE ? OR LOWER(videos.publisher) LIKE ?)",
			like, like, like,
		)
	}
	return q
}

// List возвращает страницу каталога под заданными фильтрами.
// Порядок выдачи детерминирован (created_at DESC, id DESC), чтобы
// пагинация была стабильной между запросами.
func (s *Service) List(f Filters, page, pageSize int) ([]VideoItem, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	// Total считаем тем же предикатом, но без JOIN-ов и пагинации
	var total int64
	if err := applyFilters(s.DB.Model(&models.Video{}), f).Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("count videos: %w", err)
	}

	offset := (page - 1) * pageSize

	var rows []videoRow
	err := applyFilters(s.aggregateQuery(), f).
		Order("videos.created_at DESC, videos.id DESC").
		Limit(pageSize).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list videos: %w", err)
	}

	items := make([]VideoItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toItem())
	}

	p := Pagination{
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(pageSize))),
		TotalItems:  total,
		HasNext:     int64(offset+len(rows)) < total,
		HasPrev:     page > 1,
	}
	return items, p, nil
}

// Get возвращает одно видео с теми же производными полями, что и List.
// Каждый успешный запрос деталей засчитывается как один просмотр:
// счетчик инкрементируется атомарно на стороне БД (views = views + 1),
// никакого read-modify-write в коде.
func (s *Service) Get(id uint) (VideoItem, error) {
	res := s.DB.Model(&models.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return VideoItem{}, fmt.Errorf("increment views: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return VideoItem{}, ErrNotFound
	}

	var row videoRow
	if err := s.aggregateQuery().Where("videos.id = ?", id).Scan(&row).Error; err != nil {
		return VideoItem{}, fmt.Errorf("get video: %w", err)
	}
	if row.ID == 0 {
		// видео удалили между инкрементом и чтением
		return VideoItem{}, ErrNotFound
	}
	return row.toItem(), nil
}

// ListByCreator возвращает все видео одного создателя.
// creatorID уже прошел аутентификацию в вызывающем слое.
func (s *Service) ListByCreator(creatorID uint) ([]VideoItem, error) {
	var rows []videoRow
	err := s.aggregateQuery().
		Where("videos.creator_id = ?", creatorID).
		Order("videos.created_at DESC, videos.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list creator videos: %w", err)
	}

	items := make([]VideoItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toItem())
	}
	return items, nil
}

// Delete удаляет видео вместе со всеми зависимыми комментариями, оценками
// и лайками в одной транзакции, чтобы не оставалось осиротевших строк.
// Возвращает удаленную запись, чтобы вызывающий слой мог убрать файл с диска.
func (s *Service) Delete(id, creatorID uint) (models.Video, error) {
	var video models.Video
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND creator_id = ?", id, creatorID).First(&video).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&models.VideoLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&video).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("delete video: %w", err)
	}
	return video, nil
}

func (r videoRow) toItem() VideoItem {
	return VideoItem{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Title:         r.Title,
		Description:   r.Description,
		Filename:      r.Filename,
		FileSize:      r.FileSize,
		Publisher:     r.Publisher,
		Producer:      r.Producer,
		Genre:         r.Genre,
		AgeRating:     r.AgeRating,
		CreatorID:     r.CreatorID,
		CreatorName:   r.CreatorName,
		Views:         r.Views,
		Metadata:      r.Metadata,
		AverageRating: FormatAverage(r.AverageRating),
		RatingCount:   r.RatingCount,
		CommentCount:  r.CommentCount,
	}
}

// FormatAverage приводит среднюю оценку к контракту "один знак после запятой".
func FormatAverage(avg float64) string {
	return strconv.FormatFloat(avg, 'f', 1, 64)
}
