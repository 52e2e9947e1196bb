package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/s/videoShare/internal/engagement"
	"github.com/s/videoShare/internal/models"
	"gorm.io/gorm"
)

// --- КОММЕНТАРИИ ---

// GET /api/comments/video/{videoId}
func (h *Handler) GetCommentsAPI(w http.ResponseWriter, r *http.Request) {
	videoID, ok := parseUintVar(mux.Vars(r)["videoId"])
	if !ok {
		jsonError(w, "Invalid video ID", http.StatusBadRequest)
		return
	}

	var comments []models.Comment
	// Загружаем комментарии с данными пользователей, сортируем от новых к старым
	if err := h.DB.Preload("User").Where("video_id = ?", videoID).Order("created_at desc, id desc").Find(&comments).Error; err != nil {
		jsonError(w, "Failed to fetch comments", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, http.StatusOK, comments)
}

// POST /api/comments
func (h *Handler) AddCommentAPI(w http.ResponseWriter, r *http.Request) {
	_, userID := h.GetUserRoleID(r)

	var req struct {
		VideoID uint   `json:"videoId"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.VideoID == 0 || req.Content == "" {
		jsonError(w, "Video ID and content are required", http.StatusBadRequest)
		return
	}

	// Проверяем, что видео существует
	var exists int64
	if err := h.DB.Model(&models.Video{}).Where("id = ?", req.VideoID).Count(&exists).Error; err != nil {
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}
	if exists == 0 {
		jsonError(w, "Video not found", http.StatusNotFound)
		return
	}

	comment := models.Comment{
		VideoID: req.VideoID,
		UserID:  userID,
		Content: req.Content,
	}

	if err := h.DB.Create(&comment).Error; err != nil {
		log.Println("Ошибка БД при создании комментария:", err)
		jsonError(w, "Failed to add comment", http.StatusInternalServerError)
		return
	}

	// Подгружаем пользователя для ответа
	h.DB.Preload("User").First(&comment, comment.ID)

	jsonResponse(w, http.StatusCreated, map[string]interface{}{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

// DELETE /api/comments/{id} (только автор)
func (h *Handler) DeleteCommentAPI(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUintVar(mux.Vars(r)["id"])
	if !ok {
		jsonError(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}
	_, userID := h.GetUserRoleID(r)

	var comment models.Comment
	err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(w, "Comment not found or access denied", http.StatusNotFound)
			return
		}
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}

	if err := h.DB.Delete(&comment).Error; err != nil {
		jsonError(w, "Failed to delete comment", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

// --- ОЦЕНКИ ---

// POST /api/ratings
// Повторная оценка того же пользователя заменяет старую, а не добавляет новую.
func (h *Handler) SubmitRatingAPI(w http.ResponseWriter, r *http.Request) {
	_, userID := h.GetUserRoleID(r)

	var req struct {
		VideoID uint `json:"videoId"`
		Rating  int  `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.VideoID == 0 || req.Rating == 0 {
		jsonError(w, "Video ID and rating are required", http.StatusBadRequest)
		return
	}

	stats, err := h.Engagement.SubmitRating(req.VideoID, userID, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, engagement.ErrInvalidRating):
			jsonError(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		case errors.Is(err, engagement.ErrVideoNotFound):
			jsonError(w, "Video not found", http.StatusNotFound)
		default:
			log.Println("Ошибка при сохранении оценки:", err)
			jsonError(w, "Failed to submit rating", http.StatusInternalServerError)
		}
		return
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"message":       "Rating submitted successfully",
		"averageRating": stats.AverageRating,
		"ratingCount":   stats.RatingCount,
	})
}

// GET /api/ratings/video/{videoId}/user
// null, если пользователь еще не ставил оценку.
func (h *Handler) GetUserRatingAPI(w http.ResponseWriter, r *http.Request) {
	videoID, ok := parseUintVar(mux.Vars(r)["videoId"])
	if !ok {
		jsonError(w, "Invalid video ID", http.StatusBadRequest)
		return
	}
	_, userID := h.GetUserRoleID(r)

	rating, err := h.Engagement.UserRating(videoID, userID)
	if err != nil {
		jsonError(w, "Failed to fetch rating", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{"rating": rating})
}
