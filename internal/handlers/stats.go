package handlers

import (
	"log"
	"net/http"

	"github.com/s/videoShare/internal/models"
)

// GET /api/stats
// Сводная статистика платформы для дашборда: несколько независимых
// агрегатных запросов, собранных в один ответ.
func (h *Handler) GetStatsAPI(w http.ResponseWriter, r *http.Request) {
	var activeCreators, totalVideos, totalComments int64
	var videoViews int64

	if err := h.DB.Model(&models.User{}).Where("role_id = ?", models.RoleCreator).Count(&activeCreators).Error; err != nil {
		log.Println("Ошибка статистики:", err)
		jsonError(w, "Server error", http.StatusInternalServerError)
		return
	}

	if err := h.DB.Model(&models.Video{}).Count(&totalVideos).Error; err != nil {
		jsonError(w, "Server error", http.StatusInternalServerError)
		return
	}

	var views struct{ Total int64 }
	if err := h.DB.Model(&models.Video{}).Select("COALESCE(SUM(views), 0) AS total").Scan(&views).Error; err != nil {
		jsonError(w, "Server error", http.StatusInternalServerError)
		return
	}
	videoViews = views.Total

	if err := h.DB.Model(&models.Comment{}).Count(&totalComments).Error; err != nil {
		jsonError(w, "Server error", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]int64{
		"activeCreators": activeCreators,
		"totalVideos":    totalVideos,
		"videoViews":     videoViews,
		"comments":       totalComments,
	})
}
