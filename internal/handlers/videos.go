package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"

	"github.com/s/videoShare/internal/catalog"
	"github.com/s/videoShare/internal/engagement"
	"github.com/s/videoShare/internal/models"
	"github.com/s/videoShare/internal/storage"
)

// GET /api/videos (публичный список с фильтрами и пагинацией)
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit < 1 {
		limit = catalog.DefaultPageSize
	}

	filters := catalog.Filters{
		Genre:     query.Get("genre"),
		AgeRating: query.Get("ageRating"),
		Publisher: query.Get("publisher"),
		Search:    query.Get("search"),
	}

	items, pagination, err := h.Catalog.List(filters, page, limit)
	if err != nil {
		log.Println("Ошибка при получении списка видео:", err)
		jsonError(w, "Failed to fetch videos", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"videos":     items,
		"pagination": pagination,
	})
}

// GET /api/videos/{id}
// Каждый успешный запрос засчитывается как просмотр.
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUintVar(mux.Vars(r)["id"])
	if !ok {
		jsonError(w, "Invalid video ID", http.StatusBadRequest)
		return
	}

	item, err := h.Catalog.Get(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			jsonError(w, "Video not found", http.StatusNotFound)
			return
		}
		log.Println("Ошибка при получении видео:", err)
		jsonError(w, "Failed to fetch video", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// POST /api/videos (только для создателей, multipart)
func (h *Handler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	_, userID := h.GetUserRoleID(r)

	// Обрезаем тело запроса до лимита еще до разбора формы,
	// иначе слишком большой файл успеет полностью попасть на диск
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize)

	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		jsonError(w, "Video file is too large or the form is invalid", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		jsonError(w, "Video file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	description := r.FormValue("description")
	publisher := r.FormValue("publisher")
	producer := r.FormValue("producer")
	genre := r.FormValue("genre")
	ageRating := r.FormValue("ageRating")

	if title == "" || publisher == "" || producer == "" || genre == "" || ageRating == "" {
		jsonError(w, "Title, publisher, producer, genre, and age rating are required", http.StatusBadRequest)
		return
	}

	saved, err := storage.SaveVideoFile(h.UploadDir, file, header)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedFormat) {
			jsonError(w, "Only video files are allowed", http.StatusBadRequest)
			return
		}
		log.Println("Ошибка сохранения файла:", err)
		jsonError(w, "Failed to upload video", http.StatusInternalServerError)
		return
	}

	metadataJSON, _ := json.Marshal(map[string]string{
		"original_name": saved.OriginalName,
		"content_type":  saved.ContentType,
	})

	video := models.Video{
		Title:       title,
		Description: description,
		Filename:    saved.Filename,
		FilePath:    saved.Path,
		FileSize:    saved.Size,
		Publisher:   publisher,
		Producer:    producer,
		Genre:       genre,
		AgeRating:   ageRating,
		CreatorID:   userID,
		Metadata:    datatypes.JSON(metadataJSON),
	}

	if err := h.DB.Create(&video).Error; err != nil {
		os.Remove(saved.Path)
		log.Println("Ошибка БД при создании видео:", err)
		jsonError(w, "Failed to upload video", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]interface{}{
		"message": "Video uploaded successfully",
		"video":   video,
	})
}

// PUT /api/videos/{id} (только владелец)
func (h *Handler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUintVar(mux.Vars(r)["id"])
	if !ok {
		jsonError(w, "Invalid video ID", http.StatusBadRequest)
		return
	}
	_, userID := h.GetUserRoleID(r)

	var video models.Video
	if err := h.DB.Where("id = ? AND creator_id = ?", id, userID).First(&video).Error; err != nil {
		jsonError(w, "Video not found or access denied", http.StatusNotFound)
		return
	}

	// Непереданные поля остаются как есть
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Publisher   *string `json:"publisher"`
		Producer    *string `json:"producer"`
		Genre       *string `json:"genre"`
		AgeRating   *string `json:"ageRating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil && *req.Title != "" {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Publisher != nil && *req.Publisher != "" {
		updates["publisher"] = *req.Publisher
	}
	if req.Producer != nil && *req.Producer != "" {
		updates["producer"] = *req.Producer
	}
	if req.Genre != nil && *req.Genre != "" {
		updates["genre"] = *req.Genre
	}
	if req.AgeRating != nil && *req.AgeRating != "" {
		updates["age_rating"] = *req.AgeRating
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&video).Updates(updates).Error; err != nil {
			jsonError(w, "Failed to update video", http.StatusInternalServerError)
			return
		}
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "Video updated successfully"})
}

// DELETE /api/videos/{id} (только владелец)
// Удаление каскадом забирает комментарии, оценки и лайки.
func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUintVar(mux.Vars(r)["id"])
	if !ok {
		jsonError(w, "Invalid video ID", http.StatusBadRequest)
		return
	}
	_, userID := h.GetUserRoleID(r)

	video, err := h.Catalog.Delete(id, userID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			jsonError(w, "Video not found or access denied", http.StatusNotFound)
			return
		}
		log.Println("Ошибка при удалении видео:", err)
		jsonError(w, "Failed to delete video", http.StatusInternalServerError)
		return
	}

	// Файл убираем после успешного удаления из БД
	if video.FilePath != "" {
		if err := os.Remove(video.FilePath); err != nil && !os.IsNotExist(err) {
			log.Println("Не удалось удалить файл видео:", err)
		}
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "Video deleted successfully"})
}

// GET /api/videos/creator/my-videos (только для создателей)
func (h *Handler) MyVideos(w http.ResponseWriter, r *http.Request) {
	_, userID := h.GetUserRoleID(r)

	items, err := h.Catalog.ListByCreator(userID)
	if err != nil {
		log.Println("Ошибка при получении видео создателя:", err)
		jsonError(w, "Failed to fetch videos", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, http.StatusOK, items)
}

// POST /api/videos/{id}/like
// Чистый toggle: повторный вызов возвращает состояние обратно.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUintVar(mux.Vars(r)["id"])
	if !ok {
		jsonError(w, "Invalid video ID", http.StatusBadRequest)
		return
	}
	_, userID := h.GetUserRoleID(r)

	status, err := h.Engagement.ToggleLike(id, userID)
	if err != nil {
		if errors.Is(err, engagement.ErrVideoNotFound) {
			jsonError(w, "Video not found", http.StatusNotFound)
			return
		}
		log.Println("Ошибка при переключении лайка:", err)
		jsonError(w, "Failed to toggle like", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, http.StatusOK, status)
}

// GET /api/videos/{id}/like-status
func (h *Handler) LikeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUintVar(mux.Vars(r)["id"])
	if !ok {
		jsonError(w, "Invalid video ID", http.StatusBadRequest)
		return
	}
	_, userID := h.GetUserRoleID(r)

	liked, err := h.Engagement.IsLiked(id, userID)
	if err != nil {
		jsonError(w, "Failed to get like status", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]bool{"liked": liked})
}
