package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"

	"github.com/s/videoShare/internal/database"
	"github.com/s/videoShare/internal/handlers"
	"github.com/s/videoShare/internal/middleware"
	"github.com/s/videoShare/internal/models"
	"github.com/s/videoShare/internal/storage"
)

func setupTestServer(t *testing.T) (*mux.Router, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	store := sessions.NewCookieStore([]byte("test-key"))
	h := handlers.NewHandler(db, store, nil, t.TempDir())
	authMiddleware := middleware.AuthRequired(h)
	creatorMiddleware := middleware.RequiredRole(h, models.RoleCreator)

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/create-creator", creatorMiddleware(h.CreateCreator)).Methods("POST")
	r.HandleFunc("/api/videos", h.ListVideos).Methods("GET")
	r.HandleFunc("/api/videos", creatorMiddleware(h.UploadVideo)).Methods("POST")
	r.HandleFunc("/api/videos/{id}", h.GetVideo).Methods("GET")
	r.HandleFunc("/api/comments/video/{videoId}", h.GetCommentsAPI).Methods("GET")
	r.HandleFunc("/api/ratings", authMiddleware(h.SubmitRatingAPI)).Methods("POST")
	r.HandleFunc("/api/stats", h.GetStatsAPI).Methods("GET")
	return r, db
}

// sessionCookie выдает cookie с уже сохраненной сессией пользователя,
// как будто он залогинился через /api/auth/login
func sessionCookie(t *testing.T, userID uint) *http.Cookie {
	t.Helper()

	store := sessions.NewCookieStore([]byte("test-key"))
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	session, _ := store.Get(req, "session")
	session.Values["user_id"] = userID
	if err := session.Save(req, rec); err != nil {
		t.Fatalf("failed to save session: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}
	return cookies[0]
}

func seedCatalog(t *testing.T, db *gorm.DB) (models.User, []models.Video) {
	t.Helper()
	creator := models.User{Username: "creator", Email: "creator@example.com", RoleID: models.RoleCreator}
	if err := db.Create(&creator).Error; err != nil {
		t.Fatalf("failed to create creator: %v", err)
	}
	var videos []models.Video
	for _, title := range []string{"First", "Second"} {
		v := models.Video{
			Title: title, Filename: "video-" + title + ".mp4", Publisher: "StudioA",
			Producer: "producer", Genre: "action", AgeRating: "16+", CreatorID: creator.ID,
		}
		if err := db.Create(&v).Error; err != nil {
			t.Fatalf("failed to create video: %v", err)
		}
		videos = append(videos, v)
	}
	return creator, videos
}

func TestListVideosEndpoint(t *testing.T) {
	router, db := setupTestServer(t)
	seedCatalog(t, db)

	req := httptest.NewRequest("GET", "/api/videos?page=1&limit=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Videos     []map[string]interface{} `json:"videos"`
		Pagination struct {
			TotalItems int  `json:"totalItems"`
			HasNext    bool `json:"hasNext"`
			HasPrev    bool `json:"hasPrev"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Videos) != 1 {
		t.Errorf("Expected 1 video on the page, got %d", len(resp.Videos))
	}
	if resp.Pagination.TotalItems != 2 {
		t.Errorf("Expected totalItems 2, got %d", resp.Pagination.TotalItems)
	}
	if !resp.Pagination.HasNext || resp.Pagination.HasPrev {
		t.Errorf("Expected hasNext=true hasPrev=false, got %+v", resp.Pagination)
	}

	// Производные поля присутствуют в каждом элементе
	if resp.Videos[0]["average_rating"] != "0.0" {
		t.Errorf("Expected average_rating '0.0', got %v", resp.Videos[0]["average_rating"])
	}
	if resp.Videos[0]["creator_name"] != "creator" {
		t.Errorf("Expected creator_name 'creator', got %v", resp.Videos[0]["creator_name"])
	}
}

func TestGetVideoEndpoint_NotFound(t *testing.T) {
	router, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/api/videos/9999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestGetVideoEndpoint_CountsView(t *testing.T) {
	router, db := setupTestServer(t)
	_, videos := seedCatalog(t, db)

	req := httptest.NewRequest("GET", "/api/videos/"+strconv.FormatUint(uint64(videos[0].ID), 10), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var video models.Video
	if err := db.First(&video, videos[0].ID).Error; err != nil {
		t.Fatalf("failed to reload video: %v", err)
	}
	if video.Views != 1 {
		t.Errorf("Expected views 1 after detail fetch, got %d", video.Views)
	}
}

func TestSubmitRatingEndpoint_Unauthorized(t *testing.T) {
	router, db := setupTestServer(t)
	_, videos := seedCatalog(t, db)

	body, _ := json.Marshal(map[string]interface{}{"videoId": videos[0].ID, "rating": 5})
	req := httptest.NewRequest("POST", "/api/ratings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without session, got %d", rec.Code)
	}
}

func TestCreateCreatorEndpoint(t *testing.T) {
	router, db := setupTestServer(t)
	admin, _ := seedCatalog(t, db)

	body, _ := json.Marshal(map[string]string{
		"username": "newcreator",
		"email":    "newcreator@example.com",
		"password": "secret123",
		"bio":      "Makes videos",
	})
	req := httptest.NewRequest("POST", "/api/auth/create-creator", bytes.NewReader(body))
	req.AddCookie(sessionCookie(t, admin.ID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created models.User
	if err := db.Where("username = ?", "newcreator").First(&created).Error; err != nil {
		t.Fatalf("failed to load created account: %v", err)
	}
	if created.RoleID != models.RoleCreator {
		t.Errorf("Expected role %d (creator), got %d", models.RoleCreator, created.RoleID)
	}
	if created.PasswordHash == "" || created.PasswordHash == "secret123" {
		t.Error("Expected password to be stored hashed")
	}
}

func TestCreateCreatorEndpoint_ForbiddenForConsumer(t *testing.T) {
	router, db := setupTestServer(t)

	consumer := models.User{Username: "viewer", Email: "viewer@example.com", RoleID: models.RoleConsumer}
	if err := db.Create(&consumer).Error; err != nil {
		t.Fatalf("failed to create consumer: %v", err)
	}

	body, _ := json.Marshal(map[string]string{
		"username": "sneaky",
		"email":    "sneaky@example.com",
		"password": "secret123",
	})
	req := httptest.NewRequest("POST", "/api/auth/create-creator", bytes.NewReader(body))
	req.AddCookie(sessionCookie(t, consumer.ID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for consumer, got %d", rec.Code)
	}

	var count int64
	db.Model(&models.User{}).Where("username = ?", "sneaky").Count(&count)
	if count != 0 {
		t.Errorf("Expected no account to be created, found %d", count)
	}
}

func uploadRequest(t *testing.T, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field %s: %v", key, err)
		}
	}
	part, err := mw.CreateFormFile("video", filename)
	if err != nil {
		t.Fatalf("failed to create file part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write file content: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/videos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadVideoEndpoint(t *testing.T) {
	router, db := setupTestServer(t)
	creator, _ := seedCatalog(t, db)

	fields := map[string]string{
		"title": "Uploaded", "publisher": "StudioB", "producer": "producer",
		"genre": "drama", "ageRating": "12+",
	}
	req := uploadRequest(t, fields, "clip.mp4", []byte("fake video payload"))
	req.AddCookie(sessionCookie(t, creator.ID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var video models.Video
	if err := db.Where("title = ?", "Uploaded").First(&video).Error; err != nil {
		t.Fatalf("failed to load uploaded video: %v", err)
	}
	if video.CreatorID != creator.ID {
		t.Errorf("Expected creator %d, got %d", creator.ID, video.CreatorID)
	}
	if video.FileSize != int64(len("fake video payload")) {
		t.Errorf("Expected file size %d, got %d", len("fake video payload"), video.FileSize)
	}
}

func TestUploadVideoEndpoint_RejectsOversizedBody(t *testing.T) {
	router, db := setupTestServer(t)
	creator, _ := seedCatalog(t, db)

	fields := map[string]string{
		"title": "Huge", "publisher": "StudioB", "producer": "producer",
		"genre": "drama", "ageRating": "12+",
	}
	req := uploadRequest(t, fields, "huge.mp4", make([]byte, storage.MaxUploadSize+1))
	req.AddCookie(sessionCookie(t, creator.ID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for oversized upload, got %d", rec.Code)
	}

	var count int64
	db.Model(&models.Video{}).Where("title = ?", "Huge").Count(&count)
	if count != 0 {
		t.Errorf("Expected no video record for oversized upload, found %d", count)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router, db := setupTestServer(t)
	seedCatalog(t, db)

	req := httptest.NewRequest("GET", "/api/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var stats map[string]int64
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats["activeCreators"] != 1 {
		t.Errorf("Expected activeCreators 1, got %d", stats["activeCreators"])
	}
	if stats["totalVideos"] != 2 {
		t.Errorf("Expected totalVideos 2, got %d", stats["totalVideos"])
	}
}
