package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"

	"github.com/s/videoShare/internal/catalog"
	"github.com/s/videoShare/internal/engagement"
	"github.com/s/videoShare/internal/models"

	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Store      *sessions.CookieStore
	Config     *oauth2.Config
	Catalog    *catalog.Service
	Engagement *engagement.Service
	UploadDir  string
}

func NewHandler(db *gorm.DB, store *sessions.CookieStore, config *oauth2.Config, uploadDir string) *Handler {
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	return &Handler{
		DB:         db,
		Store:      store,
		Config:     config,
		Catalog:    catalog.NewService(db),
		Engagement: engagement.NewService(db),
		UploadDir:  uploadDir,
	}
}

func (h *Handler) GetAuthenticatedUserID(r *http.Request) (uint, bool) {
	session, _ := h.Store.Get(r, "session")

	userIDValue := session.Values["user_id"]
	userID, ok := userIDValue.(uint)

	return userID, ok && userID != 0
}

func (h *Handler) GetUserRoleID(r *http.Request) (uint, uint) {
	session, _ := h.Store.Get(r, "session")

	userIDvalue := session.Values["user_id"]
	userID, _ := userIDvalue.(uint)

	roleID := models.RoleGuest

	if userID != 0 {
		var user models.User
		err := h.DB.Select("role_id").First(&user, userID).Error

		if err == nil {
			roleID = user.RoleID
		}
	}

	return roleID, userID
}

func jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func parseUintVar(s string) (uint, bool) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}
