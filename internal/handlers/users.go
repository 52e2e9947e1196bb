package handlers

import (
	"net/http"

	"github.com/s/videoShare/internal/models"
)

// GET /api/users/profile
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	_, userID := h.GetUserRoleID(r)

	var user models.User
	if err := h.DB.Preload("Role").First(&user, userID).Error; err != nil {
		jsonError(w, "User not found", http.StatusNotFound)
		return
	}

	jsonResponse(w, http.StatusOK, user)
}

// GET /api/users/creators
func (h *Handler) ListCreators(w http.ResponseWriter, r *http.Request) {
	var creators []models.User
	if err := h.DB.Where("role_id = ?", models.RoleCreator).Find(&creators).Error; err != nil {
		jsonError(w, "Failed to fetch creators", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, http.StatusOK, creators)
}
