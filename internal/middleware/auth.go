package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/s/videoShare/internal/handlers"
	"github.com/s/videoShare/internal/models"
)

func jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// AuthRequired пускает дальше только аутентифицированных пользователей.
func AuthRequired(h *handlers.Handler) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			_, isAuthenticated := h.GetAuthenticatedUserID(r)
			if !isAuthenticated {
				jsonError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

// RequiredRole создает Middleware, требующее определенного RoleID.
func RequiredRole(h *handlers.Handler, requiredRoleID uint) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			// 1. Проверка Аутентификации
			userID, isAuthenticated := h.GetAuthenticatedUserID(r)

			if !isAuthenticated {
				jsonError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// 2. Получение данных пользователя для проверки Роли
			var user models.User
			if err := h.DB.First(&user, userID).Error; err != nil {
				jsonError(w, "User not found or database error", http.StatusUnauthorized)
				return
			}

			// 3. Динамическая Проверка RoleID
			if user.RoleID != requiredRoleID {
				jsonError(w, "Access denied: insufficient permissions", http.StatusForbidden)
				return
			}

			// 4. Если все проверки пройдены, вызываем следующий обработчик
			next.ServeHTTP(w, r)
		}
	}
}
