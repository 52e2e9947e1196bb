package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"

	"github.com/s/videoShare/internal/auth"
	"github.com/s/videoShare/internal/database"
	"github.com/s/videoShare/internal/handlers"
	"github.com/s/videoShare/internal/middleware"
	"github.com/s/videoShare/internal/models"
)

func main() {
	// ---------------------------
	// 0. Загрузка переменных окружения
	// ---------------------------
	err := godotenv.Load()
	if err != nil {
		log.Println("Предупреждение: Не удалось загрузить файл .env. Используются системные переменные.")
	}

	// ---------------------------
	// 1. Подключаем GORM (База данных)
	// ---------------------------
	db, err := database.Connect()
	if err != nil {
		log.Fatal("Ошибка подключения к БД:", err)
	}

	// ---------------------------
	// 2. Делаем миграции
	// ---------------------------
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("Ошибка миграции:", err)
	}

	// ---------------------------
	// 3. Запускаем сиды (роли + дефолтный создатель)
	// ---------------------------
	if err := database.Seed(db); err != nil {
		log.Println("Ошибка сидов (возможно, данные уже есть):", err)
	}

	// ---------------------------
	// 4. Настраиваем Google OAuth
	// ---------------------------
	clientId := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")

	oauthConfig := auth.InitGoogleOAuthConfig(clientId, clientSecret, redirectURL)
	if clientId == "" || clientSecret == "" || redirectURL == "" {
		log.Println("Внимание: Переменные GOOGLE_... не установлены, вход через Google отключен.")
	}

	// ---------------------------
	// 5. Настройка сессий
	// ---------------------------
	sessionKey := os.Getenv("SESSION_KEY")
	if sessionKey == "" {
		sessionKey = "super-secret-default-key" // Только для разработки!
		log.Println("Внимание: SESSION_KEY не задан, используется дефолтный.")
	}
	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false, // Поставьте true, если используете HTTPS
	}

	// ---------------------------
	// 6. Инициализация Хендлеров
	// ---------------------------
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	h := handlers.NewHandler(db, store, oauthConfig, uploadDir)

	authMiddleware := middleware.AuthRequired(h)
	creatorMiddleware := middleware.RequiredRole(h, models.RoleCreator)

	// ---------------------------
	// 7. Роутинг с Gorilla Mux
	// ---------------------------
	r := mux.NewRouter()

	// --- Загруженные видеофайлы ---
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	// --- Аутентификация ---
	r.HandleFunc("/api/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/api/auth/create-creator", creatorMiddleware(h.CreateCreator)).Methods("POST")
	r.HandleFunc("/api/auth/logout", h.HandleLogout).Methods("GET", "POST")
	r.HandleFunc("/api/auth/google/login", h.HandleGoogleLogin).Methods("GET")
	r.HandleFunc("/api/auth/google/callback", h.HandleGoogleCallback).Methods("GET")

	// --- Пользователи ---
	r.HandleFunc("/api/users/profile", authMiddleware(h.HandleProfile)).Methods("GET")
	r.HandleFunc("/api/users/creators", authMiddleware(h.ListCreators)).Methods("GET")

	// --- Видео ---
	// my-videos регистрируем раньше {id}, иначе mux примет "creator" за id
	r.HandleFunc("/api/videos/creator/my-videos", creatorMiddleware(h.MyVideos)).Methods("GET")
	r.HandleFunc("/api/videos", h.ListVideos).Methods("GET")
	r.HandleFunc("/api/videos", creatorMiddleware(h.UploadVideo)).Methods("POST")
	r.HandleFunc("/api/videos/{id}", h.GetVideo).Methods("GET")
	r.HandleFunc("/api/videos/{id}", creatorMiddleware(h.UpdateVideo)).Methods("PUT")
	r.HandleFunc("/api/videos/{id}", creatorMiddleware(h.DeleteVideo)).Methods("DELETE")
	r.HandleFunc("/api/videos/{id}/like", authMiddleware(h.ToggleLike)).Methods("POST")
	r.HandleFunc("/api/videos/{id}/like-status", authMiddleware(h.LikeStatus)).Methods("GET")

	// --- Комментарии ---
	r.HandleFunc("/api/comments/video/{videoId}", h.GetCommentsAPI).Methods("GET")
	r.HandleFunc("/api/comments", authMiddleware(h.AddCommentAPI)).Methods("POST")
	r.HandleFunc("/api/comments/{id}", authMiddleware(h.DeleteCommentAPI)).Methods("DELETE")

	// --- Оценки ---
	r.HandleFunc("/api/ratings", authMiddleware(h.SubmitRatingAPI)).Methods("POST")
	r.HandleFunc("/api/ratings/video/{videoId}/user", authMiddleware(h.GetUserRatingAPI)).Methods("GET")

	// --- Статистика ---
	r.HandleFunc("/api/stats", h.GetStatsAPI).Methods("GET")

	// ---------------------------
	// 8. Запуск сервера
	// ---------------------------
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	corsHandler := corsMiddleware(r)
	server := &http.Server{
		Addr:    ":" + port,
		Handler: corsHandler,
	}

	go func() {
		fmt.Printf("Сервер запущен: http://localhost:%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка сервера:", err)
		}
	}()

	// Ждем сигнал и гасим сервер, не обрывая начатые запросы
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Останавливаем сервер...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Ошибка остановки сервера:", err)
	}
	log.Println("Сервер остановлен.")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Разрешаем запросы с любого источника (для разработки)
		// В продакшене лучше ставить конкретный домен фронтенда
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
