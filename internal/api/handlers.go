package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"filmorate/internal/domain"

	"github.com/gorilla/mux"
)

// Категории ошибок в теле ответа.
const (
	categoryValidation = "validation error"
	categoryNotFound   = "not found"
	categoryInternal   = "internal server error"
	categoryRateLimit  = "too many requests"
)

// ErrorResponse тело ответа с ошибкой.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

// FilmService то, что нужно обработчикам от сервиса фильмов.
type FilmService interface {
	GetFilmByID(ctx context.Context, id int64) (*domain.Film, error)
	GetFilms(ctx context.Context) ([]*domain.Film, error)
	AddFilm(ctx context.Context, req domain.NewFilmRequest) (*domain.Film, error)
	UpdateFilm(ctx context.Context, req domain.UpdateFilmRequest) (*domain.Film, error)
	AddLike(ctx context.Context, filmID, userID int64) error
	RemoveLike(ctx context.Context, filmID, userID int64) error
	GetMostPopularFilms(ctx context.Context, count int) ([]*domain.Film, error)
}

// UserService то, что нужно обработчикам от сервиса пользователей.
type UserService interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUsers(ctx context.Context) ([]*domain.User, error)
	AddUser(ctx context.Context, req domain.NewUserRequest) (*domain.User, error)
	UpdateUser(ctx context.Context, req domain.UpdateUserRequest) (*domain.User, error)
	AddFriend(ctx context.Context, userID, friendID int64) error
	RemoveFriend(ctx context.Context, userID, friendID int64) error
	GetUserFriends(ctx context.Context, userID int64) ([]*domain.User, error)
	GetCommonFriends(ctx context.Context, userID, otherID int64) ([]*domain.User, error)
}

// GenreService справочник жанров.
type GenreService interface {
	GetGenreByID(ctx context.Context, id int64) (*domain.Genre, error)
	GetGenres(ctx context.Context) ([]*domain.Genre, error)
}

// MpaService справочник рейтингов.
type MpaService interface {
	GetMpaByID(ctx context.Context, id int64) (*domain.Mpa, error)
	GetMpaList(ctx context.Context) ([]*domain.Mpa, error)
}

// HealthCheck проверка зависимостей для /healthz, например ping базы.
type HealthCheck func(ctx context.Context) error

// Handler содержит зависимости для HTTP обработчиков.
type Handler struct {
	films  FilmService
	users  UserService
	genres GenreService
	mpa    MpaService
	health HealthCheck
	logger *slog.Logger
}

// NewHandler создает новый экземпляр Handler. health может быть nil.
func NewHandler(films FilmService, users UserService, genres GenreService, mpa MpaService, health HealthCheck, logger *slog.Logger) *Handler {
	return &Handler{
		films:  films,
		users:  users,
		genres: genres,
		mpa:    mpa,
		health: health,
		logger: logger,
	}
}

// --- Вспомогательные функции ---

func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, category, description string) {
	h.respondJSON(w, r, status, ErrorResponse{Error: category, Description: description})
}

// respondServiceError переводит ошибку сервиса в HTTP статус.
// Причина внутренних ошибок только логируется.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, domain.ErrValidation):
		h.logger.WarnContext(ctx, "Request rejected", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, categoryValidation, domain.Message(err))
	case errors.Is(err, domain.ErrNotFound):
		h.logger.WarnContext(ctx, "Requested object not found", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusNotFound, categoryNotFound, domain.Message(err))
	default:
		h.logger.ErrorContext(ctx, "Request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, categoryInternal, "internal server error")
	}
}

// decodeJSON читает тело запроса в dst. При ошибке ответ уже отправлен.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, categoryValidation, "invalid request payload")
		return false
	}
	return true
}

// pathID достает числовой параметр пути. При ошибке ответ уже отправлен.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, categoryValidation, "invalid "+name+": "+raw)
		return 0, false
	}
	return id, true
}

// --- Служебные обработчики ---

// Health отвечает 200, если зависимости доступны, иначе 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.ErrorContext(r.Context(), "Health check failed", slog.String("error", err.Error()))
			h.respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound ответ для неизвестных путей.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusNotFound, categoryNotFound, "no route for "+r.Method+" "+r.URL.Path)
}

// MethodNotAllowed ответ для известного пути с неподходящим методом.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusMethodNotAllowed, categoryValidation, "method "+r.Method+" is not allowed for "+r.URL.Path)
}
