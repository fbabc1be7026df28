package api

import (
	"net/http"

	"filmorate/internal/metrics"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// RouterOptions дополнительные слои роутера. Нулевое значение отключает их.
type RouterOptions struct {
	Metrics   *metrics.Metrics // nil: без /metrics и без учета запросов
	RateLimit float64          // запросов в секунду; 0 отключает ограничение
	RateBurst int
}

// NewRouter собирает маршруты API. Запрос сначала получает id, строку
// access-лога и защиту от паники, и только потом попадает в mux, поэтому
// ответы 404 и 405 тоже их получают.
func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handler.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)

	router.HandleFunc("/healthz", handler.Health).Methods(http.MethodGet)
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	// Ограничение и метрики только для API, без служебных путей.
	// Лимитер один на все разделы API.
	var apiMiddleware []mux.MiddlewareFunc
	if opts.RateLimit > 0 {
		burst := max(opts.RateBurst, 1)
		apiMiddleware = append(apiMiddleware, handler.RateLimitMiddleware(rate.NewLimiter(rate.Limit(opts.RateLimit), burst), opts.Metrics))
	}
	if opts.Metrics != nil {
		apiMiddleware = append(apiMiddleware, handler.MetricsMiddleware(opts.Metrics))
	}
	section := func(prefix string) *mux.Router {
		sub := router.PathPrefix(prefix).Subrouter()
		sub.NotFoundHandler = router.NotFoundHandler
		sub.MethodNotAllowedHandler = router.MethodNotAllowedHandler
		sub.Use(apiMiddleware...)
		return sub
	}

	// Эндпоинты для фильмов
	films := section("/films")
	films.HandleFunc("", handler.GetFilms).Methods(http.MethodGet)
	films.HandleFunc("", handler.CreateFilm).Methods(http.MethodPost)
	films.HandleFunc("", handler.UpdateFilm).Methods(http.MethodPut)
	films.HandleFunc("/popular", handler.GetPopularFilms).Methods(http.MethodGet)
	films.HandleFunc("/{id:[0-9]+}", handler.GetFilmByID).Methods(http.MethodGet)
	films.HandleFunc("/{id:[0-9]+}/like/{userId:[0-9]+}", handler.AddLike).Methods(http.MethodPut)
	films.HandleFunc("/{id:[0-9]+}/like/{userId:[0-9]+}", handler.RemoveLike).Methods(http.MethodDelete)

	// Эндпоинты для пользователей
	users := section("/users")
	users.HandleFunc("", handler.GetUsers).Methods(http.MethodGet)
	users.HandleFunc("", handler.CreateUser).Methods(http.MethodPost)
	users.HandleFunc("", handler.UpdateUser).Methods(http.MethodPut)
	users.HandleFunc("/{id:[0-9]+}", handler.GetUserByID).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}/friends", handler.GetFriends).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}/friends/common/{otherId:[0-9]+}", handler.GetCommonFriends).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}/friends/{friendId:[0-9]+}", handler.AddFriend).Methods(http.MethodPut)
	users.HandleFunc("/{id:[0-9]+}/friends/{friendId:[0-9]+}", handler.RemoveFriend).Methods(http.MethodDelete)

	// Справочники
	genres := section("/genres")
	genres.HandleFunc("", handler.GetGenres).Methods(http.MethodGet)
	genres.HandleFunc("/{id:[0-9]+}", handler.GetGenreByID).Methods(http.MethodGet)

	mpa := section("/mpa")
	mpa.HandleFunc("", handler.GetMpaList).Methods(http.MethodGet)
	mpa.HandleFunc("/{id:[0-9]+}", handler.GetMpaByID).Methods(http.MethodGet)

	return handler.requestScope(router)
}

// requestScope общие для всех запросов слои. Access-лог стоит снаружи
// RecoverMiddleware и видит код 500 после паники.
func (h *Handler) requestScope(next http.Handler) http.Handler {
	return h.RequestIDMiddleware(h.AccessLogMiddleware(h.RecoverMiddleware(next)))
}
