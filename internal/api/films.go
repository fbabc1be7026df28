package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"filmorate/internal/domain"
	"filmorate/internal/service"
)

// GetFilms возвращает все фильмы.
func (h *Handler) GetFilms(w http.ResponseWriter, r *http.Request) {
	films, err := h.films.GetFilms(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}

// GetFilmByID возвращает фильм по id.
func (h *Handler) GetFilmByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	film, err := h.films.GetFilmByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, film)
}

// CreateFilm обрабатывает запрос на создание нового фильма.
func (h *Handler) CreateFilm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req domain.NewFilmRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.logger.DebugContext(ctx, "Decoded film creation request", slog.Any("request_data", req))

	film, err := h.films.AddFilm(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.logger.InfoContext(ctx, "Film created", slog.Int64("filmID", film.ID))
	h.respondJSON(w, r, http.StatusCreated, film)
}

// UpdateFilm частично обновляет фильм; id берется из тела.
func (h *Handler) UpdateFilm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req domain.UpdateFilmRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	film, err := h.films.UpdateFilm(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.logger.InfoContext(ctx, "Film updated", slog.Int64("filmID", film.ID))
	h.respondJSON(w, r, http.StatusOK, film)
}

// AddLike ставит лайк фильму.
func (h *Handler) AddLike(w http.ResponseWriter, r *http.Request) {
	filmID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	if err := h.films.AddLike(r.Context(), filmID, userID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

// RemoveLike убирает лайк.
func (h *Handler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	filmID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	if err := h.films.RemoveLike(r.Context(), filmID, userID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

// GetPopularFilms топ фильмов по лайкам, ?count=N (по умолчанию 10).
func (h *Handler) GetPopularFilms(w http.ResponseWriter, r *http.Request) {
	count := service.DefaultPopularCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, categoryValidation, "count must be an integer, got "+strconv.Quote(raw))
			return
		}
		count = n
	}
	films, err := h.films.GetMostPopularFilms(r.Context(), count)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}
