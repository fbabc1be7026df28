// Package mapper переводит тела запросов в доменные модели.
// Все правила частичного обновления собраны здесь, чтобы проверка и сохранение
// видели один и тот же результат слияния.
package mapper

import "filmorate/internal/domain"

// NewFilm строит фильм из запроса на создание. Жанры упорядочиваются по id.
func NewFilm(req domain.NewFilmRequest) *domain.Film {
	film := &domain.Film{
		Name:        req.Name,
		Description: req.Description,
		ReleaseDate: req.ReleaseDate,
		Duration:    req.Duration,
		Genres:      domain.SortGenres(req.Genres),
	}
	if req.Mpa != nil {
		film.Mpa = &domain.Mpa{ID: req.Mpa.ID}
	}
	return film
}

// ApplyFilmUpdate переносит в film только переданные в запросе поля.
// film изменяется на месте и возвращается для удобства.
func ApplyFilmUpdate(film *domain.Film, req domain.UpdateFilmRequest) *domain.Film {
	if req.HasName() {
		film.Name = *req.Name
	}
	if req.HasDescription() {
		film.Description = *req.Description
	}
	if req.HasReleaseDate() {
		film.ReleaseDate = *req.ReleaseDate
	}
	if req.HasDuration() {
		film.Duration = *req.Duration
	}
	if req.HasGenres() {
		film.Genres = domain.SortGenres(req.Genres)
	}
	if req.HasMpa() {
		film.Mpa = &domain.Mpa{ID: req.Mpa.ID}
	}
	return film
}
