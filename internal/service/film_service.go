// Package service содержит бизнес-логику: проверку входных данных,
// проверку существования связанных объектов и правила дружбы и лайков.
package service

import (
	"context"
	"log/slog"

	"filmorate/internal/domain"
	"filmorate/internal/mapper"
	"filmorate/internal/store"

	"github.com/go-playground/validator/v10"
)

// DefaultPopularCount размер топа, если count не передан.
const DefaultPopularCount = 10

// FilmService операции над фильмами и лайками.
type FilmService struct {
	films     store.FilmStorage
	users     store.UserStorage
	validator *validator.Validate
	logger    *slog.Logger
}

// NewFilmService создает новый экземпляр FilmService.
func NewFilmService(films store.FilmStorage, users store.UserStorage, v *validator.Validate, logger *slog.Logger) *FilmService {
	return &FilmService{films: films, users: users, validator: v, logger: logger}
}

func (s *FilmService) GetFilmByID(ctx context.Context, id int64) (*domain.Film, error) {
	return s.films.GetFilmByID(ctx, id)
}

func (s *FilmService) GetFilms(ctx context.Context) ([]*domain.Film, error) {
	return s.films.GetFilms(ctx)
}

// AddFilm проверяет и сохраняет новый фильм.
func (s *FilmService) AddFilm(ctx context.Context, req domain.NewFilmRequest) (*domain.Film, error) {
	film := mapper.NewFilm(req)
	if err := validate(ctx, s.validator, "film.Add", film); err != nil {
		s.logger.WarnContext(ctx, "Film validation failed", slog.String("error", err.Error()))
		return nil, err
	}
	return s.films.AddFilm(ctx, film)
}

// UpdateFilm накладывает переданные поля на сохраненный фильм и проверяет результат.
func (s *FilmService) UpdateFilm(ctx context.Context, req domain.UpdateFilmRequest) (*domain.Film, error) {
	if err := validate(ctx, s.validator, "film.Update", req); err != nil {
		return nil, err
	}
	existing, err := s.films.GetFilmByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	film := mapper.ApplyFilmUpdate(existing, req)
	if err := validate(ctx, s.validator, "film.Update", film); err != nil {
		s.logger.WarnContext(ctx, "Film validation failed", slog.Int64("filmID", req.ID), slog.String("error", err.Error()))
		return nil, err
	}
	return s.films.UpdateFilm(ctx, film)
}

// AddLike ставит лайк фильму от пользователя. Оба должны существовать.
func (s *FilmService) AddLike(ctx context.Context, filmID, userID int64) error {
	if err := s.checkFilmAndUser(ctx, filmID, userID); err != nil {
		return err
	}
	return s.films.AddLike(ctx, filmID, userID)
}

// RemoveLike убирает лайк. Оба объекта должны существовать.
func (s *FilmService) RemoveLike(ctx context.Context, filmID, userID int64) error {
	if err := s.checkFilmAndUser(ctx, filmID, userID); err != nil {
		return err
	}
	return s.films.RemoveLike(ctx, filmID, userID)
}

// GetMostPopularFilms топ из count фильмов по числу лайков.
func (s *FilmService) GetMostPopularFilms(ctx context.Context, count int) ([]*domain.Film, error) {
	if count <= 0 {
		return nil, domain.Validationf("film.Popular", "count must be a positive number, got %d", count)
	}
	return s.films.GetMostPopularFilms(ctx, count)
}

func (s *FilmService) checkFilmAndUser(ctx context.Context, filmID, userID int64) error {
	if _, err := s.films.GetFilmByID(ctx, filmID); err != nil {
		return err
	}
	_, err := s.users.GetUserByID(ctx, userID)
	return err
}
