package service

import (
	"context"

	"filmorate/internal/domain"
	"filmorate/internal/store"
)

// GenreService чтение справочника жанров.
type GenreService struct {
	genres store.GenreStorage
}

func NewGenreService(genres store.GenreStorage) *GenreService {
	return &GenreService{genres: genres}
}

func (s *GenreService) GetGenreByID(ctx context.Context, id int64) (*domain.Genre, error) {
	return s.genres.GetGenreByID(ctx, id)
}

func (s *GenreService) GetGenres(ctx context.Context) ([]*domain.Genre, error) {
	return s.genres.GetGenres(ctx)
}

// MpaService чтение справочника рейтингов MPA.
type MpaService struct {
	mpa store.MpaStorage
}

func NewMpaService(mpa store.MpaStorage) *MpaService {
	return &MpaService{mpa: mpa}
}

func (s *MpaService) GetMpaByID(ctx context.Context, id int64) (*domain.Mpa, error) {
	return s.mpa.GetMpaByID(ctx, id)
}

func (s *MpaService) GetMpaList(ctx context.Context) ([]*domain.Mpa, error) {
	return s.mpa.GetMpaList(ctx)
}
