package store

import (
	"context"
	"log/slog"

	"filmorate/internal/domain"
)

// DefaultGenres справочник жанров, которым заполняется база.
var DefaultGenres = []domain.Genre{
	{ID: 1, Name: "Comedy"},
	{ID: 2, Name: "Drama"},
	{ID: 3, Name: "Cartoon"},
	{ID: 4, Name: "Thriller"},
	{ID: 5, Name: "Documentary"},
	{ID: 6, Name: "Action"},
}

// DefaultMpa справочник рейтингов MPA.
var DefaultMpa = []domain.Mpa{
	{ID: 1, Name: "G"},
	{ID: 2, Name: "PG"},
	{ID: 3, Name: "PG-13"},
	{ID: 4, Name: "R"},
	{ID: 5, Name: "NC-17"},
}

// MemoryReferenceStore неизменяемые справочники в памяти.
// Данные только читаются, поэтому блокировка не нужна.
type MemoryReferenceStore struct {
	genres []domain.Genre
	mpa    []domain.Mpa
	logger *slog.Logger
}

// NewMemoryReferenceStore создает справочники со значениями по умолчанию.
func NewMemoryReferenceStore(logger *slog.Logger) *MemoryReferenceStore {
	return &MemoryReferenceStore{genres: DefaultGenres, mpa: DefaultMpa, logger: logger}
}

func (s *MemoryReferenceStore) GetGenreByID(ctx context.Context, id int64) (*domain.Genre, error) {
	for _, g := range s.genres {
		if g.ID == id {
			genre := g
			return &genre, nil
		}
	}
	s.logger.WarnContext(ctx, "Genre not found", slog.Int64("genreID", id))
	return nil, domain.NotFoundf("genre.Get", "genre with id = %d not found", id)
}

func (s *MemoryReferenceStore) GetGenres(ctx context.Context) ([]*domain.Genre, error) {
	out := make([]*domain.Genre, 0, len(s.genres))
	for _, g := range s.genres {
		genre := g
		out = append(out, &genre)
	}
	return out, nil
}

func (s *MemoryReferenceStore) GetMpaByID(ctx context.Context, id int64) (*domain.Mpa, error) {
	for _, m := range s.mpa {
		if m.ID == id {
			mpa := m
			return &mpa, nil
		}
	}
	s.logger.WarnContext(ctx, "MPA rating not found", slog.Int64("mpaID", id))
	return nil, domain.NotFoundf("mpa.Get", "mpa rating with id = %d not found", id)
}

func (s *MemoryReferenceStore) GetMpaList(ctx context.Context) ([]*domain.Mpa, error) {
	out := make([]*domain.Mpa, 0, len(s.mpa))
	for _, m := range s.mpa {
		mpa := m
		out = append(out, &mpa)
	}
	return out, nil
}

// resolveReferences проверяет, что рейтинг и все жанры фильма существуют,
// и возвращает их с заполненными названиями.
func resolveReferences(ctx context.Context, refs ReferenceStorage, film *domain.Film) ([]domain.Genre, *domain.Mpa, error) {
	var mpa *domain.Mpa
	if film.Mpa != nil {
		m, err := refs.GetMpaByID(ctx, film.Mpa.ID)
		if err != nil {
			return nil, nil, err
		}
		mpa = m
	}
	genres := make([]domain.Genre, 0, len(film.Genres))
	for _, id := range film.GenreIDs() {
		g, err := refs.GetGenreByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		genres = append(genres, *g)
	}
	return genres, mpa, nil
}
