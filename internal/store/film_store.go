package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"filmorate/internal/domain"
)

// MemoryFilmStore реализует FilmStorage в памяти процесса.
// Все обращения к картам защищены mu; наружу отдаются только копии.
type MemoryFilmStore struct {
	mu     sync.RWMutex
	films  map[int64]*domain.Film
	likes  map[int64]map[int64]struct{} // filmID -> множество userID
	refs   ReferenceStorage
	logger *slog.Logger
}

// NewMemoryFilmStore создает пустое хранилище фильмов.
func NewMemoryFilmStore(refs ReferenceStorage, logger *slog.Logger) *MemoryFilmStore {
	return &MemoryFilmStore{
		films:  make(map[int64]*domain.Film),
		likes:  make(map[int64]map[int64]struct{}),
		refs:   refs,
		logger: logger,
	}
}

func (m *MemoryFilmStore) GetFilmByID(ctx context.Context, id int64) (*domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	film, ok := m.films[id]
	if !ok {
		m.logger.WarnContext(ctx, "Film not found by ID in memory", slog.Int64("filmID", id))
		return nil, domain.NotFoundf("film.Get", "film with id = %d not found", id)
	}
	return film.Clone(), nil
}

func (m *MemoryFilmStore) GetFilms(ctx context.Context) ([]*domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	films := make([]*domain.Film, 0, len(m.films))
	for _, film := range m.films {
		films = append(films, film.Clone())
	}
	sort.Slice(films, func(i, j int) bool { return films[i].ID < films[j].ID })
	return films, nil
}

func (m *MemoryFilmStore) AddFilm(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	genres, mpa, err := resolveReferences(ctx, m.refs, film)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := film.Clone()
	stored.ID = m.nextID()
	stored.Genres = genres
	stored.Mpa = mpa
	m.films[stored.ID] = stored
	m.logger.InfoContext(ctx, "Film added to memory store", slog.Int64("filmID", stored.ID), slog.String("name", stored.Name))
	return stored.Clone(), nil
}

func (m *MemoryFilmStore) UpdateFilm(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	genres, mpa, err := resolveReferences(ctx, m.refs, film)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.films[film.ID]
	if !ok {
		m.logger.WarnContext(ctx, "No film found to update in memory", slog.Int64("filmID", film.ID))
		return nil, domain.NotFoundf("film.Update", "film with id = %d not found", film.ID)
	}

	existing.Name = film.Name
	existing.Description = film.Description
	existing.ReleaseDate = film.ReleaseDate
	existing.Duration = film.Duration
	existing.Mpa = mpa
	if len(genres) > 0 {
		existing.Genres = genres
	}
	m.logger.InfoContext(ctx, "Film updated in memory store", slog.Int64("filmID", film.ID))
	return existing.Clone(), nil
}

func (m *MemoryFilmStore) AddLike(ctx context.Context, filmID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.films[filmID]; !ok {
		return domain.Internal("film.AddLike", fmt.Errorf("film %d does not exist", filmID))
	}
	if m.likes[filmID] == nil {
		m.likes[filmID] = make(map[int64]struct{})
	}
	m.likes[filmID][userID] = struct{}{}
	return nil
}

func (m *MemoryFilmStore) RemoveLike(ctx context.Context, filmID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.likes[filmID], userID)
	return nil
}

func (m *MemoryFilmStore) GetMostPopularFilms(ctx context.Context, count int) ([]*domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	films := make([]*domain.Film, 0, len(m.films))
	for _, film := range m.films {
		films = append(films, film)
	}
	sort.Slice(films, func(i, j int) bool {
		li, lj := len(m.likes[films[i].ID]), len(m.likes[films[j].ID])
		if li != lj {
			return li > lj
		}
		return films[i].ID < films[j].ID
	})
	if count < len(films) {
		films = films[:count]
	}

	out := make([]*domain.Film, len(films))
	for i, film := range films {
		out[i] = film.Clone()
	}
	return out, nil
}

// nextID следующий id: максимальный существующий + 1. Вызывать под m.mu.
func (m *MemoryFilmStore) nextID() int64 {
	var maxID int64
	for id := range m.films {
		maxID = max(maxID, id)
	}
	return maxID + 1
}
