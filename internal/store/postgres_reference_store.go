package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"filmorate/internal/domain"

	"github.com/jmoiron/sqlx"
)

// PostgresReferenceStore читает справочники жанров и рейтингов из PostgreSQL.
type PostgresReferenceStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresReferenceStore создает новый экземпляр PostgresReferenceStore.
func NewPostgresReferenceStore(db *sqlx.DB, logger *slog.Logger) (*PostgresReferenceStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresReferenceStore{db: db, logger: logger}, nil
}

func (s *PostgresReferenceStore) GetGenreByID(ctx context.Context, id int64) (*domain.Genre, error) {
	var genre domain.Genre
	if err := s.db.GetContext(ctx, &genre, `SELECT id, name FROM genres WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Genre not found", slog.Int64("genreID", id))
			return nil, domain.NotFoundf("genre.Get", "genre with id = %d not found", id)
		}
		s.logger.ErrorContext(ctx, "Failed to get genre from DB", slog.Int64("genreID", id), slog.String("error", err.Error()))
		return nil, domain.Internal("genre.Get", err)
	}
	return &genre, nil
}

func (s *PostgresReferenceStore) GetGenres(ctx context.Context) ([]*domain.Genre, error) {
	genres := []*domain.Genre{}
	if err := s.db.SelectContext(ctx, &genres, `SELECT id, name FROM genres ORDER BY id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list genres from DB", slog.String("error", err.Error()))
		return nil, domain.Internal("genre.List", err)
	}
	return genres, nil
}

func (s *PostgresReferenceStore) GetMpaByID(ctx context.Context, id int64) (*domain.Mpa, error) {
	var mpa domain.Mpa
	if err := s.db.GetContext(ctx, &mpa, `SELECT id, name FROM mpa_ratings WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "MPA rating not found", slog.Int64("mpaID", id))
			return nil, domain.NotFoundf("mpa.Get", "mpa rating with id = %d not found", id)
		}
		s.logger.ErrorContext(ctx, "Failed to get mpa rating from DB", slog.Int64("mpaID", id), slog.String("error", err.Error()))
		return nil, domain.Internal("mpa.Get", err)
	}
	return &mpa, nil
}

func (s *PostgresReferenceStore) GetMpaList(ctx context.Context) ([]*domain.Mpa, error) {
	list := []*domain.Mpa{}
	if err := s.db.SelectContext(ctx, &list, `SELECT id, name FROM mpa_ratings ORDER BY id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list mpa ratings from DB", slog.String("error", err.Error()))
		return nil, domain.Internal("mpa.List", err)
	}
	return list, nil
}
