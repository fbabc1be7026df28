package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"filmorate/internal/domain"

	"github.com/jmoiron/sqlx"
)

const (
	selectFilms = `SELECT f.id, f.name, f.description, f.release_date, f.duration, f.mpa_rating_id, m.name AS mpa_name
              FROM films f LEFT JOIN mpa_ratings m ON m.id = f.mpa_rating_id`

	selectPopularFilms = `SELECT f.id, f.name, f.description, f.release_date, f.duration, f.mpa_rating_id, m.name AS mpa_name,
                     COUNT(fl.user_id) AS likes_count
              FROM films f
              LEFT JOIN mpa_ratings m ON m.id = f.mpa_rating_id
              LEFT JOIN films_likes fl ON fl.film_id = f.id
              GROUP BY f.id, m.name
              ORDER BY likes_count DESC, f.id ASC
              LIMIT $1`

	selectFilmGenres = `SELECT fg.film_id, g.id, g.name
              FROM films_genres fg JOIN genres g ON g.id = fg.genre_id
              WHERE fg.film_id IN (?)
              ORDER BY fg.film_id, g.id`

	insertFilm = `INSERT INTO films (name, description, release_date, duration, mpa_rating_id)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`

	updateFilm = `UPDATE films SET name = $1, description = $2, release_date = $3, duration = $4, mpa_rating_id = $5
              WHERE id = $6`

	insertFilmGenre  = `INSERT INTO films_genres (film_id, genre_id) VALUES ($1, $2)`
	deleteFilmGenres = `DELETE FROM films_genres WHERE film_id = $1`

	insertLike = `INSERT INTO films_likes (film_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	deleteLike = `DELETE FROM films_likes WHERE film_id = $1 AND user_id = $2`
)

// filmRow строка выборки фильма вместе с названием рейтинга.
type filmRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	ReleaseDate domain.Date    `db:"release_date"`
	Duration    int            `db:"duration"`
	MpaID       sql.NullInt64  `db:"mpa_rating_id"`
	MpaName     sql.NullString `db:"mpa_name"`
	LikesCount  int64          `db:"likes_count"`
}

func (r filmRow) toDomain() *domain.Film {
	film := &domain.Film{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		ReleaseDate: r.ReleaseDate,
		Duration:    r.Duration,
		Genres:      []domain.Genre{},
	}
	if r.MpaID.Valid {
		film.Mpa = &domain.Mpa{ID: r.MpaID.Int64, Name: r.MpaName.String}
	}
	return film
}

type filmGenreRow struct {
	FilmID int64  `db:"film_id"`
	ID     int64  `db:"id"`
	Name   string `db:"name"`
}

// PostgresFilmStore реализует FilmStorage для PostgreSQL.
type PostgresFilmStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresFilmStore создает новый экземпляр PostgresFilmStore.
func NewPostgresFilmStore(db *sqlx.DB, logger *slog.Logger) (*PostgresFilmStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresFilmStore{db: db, logger: logger}, nil
}

// GetFilmByID находит фильм по id вместе с жанрами и рейтингом.
func (s *PostgresFilmStore) GetFilmByID(ctx context.Context, id int64) (*domain.Film, error) {
	var row filmRow
	s.logger.DebugContext(ctx, "Executing GetFilmByID query", slog.Int64("filmID", id))
	if err := s.db.GetContext(ctx, &row, selectFilms+` WHERE f.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Film not found by ID in DB", slog.Int64("filmID", id))
			return nil, domain.NotFoundf("film.Get", "film with id = %d not found", id)
		}
		s.logger.ErrorContext(ctx, "Failed to get film by ID from DB", slog.Int64("filmID", id), slog.String("error", err.Error()))
		return nil, domain.Internal("film.Get", err)
	}

	films, err := s.withGenres(ctx, s.db, []filmRow{row})
	if err != nil {
		return nil, err
	}
	return films[0], nil
}

// GetFilms возвращает все фильмы по возрастанию id.
func (s *PostgresFilmStore) GetFilms(ctx context.Context) ([]*domain.Film, error) {
	var rows []filmRow
	s.logger.DebugContext(ctx, "Executing GetFilms query")
	if err := s.db.SelectContext(ctx, &rows, selectFilms+` ORDER BY f.id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list films from DB", slog.String("error", err.Error()))
		return nil, domain.Internal("film.List", err)
	}
	return s.withGenres(ctx, s.db, rows)
}

// AddFilm сохраняет фильм и его жанры в одной транзакции.
func (s *PostgresFilmStore) AddFilm(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	var id int64
	err := s.inTx(ctx, "film.Add", func(tx *sqlx.Tx) error {
		if err := checkReferences(ctx, tx, film); err != nil {
			return err
		}
		if err := tx.QueryRowxContext(ctx, insertFilm,
			film.Name, film.Description, film.ReleaseDate, film.Duration, mpaParam(film),
		).Scan(&id); err != nil {
			return err
		}
		return insertGenres(ctx, tx, id, film.GenreIDs())
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Film created successfully in DB", slog.Int64("filmID", id), slog.String("name", film.Name))
	return s.GetFilmByID(ctx, id)
}

// UpdateFilm обновляет поля фильма. Непустой набор жанров полностью заменяет старый
// в той же транзакции, так что фильм не останется без жанров при сбое.
func (s *PostgresFilmStore) UpdateFilm(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	err := s.inTx(ctx, "film.Update", func(tx *sqlx.Tx) error {
		if err := checkReferences(ctx, tx, film); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, updateFilm,
			film.Name, film.Description, film.ReleaseDate, film.Duration, mpaParam(film), film.ID)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}
		if rowsAffected == 0 {
			s.logger.WarnContext(ctx, "No film found to update in DB", slog.Int64("filmID", film.ID))
			return domain.NotFoundf("film.Update", "film with id = %d not found", film.ID)
		}

		genreIDs := film.GenreIDs()
		if len(genreIDs) == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, deleteFilmGenres, film.ID); err != nil {
			return err
		}
		return insertGenres(ctx, tx, film.ID, genreIDs)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Film updated successfully in DB", slog.Int64("filmID", film.ID))
	return s.GetFilmByID(ctx, film.ID)
}

// AddLike ставит лайк. Повторный лайк ничего не меняет.
func (s *PostgresFilmStore) AddLike(ctx context.Context, filmID, userID int64) error {
	if _, err := s.db.ExecContext(ctx, insertLike, filmID, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to add like in DB",
			slog.Int64("filmID", filmID), slog.Int64("userID", userID),
			slog.Bool("fk_violation", pgErrorCode(err) == pgForeignKeyViolation),
			slog.String("error", err.Error()))
		return domain.Internal("film.AddLike", err)
	}
	s.logger.InfoContext(ctx, "Like added in DB", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

// RemoveLike удаляет лайк пользователя.
func (s *PostgresFilmStore) RemoveLike(ctx context.Context, filmID, userID int64) error {
	if _, err := s.db.ExecContext(ctx, deleteLike, filmID, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove like in DB",
			slog.Int64("filmID", filmID), slog.Int64("userID", userID), slog.String("error", err.Error()))
		return domain.Internal("film.RemoveLike", err)
	}
	s.logger.InfoContext(ctx, "Like removed in DB", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

// GetMostPopularFilms топ фильмов по числу лайков; фильмы без лайков тоже попадают в выборку.
func (s *PostgresFilmStore) GetMostPopularFilms(ctx context.Context, count int) ([]*domain.Film, error) {
	var rows []filmRow
	s.logger.DebugContext(ctx, "Executing GetMostPopularFilms query", slog.Int("count", count))
	if err := s.db.SelectContext(ctx, &rows, selectPopularFilms, count); err != nil {
		s.logger.ErrorContext(ctx, "Failed to get popular films from DB", slog.String("error", err.Error()))
		return nil, domain.Internal("film.Popular", err)
	}
	return s.withGenres(ctx, s.db, rows)
}

// withGenres превращает строки в фильмы и одним запросом подгружает жанры для всех.
func (s *PostgresFilmStore) withGenres(ctx context.Context, q sqlx.ExtContext, rows []filmRow) ([]*domain.Film, error) {
	films := make([]*domain.Film, len(rows))
	if len(rows) == 0 {
		return films, nil
	}
	byID := make(map[int64]*domain.Film, len(rows))
	ids := make([]int64, len(rows))
	for i, row := range rows {
		films[i] = row.toDomain()
		byID[row.ID] = films[i]
		ids[i] = row.ID
	}

	query, args, err := sqlx.In(selectFilmGenres, ids)
	if err != nil {
		return nil, domain.Internal("film.Genres", err)
	}
	var genreRows []filmGenreRow
	if err := sqlx.SelectContext(ctx, q, &genreRows, q.Rebind(query), args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load film genres from DB", slog.String("error", err.Error()))
		return nil, domain.Internal("film.Genres", err)
	}
	for _, g := range genreRows {
		film := byID[g.FilmID]
		film.Genres = append(film.Genres, domain.Genre{ID: g.ID, Name: g.Name})
	}
	return films, nil
}

// inTx выполняет fn в транзакции. Ошибки домена возвращаются как есть,
// остальные логируются и превращаются во внутреннюю ошибку.
func (s *PostgresFilmStore) inTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	return runInTx(ctx, s.db, s.logger, op, fn)
}

func runInTx(ctx context.Context, db *sqlx.DB, logger *slog.Logger, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to begin transaction", slog.String("op", op), slog.String("error", err.Error()))
		return domain.Internal(op, err)
	}
	defer tx.Rollback() //nolint:errcheck // после Commit возвращает sql.ErrTxDone

	if err := fn(tx); err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return err
		}
		logger.ErrorContext(ctx, "Transaction failed", slog.String("op", op), slog.String("error", err.Error()))
		return domain.Internal(op, err)
	}
	if err := tx.Commit(); err != nil {
		logger.ErrorContext(ctx, "Failed to commit transaction", slog.String("op", op), slog.String("error", err.Error()))
		return domain.Internal(op, err)
	}
	return nil
}

// checkReferences проверяет существование рейтинга и всех жанров фильма.
func checkReferences(ctx context.Context, q sqlx.ExtContext, film *domain.Film) error {
	if film.Mpa != nil {
		var exists bool
		if err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS (SELECT 1 FROM mpa_ratings WHERE id = $1)`, film.Mpa.ID); err != nil {
			return err
		}
		if !exists {
			return domain.NotFoundf("film.CheckMpa", "mpa rating with id = %d not found", film.Mpa.ID)
		}
	}

	genreIDs := film.GenreIDs()
	if len(genreIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`SELECT id FROM genres WHERE id IN (?)`, genreIDs)
	if err != nil {
		return err
	}
	var found []int64
	if err := sqlx.SelectContext(ctx, q, &found, q.Rebind(query), args...); err != nil {
		return err
	}
	known := make(map[int64]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	for _, id := range genreIDs {
		if _, ok := known[id]; !ok {
			return domain.NotFoundf("film.CheckGenres", "genre with id = %d not found", id)
		}
	}
	return nil
}

func insertGenres(ctx context.Context, tx *sqlx.Tx, filmID int64, genreIDs []int64) error {
	for _, genreID := range genreIDs {
		if _, err := tx.ExecContext(ctx, insertFilmGenre, filmID, genreID); err != nil {
			return err
		}
	}
	return nil
}

func mpaParam(film *domain.Film) sql.NullInt64 {
	if film.Mpa == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: film.Mpa.ID, Valid: true}
}
