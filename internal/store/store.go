// Package store содержит контракты хранилищ и две реализации:
// in-memory (для разработки и тестов) и PostgreSQL.
package store

import (
	"context"

	"filmorate/internal/domain"
)

// FilmStorage хранилище фильмов, их жанров и лайков.
type FilmStorage interface {
	GetFilmByID(ctx context.Context, id int64) (*domain.Film, error)
	GetFilms(ctx context.Context) ([]*domain.Film, error)
	AddFilm(ctx context.Context, film *domain.Film) (*domain.Film, error)
	UpdateFilm(ctx context.Context, film *domain.Film) (*domain.Film, error)
	AddLike(ctx context.Context, filmID, userID int64) error
	RemoveLike(ctx context.Context, filmID, userID int64) error
	// GetMostPopularFilms фильмы по убыванию числа лайков, при равенстве по возрастанию id.
	GetMostPopularFilms(ctx context.Context, count int) ([]*domain.Film, error)
}

// UserStorage хранилище пользователей и направленных связей дружбы.
type UserStorage interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUsers(ctx context.Context) ([]*domain.User, error)
	// GetUsersByIDs пользователи в порядке ids; неизвестные id пропускаются.
	GetUsersByIDs(ctx context.Context, ids []int64) ([]*domain.User, error)
	AddUser(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	AddFriend(ctx context.Context, userID, friendID int64) error
	RemoveFriend(ctx context.Context, userID, friendID int64) error
	GetUserFriends(ctx context.Context, userID int64) ([]int64, error)
}

// GenreStorage справочник жанров.
type GenreStorage interface {
	GetGenreByID(ctx context.Context, id int64) (*domain.Genre, error)
	GetGenres(ctx context.Context) ([]*domain.Genre, error)
}

// MpaStorage справочник рейтингов MPA.
type MpaStorage interface {
	GetMpaByID(ctx context.Context, id int64) (*domain.Mpa, error)
	GetMpaList(ctx context.Context) ([]*domain.Mpa, error)
}

// ReferenceStorage объединяет оба справочника.
type ReferenceStorage interface {
	GenreStorage
	MpaStorage
}
