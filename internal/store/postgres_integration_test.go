//go:build integration

package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"filmorate/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const postgresImage = "postgres:16-alpine"

// startPostgres поднимает чистый PostgreSQL и возвращает строку подключения.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "filmorate",
			"POSTGRES_PASSWORD": "filmorate",
			"POSTGRES_DB":       "filmorate",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(context.Background()) }) //nolint:errcheck

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://filmorate:filmorate@%s:%s/filmorate?sslmode=disable", host, port.Port())
}

type postgresStores struct {
	db    *sqlx.DB
	films *PostgresFilmStore
	users *PostgresUserStore
	refs  *PostgresReferenceStore
}

func openPostgresStores(t *testing.T, driver, dbURL string) postgresStores {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := Connect(ctx, driver, dbURL, PoolOptions{MaxOpenConns: 5, MaxIdleConns: 2}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, InitSchema(ctx, db, logger))
	require.NoError(t, InitSchema(ctx, db, logger), "schema init must be idempotent")

	films, err := NewPostgresFilmStore(db, logger)
	require.NoError(t, err)
	users, err := NewPostgresUserStore(db, logger)
	require.NoError(t, err)
	refs, err := NewPostgresReferenceStore(db, logger)
	require.NoError(t, err)
	return postgresStores{db: db, films: films, users: users, refs: refs}
}

func resetTables(t *testing.T, db *sqlx.DB) {
	t.Helper()
	_, err := db.Exec(`TRUNCATE films_likes, films_genres, users_friendship, films, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func TestPostgresStores(t *testing.T) {
	dbURL := startPostgres(t)

	for _, driver := range []string{"postgres", "pgx"} {
		t.Run(driver, func(t *testing.T) {
			s := openPostgresStores(t, driver, dbURL)
			resetTables(t, s.db)

			t.Run("references", func(t *testing.T) { testReferences(t, s) })
			t.Run("films", func(t *testing.T) { testFilms(t, s) })
			t.Run("friends", func(t *testing.T) { testFriends(t, s) })
		})
	}
}

func testReferences(t *testing.T, s postgresStores) {
	ctx := context.Background()

	genres, err := s.refs.GetGenres(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 6)
	assert.Equal(t, "Comedy", genres[0].Name)

	mpa, err := s.refs.GetMpaByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "NC-17", mpa.Name)

	_, err = s.refs.GetGenreByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testFilms(t *testing.T, s postgresStores) {
	ctx := context.Background()

	film, err := s.films.AddFilm(ctx, &domain.Film{
		Name:        "Stalker",
		Description: "Zone",
		ReleaseDate: domain.NewDate(1979, time.May, 25),
		Duration:    161,
		Genres:      []domain.Genre{{ID: 2}, {ID: 1}, {ID: 2}},
		Mpa:         &domain.Mpa{ID: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), film.ID)
	assert.Equal(t, []int64{1, 2}, film.GenreIDs())
	assert.Equal(t, "PG-13", film.Mpa.Name)

	_, err = s.films.AddFilm(ctx, &domain.Film{
		Name: "Bad", ReleaseDate: domain.NewDate(2000, 1, 1), Duration: 1, Mpa: &domain.Mpa{ID: 42},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// без жанров старый набор сохраняется
	film.Name = "Stalker (restored)"
	film.Genres = nil
	updated, err := s.films.UpdateFilm(ctx, film)
	require.NoError(t, err)
	assert.Equal(t, "Stalker (restored)", updated.Name)
	assert.Equal(t, []int64{1, 2}, updated.GenreIDs())

	// непустой набор полностью заменяет старый
	updated.Genres = []domain.Genre{{ID: 6}, {ID: 4}}
	updated, err = s.films.UpdateFilm(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, []domain.Genre{{ID: 4, Name: "Thriller"}, {ID: 6, Name: "Action"}}, updated.Genres)

	// неизвестный жанр откатывает всю транзакцию
	updated.Name = "Never saved"
	updated.Genres = []domain.Genre{{ID: 1}, {ID: 99}}
	_, err = s.films.UpdateFilm(ctx, updated)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	stored, err := s.films.GetFilmByID(ctx, film.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stalker (restored)", stored.Name)
	assert.Equal(t, []int64{4, 6}, stored.GenreIDs())

	var genreRows int
	require.NoError(t, s.db.Get(&genreRows, `SELECT COUNT(*) FROM films_genres WHERE film_id = $1`, film.ID))
	assert.Equal(t, 2, genreRows)

	_, err = s.films.UpdateFilm(ctx, &domain.Film{ID: 100, Name: "x", ReleaseDate: domain.NewDate(2000, 1, 1), Duration: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	second, err := s.films.AddFilm(ctx, &domain.Film{Name: "Mirror", ReleaseDate: domain.NewDate(1975, time.March, 7), Duration: 108})
	require.NoError(t, err)
	assert.Nil(t, second.Mpa)
	assert.Empty(t, second.Genres)

	var userIDs []int64
	for i := 0; i < 2; i++ {
		u, err := s.users.AddUser(ctx, &domain.User{
			Email: fmt.Sprintf("u%d@example.com", i), Login: fmt.Sprintf("u%d", i), Name: "U",
			Birthday: domain.NewDate(1990, 1, 1),
		})
		require.NoError(t, err)
		userIDs = append(userIDs, u.ID)
	}

	require.NoError(t, s.films.AddLike(ctx, second.ID, userIDs[0]))
	require.NoError(t, s.films.AddLike(ctx, second.ID, userIDs[0]))
	require.NoError(t, s.films.AddLike(ctx, second.ID, userIDs[1]))
	require.NoError(t, s.films.AddLike(ctx, film.ID, userIDs[0]))

	popular, err := s.films.GetMostPopularFilms(ctx, 10)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, second.ID, popular[0].ID)
	assert.Equal(t, film.ID, popular[1].ID)

	require.NoError(t, s.films.RemoveLike(ctx, second.ID, userIDs[0]))
	require.NoError(t, s.films.RemoveLike(ctx, second.ID, userIDs[1]))
	popular, err = s.films.GetMostPopularFilms(ctx, 1)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, film.ID, popular[0].ID)

	// равное число лайков: меньший id первым, фильмы без лайков в конце
	third, err := s.films.AddFilm(ctx, &domain.Film{Name: "Nostalghia", ReleaseDate: domain.NewDate(1983, time.May, 17), Duration: 125})
	require.NoError(t, err)
	fourth, err := s.films.AddFilm(ctx, &domain.Film{Name: "Sacrifice", ReleaseDate: domain.NewDate(1986, time.May, 9), Duration: 149})
	require.NoError(t, err)
	require.NoError(t, s.films.AddLike(ctx, fourth.ID, userIDs[1]))
	require.NoError(t, s.films.AddLike(ctx, second.ID, userIDs[1]))
	popular, err = s.films.GetMostPopularFilms(ctx, 10)
	require.NoError(t, err)
	ids := make([]int64, 0, len(popular))
	for _, f := range popular {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []int64{film.ID, second.ID, fourth.ID, third.ID}, ids)

	err = s.films.AddLike(ctx, 999, userIDs[0])
	assert.ErrorIs(t, err, domain.ErrInternal)
}

func testFriends(t *testing.T, s postgresStores) {
	ctx := context.Background()

	add := func(login string) int64 {
		u, err := s.users.AddUser(ctx, &domain.User{
			Email: login + "@mail.ru", Login: login, Name: login, Birthday: domain.NewDate(1985, 6, 15),
		})
		require.NoError(t, err)
		return u.ID
	}
	a, b, c := add("alice"), add("bob"), add("carol")

	require.NoError(t, s.users.AddFriend(ctx, a, b))
	require.NoError(t, s.users.AddFriend(ctx, a, c))
	err := s.users.AddFriend(ctx, a, b)
	assert.ErrorIs(t, err, domain.ErrValidation)

	friends, err := s.users.GetUserFriends(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []int64{b, c}, friends)

	// дружба направленная
	friends, err = s.users.GetUserFriends(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, friends)

	user, err := s.users.GetUserByID(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []int64{b, c}, user.Friends)

	users, err := s.users.GetUsersByIDs(ctx, []int64{c, 999, a})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, c, users[0].ID)
	assert.Equal(t, a, users[1].ID)

	require.NoError(t, s.users.RemoveFriend(ctx, a, b))
	require.NoError(t, s.users.RemoveFriend(ctx, a, b))
	friends, err = s.users.GetUserFriends(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []int64{c}, friends)

	user.Email = "alice@example.org"
	updated, err := s.users.UpdateUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.org", updated.Email)

	_, err = s.users.UpdateUser(ctx, &domain.User{ID: 999, Email: "x@y.z", Login: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
