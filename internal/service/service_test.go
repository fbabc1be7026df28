package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"filmorate/internal/domain"
	"filmorate/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type services struct {
	films  *FilmService
	users  *UserService
	genres *GenreService
	mpa    *MpaService
}

func newServices(t *testing.T) services {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	refs := store.NewMemoryReferenceStore(logger)
	films := store.NewMemoryFilmStore(refs, logger)
	users := store.NewMemoryUserStore(logger)
	v := NewValidator()
	return services{
		films:  NewFilmService(films, users, v, logger),
		users:  NewUserService(users, v, logger),
		genres: NewGenreService(refs),
		mpa:    NewMpaService(refs),
	}
}

func validFilm(name string) domain.NewFilmRequest {
	return domain.NewFilmRequest{
		Name:        name,
		Description: "A film about films",
		ReleaseDate: domain.NewDate(1999, time.March, 31),
		Duration:    136,
		Mpa:         &domain.Mpa{ID: 4},
	}
}

func validUser(login string) domain.NewUserRequest {
	return domain.NewUserRequest{
		Email:    login + "@example.com",
		Login:    login,
		Name:     "Name " + login,
		Birthday: domain.NewDate(1988, time.August, 20),
	}
}

func TestFilmService_AddFilmAssignsFreshIDs(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	seen := map[int64]bool{}
	for _, name := range []string{"one", "two", "three"} {
		film, err := svc.films.AddFilm(ctx, validFilm(name))
		require.NoError(t, err)
		assert.Positive(t, film.ID)
		assert.False(t, seen[film.ID], "id %d reused", film.ID)
		seen[film.ID] = true
	}
}

func TestFilmService_AddFilmValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *domain.NewFilmRequest)
		message string
	}{
		{"blank name", func(r *domain.NewFilmRequest) { r.Name = "  " }, "film name must not be blank"},
		{"long description", func(r *domain.NewFilmRequest) { r.Description = strings.Repeat("a", 201) }, "film description must not be longer than 200 characters"},
		{"too early", func(r *domain.NewFilmRequest) { r.ReleaseDate = domain.NewDate(1895, time.December, 27) }, "film release date must not be earlier than 1895-12-28"},
		{"missing release date", func(r *domain.NewFilmRequest) { r.ReleaseDate = domain.Date{} }, "film release date must not be earlier than 1895-12-28"},
		{"zero duration", func(r *domain.NewFilmRequest) { r.Duration = 0 }, "film duration must be a positive number"},
		{"first rule wins", func(r *domain.NewFilmRequest) { r.Name = ""; r.Duration = -1 }, "film name must not be blank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validFilm("Film")
			tt.mutate(&req)

			_, err := newServices(t).films.AddFilm(context.Background(), req)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tt.message, domain.Message(err))
		})
	}
}

func TestFilmService_BoundaryValuesAccepted(t *testing.T) {
	req := validFilm("Film")
	req.Description = strings.Repeat("я", 200)
	req.ReleaseDate = domain.EarliestReleaseDate
	req.Duration = 1

	film, err := newServices(t).films.AddFilm(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.EarliestReleaseDate, film.ReleaseDate)
}

func TestFilmService_GenreRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	req := validFilm("Film")
	req.Genres = []domain.Genre{{ID: 2}, {ID: 1}}
	created, err := svc.films.AddFilm(ctx, req)
	require.NoError(t, err)

	got, err := svc.films.GetFilmByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Genre{{ID: 1, Name: "Comedy"}, {ID: 2, Name: "Drama"}}, got.Genres)
	assert.Equal(t, &domain.Mpa{ID: 4, Name: "R"}, got.Mpa)
}

func TestFilmService_UnknownReferences(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	req := validFilm("Film")
	req.Genres = []domain.Genre{{ID: 100}}
	_, err := svc.films.AddFilm(ctx, req)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	req = validFilm("Film")
	req.Mpa = &domain.Mpa{ID: 100}
	_, err = svc.films.AddFilm(ctx, req)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFilmService_PartialUpdateKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	req := validFilm("Film")
	req.Genres = []domain.Genre{{ID: 1}, {ID: 3}}
	created, err := svc.films.AddFilm(ctx, req)
	require.NoError(t, err)

	updated, err := svc.films.UpdateFilm(ctx, domain.UpdateFilmRequest{ID: created.ID, Name: ptr("Renamed")})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.Duration, updated.Duration)
	assert.Equal(t, created.ReleaseDate, updated.ReleaseDate)
	assert.Equal(t, created.Genres, updated.Genres)
	assert.Equal(t, created.Mpa, updated.Mpa)
}

func TestFilmService_UpdateValidatesMergedFilm(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	created, err := svc.films.AddFilm(ctx, validFilm("Film"))
	require.NoError(t, err)

	_, err = svc.films.UpdateFilm(ctx, domain.UpdateFilmRequest{ID: created.ID, Duration: ptr(-5)})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.films.UpdateFilm(ctx, domain.UpdateFilmRequest{ID: 999999, Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.films.UpdateFilm(ctx, domain.UpdateFilmRequest{Name: ptr("x")})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "film id must be specified", domain.Message(err))

	got, err := svc.films.GetFilmByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 136, got.Duration)
}

func TestFilmService_Popularity(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	var ids []int64
	for _, name := range []string{"F1", "F2", "F3"} {
		film, err := svc.films.AddFilm(ctx, validFilm(name))
		require.NoError(t, err)
		ids = append(ids, film.ID)
	}
	var users []int64
	for _, login := range []string{"u1", "u2"} {
		user, err := svc.users.AddUser(ctx, validUser(login))
		require.NoError(t, err)
		users = append(users, user.ID)
	}

	require.NoError(t, svc.films.AddLike(ctx, ids[1], users[0]))
	require.NoError(t, svc.films.AddLike(ctx, ids[1], users[1]))
	require.NoError(t, svc.films.AddLike(ctx, ids[2], users[0]))

	popular, err := svc.films.GetMostPopularFilms(ctx, 3)
	require.NoError(t, err)
	require.Len(t, popular, 3)
	assert.Equal(t, []string{"F2", "F3", "F1"}, []string{popular[0].Name, popular[1].Name, popular[2].Name})

	popular, err = svc.films.GetMostPopularFilms(ctx, 1)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, "F2", popular[0].Name)

	_, err = svc.films.GetMostPopularFilms(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFilmService_LikesRequireExistingFilmAndUser(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	film, err := svc.films.AddFilm(ctx, validFilm("Film"))
	require.NoError(t, err)
	user, err := svc.users.AddUser(ctx, validUser("user"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.films.AddLike(ctx, 999999, user.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.films.AddLike(ctx, film.ID, 999999), domain.ErrNotFound)
	assert.ErrorIs(t, svc.films.RemoveLike(ctx, film.ID, 999999), domain.ErrNotFound)

	require.NoError(t, svc.films.AddLike(ctx, film.ID, user.ID))
	require.NoError(t, svc.films.AddLike(ctx, film.ID, user.ID))
	require.NoError(t, svc.films.RemoveLike(ctx, film.ID, user.ID))
}

func TestUserService_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *domain.NewUserRequest)
		message string
	}{
		{"blank email", func(r *domain.NewUserRequest) { r.Email = "" }, "user email must not be blank"},
		{"bad email", func(r *domain.NewUserRequest) { r.Email = "not-an-email" }, "user email must be a valid email address"},
		{"blank login", func(r *domain.NewUserRequest) { r.Login = " " }, "user login must not be blank"},
		{"login with space", func(r *domain.NewUserRequest) { r.Login = "bad login" }, "user login must not contain whitespace"},
		{"future birthday", func(r *domain.NewUserRequest) { r.Birthday = domain.Date{Time: domain.Today().AddDate(0, 0, 1)} }, "user birthday must not be in the future"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validUser("user")
			tt.mutate(&req)

			_, err := newServices(t).users.AddUser(context.Background(), req)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tt.message, domain.Message(err))
		})
	}
}

func TestUserService_BirthdayTodayAccepted(t *testing.T) {
	req := validUser("user")
	req.Birthday = domain.Today()
	_, err := newServices(t).users.AddUser(context.Background(), req)
	assert.NoError(t, err)
}

func TestUserService_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	_, err := svc.users.GetUserByID(ctx, 999999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.films.GetFilmByID(ctx, 999999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.genres.GetGenreByID(ctx, 999999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.mpa.GetMpaByID(ctx, 999999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserService_NameDefaultsToLogin(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	for _, name := range []string{"", "   "} {
		req := validUser("dolore")
		req.Name = name
		user, err := svc.users.AddUser(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "dolore", user.Name)

		got, err := svc.users.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "dolore", got.Name)
	}
}

func TestUserService_UpdateKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	created, err := svc.users.AddUser(ctx, validUser("user"))
	require.NoError(t, err)

	updated, err := svc.users.UpdateUser(ctx, domain.UpdateUserRequest{ID: created.ID, Login: ptr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Login)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, created.Birthday, updated.Birthday)

	_, err = svc.users.UpdateUser(ctx, domain.UpdateUserRequest{ID: created.ID, Login: ptr("bad login")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.users.UpdateUser(ctx, domain.UpdateUserRequest{ID: 999999})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserService_FriendshipIsDirected(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	a, err := svc.users.AddUser(ctx, validUser("a"))
	require.NoError(t, err)
	b, err := svc.users.AddUser(ctx, validUser("b"))
	require.NoError(t, err)

	require.NoError(t, svc.users.AddFriend(ctx, a.ID, b.ID))

	friends, err := svc.users.GetUserFriends(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, b.ID, friends[0].ID)

	friends, err = svc.users.GetUserFriends(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)

	mutual, err := svc.users.AreMutualFriends(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, mutual)

	require.NoError(t, svc.users.AddFriend(ctx, b.ID, a.ID))
	mutual, err = svc.users.AreMutualFriends(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, mutual)

	err = svc.users.AddFriend(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = svc.users.AddFriend(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = svc.users.AddFriend(ctx, a.ID, 999999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.users.RemoveFriend(ctx, a.ID, b.ID))
	friends, err = svc.users.GetUserFriends(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestUserService_CommonFriends(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	var ids []int64
	for _, login := range []string{"a", "b", "c"} {
		user, err := svc.users.AddUser(ctx, validUser(login))
		require.NoError(t, err)
		ids = append(ids, user.ID)
	}
	a, b, c := ids[0], ids[1], ids[2]

	require.NoError(t, svc.users.AddFriend(ctx, a, b))
	require.NoError(t, svc.users.AddFriend(ctx, b, c))

	common, err := svc.users.GetCommonFriends(ctx, a, b)
	require.NoError(t, err)
	assert.Empty(t, common)

	require.NoError(t, svc.users.AddFriend(ctx, a, c))
	common, err = svc.users.GetCommonFriends(ctx, a, b)
	require.NoError(t, err)
	require.Len(t, common, 1)
	assert.Equal(t, c, common[0].ID)

	_, err = svc.users.GetCommonFriends(ctx, a, 999999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReferenceServices(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	genres, err := svc.genres.GetGenres(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 6)
	assert.Equal(t, "Comedy", genres[0].Name)

	list, err := svc.mpa.GetMpaList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, "PG-13", list[2].Name)
}
