package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"filmorate/internal/domain"
	grpcServer "filmorate/internal/grpc"
	"filmorate/internal/service"
	"filmorate/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

func startCatalog(t *testing.T) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	refs := store.NewMemoryReferenceStore(logger)
	films := store.NewMemoryFilmStore(refs, logger)
	users := store.NewMemoryUserStore(logger)
	v := service.NewValidator()
	filmService := service.NewFilmService(films, users, v, logger)

	_, err := filmService.AddFilm(context.Background(), domain.NewFilmRequest{
		Name:        "Solaris",
		Description: "Space station drama",
		ReleaseDate: domain.NewDate(1972, time.March, 20),
		Duration:    167,
		Genres:      []domain.Genre{{ID: 2}},
	})
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := grpc.NewServer()
	grpcServer.RegisterCatalogServer(srv, grpcServer.NewServer(filmService, service.NewUserService(users, v, logger), logger))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)
	return lis.Addr().String()
}

func TestRun(t *testing.T) {
	addr := startCatalog(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"film exists", []string{"film-exists", "1"}, []string{"true"}},
		{"film missing", []string{"film-exists", "2"}, []string{"false"}},
		{"user missing", []string{"user-exists", "1"}, []string{"false"}},
		{"film", []string{"film", "1"}, []string{`"name": "Solaris"`, `"releaseDate": "1972-03-20"`, `"name": "Drama"`}},
		{"popular", []string{"popular", "--count", "5"}, []string{`"id": 1`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			args := append([]string{"--addr", addr}, tt.args...)
			require.NoError(t, newCommands().run(context.Background(), args, &out))
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	addr := startCatalog(t)

	err := newCommands().run(context.Background(), []string{"--addr", addr, "film", "42"}, io.Discard)
	assert.ErrorContains(t, err, "NotFound")

	err = newCommands().run(context.Background(), []string{"--addr", addr, "unknown"}, io.Discard)
	assert.Error(t, err)
}
