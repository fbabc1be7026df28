package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"filmorate/internal/domain"
	"filmorate/internal/metrics"
	"filmorate/internal/service"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FilmReader то, что серверу нужно от сервиса фильмов.
type FilmReader interface {
	GetFilmByID(ctx context.Context, id int64) (*domain.Film, error)
	GetMostPopularFilms(ctx context.Context, count int) ([]*domain.Film, error)
}

// UserReader то, что серверу нужно от сервиса пользователей.
type UserReader interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// Server реализует CatalogServer поверх сервисов фильмов и пользователей.
type Server struct {
	films  FilmReader
	users  UserReader
	logger *slog.Logger
}

// NewServer создает новый экземпляр gRPC сервера каталога.
func NewServer(films FilmReader, users UserReader, logger *slog.Logger) *Server {
	return &Server{films: films, users: users, logger: logger}
}

// FilmExists реализует gRPC метод FilmExists.
func (s *Server) FilmExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	id := req.GetValue()
	s.logger.InfoContext(ctx, "gRPC FilmExists called", slog.Int64("filmID", id))
	if id <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "film id must be positive, got %d", id)
	}

	_, err := s.films.GetFilmByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return wrapperspb.Bool(false), nil
	}
	if err != nil {
		return nil, s.toStatus(ctx, "FilmExists", err)
	}
	return wrapperspb.Bool(true), nil
}

// UserExists реализует gRPC метод UserExists.
func (s *Server) UserExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	id := req.GetValue()
	s.logger.InfoContext(ctx, "gRPC UserExists called", slog.Int64("userID", id))
	if id <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "user id must be positive, got %d", id)
	}

	_, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return wrapperspb.Bool(false), nil
	}
	if err != nil {
		return nil, s.toStatus(ctx, "UserExists", err)
	}
	return wrapperspb.Bool(true), nil
}

// GetFilm возвращает фильм в том же JSON виде, что и REST API.
func (s *Server) GetFilm(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	id := req.GetValue()
	s.logger.InfoContext(ctx, "gRPC GetFilm called", slog.Int64("filmID", id))
	if id <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "film id must be positive, got %d", id)
	}

	film, err := s.films.GetFilmByID(ctx, id)
	if err != nil {
		return nil, s.toStatus(ctx, "GetFilm", err)
	}
	out := &structpb.Struct{}
	if err := toProto(film, out); err != nil {
		return nil, s.toStatus(ctx, "GetFilm", err)
	}
	return out, nil
}

// PopularFilms топ фильмов; 0 означает размер по умолчанию.
func (s *Server) PopularFilms(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.ListValue, error) {
	count := int(req.GetValue())
	if count == 0 {
		count = service.DefaultPopularCount
	}
	s.logger.InfoContext(ctx, "gRPC PopularFilms called", slog.Int("count", count))

	films, err := s.films.GetMostPopularFilms(ctx, count)
	if err != nil {
		return nil, s.toStatus(ctx, "PopularFilms", err)
	}
	out := &structpb.ListValue{}
	if err := toProto(films, out); err != nil {
		return nil, s.toStatus(ctx, "PopularFilms", err)
	}
	return out, nil
}

// toStatus переводит ошибку сервиса в gRPC статус.
func (s *Server) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, domain.Message(err))
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, domain.Message(err))
	default:
		s.logger.ErrorContext(ctx, "gRPC call failed", slog.String("method", method), slog.String("error", err.Error()))
		return status.Error(codes.Internal, "internal server error")
	}
}

// toProto переносит JSON представление v в структурное сообщение protobuf.
func toProto(v any, msg proto.Message) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return protojson.Unmarshal(data, msg)
}

// UnaryInterceptor логирует вызовы и учитывает их в метриках. m может быть nil.
func UnaryInterceptor(logger *slog.Logger, m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		if m != nil {
			m.RecordGRPCRequest(info.FullMethod, code.String())
		}
		logger.InfoContext(ctx, "gRPC request handled",
			slog.String("method", info.FullMethod),
			slog.String("code", code.String()),
			slog.Duration("duration", time.Since(start)))
		return resp, err
	}
}
