package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"filmorate/internal/domain"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const callTimeout = 3 * time.Second

// CatalogClient клиент сервиса filmorate.v1.Catalog.
type CatalogClient struct {
	conn   *grpc.ClientConn
	logger *slog.Logger
}

// NewCatalogClient подключается к серверу каталога по адресу addr (например, "localhost:9090").
func NewCatalogClient(addr string, logger *slog.Logger, opts ...grpc.DialOption) (*CatalogClient, error) {
	logger.Info("Creating Catalog gRPC client", slog.String("address", addr))

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		logger.Error("Failed to create Catalog gRPC client", slog.String("address", addr), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create catalog client for %s: %w", addr, err)
	}
	return &CatalogClient{conn: conn, logger: logger}, nil
}

// FilmExists проверяет, есть ли фильм с таким id.
func (c *CatalogClient) FilmExists(ctx context.Context, id int64) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, FilmExistsMethod, wrapperspb.Int64(id), out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

// UserExists проверяет, есть ли пользователь с таким id.
func (c *CatalogClient) UserExists(ctx context.Context, id int64) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, UserExistsMethod, wrapperspb.Int64(id), out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

// GetFilm получает фильм по id. Для отсутствующего фильма возвращается статус NotFound.
func (c *CatalogClient) GetFilm(ctx context.Context, id int64) (*domain.Film, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, GetFilmMethod, wrapperspb.Int64(id), out); err != nil {
		return nil, err
	}
	film := &domain.Film{}
	if err := fromProto(out, film); err != nil {
		return nil, fmt.Errorf("failed to decode film %d: %w", id, err)
	}
	return film, nil
}

// PopularFilms топ фильмов по лайкам; count = 0 означает размер по умолчанию.
func (c *CatalogClient) PopularFilms(ctx context.Context, count int) ([]*domain.Film, error) {
	out := new(structpb.ListValue)
	if err := c.invoke(ctx, PopularFilmsMethod, wrapperspb.Int64(int64(count)), out); err != nil {
		return nil, err
	}
	var films []*domain.Film
	if err := fromProto(out, &films); err != nil {
		return nil, fmt.Errorf("failed to decode popular films: %w", err)
	}
	return films, nil
}

// Close закрывает gRPC соединение.
func (c *CatalogClient) Close() error {
	if c.conn != nil {
		c.logger.Info("Closing gRPC connection to Catalog")
		return c.conn.Close()
	}
	return nil
}

func (c *CatalogClient) invoke(ctx context.Context, method string, in, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if err := c.conn.Invoke(callCtx, method, in, out); err != nil {
		st, _ := status.FromError(err)
		c.logger.ErrorContext(ctx, "Catalog gRPC call failed",
			slog.String("method", method),
			slog.String("code", st.Code().String()),
			slog.String("message", st.Message()))
		return fmt.Errorf("grpc %s failed: %w", method, err)
	}
	return nil
}

func fromProto(msg proto.Message, dst any) error {
	data, err := protojson.Marshal(msg)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
