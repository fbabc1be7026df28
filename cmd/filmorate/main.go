package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	httpAPI "filmorate/internal/api"
	"filmorate/internal/config"
	grpcServer "filmorate/internal/grpc"
	"filmorate/internal/logging"
	"filmorate/internal/metrics"
	"filmorate/internal/service"
	"filmorate/internal/store"
)

// storages набор хранилищ выбранного типа.
type storages struct {
	films store.FilmStorage
	users store.UserStorage
	refs  store.ReferenceStorage
	db    *sqlx.DB // nil для хранилища в памяти
}

// openStorages создает хранилища в памяти или в PostgreSQL в зависимости от конфигурации.
func openStorages(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storages, error) {
	if cfg.Storage == config.StorageMemory {
		refs := store.NewMemoryReferenceStore(logger)
		logger.Info("In-memory storage initialized")
		return &storages{
			films: store.NewMemoryFilmStore(refs, logger),
			users: store.NewMemoryUserStore(logger),
			refs:  refs,
		}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	db, err := store.Connect(connectCtx, cfg.Database.Driver, cfg.Database.URL, store.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Database.InitSchema {
		if err := store.InitSchema(ctx, db, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	films, err := store.NewPostgresFilmStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	users, err := store.NewPostgresUserStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	refs, err := store.NewPostgresReferenceStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("PostgreSQL storage initialized", slog.String("driver", cfg.Database.Driver))
	return &storages{films: films, users: users, refs: refs, db: db}, nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := openStorages(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	var health httpAPI.HealthCheck
	if st.db != nil {
		defer func() {
			logger.Info("Closing PostgreSQL database connection...")
			if err := st.db.Close(); err != nil {
				logger.Error("Failed to close PostgreSQL connection", slog.String("error", err.Error()))
			}
		}()
		health = st.db.PingContext
	}

	validate := service.NewValidator()
	filmService := service.NewFilmService(st.films, st.users, validate, logger)
	userService := service.NewUserService(st.users, validate, logger)
	genreService := service.NewGenreService(st.refs)
	mpaService := service.NewMpaService(st.refs)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// --- HTTP сервер ---
	handler := httpAPI.NewHandler(filmService, userService, genreService, mpaService, health, logger)
	routerOpts := httpAPI.RouterOptions{Metrics: m}
	if cfg.RateLimit.Enabled {
		routerOpts.RateLimit = cfg.RateLimit.RPS
		routerOpts.RateBurst = cfg.RateLimit.Burst
	}
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      httpAPI.NewRouter(handler, routerOpts),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// --- gRPC сервер ---
	var grpcSrv *grpc.Server
	var grpcLis net.Listener
	if cfg.GRPC.Enabled {
		grpcLis, err = net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen for gRPC on %s: %w", cfg.GRPC.Addr, err)
		}
		grpcSrv = grpc.NewServer(grpc.UnaryInterceptor(grpcServer.UnaryInterceptor(logger, m)))
		grpcServer.RegisterCatalogServer(grpcSrv, grpcServer.NewServer(filmService, userService, logger))
		reflection.Register(grpcSrv)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting", slog.String("addr", cfg.HTTP.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if grpcSrv != nil {
		g.Go(func() error {
			logger.Info("gRPC server starting", slog.String("addr", cfg.GRPC.Addr))
			if err := grpcSrv.Serve(grpcLis); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	// Ожидание сигнала (или падения одного из серверов) для graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Filmorate shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
		} else {
			logger.Info("HTTP server gracefully stopped.")
		}
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
			logger.Info("gRPC server gracefully stopped.")
		}
		return nil
	})

	return g.Wait()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure logging: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Filmorate stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Filmorate stopped.")
}
