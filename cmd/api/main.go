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
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MetehanCam/real-estate-social-app/internal/app/migrate"
	httpx "github.com/MetehanCam/real-estate-social-app/internal/http"
	"github.com/MetehanCam/real-estate-social-app/internal/repository"
	"github.com/MetehanCam/real-estate-social-app/internal/repository/memory"
	"github.com/MetehanCam/real-estate-social-app/internal/repository/postgres"
	"github.com/MetehanCam/real-estate-social-app/internal/service/auth"
	"github.com/MetehanCam/real-estate-social-app/internal/service/engagement"
	"github.com/MetehanCam/real-estate-social-app/internal/service/feed"
	"github.com/MetehanCam/real-estate-social-app/internal/service/post"
	"github.com/MetehanCam/real-estate-social-app/internal/service/user"
	"github.com/MetehanCam/real-estate-social-app/internal/ws"
	"github.com/MetehanCam/real-estate-social-app/pkg/config"
	jwtpkg "github.com/MetehanCam/real-estate-social-app/pkg/jwt"
	"github.com/MetehanCam/real-estate-social-app/pkg/logger"
)

type store struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	health func(context.Context) error
	close  func()
}

func main() {
	cfg := config.LoadAPIConfig()
	log := logger.New("api", logger.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	hub := ws.NewHub(log)
	defer hub.Close()
	tokens := jwtpkg.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	authSvc := auth.New(st.users, tokens, log)
	userSvc := user.New(st.users, log)
	feedSvc := feed.New(st.posts, st.users, log)
	postSvc := post.New(st.posts, hub, log, cfg)
	engagementSvc := engagement.New(st.posts, hub, log, cfg)

	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(ctx, addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter.Close()
			limiter = redisLimiter
		}
	}

	router := httpx.NewRouter(log, httpx.Deps{
		Auth:           authSvc,
		Users:          userSvc,
		Feed:           feedSvc,
		Posts:          postSvc,
		Engagement:     engagementSvc,
		Hub:            hub,
		Limiter:        limiter,
		RateLimits:     cfg.RateLimits,
		DBHealth:       st.health,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		SSEHeartbeat:   cfg.SSEHeartbeat,
	})
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpx.Wrap(router, cfg.BasePath, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr, "base_path", cfg.BasePath, "store", cfg.StoreDriver, "write_limit", cfg.RateLimits.Write.String())
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

func openStore(ctx context.Context, cfg config.APIConfig, log *slog.Logger) (store, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on restart")
		repo := memory.New()
		return store{users: repo, posts: repo, health: repo.Ping, close: func() {}}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return store{}, fmt.Errorf("connect database: %w", err)
	}
	runner, err := migrate.New(pool, cfg.MigrationsDir, log)
	if err != nil {
		pool.Close()
		return store{}, err
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		pool.Close()
		return store{}, err
	}
	if err := runner.Ensure(ctx); err != nil {
		pool.Close()
		return store{}, err
	}
	repo := postgres.New(pool)
	return store{users: repo, posts: repo, health: repo.Ping, close: pool.Close}, nil
}
