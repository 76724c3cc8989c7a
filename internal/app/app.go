package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/matzebond/CoP-Bot/internal/auth"
	"github.com/matzebond/CoP-Bot/internal/bot"
	"github.com/matzebond/CoP-Bot/internal/config"
	"github.com/matzebond/CoP-Bot/internal/game"
	"github.com/matzebond/CoP-Bot/internal/httpapi"
	"github.com/matzebond/CoP-Bot/internal/migrate"
	"github.com/matzebond/CoP-Bot/internal/store"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	db  *pgxpool.Pool
	rdb *redis.Client

	bot *bot.Bot
	srv *http.Server
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	a := &App{cfg: cfg, log: log}

	// --- snapshot storage ---
	var persist game.Persistence
	switch cfg.State.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})

		// quick connectivity check (fail fast)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping (%s db=%d): %w", cfg.Redis.Addr, cfg.Redis.DB, err)
		}

		a.rdb = rdb
		persist = game.NewRedisStore(rdb, cfg.Redis.Key)
	default:
		persist = game.NewFileStore(cfg.State.Path)
	}

	// --- solve archive (optional) ---
	var solves *store.SolveStore
	if cfg.Postgres.URL != "" {
		dbpool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("pgxpool: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = dbpool.Ping(pingCtx)
		cancel()
		if err != nil {
			dbpool.Close()
			_ = a.Close(ctx)
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
		a.db = dbpool

		if cfg.Postgres.RunMigrations {
			if err := migrate.Up(cfg.Postgres.URL, cfg.Postgres.MigrationsDir, log); err != nil {
				_ = a.Close(ctx)
				return nil, err
			}
		}
		solves = store.NewSolveStore(dbpool)
	}

	// --- game state ---
	st := game.New(persist, log)
	st.Load(ctx)

	hub := httpapi.NewHub(log)
	st.OnEvent = hub.Broadcast
	if solves != nil {
		st.OnSolve = func(ctx context.Context, sv game.Solve) {
			err := solves.Record(ctx, store.Solve{
				UserID:   sv.UserID,
				UserName: sv.Name,
				Answer:   sv.Answer,
				Score:    sv.Score,
			})
			if err != nil {
				log.Error("solve archive insert failed", "err", err)
			}
		}
	}

	// --- transport ---
	tgBot, err := bot.New(cfg.Telegram.Token, st, log)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.bot = tgBot

	// --- dashboard ---
	authSvc := auth.NewService([]byte(cfg.Dash.Secret))
	h := &httpapi.Handler{
		Game:     st,
		Solves:   solves,
		Auth:     authSvc,
		PassHash: []byte(cfg.Dash.PasswordHash),
		TokenTTL: cfg.Dash.TokenTTL,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authMW := httpapi.AuthMiddleware(authSvc)
	mux.HandleFunc("/api/login", h.Login)
	mux.Handle("/api/status", authMW(http.HandlerFunc(h.Status)))
	mux.Handle("/api/highscore", authMW(http.HandlerFunc(h.Highscore)))
	mux.Handle("/api/solves", authMW(http.HandlerFunc(h.RecentSolves)))
	mux.HandleFunc("/ws/events", hub.HandleWS(authSvc))

	a.srv = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.log.Info("http server starting", "addr", a.cfg.HTTP.Addr)

	g.Go(func() error {
		err := a.srv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return a.bot.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info("http server shutting down")
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	})

	err := g.Wait()
	_ = a.Close(context.Background())
	return err
}

func (a *App) Close(ctx context.Context) error {
	// best-effort
	if a.db != nil {
		a.db.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	return nil
}
