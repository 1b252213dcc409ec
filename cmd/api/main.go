package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"taskhub.org/internal/auth"
	"taskhub.org/internal/cache"
	"taskhub.org/internal/config"
	"taskhub.org/internal/eventlog"
	"taskhub.org/internal/httpapi"
	"taskhub.org/internal/obs"
	"taskhub.org/internal/store/pg"
	"taskhub.org/internal/stream"
	"taskhub.org/internal/task"
	"taskhub.org/internal/user"
)

var version = "0.3.1"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init(version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores: PostgreSQL when a DSN is configured, in-memory otherwise.
	var (
		users  user.Store
		tasks  task.Store
		events eventlog.Store
		probe  httpapi.ReadyProbe
	)
	if cfg.DatabaseDSN != "" {
		pgStore, err := pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer pgStore.Close()
		if err := pgStore.Ping(ctx); err != nil {
			log.Fatalf("ping db: %v", err)
		}
		users = pgStore.Users()
		tasks = pgStore.Tasks()
		events = pgStore.Events()
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		log.Print("no TASKHUB_PG_DSN set, using in-memory stores")
		memUsers := user.NewInMemory()
		users = memUsers
		tasks = task.NewInMemory(memUsers)
		events = eventlog.NewInMemory()
	}

	// Task-list cache: Redis when configured so invalidation sweeps reach
	// every replica.
	var listCache cache.Cache
	if cfg.RedisURL != "" {
		listCache, err = cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("connect redis: %v", err)
		}
	} else {
		log.Print("no TASKHUB_REDIS_URL set, using in-process cache")
		listCache = cache.NewMemory()
	}
	defer listCache.Close()

	tokens, err := auth.NewTokenIssuer(cfg.AuthSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	hub := stream.New()
	eventLog := eventlog.New(events)

	authSvc := auth.NewService(users, tokens)
	userSvc := user.NewService(users)
	taskSvc := task.NewService(tasks, users, listCache, eventLog, hub,
		task.WithListTTL(cfg.CacheTTL))

	if cfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, users, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("bootstrap admin: %v", err)
		}
	}

	api := httpapi.New(httpapi.Options{
		Auth:           authSvc,
		Users:          userSvc,
		Tasks:          taskSvc,
		Events:         eventLog,
		Stream:         hub,
		Ready:          probe,
		Version:        version,
		AllowedOrigins: cfg.AllowedOrigins(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	log.Printf("Starting taskhub-api %s on %s", version, srv.Addr)
	obs.SetReady(true)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	obs.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Println("Stopped")
}

// ensureAdmin creates the bootstrap administrator account when it does not
// exist yet. An existing account keeps its password.
func ensureAdmin(ctx context.Context, users user.Store, email, password string) error {
	if _, err := users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u := &user.User{
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
	}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil
		}
		return err
	}
	log.Printf("created bootstrap admin %s", email)
	return nil
}
