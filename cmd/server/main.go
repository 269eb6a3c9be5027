// cmd/server/main.go
// This is the entry point for the PlayMate API server.
// It wires configuration, logging, tracing, the database, the session store and the
// notification hub into the HTTP server, then serves until SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/trentd187/playmate/internal/config"
	"github.com/trentd187/playmate/internal/database"
	"github.com/trentd187/playmate/internal/logger"
	"github.com/trentd187/playmate/internal/notify"
	"github.com/trentd187/playmate/internal/server"
	"github.com/trentd187/playmate/internal/session"
	"github.com/trentd187/playmate/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	baseLogger := logger.New(cfg.ServiceName, !cfg.IsProduction())
	log.SetLogger(baseLogger) // Global logger used by log.Context in handlers
	helper := logger.Module(baseLogger, "main")

	if err := run(cfg, baseLogger, helper); err != nil {
		helper.Fatalw("msg", "server stopped", "err", err)
	}
}

func run(cfg *config.Config, baseLogger log.Logger, helper *log.Helper) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Connect to the database (PostgreSQL or SQLite, chosen by the DSN) and run any
	// pending migrations so the schema is always in sync when the server starts.
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, cfg.DatabaseURL); err != nil {
		return err
	}

	seed := database.SeedOptions{DefaultTurfs: cfg.Seed.DefaultTurfs, BcryptCost: cfg.BcryptCost}
	if cfg.Seed.Admin {
		seed.Admin = &database.AdminSeed{
			Name:     cfg.Seed.AdminName,
			Phone:    cfg.Seed.AdminPhone,
			Password: cfg.Seed.AdminPassword,
			Zone:     cfg.Seed.AdminZone,
		}
	}
	seeded, err := database.Seed(ctx, db, seed)
	if err != nil {
		return err
	}
	if seeded.Turfs > 0 {
		helper.Infow("msg", "seeded default turfs", "count", seeded.Turfs)
	}
	if seeded.Admin {
		helper.Warnw("msg", "seeded admin account; change its password", "phone", cfg.Seed.AdminPhone)
	}

	// Sessions live in Redis when configured so they survive restarts; otherwise in memory.
	var sessions session.Store
	if cfg.Redis.URL != "" {
		rs, err := session.NewRedisStore(ctx, session.RedisOptions{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rs.Close()
		sessions = rs
		helper.Infow("msg", "using redis session store", "addr", cfg.Redis.URL)
	} else {
		sessions = session.NewMemoryStore()
		helper.Info("using in-memory session store; sessions end on restart")
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := notify.NewHub()
	go hub.Run(hubCtx)

	app := server.New(server.Deps{
		DB:          db,
		Sessions:    sessions,
		Hub:         hub,
		Logger:      baseLogger,
		BcryptCost:  cfg.BcryptCost,
		CORSOrigins: cfg.AllowedOrigins(),
		StaticDir:   cfg.StaticDir,
		AccessLog:   true,
	})

	errc := make(chan error, 1)
	go func() {
		helper.Infow("msg", "starting server", "port", cfg.Port, "env", cfg.Env)
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	helper.Info("shutting down")
	// Closing the hub first ends open notification streams, which would otherwise
	// hold the listener open until the timeout.
	stopHub()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
