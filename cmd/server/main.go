package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"competence-exchange/internal/app"
	"competence-exchange/internal/config"
	"competence-exchange/internal/database/migration"
	"competence-exchange/internal/database/seeder"
)

func main() {
	migrationsDir := flag.String("migrations", "migrations", "directory containing V<N>__name.sql files")
	seed := flag.Bool("seed", true, "seed default categories and competences on startup")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	bootstrap, cleanup, err := app.Bootstrap(cfg)
	if err != nil {
		log.Fatalf("failed to bootstrap app: %v", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Printf("cleanup error: %v", err)
		}
	}()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 60*time.Second)
	runner := migration.Runner{Dir: *migrationsDir}
	if err := runner.Run(startupCtx, bootstrap.Container.DB.SQLDB()); err != nil {
		cancelStartup()
		log.Fatalf("failed to run migrations: %v", err)
	}
	if *seed {
		if err := (seeder.Runner{Seeders: seeder.Defaults()}).Run(startupCtx, bootstrap.Container.DB); err != nil {
			cancelStartup()
			log.Fatalf("failed to seed defaults: %v", err)
		}
	}
	cancelStartup()

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		log.Fatalf("invalid HTTP port: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bootstrap.Fiber.Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}
