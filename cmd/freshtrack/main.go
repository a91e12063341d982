package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	html "github.com/gofiber/template/html/v2"
	"golang.org/x/sync/errgroup"

	"freshtrack/internal/config"
	"freshtrack/internal/dedup"
	"freshtrack/internal/expiry"
	"freshtrack/internal/http/handlers"
	"freshtrack/internal/notifier"
	"freshtrack/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
	log.Println("server stopped")
}

func run(cfg config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clock := expiry.SystemClock{Loc: loc}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.SeedDemo {
		if err := repos.SeedDemoItems(db, expiry.Today(clock)); err != nil {
			return fmt.Errorf("seeding demo items: %w", err)
		}
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis is optional; without it the database unique key alone suppresses duplicates
	var claimer *dedup.Claimer
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(shutdownCtx, 5*time.Second)
		rdb, err = dedup.Connect(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			return err
		}
		defer rdb.Close()
		claimer = dedup.New(rdb, time.Duration(cfg.Policy.NotifyWindowDays+1)*24*time.Hour)
		log.Println("[redis] notification claims enabled")
	}

	deps := handlers.NewDeps(db, cfg, claimer, clock)

	engine := html.New(cfg.TemplatesDir, ".html")
	app := handlers.NewApp(deps, handlers.AppOptions{Views: engine, AccessLog: true})

	var sched *notifier.Scheduler
	if cfg.NotifySchedule != "" {
		sched, err = notifier.Schedule(notifier.New(deps.Inventory, deps.Notifications), cfg.NotifySchedule, loc)
		if err != nil {
			return err
		}
		sched.Start()
		log.Printf("[notifier] scheduled %q (%s)", cfg.NotifySchedule, loc)
	}

	g, gctx := errgroup.WithContext(shutdownCtx)
	g.Go(func() error {
		log.Printf("listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done() // block until a signal or a listener failure
		log.Println("hold and wait, server is gracefully shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var errs []error
		if err := app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server failed shutdown gracefully: %w", err))
		}
		if sched != nil {
			if err := sched.Stop(ctx); err != nil {
				errs = append(errs, fmt.Errorf("notifier did not stop: %w", err))
			}
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}
