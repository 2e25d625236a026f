package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warungpos/backend/internal/config"
	"warungpos/backend/internal/feed"
	"warungpos/backend/internal/httpapi"
	"warungpos/backend/internal/service"
	"warungpos/backend/internal/store/dual"
	"warungpos/backend/internal/store/memory"
	pgstore "warungpos/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 2)

	var local *memory.Store
	if cfg.SeedDemo {
		local = memory.NewSeeded(cfg.WarungID)
		log.Println("local store: in-memory (demo data seeded)")
	} else {
		local = memory.New()
		log.Println("local store: in-memory")
	}

	var replica *pgstore.Replica
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start without the replica", err)
		}
		replica = pg
		closers = append(closers, pg.Close)
		if err := local.Restore(ctx, cfg.WarungID, pg); err != nil {
			log.Fatalf("restore from replica: %v", err)
		}
		log.Println("replica: postgres (local state restored)")
	} else {
		log.Println("replica: none")
	}

	publishers := feed.Multi{feed.NewHub()}
	if cfg.RedisAddr != "" {
		redisPub, err := feed.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("redis unavailable (%v), change feed stays in-process", err)
		} else {
			publishers = append(publishers, redisPub)
			closers = append(closers, redisPub.Close)
			log.Println("change feed: redis")
		}
	} else {
		log.Println("change feed: in-process only")
	}

	var st *dual.Store
	if replica != nil {
		st = dual.New(local, replica, publishers)
	} else {
		st = dual.New(local, nil, publishers)
	}

	svc := service.New(st)
	auth, err := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, cfg.WarungID)
	if err != nil {
		log.Fatalf("auth setup: %v", err)
	}
	if err := auth.RegisterUser(cfg.OwnerUsername, cfg.OwnerPassword, "owner"); err != nil {
		log.Fatalf("register owner account: %v", err)
	}
	if cfg.StaffPassword != "" {
		if err := auth.RegisterUser(cfg.StaffUsername, cfg.StaffPassword, "staff"); err != nil {
			log.Fatalf("register staff account: %v", err)
		}
	}
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("warung backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	// Drain pending mirror writes before closing the replica connection.
	st.Close()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if len(cfg.OwnerPassword) < 8 {
		return fmt.Errorf("OWNER_PASSWORD must be set and at least 8 characters")
	}
	return nil
}
