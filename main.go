package main

import (
	"context"
	"log"
	"net/http"
	"os"
	osignal "os/signal"
	"syscall"
	"time"

	"github.com/HatimDz/crypto-sub000/internal/api"
	"github.com/HatimDz/crypto-sub000/internal/events"
	"github.com/HatimDz/crypto-sub000/internal/learning"
	"github.com/HatimDz/crypto-sub000/internal/market"
	"github.com/HatimDz/crypto-sub000/internal/signal"
	"github.com/HatimDz/crypto-sub000/pkg/cache"
	"github.com/HatimDz/crypto-sub000/pkg/config"
	"github.com/HatimDz/crypto-sub000/pkg/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	buildVersion := os.Getenv("APP_VERSION")
	if buildVersion == "" {
		buildVersion = "v1.0-dev"
	}
	log.Printf("starting analysis core %s on port %s", buildVersion, cfg.Port)
	log.Printf("using database at %s", cfg.DBPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core services
	bus := events.NewBus()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	defer database.Close()
	if err := db.ApplyMigrations(database); err != nil {
		log.Fatalf("database migrations failed: %v", err)
	}

	// Market data: rate limited client behind a TTL cache.
	seriesCache := cache.NewSeriesCache(cfg.CacheTTL)
	provider := market.NewCachedProvider(
		market.NewBinanceProvider(cfg.MarketBaseURL, cfg.MarketTestnet),
		seriesCache,
	)
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := seriesCache.Cleanup(); removed > 0 {
					log.Printf("cache cleanup dropped %d stale series", removed)
				}
			}
		}
	}()

	// Cross-session learning backed by SQLite.
	learner := learning.NewLearner(database.LearningStore(), cfg.LearningRate)

	// Optional indicator profiles from YAML.
	var profiles []signal.Profile
	if cfg.ProfilePath != "" {
		profiles, err = signal.LoadProfiles(cfg.ProfilePath)
		if err != nil {
			log.Fatalf("profile load failed: %v", err)
		}
		log.Printf("loaded %d analysis profiles from %s", len(profiles), cfg.ProfilePath)
	}

	if cfg.APIAccessKey == "" {
		log.Println("API_ACCESS_KEY is not set; token issuance is disabled")
	}

	server := api.NewServer(
		bus,
		database,
		provider,
		learner,
		profiles,
		api.SystemMeta{
			Version: buildVersion,
			Testnet: cfg.MarketTestnet,
			Symbols: cfg.DefaultSymbols,
		},
		cfg.JWTSecret,
		cfg.APIAccessKey,
	)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Router,
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	osignal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
