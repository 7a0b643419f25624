package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/app"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/config"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/database"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/embedding"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/graph"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/logging"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/metrics"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/platform/version"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/redis"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupGraph(cfg *config.Config) *graph.Store {
	store, err := graph.NewStore(cfg.Neo4jURI, cfg.Neo4jUsername, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		slog.Error("Failed to create graph store", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Verify(ctx); err != nil {
		slog.Error("Failed to reach graph store", "error", err)
		os.Exit(1)
	}

	return store
}

func runGracefulShutdown(srv *server.Server, recomputer *app.CreditRecomputer, graphStore *graph.Store) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		recomputer.Stop()

		if err := graphStore.Close(shutdownCtx); err != nil {
			slog.Error("Failed to close graph driver", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	info := version.Get()
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.BuildTime, info.GoVersion).Set(1)

	pool := setupDB(cfg)
	defer pool.Close()

	graphStore := setupGraph(cfg)

	// Redis is optional: without it the double-submit guard is disabled.
	var debouncer domain.VoteDebouncer
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		client, err := redis.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = client.Close() }()
		debouncer = redis.NewVoteDebouncer(client, cfg.VoteDebounceTime)
		redisClient = client
	} else {
		slog.Warn("REDIS_URL not set, vote debouncing disabled")
	}

	communityRepo := database.NewCommunityRepo(pool)
	membershipRepo := database.NewMembershipRepo(pool)
	proposalRepo := database.NewProposalRepo(pool)
	voteLedger := database.NewVoteLedgerRepo(pool)

	embedder := embedding.NewService(graphStore, cfg.HFAPIURL, cfg.HFToken, cfg.HFModel, slog.Default())

	recomputer := app.NewCreditRecomputer(membershipRepo, communityRepo, cfg.RecomputeInterval, clock)
	go recomputer.Start(context.Background())

	appSvc := app.NewService(communityRepo, membershipRepo, proposalRepo, voteLedger, debouncer, graphStore, embedder, recomputer)

	srv := server.NewServer(cfg, appSvc, pool, graphStore, redisClient, clock)

	done := runGracefulShutdown(srv, recomputer, graphStore)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
