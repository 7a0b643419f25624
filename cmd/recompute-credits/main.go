// Command recompute-credits runs one credit recomputation sweep and exits.
// Useful for backfills and for environments without the in-process job.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/app"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/config"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/database"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	recomputer := app.NewCreditRecomputer(
		database.NewMembershipRepo(pool),
		database.NewCommunityRepo(pool),
		cfg.RecomputeInterval,
		clockwork.NewRealClock(),
	)

	report, err := recomputer.RunOnce(ctx)
	if err != nil {
		slog.Error("Credit recompute failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Credit recompute finished",
		"updated_memberships", report.UpdatedMemberships,
		"updated_communities", report.UpdatedCommunities,
		"errors", len(report.Errors))
	for _, recomputeErr := range report.Errors {
		slog.Warn("Recompute entity failure",
			"scope", recomputeErr.Scope,
			"user_id", recomputeErr.UserID,
			"community_id", recomputeErr.CommunityID,
			"message", recomputeErr.Message)
	}
	if len(report.Errors) > 0 {
		os.Exit(2)
	}
}
