package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/metrics"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/platform/correlation"
)

// CreditRecomputer periodically rederives every membership's credits and max
// votes from its reputation, then refreshes each community's cached voting
// potential. A full sweep from current reputations is idempotent, so a missed
// or failed run is repaired by the next one.
type CreditRecomputer struct {
	memberships domain.MembershipRepository
	communities domain.CommunityRepository
	interval    time.Duration
	clock       clockwork.Clock
	stopCh      chan struct{}
}

// NewCreditRecomputer creates the recompute background job.
func NewCreditRecomputer(
	memberships domain.MembershipRepository,
	communities domain.CommunityRepository,
	interval time.Duration,
	clock clockwork.Clock,
) *CreditRecomputer {
	return &CreditRecomputer{
		memberships: memberships,
		communities: communities,
		interval:    interval,
		clock:       clock,
		stopCh:      make(chan struct{}),
	}
}

// Start runs the recompute loop until Stop is called.
func (r *CreditRecomputer) Start(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			runCtx := correlation.WithID(ctx, correlation.NewID())
			report, err := r.RunOnce(runCtx)
			if err != nil {
				slog.ErrorContext(runCtx, "Credit recompute run failed", "error", err)
				continue
			}
			slog.InfoContext(runCtx, "Credit recompute run finished",
				"updated_memberships", report.UpdatedMemberships,
				"updated_communities", report.UpdatedCommunities,
				"errors", len(report.Errors))
		case <-r.stopCh:
			slog.Info("Credit recomputer stopped")
			return
		case <-ctx.Done():
			slog.Info("Credit recomputer context cancelled")
			return
		}
	}
}

// Stop gracefully stops the recompute loop.
func (r *CreditRecomputer) Stop() {
	close(r.stopCh)
}

// RunOnce performs one full recompute sweep. Per-entity failures are
// collected in the report rather than aborting the sweep; the error return
// is reserved for not being able to sweep at all.
func (r *CreditRecomputer) RunOnce(ctx context.Context) (*domain.RecomputeReport, error) {
	timer := prometheus.NewTimer(metrics.RecomputeDuration)
	defer timer.ObserveDuration()

	members, err := r.memberships.List(ctx)
	if err != nil {
		metrics.RecomputeRunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	report := &domain.RecomputeReport{}
	potentials := make(map[uuid.UUID]int64)
	order := make([]uuid.UUID, 0)

	for _, member := range members {
		key := member.CommunityID
		if _, seen := potentials[key]; !seen {
			order = append(order, key)
			potentials[key] = 0
		}

		credits := isqrt(member.Reputation)
		maxVotes := isqrt(credits)

		if err := r.memberships.UpdateDerived(ctx, member.UserID, member.CommunityID, credits, maxVotes); err != nil {
			metrics.RecomputeEntityErrors.WithLabelValues("membership").Inc()
			report.Errors = append(report.Errors, domain.RecomputeError{
				Scope:       "membership",
				UserID:      member.UserID,
				CommunityID: member.CommunityID,
				Message:     err.Error(),
			})
			slog.Warn("Failed to update membership credits",
				"user_id", member.UserID, "community_id", member.CommunityID, "error", err)
			// The row keeps its previous derived values, so the community
			// potential must count those, not the ones we failed to write.
			potentials[key] += member.MaxVotes
			continue
		}

		report.UpdatedMemberships++
		potentials[key] += maxVotes
	}

	for _, communityID := range order {
		if err := r.communities.UpdateVotingPotential(ctx, communityID, potentials[communityID]); err != nil {
			metrics.RecomputeEntityErrors.WithLabelValues("community").Inc()
			report.Errors = append(report.Errors, domain.RecomputeError{
				Scope:       "community",
				CommunityID: communityID,
				Message:     err.Error(),
			})
			slog.Warn("Failed to update community voting potential",
				"community_id", communityID, "error", err)
			continue
		}
		report.UpdatedCommunities++
	}

	status := "ok"
	if len(report.Errors) > 0 {
		status = "partial"
	}
	metrics.RecomputeRunsTotal.WithLabelValues(status).Inc()

	return report, nil
}

// isqrt is the floor of the square root, with negative inputs clamped to 0.
// The float result is corrected so perfect squares never round the wrong way.
func isqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	r := int64(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
