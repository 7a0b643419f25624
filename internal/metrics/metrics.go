package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Vote Processing Metrics
var (
	// VotesProcessedTotal tracks vote submissions by result
	// (recorded, insufficient_credits, direction_change, debounced, rejected)
	VotesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_processed_total",
			Help: "Total vote submissions by result",
		},
		[]string{"result"},
	)

	// VoteProcessingDuration tracks end-to-end vote handling latency,
	// including the decision check and any graph mutation
	VoteProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vote_processing_duration_seconds",
			Help:    "Vote processing duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	// VoteCreditsSpent tracks the quadratic cost paid per recorded vote
	VoteCreditsSpent = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vote_credits_spent",
			Help:    "Credits debited per recorded vote",
			Buckets: []float64{1, 3, 5, 7, 9, 15, 25},
		},
	)
)

// Proposal Metrics
var (
	// ProposalsCreatedTotal tracks proposal submissions by target and kind
	ProposalsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposals_created_total",
			Help: "Total proposals created by target (NODE/EDGE) and kind (CREATE/UPDATE/DELETE)",
		},
		[]string{"target", "kind"},
	)

	// ProposalsDecidedTotal tracks terminal decisions by outcome
	ProposalsDecidedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposals_decided_total",
			Help: "Total proposals reaching a terminal status by outcome (APPROVED/REJECTED)",
		},
		[]string{"outcome"},
	)
)

// Graph Store Metrics
var (
	// GraphMutationsTotal tracks graph mutations by operation and status
	GraphMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graph_mutations_total",
			Help: "Total graph store mutations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// GraphMutationFailures tracks approved proposals whose graph mutation
	// failed and which therefore await manual reconciliation
	GraphMutationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "graph_mutation_failures_total",
			Help: "Total approved proposals left without a linked graph entity",
		},
	)
)

// Credit Recompute Metrics
var (
	// RecomputeRunsTotal tracks recompute job runs by status (ok/partial)
	RecomputeRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_recompute_runs_total",
			Help: "Total credit recompute runs by status",
		},
		[]string{"status"},
	)

	// RecomputeDuration tracks full recompute sweep duration
	RecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "credit_recompute_duration_seconds",
			Help:    "Credit recompute sweep duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// RecomputeEntityErrors tracks per-entity failures inside a sweep
	RecomputeEntityErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_recompute_entity_errors_total",
			Help: "Total per-entity failures during credit recompute by scope (membership/community)",
		},
		[]string{"scope"},
	)
)

// Embedding Metrics
var (
	// EmbeddingRecomputesTotal tracks embedding recomputations by status
	EmbeddingRecomputesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_recomputes_total",
			Help: "Total embedding recomputations by status",
		},
		[]string{"status"},
	)
)

// Database Metrics
var (
	// DBQueryDuration tracks database query duration by query name
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"query"},
	)

	// DBErrorsTotal tracks database errors by query name
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total database errors by query",
		},
		[]string{"query"},
	)
)

// Build Information Metrics
var (
	// BuildInfo is a gauge that always returns 1, with build metadata as labels
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, build_time, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "build_time", "go_version"},
	)
)

// HTTP Error Metrics
// Note: http_errors_total{type} is provided by internal/errors package
