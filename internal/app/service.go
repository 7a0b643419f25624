package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/metrics"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/voting"
)

// Service is the application layer — the only component that references
// multiple domain components. It orchestrates all use cases.
type Service struct {
	communities domain.CommunityRepository
	memberships domain.MembershipRepository
	proposals   domain.ProposalRepository
	ledger      domain.VoteLedger
	debouncer   domain.VoteDebouncer
	graph       domain.GraphStore
	embedder    domain.Embedder
	recomputer  *CreditRecomputer
}

// NewService creates the application layer service.
// embedder may be nil when embedding recomputation is not configured.
func NewService(
	communities domain.CommunityRepository,
	memberships domain.MembershipRepository,
	proposals domain.ProposalRepository,
	ledger domain.VoteLedger,
	debouncer domain.VoteDebouncer,
	graph domain.GraphStore,
	embedder domain.Embedder,
	recomputer *CreditRecomputer,
) *Service {
	if debouncer == nil {
		debouncer = allowAllDebouncer{}
	}
	return &Service{
		communities: communities,
		memberships: memberships,
		proposals:   proposals,
		ledger:      ledger,
		debouncer:   debouncer,
		graph:       graph,
		embedder:    embedder,
		recomputer:  recomputer,
	}
}

// CreateCommunity creates a new community with an empty ledger.
func (s *Service) CreateCommunity(ctx context.Context, name string) (*domain.Community, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrInvalidCommunityName
	}
	return s.communities.Create(ctx, strings.TrimSpace(name))
}

// JoinCommunity creates a membership with the initial reputation grant. The
// community must exist; joining twice returns the existing membership.
func (s *Service) JoinCommunity(ctx context.Context, userID, communityID uuid.UUID) (*domain.Membership, error) {
	if _, err := s.communities.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	return s.memberships.Create(ctx, userID, communityID)
}

// CreateNodeProposal submits a node proposal. The proposer must be a member;
// payload shape depends on the kind: CREATE needs labels, UPDATE and DELETE
// need an existing target node.
func (s *Service) CreateNodeProposal(ctx context.Context, communityID, proposerID uuid.UUID, kind domain.ProposalKind, payload domain.NodePayload, targetGraphID string) (*domain.Proposal, error) {
	if err := s.requireMembership(ctx, proposerID, communityID); err != nil {
		return nil, err
	}

	switch kind {
	case domain.KindCreate:
		if len(payload.Labels) == 0 {
			return nil, fmt.Errorf("%w: CREATE requires at least one label", domain.ErrInvalidProposal)
		}
		if targetGraphID != "" {
			return nil, fmt.Errorf("%w: CREATE must not reference a target node", domain.ErrInvalidProposal)
		}
	case domain.KindUpdate:
		if targetGraphID == "" {
			return nil, fmt.Errorf("%w: UPDATE requires a target node", domain.ErrInvalidProposal)
		}
	case domain.KindDelete:
		if targetGraphID == "" {
			return nil, fmt.Errorf("%w: DELETE requires a target node", domain.ErrInvalidProposal)
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidProposal, kind)
	}

	proposal, err := s.proposals.CreateNode(ctx, communityID, proposerID, kind, payload, targetGraphID)
	if err != nil {
		return nil, err
	}
	metrics.ProposalsCreatedTotal.WithLabelValues(string(domain.TargetNode), string(kind)).Inc()
	return proposal, nil
}

// CreateEdgeProposal submits an edge proposal. Edges are CREATE-only and
// connect two existing graph nodes.
func (s *Service) CreateEdgeProposal(ctx context.Context, communityID, proposerID uuid.UUID, payload domain.EdgePayload) (*domain.Proposal, error) {
	if err := s.requireMembership(ctx, proposerID, communityID); err != nil {
		return nil, err
	}

	if payload.Type == "" {
		return nil, fmt.Errorf("%w: edge type is required", domain.ErrInvalidProposal)
	}
	if payload.SourceGraphID == "" || payload.TargetGraphID == "" {
		return nil, fmt.Errorf("%w: edge endpoints are required", domain.ErrInvalidProposal)
	}

	proposal, err := s.proposals.CreateEdge(ctx, communityID, proposerID, payload)
	if err != nil {
		return nil, err
	}
	metrics.ProposalsCreatedTotal.WithLabelValues(string(domain.TargetEdge), string(domain.KindCreate)).Inc()
	return proposal, nil
}

// GetProposal retrieves a single proposal by ID.
func (s *Service) GetProposal(ctx context.Context, proposalID uuid.UUID) (*domain.Proposal, error) {
	return s.proposals.GetByID(ctx, proposalID)
}

// ListProposals lists a community's proposals, newest first.
func (s *Service) ListProposals(ctx context.Context, communityID uuid.UUID) ([]domain.Proposal, error) {
	if _, err := s.communities.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	return s.proposals.ListByCommunity(ctx, communityID)
}

// CastVote records one priced vote and, when the refreshed tally crosses a
// decision threshold, drives the proposal to its terminal state. The vote
// itself commits independently of the decision: a failed decision check or
// graph mutation never rolls back the ledger.
func (s *Service) CastVote(ctx context.Context, proposalID, userID uuid.UUID, direction domain.VoteDirection) (*domain.VoteResult, error) {
	timer := prometheus.NewTimer(metrics.VoteProcessingDuration)
	defer timer.ObserveDuration()

	if !direction.Valid() {
		return nil, domain.ErrInvalidDirection
	}

	allowed, err := s.debouncer.Allow(ctx, proposalID, userID)
	if err != nil {
		// Debouncing is best-effort: a broken Redis must not block voting.
		slog.Warn("Vote debounce check failed, allowing vote", "proposal_id", proposalID, "error", err)
	} else if !allowed {
		metrics.VotesProcessedTotal.WithLabelValues("debounced").Inc()
		return nil, domain.ErrVoteDebounced
	}

	receipt, err := s.ledger.RecordVote(ctx, proposalID, userID, direction)
	if err != nil {
		metrics.VotesProcessedTotal.WithLabelValues(voteFailureResult(err)).Inc()
		return nil, err
	}

	metrics.VotesProcessedTotal.WithLabelValues("recorded").Inc()
	metrics.VoteCreditsSpent.Observe(float64(receipt.Cost))

	result := &domain.VoteResult{
		Proposal:   receipt.Proposal,
		Membership: receipt.Membership,
	}

	community, err := s.communities.GetByID(ctx, receipt.Proposal.CommunityID)
	if err != nil {
		// The vote is committed; without the community row we cannot run
		// the decision check, so the proposal just stays pending.
		slog.Error("Decision check skipped, community lookup failed",
			"proposal_id", proposalID, "community_id", receipt.Proposal.CommunityID, "error", err)
		return result, nil
	}

	outcome := voting.Decide(receipt.Proposal.Upvotes, receipt.Proposal.Downvotes, community.TotalVotingPotential)
	if outcome == voting.OutcomePending {
		return result, nil
	}

	status := domain.StatusApproved
	delta := int64(voting.ProposerBonus)
	if outcome == voting.OutcomeReject {
		status = domain.StatusRejected
		delta = int64(voting.ProposerPenalty)
	}

	final, won, err := s.proposals.Finalize(ctx, proposalID, status, delta)
	if err != nil {
		slog.Error("Proposal finalization failed", "proposal_id", proposalID, "status", status, "error", err)
		return result, nil
	}
	result.Proposal = final

	if !won {
		// A concurrent vote event already decided the proposal; its
		// terminal side effects belong to that event.
		return result, nil
	}

	metrics.ProposalsDecidedTotal.WithLabelValues(string(status)).Inc()
	slog.Info("Proposal decided",
		"proposal_id", proposalID,
		"status", status,
		"upvotes", final.Upvotes,
		"downvotes", final.Downvotes,
		"voting_potential", community.TotalVotingPotential)

	if status == domain.StatusApproved {
		s.applyApprovedProposal(ctx, final)
	}

	return result, nil
}

// applyApprovedProposal runs the graph mutation for a freshly approved
// proposal. A failed mutation leaves the proposal APPROVED without a linked
// graph entity; it is logged for operator reconciliation and never retried
// automatically.
func (s *Service) applyApprovedProposal(ctx context.Context, proposal *domain.Proposal) {
	graphID, err := s.mutateGraph(ctx, proposal)
	if err != nil {
		metrics.GraphMutationFailures.Inc()
		slog.Error("Graph mutation failed for approved proposal, needs reconciliation",
			"proposal_id", proposal.ID,
			"target", proposal.Target,
			"kind", proposal.Kind,
			"error", err)
		return
	}

	if proposal.Kind != domain.KindDelete {
		if err := s.proposals.SetLinkedGraphID(ctx, proposal.ID, graphID); err != nil {
			slog.Error("Failed to link graph entity to approved proposal, needs reconciliation",
				"proposal_id", proposal.ID, "graph_id", graphID, "error", err)
		} else {
			proposal.LinkedGraphID = graphID
		}
	}

	s.recomputeEmbeddings(proposal, graphID)
}

func (s *Service) mutateGraph(ctx context.Context, proposal *domain.Proposal) (string, error) {
	if proposal.Target == domain.TargetEdge {
		id, err := s.graph.CreateEdge(ctx, proposal.Edge.Type, proposal.Edge.SourceGraphID, proposal.Edge.TargetGraphID, proposal.Edge.Properties)
		observeGraphMutation("create_edge", err)
		return id, err
	}

	switch proposal.Kind {
	case domain.KindCreate:
		id, err := s.graph.CreateNode(ctx, proposal.Node.Labels, proposal.Node.Properties)
		observeGraphMutation("create_node", err)
		return id, err
	case domain.KindUpdate:
		id, err := s.graph.UpdateNode(ctx, proposal.TargetGraphID, proposal.Node.Labels, proposal.Node.Properties)
		observeGraphMutation("update_node", err)
		return id, err
	case domain.KindDelete:
		id, err := s.graph.DeleteNode(ctx, proposal.TargetGraphID)
		observeGraphMutation("delete_node", err)
		return id, err
	default:
		return "", fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidProposal, proposal.Kind)
	}
}

// recomputeEmbeddings refreshes vectors for the nodes a mutation touched.
// Runs detached from the request: embedding providers are slow and flaky.
func (s *Service) recomputeEmbeddings(proposal *domain.Proposal, graphID string) {
	if s.embedder == nil || proposal.Kind == domain.KindDelete {
		return
	}

	nodeIDs := []string{graphID}
	if proposal.Target == domain.TargetEdge {
		nodeIDs = []string{proposal.Edge.SourceGraphID, proposal.Edge.TargetGraphID}
	}

	for _, nodeID := range nodeIDs {
		go func(nodeID string) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := s.embedder.RecomputeEmbedding(ctx, nodeID); err != nil {
				metrics.EmbeddingRecomputesTotal.WithLabelValues("error").Inc()
				slog.Warn("Embedding recompute failed", "node_id", nodeID, "error", err)
				return
			}
			metrics.EmbeddingRecomputesTotal.WithLabelValues("success").Inc()
		}(nodeID)
	}
}

// RecomputeCredits runs one credit recomputation sweep on demand.
func (s *Service) RecomputeCredits(ctx context.Context) (*domain.RecomputeReport, error) {
	if s.recomputer == nil {
		return nil, fmt.Errorf("credit recomputer is not configured")
	}
	return s.recomputer.RunOnce(ctx)
}

// GetNode reads a node from the graph store.
func (s *Service) GetNode(ctx context.Context, nodeID string) (*domain.GraphNode, error) {
	return s.graph.GetNode(ctx, nodeID)
}

// GetEdge reads an edge from the graph store.
func (s *Service) GetEdge(ctx context.Context, edgeID string) (*domain.GraphEdge, error) {
	return s.graph.GetEdge(ctx, edgeID)
}

func (s *Service) requireMembership(ctx context.Context, userID, communityID uuid.UUID) error {
	if _, err := s.communities.GetByID(ctx, communityID); err != nil {
		return err
	}
	if _, err := s.memberships.Get(ctx, userID, communityID); err != nil {
		return err
	}
	return nil
}

func voteFailureResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientCredits):
		return "insufficient_credits"
	case errors.Is(err, domain.ErrDirectionChange):
		return "direction_change"
	case errors.Is(err, domain.ErrProposalNotPending):
		return "not_pending"
	default:
		return "rejected"
	}
}

func observeGraphMutation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.GraphMutationsTotal.WithLabelValues(operation, status).Inc()
}

// allowAllDebouncer stands in when no Redis debouncer is configured.
type allowAllDebouncer struct{}

func (allowAllDebouncer) Allow(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return true, nil
}
