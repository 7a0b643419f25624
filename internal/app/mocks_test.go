package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
)

// --- Mock implementations ---

type mockCommunityRepo struct {
	createFn                func(ctx context.Context, name string) (*domain.Community, error)
	getByIDFn               func(ctx context.Context, communityID uuid.UUID) (*domain.Community, error)
	updateVotingPotentialFn func(ctx context.Context, communityID uuid.UUID, total int64) error
}

func (m *mockCommunityRepo) Create(ctx context.Context, name string) (*domain.Community, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockCommunityRepo) GetByID(ctx context.Context, communityID uuid.UUID) (*domain.Community, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, communityID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockCommunityRepo) UpdateVotingPotential(ctx context.Context, communityID uuid.UUID, total int64) error {
	if m.updateVotingPotentialFn != nil {
		return m.updateVotingPotentialFn(ctx, communityID, total)
	}
	return fmt.Errorf("not implemented")
}

type mockMembershipRepo struct {
	createFn        func(ctx context.Context, userID, communityID uuid.UUID) (*domain.Membership, error)
	getFn           func(ctx context.Context, userID, communityID uuid.UUID) (*domain.Membership, error)
	listFn          func(ctx context.Context) ([]domain.Membership, error)
	updateDerivedFn func(ctx context.Context, userID, communityID uuid.UUID, credits, maxVotes int64) error
}

func (m *mockMembershipRepo) Create(ctx context.Context, userID, communityID uuid.UUID) (*domain.Membership, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, communityID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockMembershipRepo) Get(ctx context.Context, userID, communityID uuid.UUID) (*domain.Membership, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, communityID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockMembershipRepo) List(ctx context.Context) ([]domain.Membership, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockMembershipRepo) UpdateDerived(ctx context.Context, userID, communityID uuid.UUID, credits, maxVotes int64) error {
	if m.updateDerivedFn != nil {
		return m.updateDerivedFn(ctx, userID, communityID, credits, maxVotes)
	}
	return fmt.Errorf("not implemented")
}

type mockProposalRepo struct {
	createNodeFn       func(ctx context.Context, communityID, proposerID uuid.UUID, kind domain.ProposalKind, payload domain.NodePayload, targetGraphID string) (*domain.Proposal, error)
	createEdgeFn       func(ctx context.Context, communityID, proposerID uuid.UUID, payload domain.EdgePayload) (*domain.Proposal, error)
	getByIDFn          func(ctx context.Context, proposalID uuid.UUID) (*domain.Proposal, error)
	listByCommunityFn  func(ctx context.Context, communityID uuid.UUID) ([]domain.Proposal, error)
	finalizeFn         func(ctx context.Context, proposalID uuid.UUID, status domain.ProposalStatus, delta int64) (*domain.Proposal, bool, error)
	setLinkedGraphIDFn func(ctx context.Context, proposalID uuid.UUID, graphID string) error
}

func (m *mockProposalRepo) CreateNode(ctx context.Context, communityID, proposerID uuid.UUID, kind domain.ProposalKind, payload domain.NodePayload, targetGraphID string) (*domain.Proposal, error) {
	if m.createNodeFn != nil {
		return m.createNodeFn(ctx, communityID, proposerID, kind, payload, targetGraphID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockProposalRepo) CreateEdge(ctx context.Context, communityID, proposerID uuid.UUID, payload domain.EdgePayload) (*domain.Proposal, error) {
	if m.createEdgeFn != nil {
		return m.createEdgeFn(ctx, communityID, proposerID, payload)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockProposalRepo) GetByID(ctx context.Context, proposalID uuid.UUID) (*domain.Proposal, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, proposalID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockProposalRepo) ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]domain.Proposal, error) {
	if m.listByCommunityFn != nil {
		return m.listByCommunityFn(ctx, communityID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockProposalRepo) Finalize(ctx context.Context, proposalID uuid.UUID, status domain.ProposalStatus, delta int64) (*domain.Proposal, bool, error) {
	if m.finalizeFn != nil {
		return m.finalizeFn(ctx, proposalID, status, delta)
	}
	return nil, false, fmt.Errorf("not implemented")
}

func (m *mockProposalRepo) SetLinkedGraphID(ctx context.Context, proposalID uuid.UUID, graphID string) error {
	if m.setLinkedGraphIDFn != nil {
		return m.setLinkedGraphIDFn(ctx, proposalID, graphID)
	}
	return fmt.Errorf("not implemented")
}

type mockVoteLedger struct {
	recordVoteFn func(ctx context.Context, proposalID, userID uuid.UUID, direction domain.VoteDirection) (*domain.VoteReceipt, error)
	getVoteFn    func(ctx context.Context, proposalID, userID uuid.UUID) (*domain.Vote, error)
}

func (m *mockVoteLedger) RecordVote(ctx context.Context, proposalID, userID uuid.UUID, direction domain.VoteDirection) (*domain.VoteReceipt, error) {
	if m.recordVoteFn != nil {
		return m.recordVoteFn(ctx, proposalID, userID, direction)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockVoteLedger) GetVote(ctx context.Context, proposalID, userID uuid.UUID) (*domain.Vote, error) {
	if m.getVoteFn != nil {
		return m.getVoteFn(ctx, proposalID, userID)
	}
	return nil, fmt.Errorf("not implemented")
}

type mockDebouncer struct {
	allowFn func(ctx context.Context, proposalID, userID uuid.UUID) (bool, error)
}

func (m *mockDebouncer) Allow(ctx context.Context, proposalID, userID uuid.UUID) (bool, error) {
	if m.allowFn != nil {
		return m.allowFn(ctx, proposalID, userID)
	}
	return true, nil
}

type mockGraphStore struct {
	createNodeFn func(ctx context.Context, labels []string, properties map[string]any) (string, error)
	updateNodeFn func(ctx context.Context, nodeID string, labels []string, properties map[string]any) (string, error)
	deleteNodeFn func(ctx context.Context, nodeID string) (string, error)
	createEdgeFn func(ctx context.Context, edgeType, sourceID, targetID string, properties map[string]any) (string, error)
	getNodeFn    func(ctx context.Context, nodeID string) (*domain.GraphNode, error)
	getEdgeFn    func(ctx context.Context, edgeID string) (*domain.GraphEdge, error)
}

func (m *mockGraphStore) CreateNode(ctx context.Context, labels []string, properties map[string]any) (string, error) {
	if m.createNodeFn != nil {
		return m.createNodeFn(ctx, labels, properties)
	}
	return "", fmt.Errorf("not implemented")
}

func (m *mockGraphStore) UpdateNode(ctx context.Context, nodeID string, labels []string, properties map[string]any) (string, error) {
	if m.updateNodeFn != nil {
		return m.updateNodeFn(ctx, nodeID, labels, properties)
	}
	return "", fmt.Errorf("not implemented")
}

func (m *mockGraphStore) DeleteNode(ctx context.Context, nodeID string) (string, error) {
	if m.deleteNodeFn != nil {
		return m.deleteNodeFn(ctx, nodeID)
	}
	return "", fmt.Errorf("not implemented")
}

func (m *mockGraphStore) CreateEdge(ctx context.Context, edgeType, sourceID, targetID string, properties map[string]any) (string, error) {
	if m.createEdgeFn != nil {
		return m.createEdgeFn(ctx, edgeType, sourceID, targetID, properties)
	}
	return "", fmt.Errorf("not implemented")
}

func (m *mockGraphStore) GetNode(ctx context.Context, nodeID string) (*domain.GraphNode, error) {
	if m.getNodeFn != nil {
		return m.getNodeFn(ctx, nodeID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockGraphStore) GetEdge(ctx context.Context, edgeID string) (*domain.GraphEdge, error) {
	if m.getEdgeFn != nil {
		return m.getEdgeFn(ctx, edgeID)
	}
	return nil, fmt.Errorf("not implemented")
}

// mockEmbedder records which nodes were recomputed; safe for the detached
// goroutines the service spawns.
type mockEmbedder struct {
	mu    sync.Mutex
	calls []string
}

func (m *mockEmbedder) RecomputeEmbedding(_ context.Context, nodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, nodeID)
	return nil
}

func (m *mockEmbedder) recomputed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
