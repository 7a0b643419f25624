package domain

import (
	"context"

	"github.com/google/uuid"
)

// VoteResult is returned to callers of CastVote: the proposal as of the
// latest committed vote and the voter's membership after the debit.
type VoteResult struct {
	Proposal   *Proposal   `json:"proposal"`
	Membership *Membership `json:"membership"`
}

// RecomputeError reports one entity the credit recomputation job failed to
// update. The job continues past individual failures.
type RecomputeError struct {
	Scope       string    `json:"scope"` // "membership" or "community"
	UserID      uuid.UUID `json:"userId,omitempty"`
	CommunityID uuid.UUID `json:"communityId"`
	Message     string    `json:"message"`
}

// RecomputeReport summarizes one run of the credit recomputation job.
type RecomputeReport struct {
	UpdatedMemberships int              `json:"updatedMemberships"`
	UpdatedCommunities int              `json:"updatedCommunities"`
	Errors             []RecomputeError `json:"errors,omitempty"`
}

// ConsensusService is the application layer contract - handlers route all
// operations through here.
type ConsensusService interface {
	CreateCommunity(ctx context.Context, name string) (*Community, error)
	JoinCommunity(ctx context.Context, userID, communityID uuid.UUID) (*Membership, error)

	CreateNodeProposal(ctx context.Context, communityID, proposerID uuid.UUID, kind ProposalKind, payload NodePayload, targetGraphID string) (*Proposal, error)
	CreateEdgeProposal(ctx context.Context, communityID, proposerID uuid.UUID, payload EdgePayload) (*Proposal, error)
	GetProposal(ctx context.Context, proposalID uuid.UUID) (*Proposal, error)
	ListProposals(ctx context.Context, communityID uuid.UUID) ([]Proposal, error)

	CastVote(ctx context.Context, proposalID, userID uuid.UUID, direction VoteDirection) (*VoteResult, error)
	RecomputeCredits(ctx context.Context) (*RecomputeReport, error)

	GetNode(ctx context.Context, nodeID string) (*GraphNode, error)
	GetEdge(ctx context.Context, edgeID string) (*GraphEdge, error)
}
