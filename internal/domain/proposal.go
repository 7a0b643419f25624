package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ProposalTarget string

const (
	TargetNode ProposalTarget = "NODE"
	TargetEdge ProposalTarget = "EDGE"
)

type ProposalKind string

const (
	KindCreate ProposalKind = "CREATE"
	KindUpdate ProposalKind = "UPDATE"
	KindDelete ProposalKind = "DELETE"
)

type ProposalStatus string

const (
	StatusPending  ProposalStatus = "PENDING"
	StatusApproved ProposalStatus = "APPROVED"
	StatusRejected ProposalStatus = "REJECTED"
)

// NodePayload describes the node a proposal wants to create, update or delete.
type NodePayload struct {
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

// EdgePayload describes the relationship an edge proposal wants to create.
// Edge proposals are CREATE-only; endpoints reference existing graph nodes.
type EdgePayload struct {
	Type          string         `json:"type"`
	SourceGraphID string         `json:"sourceGraphId"`
	TargetGraphID string         `json:"targetGraphId"`
	Properties    map[string]any `json:"properties"`
}

// Proposal is a community's pending change to the knowledge graph. Status is
// terminal once APPROVED or REJECTED; the transition out of PENDING happens
// exactly once, through ProposalRepository.Finalize.
type Proposal struct {
	ID          uuid.UUID
	CommunityID uuid.UUID
	ProposerID  uuid.UUID
	Target      ProposalTarget
	Kind        ProposalKind
	Status      ProposalStatus

	// Exactly one of Node/Edge is set, matching Target.
	Node *NodePayload
	Edge *EdgePayload

	// TargetGraphID is the existing graph node for UPDATE/DELETE kinds.
	TargetGraphID string
	// LinkedGraphID references the mutated graph entity, set only after an
	// APPROVED proposal's graph mutation lands. An APPROVED proposal with an
	// empty LinkedGraphID needs operator reconciliation.
	LinkedGraphID string

	Upvotes   int64
	Downvotes int64

	DecidedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Decided reports whether the proposal has reached a terminal state.
func (p *Proposal) Decided() bool {
	return p.Status != StatusPending
}

type ProposalRepository interface {
	CreateNode(ctx context.Context, communityID, proposerID uuid.UUID, kind ProposalKind, payload NodePayload, targetGraphID string) (*Proposal, error)
	CreateEdge(ctx context.Context, communityID, proposerID uuid.UUID, payload EdgePayload) (*Proposal, error)
	GetByID(ctx context.Context, proposalID uuid.UUID) (*Proposal, error)
	ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]Proposal, error)

	// Finalize atomically moves the proposal out of PENDING and applies the
	// proposer's reputation delta. The status write is a compare-and-set:
	// when another vote event already decided the proposal, Finalize returns
	// the current row and won=false, and applies no delta. Only the caller
	// that sees won=true may run terminal side effects.
	Finalize(ctx context.Context, proposalID uuid.UUID, status ProposalStatus, proposerReputationDelta int64) (proposal *Proposal, won bool, err error)

	// SetLinkedGraphID records the graph entity created or touched by an
	// approved proposal's mutation.
	SetLinkedGraphID(ctx context.Context, proposalID uuid.UUID, graphID string) error
}
