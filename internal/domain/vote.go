package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type VoteDirection int

const (
	DirectionUp   VoteDirection = 1
	DirectionDown VoteDirection = -1
)

// Valid reports whether the direction is one of the two legal values.
func (d VoteDirection) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// Vote is the accumulated signed vote of one user on one proposal. Magnitude
// grows with repeat same-direction votes; it never crosses zero (direction
// flips are rejected) and never resets while the proposal exists.
type Vote struct {
	ProposalID uuid.UUID
	UserID     uuid.UUID
	Magnitude  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// VoteReceipt is the committed outcome of one priced vote: the refreshed
// proposal counters and the voter's membership after the debit.
type VoteReceipt struct {
	Proposal   *Proposal
	Membership *Membership
	Cost       int64
	Magnitude  int64
}

// VoteLedger applies the votable unit of work as a single storage-level
// transaction: price the vote against the current magnitude, debit credits,
// award voter reputation, upsert the vote row and bump the first-direction
// counter. Nothing is written when any step fails.
type VoteLedger interface {
	RecordVote(ctx context.Context, proposalID, userID uuid.UUID, direction VoteDirection) (*VoteReceipt, error)
	GetVote(ctx context.Context, proposalID, userID uuid.UUID) (*Vote, error)
}

// VoteDebouncer guards against double-submits of the same vote. A denied
// check means the caller should back off, not that the vote is invalid.
type VoteDebouncer interface {
	Allow(ctx context.Context, proposalID, userID uuid.UUID) (bool, error)
}
