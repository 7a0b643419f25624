package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InitialReputation is granted when a user joins a community. It is high
// enough that the first credit recomputation yields a usable vote budget.
const InitialReputation = 25

// Membership is the per-(user, community) credit ledger row. Reputation is
// the source value; credits and max votes are derived from it by the credit
// recomputation job. Credits only decrease through voting and only increase
// through recomputation.
type Membership struct {
	UserID      uuid.UUID
	CommunityID uuid.UUID
	Reputation  int64
	Credits     int64
	MaxVotes    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Community struct {
	ID   uuid.UUID
	Name string
	// TotalVotingPotential is the cached sum of member max votes, written
	// by the credit recomputation job. It is the participation denominator
	// for the decision function, not a live aggregate.
	TotalVotingPotential int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type MembershipRepository interface {
	Create(ctx context.Context, userID, communityID uuid.UUID) (*Membership, error)
	Get(ctx context.Context, userID, communityID uuid.UUID) (*Membership, error)
	// List returns every membership across all communities, ordered by
	// community. Used by the credit recomputation job.
	List(ctx context.Context) ([]Membership, error)
	// UpdateDerived writes recomputed credits and max votes for one membership.
	UpdateDerived(ctx context.Context, userID, communityID uuid.UUID, credits, maxVotes int64) error
}

type CommunityRepository interface {
	Create(ctx context.Context, name string) (*Community, error)
	GetByID(ctx context.Context, communityID uuid.UUID) (*Community, error)
	UpdateVotingPotential(ctx context.Context, communityID uuid.UUID, total int64) error
}
