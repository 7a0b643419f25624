package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
)

// CreateTestCommunity is a helper that creates a community for testing.
func CreateTestCommunity(t *testing.T, pool *pgxpool.Pool, name string) *domain.Community {
	t.Helper()

	repo := NewCommunityRepo(pool)
	community, err := repo.Create(context.Background(), name)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, community.ID)

	return community
}

// CreateTestMember joins a fresh user to the community and returns the
// membership.
func CreateTestMember(t *testing.T, pool *pgxpool.Pool, communityID uuid.UUID) *domain.Membership {
	t.Helper()

	repo := NewMembershipRepo(pool)
	membership, err := repo.Create(context.Background(), uuid.New(), communityID)
	require.NoError(t, err)

	return membership
}

// SetTestCredits overrides a membership's spendable credits directly.
func SetTestCredits(t *testing.T, pool *pgxpool.Pool, userID, communityID uuid.UUID, credits int64) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		UPDATE memberships SET credits = $3
		WHERE user_id = $1 AND community_id = $2`, userID, communityID, credits)
	require.NoError(t, err)
}

// CreateTestNodeProposal creates a pending CREATE-node proposal for testing.
func CreateTestNodeProposal(t *testing.T, pool *pgxpool.Pool, communityID, proposerID uuid.UUID) *domain.Proposal {
	t.Helper()

	repo := NewProposalRepo(pool)
	payload := domain.NodePayload{
		Labels:     []string{"Concept"},
		Properties: map[string]any{"name": "test node"},
	}
	proposal, err := repo.CreateNode(context.Background(), communityID, proposerID, domain.KindCreate, payload, "")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, proposal.Status)

	return proposal
}
