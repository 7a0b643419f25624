package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/voting"
)

// VoteLedgerRepo implements domain.VoteLedger backed by PostgreSQL.
//
// RecordVote takes a FOR UPDATE lock on the proposal row, which serializes
// all vote events for one proposal without any in-process locking. Two
// concurrent votes on different proposals do not contend.
type VoteLedgerRepo struct {
	pool *pgxpool.Pool
}

func NewVoteLedgerRepo(pool *pgxpool.Pool) *VoteLedgerRepo {
	return &VoteLedgerRepo{pool: pool}
}

func (r *VoteLedgerRepo) RecordVote(ctx context.Context, proposalID, userID uuid.UUID, direction domain.VoteDirection) (*domain.VoteReceipt, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	proposal, err := scanProposal(tx.QueryRow(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = $1 FOR UPDATE`, proposalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProposalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock proposal: %w", err)
	}
	if proposal.Decided() {
		return nil, domain.ErrProposalNotPending
	}

	membership, err := scanMembership(tx.QueryRow(ctx, `
		SELECT `+membershipColumns+` FROM memberships
		WHERE user_id = $1 AND community_id = $2
		FOR UPDATE`, userID, proposal.CommunityID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotAMember
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock membership: %w", err)
	}

	var magnitude int64
	err = tx.QueryRow(ctx, `
		SELECT magnitude FROM votes
		WHERE proposal_id = $1 AND user_id = $2
		FOR UPDATE`, proposalID, userID).Scan(&magnitude)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read vote magnitude: %w", err)
	}

	cost, err := voting.PriceVote(magnitude, direction)
	if err != nil {
		return nil, err
	}
	if membership.Credits < cost {
		return nil, domain.ErrInsufficientCredits
	}

	membership, err = scanMembership(tx.QueryRow(ctx, `
		UPDATE memberships
		SET credits = credits - $3, reputation = reputation + $4, updated_at = NOW()
		WHERE user_id = $1 AND community_id = $2
		RETURNING `+membershipColumns,
		userID, proposal.CommunityID, cost, voting.VoterReward))
	if err != nil {
		return nil, fmt.Errorf("failed to debit credits: %w", err)
	}

	var newMagnitude int64
	err = tx.QueryRow(ctx, `
		INSERT INTO votes (proposal_id, user_id, magnitude)
		VALUES ($1, $2, $3)
		ON CONFLICT (proposal_id, user_id)
		DO UPDATE SET magnitude = votes.magnitude + $3, updated_at = NOW()
		RETURNING magnitude`, proposalID, userID, int64(direction)).Scan(&newMagnitude)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert vote: %w", err)
	}

	// Bucket counters track distinct voters per direction, so only the
	// 0 -> +-1 transition bumps a counter. Deeper same-direction votes raise
	// magnitude and cost but not the tally.
	if magnitude == 0 {
		if direction == domain.DirectionUp {
			proposal, err = scanProposal(tx.QueryRow(ctx, `
				UPDATE proposals SET upvotes = upvotes + 1, updated_at = NOW()
				WHERE id = $1
				RETURNING `+proposalColumns, proposalID))
		} else {
			proposal, err = scanProposal(tx.QueryRow(ctx, `
				UPDATE proposals SET downvotes = downvotes + 1, updated_at = NOW()
				WHERE id = $1
				RETURNING `+proposalColumns, proposalID))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to bump vote counter: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit vote transaction: %w", err)
	}

	return &domain.VoteReceipt{
		Proposal:   proposal,
		Membership: membership,
		Cost:       cost,
		Magnitude:  newMagnitude,
	}, nil
}

func (r *VoteLedgerRepo) GetVote(ctx context.Context, proposalID, userID uuid.UUID) (*domain.Vote, error) {
	var v domain.Vote
	err := r.pool.QueryRow(ctx, `
		SELECT proposal_id, user_id, magnitude, created_at, updated_at
		FROM votes
		WHERE proposal_id = $1 AND user_id = $2`, proposalID, userID).
		Scan(&v.ProposalID, &v.UserID, &v.Magnitude, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &v, nil
}
