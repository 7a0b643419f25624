package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
)

// membershipColumns must match the Scan order in scanMembership.
const membershipColumns = `user_id, community_id, reputation, credits, max_votes, created_at, updated_at`

// MembershipRepo implements domain.MembershipRepository backed by PostgreSQL.
type MembershipRepo struct {
	pool *pgxpool.Pool
}

func NewMembershipRepo(pool *pgxpool.Pool) *MembershipRepo {
	return &MembershipRepo{pool: pool}
}

func scanMembership(row pgx.Row) (*domain.Membership, error) {
	var m domain.Membership
	err := row.Scan(&m.UserID, &m.CommunityID, &m.Reputation, &m.Credits, &m.MaxVotes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepo) Create(ctx context.Context, userID, communityID uuid.UUID) (*domain.Membership, error) {
	membership, err := scanMembership(r.pool.QueryRow(ctx, `
		INSERT INTO memberships (user_id, community_id, reputation)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, community_id) DO UPDATE SET updated_at = NOW()
		RETURNING `+membershipColumns, userID, communityID, domain.InitialReputation))
	if err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}
	return membership, nil
}

func (r *MembershipRepo) Get(ctx context.Context, userID, communityID uuid.UUID) (*domain.Membership, error) {
	membership, err := scanMembership(r.pool.QueryRow(ctx, `
		SELECT `+membershipColumns+` FROM memberships
		WHERE user_id = $1 AND community_id = $2`, userID, communityID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotAMember
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return membership, nil
}

func (r *MembershipRepo) List(ctx context.Context) ([]domain.Membership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+membershipColumns+` FROM memberships
		ORDER BY community_id, user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.UserID, &m.CommunityID, &m.Reputation, &m.Credits, &m.MaxVotes, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *MembershipRepo) UpdateDerived(ctx context.Context, userID, communityID uuid.UUID, credits, maxVotes int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE memberships
		SET credits = $3, max_votes = $4, updated_at = NOW()
		WHERE user_id = $1 AND community_id = $2
	`, userID, communityID, credits, maxVotes)
	if err != nil {
		return fmt.Errorf("failed to update derived credits: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotAMember
	}
	return nil
}
