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

// communityColumns must match the Scan order in scanCommunity.
const communityColumns = `id, name, total_voting_potential, created_at, updated_at`

// CommunityRepo implements domain.CommunityRepository backed by PostgreSQL.
type CommunityRepo struct {
	pool *pgxpool.Pool
}

func NewCommunityRepo(pool *pgxpool.Pool) *CommunityRepo {
	return &CommunityRepo{pool: pool}
}

func scanCommunity(row pgx.Row) (*domain.Community, error) {
	var c domain.Community
	err := row.Scan(&c.ID, &c.Name, &c.TotalVotingPotential, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommunityRepo) Create(ctx context.Context, name string) (*domain.Community, error) {
	community, err := scanCommunity(r.pool.QueryRow(ctx, `
		INSERT INTO communities (name) VALUES ($1)
		RETURNING `+communityColumns, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create community: %w", err)
	}
	return community, nil
}

func (r *CommunityRepo) GetByID(ctx context.Context, communityID uuid.UUID) (*domain.Community, error) {
	community, err := scanCommunity(r.pool.QueryRow(ctx,
		`SELECT `+communityColumns+` FROM communities WHERE id = $1`, communityID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCommunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get community: %w", err)
	}
	return community, nil
}

func (r *CommunityRepo) UpdateVotingPotential(ctx context.Context, communityID uuid.UUID, total int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE communities
		SET total_voting_potential = $2, updated_at = NOW()
		WHERE id = $1
	`, communityID, total)
	if err != nil {
		return fmt.Errorf("failed to update voting potential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommunityNotFound
	}
	return nil
}
