package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
)

// proposalColumns must match the Scan order in scanProposal.
const proposalColumns = `id, community_id, proposer_id, target, kind, status, payload, target_graph_id, linked_graph_id, upvotes, downvotes, decided_at, created_at, updated_at`

// ProposalRepo implements domain.ProposalRepository backed by PostgreSQL.
type ProposalRepo struct {
	pool *pgxpool.Pool
}

func NewProposalRepo(pool *pgxpool.Pool) *ProposalRepo {
	return &ProposalRepo{pool: pool}
}

func scanProposal(row pgx.Row) (*domain.Proposal, error) {
	var p domain.Proposal
	var payload []byte
	err := row.Scan(
		&p.ID, &p.CommunityID, &p.ProposerID, &p.Target, &p.Kind, &p.Status,
		&payload, &p.TargetGraphID, &p.LinkedGraphID,
		&p.Upvotes, &p.Downvotes, &p.DecidedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalPayload(&p, payload); err != nil {
		return nil, err
	}
	return &p, nil
}

func unmarshalPayload(p *domain.Proposal, payload []byte) error {
	switch p.Target {
	case domain.TargetNode:
		p.Node = &domain.NodePayload{}
		if err := json.Unmarshal(payload, p.Node); err != nil {
			return fmt.Errorf("failed to decode node payload: %w", err)
		}
	case domain.TargetEdge:
		p.Edge = &domain.EdgePayload{}
		if err := json.Unmarshal(payload, p.Edge); err != nil {
			return fmt.Errorf("failed to decode edge payload: %w", err)
		}
	default:
		return fmt.Errorf("unknown proposal target %q", p.Target)
	}
	return nil
}

func (r *ProposalRepo) CreateNode(ctx context.Context, communityID, proposerID uuid.UUID, kind domain.ProposalKind, payload domain.NodePayload, targetGraphID string) (*domain.Proposal, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode node payload: %w", err)
	}

	proposal, err := scanProposal(r.pool.QueryRow(ctx, `
		INSERT INTO proposals (community_id, proposer_id, target, kind, payload, target_graph_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+proposalColumns,
		communityID, proposerID, domain.TargetNode, kind, raw, targetGraphID))
	if err != nil {
		return nil, fmt.Errorf("failed to create node proposal: %w", err)
	}
	return proposal, nil
}

func (r *ProposalRepo) CreateEdge(ctx context.Context, communityID, proposerID uuid.UUID, payload domain.EdgePayload) (*domain.Proposal, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode edge payload: %w", err)
	}

	proposal, err := scanProposal(r.pool.QueryRow(ctx, `
		INSERT INTO proposals (community_id, proposer_id, target, kind, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+proposalColumns,
		communityID, proposerID, domain.TargetEdge, domain.KindCreate, raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create edge proposal: %w", err)
	}
	return proposal, nil
}

func (r *ProposalRepo) GetByID(ctx context.Context, proposalID uuid.UUID) (*domain.Proposal, error) {
	proposal, err := scanProposal(r.pool.QueryRow(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, proposalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProposalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return proposal, nil
}

func (r *ProposalRepo) ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]domain.Proposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+proposalColumns+` FROM proposals
		WHERE community_id = $1
		ORDER BY created_at DESC`, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []domain.Proposal
	for rows.Next() {
		var p domain.Proposal
		var payload []byte
		if err := rows.Scan(
			&p.ID, &p.CommunityID, &p.ProposerID, &p.Target, &p.Kind, &p.Status,
			&payload, &p.TargetGraphID, &p.LinkedGraphID,
			&p.Upvotes, &p.Downvotes, &p.DecidedAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		if err := unmarshalPayload(&p, payload); err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// Finalize moves the proposal out of PENDING with a compare-and-set on
// status. The winning caller also gets the proposer's reputation delta
// applied in the same transaction, so the terminal state and its reputation
// effect commit together exactly once.
func (r *ProposalRepo) Finalize(ctx context.Context, proposalID uuid.UUID, status domain.ProposalStatus, proposerReputationDelta int64) (*domain.Proposal, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	proposal, err := scanProposal(tx.QueryRow(ctx, `
		UPDATE proposals
		SET status = $2, decided_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING `+proposalColumns, proposalID, status))
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the CAS (or unknown id): report the current row, no side effects.
		current, getErr := r.GetByID(ctx, proposalID)
		if getErr != nil {
			return nil, false, getErr
		}
		return current, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to finalize proposal: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE memberships
		SET reputation = reputation + $3, updated_at = NOW()
		WHERE user_id = $1 AND community_id = $2
	`, proposal.ProposerID, proposal.CommunityID, proposerReputationDelta); err != nil {
		return nil, false, fmt.Errorf("failed to apply proposer reputation delta: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit finalize transaction: %w", err)
	}
	return proposal, true, nil
}

func (r *ProposalRepo) SetLinkedGraphID(ctx context.Context, proposalID uuid.UUID, graphID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE proposals
		SET linked_graph_id = $2, updated_at = NOW()
		WHERE id = $1
	`, proposalID, graphID)
	if err != nil {
		return fmt.Errorf("failed to set linked graph id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProposalNotFound
	}
	return nil
}
