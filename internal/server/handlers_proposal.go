package server

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
	apperrors "github.com/Kumar-Vedant/CrowdGraph-sub000/internal/errors"
)

type proposalResponse struct {
	ID            string                `json:"id"`
	CommunityID   string                `json:"communityId"`
	ProposerID    string                `json:"proposerId"`
	Target        domain.ProposalTarget `json:"target"`
	Kind          domain.ProposalKind   `json:"kind"`
	Status        domain.ProposalStatus `json:"status"`
	Node          *domain.NodePayload   `json:"node,omitempty"`
	Edge          *domain.EdgePayload   `json:"edge,omitempty"`
	TargetGraphID string                `json:"targetGraphId,omitempty"`
	LinkedGraphID string                `json:"linkedGraphId,omitempty"`
	Upvotes       int64                 `json:"upvotes"`
	Downvotes     int64                 `json:"downvotes"`
	DecidedAt     *time.Time            `json:"decidedAt,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

func toProposalResponse(p *domain.Proposal) proposalResponse {
	return proposalResponse{
		ID:            p.ID.String(),
		CommunityID:   p.CommunityID.String(),
		ProposerID:    p.ProposerID.String(),
		Target:        p.Target,
		Kind:          p.Kind,
		Status:        p.Status,
		Node:          p.Node,
		Edge:          p.Edge,
		TargetGraphID: p.TargetGraphID,
		LinkedGraphID: p.LinkedGraphID,
		Upvotes:       p.Upvotes,
		Downvotes:     p.Downvotes,
		DecidedAt:     p.DecidedAt,
		CreatedAt:     p.CreatedAt,
	}
}

type createNodeProposalRequest struct {
	CommunityID   string              `json:"communityId"`
	ProposerID    string              `json:"proposerId"`
	Kind          domain.ProposalKind `json:"kind"`
	Labels        []string            `json:"labels"`
	Properties    map[string]any      `json:"properties"`
	TargetGraphID string              `json:"targetGraphId"`
}

func (s *Server) handleCreateNodeProposal(c echo.Context) error {
	var req createNodeProposalRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	communityID, err := uuid.Parse(req.CommunityID)
	if err != nil {
		return apperrors.ValidationError("invalid community ID").WithContext("community_id", req.CommunityID)
	}
	proposerID, err := uuid.Parse(req.ProposerID)
	if err != nil {
		return apperrors.ValidationError("invalid proposer ID").WithContext("proposer_id", req.ProposerID)
	}

	payload := domain.NodePayload{Labels: req.Labels, Properties: req.Properties}
	proposal, err := s.app.CreateNodeProposal(c.Request().Context(), communityID, proposerID, req.Kind, payload, req.TargetGraphID)
	if err != nil {
		return err
	}

	if err := c.JSON(201, toProposalResponse(proposal)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type createEdgeProposalRequest struct {
	CommunityID   string         `json:"communityId"`
	ProposerID    string         `json:"proposerId"`
	Type          string         `json:"type"`
	SourceGraphID string         `json:"sourceGraphId"`
	TargetGraphID string         `json:"targetGraphId"`
	Properties    map[string]any `json:"properties"`
}

func (s *Server) handleCreateEdgeProposal(c echo.Context) error {
	var req createEdgeProposalRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	communityID, err := uuid.Parse(req.CommunityID)
	if err != nil {
		return apperrors.ValidationError("invalid community ID").WithContext("community_id", req.CommunityID)
	}
	proposerID, err := uuid.Parse(req.ProposerID)
	if err != nil {
		return apperrors.ValidationError("invalid proposer ID").WithContext("proposer_id", req.ProposerID)
	}

	payload := domain.EdgePayload{
		Type:          req.Type,
		SourceGraphID: req.SourceGraphID,
		TargetGraphID: req.TargetGraphID,
		Properties:    req.Properties,
	}
	proposal, err := s.app.CreateEdgeProposal(c.Request().Context(), communityID, proposerID, payload)
	if err != nil {
		return err
	}

	if err := c.JSON(201, toProposalResponse(proposal)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetProposal(c echo.Context) error {
	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid proposal ID").WithContext("proposal_id", c.Param("id"))
	}

	proposal, err := s.app.GetProposal(c.Request().Context(), proposalID)
	if err != nil {
		return err
	}

	if err := c.JSON(200, toProposalResponse(proposal)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListProposals(c echo.Context) error {
	communityID, err := uuid.Parse(c.Param("communityID"))
	if err != nil {
		return apperrors.ValidationError("invalid community ID").WithContext("community_id", c.Param("communityID"))
	}

	proposals, err := s.app.ListProposals(c.Request().Context(), communityID)
	if err != nil {
		return err
	}

	responses := make([]proposalResponse, 0, len(proposals))
	for i := range proposals {
		responses = append(responses, toProposalResponse(&proposals[i]))
	}

	if err := c.JSON(200, responses); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type castVoteRequest struct {
	UserID    string `json:"userId"`
	Direction int    `json:"direction"`
}

type voteResponse struct {
	Proposal   proposalResponse   `json:"proposal"`
	Membership membershipResponse `json:"membership"`
}

func (s *Server) handleCastVote(c echo.Context) error {
	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid proposal ID").WithContext("proposal_id", c.Param("id"))
	}

	var req castVoteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return apperrors.ValidationError("invalid user ID").WithContext("user_id", req.UserID)
	}

	direction := domain.VoteDirection(req.Direction)
	if !direction.Valid() {
		return apperrors.ValidationError("direction must be 1 or -1").WithContext("direction", req.Direction)
	}

	result, err := s.app.CastVote(c.Request().Context(), proposalID, userID, direction)
	if err != nil {
		return err
	}

	resp := voteResponse{
		Proposal:   toProposalResponse(result.Proposal),
		Membership: toMembershipResponse(result.Membership),
	}
	if err := c.JSON(200, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
