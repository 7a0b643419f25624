package server

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
	apperrors "github.com/Kumar-Vedant/CrowdGraph-sub000/internal/errors"
)

type createCommunityRequest struct {
	Name string `json:"name"`
}

type communityResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	TotalVotingPotential int64     `json:"totalVotingPotential"`
	CreatedAt            time.Time `json:"createdAt"`
}

type membershipResponse struct {
	UserID      string `json:"userId"`
	CommunityID string `json:"communityId"`
	Reputation  int64  `json:"reputation"`
	Credits     int64  `json:"credits"`
	MaxVotes    int64  `json:"maxVotes"`
}

func toCommunityResponse(c *domain.Community) communityResponse {
	return communityResponse{
		ID:                   c.ID.String(),
		Name:                 c.Name,
		TotalVotingPotential: c.TotalVotingPotential,
		CreatedAt:            c.CreatedAt,
	}
}

func toMembershipResponse(m *domain.Membership) membershipResponse {
	return membershipResponse{
		UserID:      m.UserID.String(),
		CommunityID: m.CommunityID.String(),
		Reputation:  m.Reputation,
		Credits:     m.Credits,
		MaxVotes:    m.MaxVotes,
	}
}

func (s *Server) handleCreateCommunity(c echo.Context) error {
	var req createCommunityRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	community, err := s.app.CreateCommunity(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}

	if err := c.JSON(201, toCommunityResponse(community)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type joinCommunityRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) handleJoinCommunity(c echo.Context) error {
	communityID, err := uuid.Parse(c.Param("communityID"))
	if err != nil {
		return apperrors.ValidationError("invalid community ID").WithContext("community_id", c.Param("communityID"))
	}

	var req joinCommunityRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return apperrors.ValidationError("invalid user ID").WithContext("user_id", req.UserID)
	}

	membership, err := s.app.JoinCommunity(c.Request().Context(), userID, communityID)
	if err != nil {
		return err
	}

	if err := c.JSON(201, toMembershipResponse(membership)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleRecomputeCredits(c echo.Context) error {
	report, err := s.app.RecomputeCredits(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("credit recompute failed", err)
	}

	if err := c.JSON(200, report); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
