package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Communities
	s.echo.POST("/communities", s.handleCreateCommunity)
	s.echo.POST("/communities/:communityID/join", s.handleJoinCommunity)
	s.echo.GET("/communities/:communityID/proposals", s.handleListProposals)

	// Proposals and votes
	s.echo.POST("/proposals/node", s.handleCreateNodeProposal)
	s.echo.POST("/proposals/edge", s.handleCreateEdgeProposal)
	s.echo.GET("/proposals/:id", s.handleGetProposal)
	s.echo.POST("/proposals/:id/vote", s.handleCastVote)

	// Graph reads
	s.echo.GET("/nodes/:id", s.handleGetNode)
	s.echo.GET("/edges/:id", s.handleGetEdge)

	// Maintenance
	s.echo.POST("/credits/recompute", s.handleRecomputeCredits)
}
