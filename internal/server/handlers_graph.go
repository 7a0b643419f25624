package server

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleGetNode(c echo.Context) error {
	node, err := s.app.GetNode(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	if err := c.JSON(200, node); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetEdge(c echo.Context) error {
	edge, err := s.app.GetEdge(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	if err := c.JSON(200, edge); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
