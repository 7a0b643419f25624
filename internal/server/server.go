package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/config"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
	apperrors "github.com/Kumar-Vedant/CrowdGraph-sub000/internal/errors"
	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/platform/correlation"
)

// postgresHealthChecker is a minimal interface for PostgreSQL health checks.
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

// graphHealthChecker is a minimal interface for Neo4j health checks.
type graphHealthChecker interface {
	Verify(ctx context.Context) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       domain.ConsensusService
	postgres  postgresHealthChecker
	graph     graphHealthChecker
	redis     *goredis.Client // nil when Redis is not configured
	clock     clockwork.Clock
	startTime time.Time
}

func NewServer(cfg *config.Config, app domain.ConsensusService, postgres postgresHealthChecker, graph graphHealthChecker, redis *goredis.Client, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(correlationMiddleware())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       app,
		postgres:  postgres,
		graph:     graph,
		redis:     redis,
		clock:     clock,
		startTime: clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// correlationMiddleware tags every request context with a correlation ID so
// all logs from one request line up.
func correlationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
