package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/platform/retry"
)

// GraphSource is the slice of the graph store the recomputer needs: read a
// node's textual document, write its vector back.
type GraphSource interface {
	NodeDocument(ctx context.Context, nodeID string) (string, bool, error)
	SetNodeEmbedding(ctx context.Context, nodeID string, vector []float32) error
}

type Service struct {
	graph  GraphSource
	client *http.Client
	apiURL string
	token  string
	model  string
	logger *slog.Logger
	retry  retry.Policy
}

func NewService(graph GraphSource, apiURL, token, model string, logger *slog.Logger) *Service {
	s := &Service{
		graph:  graph,
		client: &http.Client{Timeout: 30 * time.Second},
		apiURL: apiURL,
		token:  token,
		model:  model,
		logger: logger,
	}
	s.retry = retry.Policy{
		MaxAttempts:      3,
		InitialBackoff:   500 * time.Millisecond,
		RateLimitBackoff: 5 * time.Second,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			s.logger.Warn("retrying feature extraction", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
	return s
}

// RecomputeEmbedding rebuilds the vector for a single node. A node that has
// disappeared since the mutation is not an error.
func (s *Service) RecomputeEmbedding(ctx context.Context, nodeID string) error {
	document, found, err := s.graph.NodeDocument(ctx, nodeID)
	if err != nil {
		return fmt.Errorf("failed to build node document: %w", err)
	}
	if !found {
		s.logger.Debug("node vanished before embedding recompute", "node_id", nodeID)
		return nil
	}

	vector, err := s.extractFeatures(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to compute embedding: %w", err)
	}

	if err := s.graph.SetNodeEmbedding(ctx, nodeID, vector); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

// RecomputeAsync runs RecomputeEmbedding in the background, detached from the
// caller's context. Vote handling must not wait on the embedding provider.
func (s *Service) RecomputeAsync(nodeID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.RecomputeEmbedding(ctx, nodeID); err != nil {
			s.logger.Warn("embedding recompute failed", "node_id", nodeID, "error", err)
		}
	}()
}

type extractionRequest struct {
	Inputs string `json:"inputs"`
}

// statusError carries the HTTP status so the retry classifier can tell rate
// limits and provider hiccups apart from permanent failures.
type statusError struct {
	code    int
	payload string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("feature extraction returned status %d: %s", e.code, e.payload)
}

func classifyExtractionError(err error) retry.Action {
	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.code == http.StatusTooManyRequests:
			return retry.After
		case se.code >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}
	// Transport-level failures are worth another attempt.
	return retry.Retry
}

func (s *Service) extractFeatures(ctx context.Context, text string) ([]float32, error) {
	return retry.Do(ctx, s.retry, classifyExtractionError, func() ([]float32, error) {
		return s.requestFeatures(ctx, text)
	})
}

func (s *Service) requestFeatures(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(extractionRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", s.apiURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feature extraction request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{code: resp.StatusCode, payload: string(payload)}
	}

	var vector []float32
	if err := json.NewDecoder(resp.Body).Decode(&vector); err != nil {
		return nil, fmt.Errorf("failed to decode embedding: %w", err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("feature extraction returned an empty vector")
	}
	return vector, nil
}
