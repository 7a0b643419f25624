package domain

import "context"

// GraphNode mirrors a node in the external graph store. The ID is the
// store's opaque element id, not a relational key.
type GraphNode struct {
	ID         string         `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

// GraphEdge mirrors a relationship in the external graph store.
type GraphEdge struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	SourceID   string         `json:"sourceId"`
	TargetID   string         `json:"targetId"`
	Properties map[string]any `json:"properties"`
}

// GraphStore is the external knowledge-graph collaborator. Implementations
// sanitize labels and relationship types to [A-Za-z0-9_]+ and reject
// anything else with ErrInvalidIdentifier.
type GraphStore interface {
	CreateNode(ctx context.Context, labels []string, properties map[string]any) (string, error)
	UpdateNode(ctx context.Context, nodeID string, labels []string, properties map[string]any) (string, error)
	DeleteNode(ctx context.Context, nodeID string) (string, error)
	CreateEdge(ctx context.Context, edgeType, sourceID, targetID string, properties map[string]any) (string, error)

	GetNode(ctx context.Context, nodeID string) (*GraphNode, error)
	GetEdge(ctx context.Context, edgeID string) (*GraphEdge, error)
}

// Embedder recomputes the vector embedding of a graph node. Calls are
// fire-and-forget from the coordinator's perspective; failures are logged by
// the caller, never surfaced as vote failures.
type Embedder interface {
	RecomputeEmbedding(ctx context.Context, nodeID string) error
}
