package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
)

const (
	// searchableLabel marks nodes for the vector search index; it is added
	// to every node the store creates and preserved across updates.
	searchableLabel = "Searchable"
	// embeddingProperty holds the node's vector. It is managed exclusively
	// by the embedding recomputer and stripped from user-facing payloads.
	embeddingProperty = "embedding"
)

// Store implements domain.GraphStore on a Neo4j database.
type Store struct {
	driver neo4j.DriverWithContext
	dbName string
}

func NewStore(uri, username, password, dbName string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}
	return &Store{driver: driver, dbName: dbName}, nil
}

// Verify checks connectivity to the Neo4j database.
func (s *Store) Verify(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// run executes a Cypher query through ExecuteQuery, which handles session
// and transaction management and buffers the full result.
func (s *Store) run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.dbName),
	)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return result, nil
}

func (s *Store) CreateNode(ctx context.Context, labels []string, properties map[string]any) (string, error) {
	fragment, err := labelFragment(labels)
	if err != nil {
		return "", err
	}
	if properties == nil {
		properties = map[string]any{}
	}

	result, err := s.run(ctx,
		fmt.Sprintf("CREATE (n%s $props) RETURN elementId(n) AS id", fragment),
		map[string]any{"props": properties})
	if err != nil {
		return "", err
	}
	if len(result.Records) == 0 {
		return "", fmt.Errorf("node creation returned no records")
	}
	id, _ := result.Records[0].Get("id")
	return id.(string), nil
}

func (s *Store) UpdateNode(ctx context.Context, nodeID string, labels []string, properties map[string]any) (string, error) {
	result, err := s.run(ctx,
		"MATCH (n) WHERE elementId(n) = $id RETURN n, labels(n) AS currentLabels",
		map[string]any{"id": nodeID})
	if err != nil {
		return "", err
	}
	if len(result.Records) == 0 {
		return "", domain.ErrGraphEntityNotFound
	}

	record := result.Records[0]
	rawNode, _ := record.Get("n")
	node := rawNode.(dbtype.Node)
	currentLabels := node.Labels

	// Merge incoming properties over the stored ones. The embedding vector
	// is recomputed separately and must not be carried through an update.
	newProps := make(map[string]any, len(node.Props)+len(properties))
	for k, v := range node.Props {
		newProps[k] = v
	}
	for k, v := range properties {
		newProps[k] = v
	}
	delete(newProps, embeddingProperty)

	// Empty labels means keep the current ones; otherwise validate and
	// replace, always re-adding the Searchable marker.
	newLabels := currentLabels
	if len(labels) > 0 {
		for _, l := range labels {
			if err := validIdentifier(l); err != nil {
				return "", err
			}
		}
		newLabels = append(append([]string{}, labels...), searchableLabel)
	}

	var clauses []string
	for _, l := range currentLabels {
		if !containsLabel(newLabels, l) {
			clauses = append(clauses, "REMOVE n:"+l)
		}
	}
	for _, l := range newLabels {
		if !containsLabel(currentLabels, l) {
			clauses = append(clauses, "SET n:"+l)
		}
	}

	query := "MATCH (n) WHERE elementId(n) = $id SET n = $props WITH n\n" +
		strings.Join(clauses, "\n") +
		"\nRETURN elementId(n) AS id"
	updated, err := s.run(ctx, query, map[string]any{"id": nodeID, "props": newProps})
	if err != nil {
		return "", err
	}
	if len(updated.Records) == 0 {
		return "", domain.ErrGraphEntityNotFound
	}
	id, _ := updated.Records[0].Get("id")
	return id.(string), nil
}

func (s *Store) DeleteNode(ctx context.Context, nodeID string) (string, error) {
	result, err := s.run(ctx, `
		MATCH (n) WHERE elementId(n) = $id
		DETACH DELETE n
		RETURN count(n) AS deleted`,
		map[string]any{"id": nodeID})
	if err != nil {
		return "", err
	}
	if len(result.Records) == 0 {
		return "", domain.ErrGraphEntityNotFound
	}
	deleted, _ := result.Records[0].Get("deleted")
	if deleted.(int64) == 0 {
		return "", domain.ErrGraphEntityNotFound
	}
	return nodeID, nil
}

func (s *Store) CreateEdge(ctx context.Context, edgeType, sourceID, targetID string, properties map[string]any) (string, error) {
	if err := validIdentifier(edgeType); err != nil {
		return "", err
	}
	if properties == nil {
		properties = map[string]any{}
	}

	result, err := s.run(ctx, fmt.Sprintf(`
		MATCH (a), (b)
		WHERE elementId(a) = $sourceId AND elementId(b) = $targetId
		CREATE (a)-[r:%s $props]->(b)
		RETURN elementId(r) AS id`, edgeType),
		map[string]any{"sourceId": sourceID, "targetId": targetID, "props": properties})
	if err != nil {
		return "", err
	}
	if len(result.Records) == 0 {
		// One or both endpoint nodes do not exist.
		return "", domain.ErrGraphEntityNotFound
	}
	id, _ := result.Records[0].Get("id")
	return id.(string), nil
}

func (s *Store) GetNode(ctx context.Context, nodeID string) (*domain.GraphNode, error) {
	result, err := s.run(ctx,
		"MATCH (n) WHERE elementId(n) = $id RETURN n",
		map[string]any{"id": nodeID})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, domain.ErrGraphEntityNotFound
	}
	rawNode, _ := result.Records[0].Get("n")
	node := rawNode.(dbtype.Node)
	return &domain.GraphNode{
		ID:         node.ElementId,
		Labels:     node.Labels,
		Properties: node.Props,
	}, nil
}

func (s *Store) GetEdge(ctx context.Context, edgeID string) (*domain.GraphEdge, error) {
	result, err := s.run(ctx, `
		MATCH (a)-[r]->(b)
		WHERE elementId(r) = $id
		RETURN r, elementId(a) AS sourceId, elementId(b) AS targetId`,
		map[string]any{"id": edgeID})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, domain.ErrGraphEntityNotFound
	}
	record := result.Records[0]
	rawRel, _ := record.Get("r")
	rel := rawRel.(dbtype.Relationship)
	sourceID, _ := record.Get("sourceId")
	targetID, _ := record.Get("targetId")
	return &domain.GraphEdge{
		ID:         rel.ElementId,
		Type:       rel.Type,
		SourceID:   sourceID.(string),
		TargetID:   targetID.(string),
		Properties: rel.Props,
	}, nil
}

// NodeDocument renders a node and its relationships as the text the
// embedding model consumes. The second return is false when the node does
// not exist (deleted between mutation and recompute).
func (s *Store) NodeDocument(ctx context.Context, nodeID string) (string, bool, error) {
	result, err := s.run(ctx, `
		MATCH (n) WHERE elementId(n) = $id
		OPTIONAL MATCH (n)-[r]-(m)
		RETURN n, collect({relType: type(r), neighborLabels: labels(m), neighborName: m.name}) AS rels`,
		map[string]any{"id": nodeID})
	if err != nil {
		return "", false, err
	}
	if len(result.Records) == 0 {
		return "", false, nil
	}

	record := result.Records[0]
	rawNode, _ := record.Get("n")
	node := rawNode.(dbtype.Node)

	keys := make([]string, 0, len(node.Props))
	for k := range node.Props {
		if k != embeddingProperty {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	props := make([]string, 0, len(keys))
	for _, k := range keys {
		props = append(props, fmt.Sprintf("%s: %v", k, node.Props[k]))
	}

	var rels []string
	if rawRels, ok := record.Get("rels"); ok && rawRels != nil {
		for _, raw := range rawRels.([]any) {
			entry := raw.(map[string]any)
			relType, _ := entry["relType"].(string)
			if relType == "" {
				continue
			}
			var labels []string
			if rawLabels, ok := entry["neighborLabels"].([]any); ok {
				for _, l := range rawLabels {
					labels = append(labels, l.(string))
				}
			}
			name, _ := entry["neighborName"].(string)
			rels = append(rels, fmt.Sprintf("%s %s (%s)", relType, strings.Join(labels, ", "), name))
		}
	}

	doc := fmt.Sprintf("Labels: %s; Properties: %s; Relationships: %s;",
		strings.Join(node.Labels, ", "),
		strings.Join(props, "; "),
		strings.Join(rels, "; "))
	return doc, true, nil
}

// SetNodeEmbedding writes the computed vector onto the node.
func (s *Store) SetNodeEmbedding(ctx context.Context, nodeID string, vector []float32) error {
	_, err := s.run(ctx,
		"MATCH (n) WHERE elementId(n) = $id SET n.embedding = $embedding",
		map[string]any{"id": nodeID, "embedding": vector})
	return err
}

func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
