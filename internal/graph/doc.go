// Package graph implements the knowledge-graph collaborator on Neo4j. All
// labels and relationship types are validated against [A-Za-z0-9_]+ before
// they are spliced into Cypher; property values always travel as parameters.
package graph
