// Package server implements the HTTP server using Echo framework.
//
// Routes: communities (create/join/list proposals), proposals (create/fetch/
// vote), graph reads (nodes/edges), credit recompute, health and metrics.
// Handlers split by domain: handlers_community.go, handlers_proposal.go,
// handlers_graph.go, handlers_health.go.
package server
