// Package app provides the application service layer.
//
// Orchestrates use cases: community membership, proposal submission, vote
// casting with the terminal decision check, and periodic credit recomputation.
// Sits between HTTP handlers and domain repositories. Depends on domain
// interfaces, not concrete implementations.
package app
