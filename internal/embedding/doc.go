// Package embedding recomputes node embedding vectors after graph mutations.
// Vectors come from a HuggingFace feature-extraction endpoint; failures are
// logged and swallowed so a flaky embedding provider never blocks consensus.
package embedding
