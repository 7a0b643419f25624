// Package database implements the domain repositories on PostgreSQL via
// pgx. The votable transaction (vote upsert, credit debit, counter bump) and
// the terminal compare-and-set live here so that correctness comes from
// storage-level atomicity, not in-process locks.
package database
