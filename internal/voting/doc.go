// Package voting holds the pure consensus math: quadratic vote pricing and
// the participation-weighted decision function. No I/O, no side effects.
package voting
