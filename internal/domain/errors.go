package domain

import "errors"

var (
	ErrCommunityNotFound = errors.New("community not found")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrNotAMember        = errors.New("user is not a member of this community")

	// ErrProposalNotPending is returned when a vote arrives for a proposal
	// that has already reached a terminal state.
	ErrProposalNotPending = errors.New("proposal is no longer pending")

	// ErrInsufficientCredits is returned when a membership's spendable
	// credits cannot cover the marginal cost of the requested vote.
	ErrInsufficientCredits = errors.New("insufficient credits for vote")

	// ErrDirectionChange is returned when a voter tries to reverse the sign
	// of an existing vote. The quadratic schedule is defined only for
	// monotonic same-direction magnitudes; reversals need a dedicated
	// un-vote flow that does not exist yet.
	ErrDirectionChange = errors.New("changing vote direction is not supported")

	// ErrInvalidIdentifier is returned by the graph store when a label or
	// relationship type contains characters outside [A-Za-z0-9_].
	ErrInvalidIdentifier = errors.New("invalid graph identifier")

	// ErrGraphEntityNotFound is returned when a graph mutation or read
	// targets a node or edge that does not exist.
	ErrGraphEntityNotFound = errors.New("graph entity not found")

	// ErrVoteNotFound is returned when a user has no vote on a proposal.
	ErrVoteNotFound = errors.New("vote not found")

	// ErrVoteDebounced is returned when a voter re-submits within the
	// double-submit guard window.
	ErrVoteDebounced = errors.New("vote submitted too quickly, try again")

	// ErrInvalidProposal is returned when a proposal payload is malformed,
	// e.g. a CREATE node without labels or an UPDATE without a target.
	ErrInvalidProposal = errors.New("invalid proposal payload")

	// ErrInvalidDirection is returned for vote directions other than +1/-1.
	ErrInvalidDirection = errors.New("invalid vote direction")

	// ErrInvalidCommunityName is returned when a community name is empty.
	ErrInvalidCommunityName = errors.New("community name must not be empty")
)
