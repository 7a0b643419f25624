package voting

import "github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"

// Reputation deltas applied by voting activity.
const (
	// VoterReward is added to a member's reputation for each successful vote,
	// in either direction.
	VoterReward = 2
	// ProposerBonus is added to the proposer's reputation when their proposal
	// is approved.
	ProposerBonus = 10
	// ProposerPenalty is subtracted from the proposer's reputation when their
	// proposal is rejected.
	ProposerPenalty = -5
)

// MarginalCost returns the credit cost of moving a vote's magnitude one step
// further from zero. The k-th vote in one direction costs 2k-1, so total
// spend grows quadratically with magnitude.
func MarginalCost(magnitude int64) int64 {
	if magnitude < 0 {
		magnitude = -magnitude
	}
	return 2*magnitude + 1
}

// PriceVote validates a vote step against the voter's current magnitude and
// returns its marginal cost. A step that would reverse the sign of an
// existing vote is rejected with ErrDirectionChange: the quadratic schedule
// is only defined for monotonic same-direction magnitudes.
func PriceVote(magnitude int64, direction domain.VoteDirection) (int64, error) {
	if magnitude > 0 && direction == domain.DirectionDown ||
		magnitude < 0 && direction == domain.DirectionUp {
		return 0, domain.ErrDirectionChange
	}
	return MarginalCost(magnitude), nil
}
