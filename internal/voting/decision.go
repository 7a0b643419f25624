package voting

// Outcome is the decision function's verdict on a proposal's current tally.
type Outcome string

const (
	OutcomePending Outcome = "PENDING"
	OutcomeAccept  Outcome = "ACCEPT"
	OutcomeReject  Outcome = "REJECT"
)

const (
	// quorumMin is the minimum fraction of a community's voting potential
	// that must have voted before a proposal can be decided either way.
	quorumMin = 0.05
	// thresholdSlope controls how far the accept/reject thresholds sit from
	// 0.5 at low participation. Thresholds converge toward a simple majority
	// only as participation approaches 100%, so small voter blocs cannot
	// decide low-visibility proposals.
	thresholdSlope = 0.4
)

// Decide maps a proposal's tally and its community's cached voting potential
// to an outcome. Pure and total: any input yields a verdict, never a panic.
// A zero or negative potential always yields PENDING.
func Decide(upvotes, downvotes, totalVotingPotential int64) Outcome {
	totalVotes := upvotes + downvotes
	if totalVotes <= 0 || totalVotingPotential <= 0 {
		return OutcomePending
	}

	participation := float64(totalVotes) / float64(totalVotingPotential)
	if participation < quorumMin {
		return OutcomePending
	}

	yesRatio := float64(upvotes) / float64(totalVotes)
	acceptThreshold := 0.5 + thresholdSlope*(1-participation)
	rejectThreshold := 0.5 - thresholdSlope*(1-participation)

	switch {
	case yesRatio >= acceptThreshold:
		return OutcomeAccept
	case yesRatio <= rejectThreshold:
		return OutcomeReject
	default:
		return OutcomePending
	}
}
