package utils

import (
	"math"
)

// wilsonZ is the z-value for an 80% confidence level. The "best" sort wants a
// defensible estimate of comment quality from few votes, not a raw ratio, so we
// rank by the lower bound of the Wilson score interval.
const wilsonZ = 1.2816

// NetScore is the plain tally used by the "top" sort.
func NetScore(upvotes, downvotes int) int {
	return upvotes - downvotes
}

// WilsonScore returns the lower confidence bound on the true approval
// proportion, in [0, 1]. Zero votes score 0.
func WilsonScore(upvotes, downvotes int) float64 {
	n := float64(upvotes + downvotes)
	if n == 0 {
		return 0
	}

	p := float64(upvotes) / n
	z2 := wilsonZ * wilsonZ

	numerator := p + z2/(2*n) - wilsonZ*math.Sqrt((p*(1-p)+z2/(4*n))/n)
	return numerator / (1 + z2/n)
}
