package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWilsonScoreZeroVotes(t *testing.T) {
	assert.Equal(t, 0.0, WilsonScore(0, 0))
}

func TestWilsonScoreStaysInUnitInterval(t *testing.T) {
	for up := 0; up <= 25; up++ {
		for down := 0; down <= 25; down++ {
			s := WilsonScore(up, down)
			assert.GreaterOrEqual(t, s, 0.0, "up=%d down=%d", up, down)
			assert.LessOrEqual(t, s, 1.0, "up=%d down=%d", up, down)
		}
	}
}

func TestWilsonScoreFavorsUpvotes(t *testing.T) {
	cases := [][2]int{{1, 0}, {2, 1}, {5, 3}, {10, 1}, {100, 40}}
	for _, c := range cases {
		up, down := c[0], c[1]
		assert.Greater(t, WilsonScore(up, down), WilsonScore(down, up), "up=%d down=%d", up, down)
	}
}

func TestWilsonScoreMoreEvidenceScoresHigher(t *testing.T) {
	// Same approval ratio, more votes: the lower bound should tighten upward.
	assert.Greater(t, WilsonScore(10, 0), WilsonScore(5, 0))
	assert.Greater(t, WilsonScore(40, 10), WilsonScore(4, 1))
}

func TestWilsonScoreKnownValue(t *testing.T) {
	// Hand-computed for z = 1.2816, up = 3, down = 1.
	assert.InDelta(t, 0.43253, WilsonScore(3, 1), 0.0005)
}

func TestNetScore(t *testing.T) {
	assert.Equal(t, 2, NetScore(3, 1))
	assert.Equal(t, -2, NetScore(0, 2))
	assert.Equal(t, 0, NetScore(0, 0))
}
