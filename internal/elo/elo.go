// Package elo implements the pairwise rating update used by the rankings
// ladder. It is a pure computation: persistence and concurrency control are
// the repository's problem, which keeps every property here unit-testable.
package elo

import (
	"errors"
	"math"
)

const (
	// KFactor controls the magnitude of rating change per comparison. It is
	// fixed: no scaling by games played and no provisional boost for new
	// entrants.
	KFactor = 32.0

	// InitialRating is assigned when a game is first admitted to the ladder.
	InitialRating = 1500.0
)

// ErrInvalidWinner is the only error this package can produce.
var ErrInvalidWinner = errors.New("elo: winner must be one of the two opponents")

// ExpectedScore returns the probability, under the logistic Elo model, that a
// player rated ra beats a player rated rb. ExpectedScore(ra, rb) +
// ExpectedScore(rb, ra) == 1 for all finite inputs.
func ExpectedScore(ra, rb float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (rb-ra)/400.0))
}

// Update applies one outcome to the pair (ra, rb) and returns both new
// ratings. The same delta is added to one side and subtracted from the other,
// so the exchange is exactly zero-sum. Ratings are unbounded floats: they are
// never rounded or clamped, and may drift negative over many losses.
func Update(ra, rb float64, aWon bool) (newA, newB float64) {
	sa := 0.0
	if aWon {
		sa = 1.0
	}
	delta := KFactor * (sa - ExpectedScore(ra, rb))
	return ra + delta, rb - delta
}

// Apply resolves winnerID against the two opponents and computes their new
// ratings. It fails with ErrInvalidWinner when winnerID is neither idA nor
// idB; the inputs are returned unchanged in that case.
func Apply(idA, idB int64, ra, rb float64, winnerID int64) (newA, newB float64, err error) {
	switch winnerID {
	case idA:
		newA, newB = Update(ra, rb, true)
	case idB:
		newA, newB = Update(ra, rb, false)
	default:
		return ra, rb, ErrInvalidWinner
	}
	return newA, newB, nil
}
