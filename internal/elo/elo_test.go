package elo

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

func TestExpectedScoreSumsToOne(t *testing.T) {
	pairs := [][2]float64{
		{1500, 1500},
		{1600, 1400},
		{1400, 1600},
		{2100.25, 987.5},
		{-50, 3000},
	}
	for _, p := range pairs {
		ea := ExpectedScore(p[0], p[1])
		eb := ExpectedScore(p[1], p[0])
		if math.Abs(ea+eb-1.0) > tolerance {
			t.Fatalf("ExpectedScore(%v,%v)+ExpectedScore(%v,%v) = %v, want 1",
				p[0], p[1], p[1], p[0], ea+eb)
		}
	}
}

func TestUpdateEqualRatings(t *testing.T) {
	newA, newB := Update(1500, 1500, true)
	if newA != 1516 {
		t.Fatalf("winner rating = %v, want 1516", newA)
	}
	if newB != 1484 {
		t.Fatalf("loser rating = %v, want 1484", newB)
	}
}

func TestUpdateFavoriteWins(t *testing.T) {
	// A 200-point gap gives the favorite a ~0.76 expected score, so a win
	// moves both sides by only K*(1-E) ~ 7.69 points.
	newA, newB := Update(1600, 1400, true)
	ea := ExpectedScore(1600, 1400)
	if math.Abs(ea-0.7597469266479578) > 1e-12 {
		t.Fatalf("ExpectedScore(1600,1400) = %v, want 0.7597469266479578", ea)
	}
	if math.Abs(newA-1607.6880983472654) > 1e-6 {
		t.Fatalf("favorite new rating = %v, want about 1607.69", newA)
	}
	if math.Abs(newB-1392.3119016527346) > 1e-6 {
		t.Fatalf("underdog new rating = %v, want about 1392.31", newB)
	}
}

func TestUpdateUpset(t *testing.T) {
	// The underdog's win is worth the full K*E ~ 24.31 points.
	newA, newB := Update(1600, 1400, false)
	if math.Abs(newB-1424.3119016527346) > 1e-6 {
		t.Fatalf("underdog new rating = %v, want about 1424.31", newB)
	}
	if math.Abs(newA-1575.6880983472654) > 1e-6 {
		t.Fatalf("favorite new rating = %v, want about 1575.69", newA)
	}
}

func TestUpdateZeroSum(t *testing.T) {
	cases := []struct {
		ra, rb float64
		aWon   bool
	}{
		{1500, 1500, true},
		{1600, 1400, true},
		{1600, 1400, false},
		{1234.5, 1891.75, true},
		{-120, 410, false},
	}
	for _, c := range cases {
		newA, newB := Update(c.ra, c.rb, c.aWon)
		// The two subtractions can each round, so the recovered deltas are
		// only equal within float tolerance even though Update shares one
		// computed delta.
		if math.Abs((newA-c.ra)+(newB-c.rb)) > tolerance {
			t.Fatalf("Update(%v,%v,%v) deltas not zero-sum: %v vs %v",
				c.ra, c.rb, c.aWon, newA-c.ra, newB-c.rb)
		}
	}
}

func TestUpdateNeverClamps(t *testing.T) {
	rating := 20.0
	opponent := 20.0
	for i := 0; i < 50; i++ {
		opponentNew, ratingNew := Update(opponent, rating, true)
		opponent, rating = opponentNew, ratingNew
	}
	// A long losing streak must be allowed to drift below zero; a floor would
	// break the zero-sum property.
	if rating >= 0 {
		t.Fatalf("rating did not go negative after 50 losses: %v", rating)
	}
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		t.Fatalf("rating not finite: %v", rating)
	}
}

func TestApply(t *testing.T) {
	newA, newB, err := Apply(7, 9, 1500, 1500, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newA != 1484 || newB != 1516 {
		t.Fatalf("Apply with B winning = (%v, %v), want (1484, 1516)", newA, newB)
	}

	newA, newB, err = Apply(7, 9, 1500, 1500, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newA != 1516 || newB != 1484 {
		t.Fatalf("Apply with A winning = (%v, %v), want (1516, 1484)", newA, newB)
	}
}

func TestApplyInvalidWinner(t *testing.T) {
	newA, newB, err := Apply(7, 9, 1600, 1400, 11)
	if !errors.Is(err, ErrInvalidWinner) {
		t.Fatalf("err = %v, want ErrInvalidWinner", err)
	}
	if newA != 1600 || newB != 1400 {
		t.Fatalf("ratings changed on invalid winner: (%v, %v)", newA, newB)
	}
}
