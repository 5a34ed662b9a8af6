package domain

import "time"

// GameRating is a game's current position on the ladder. Exactly one row per
// admitted game; mutated only by the judgment transaction.
type GameRating struct {
	GameID      int64
	Elo         float64
	GamesPlayed int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Judgment is one recorded user choice between two games. Rows are append-only:
// they are written atomically with the rating update they cause and are never
// modified afterwards, so the ladder can be replayed from scratch.
type Judgment struct {
	ID         string
	GameA      int64
	GameB      int64
	WinnerID   int64
	RecordedAt time.Time
}

// RatedGame joins ladder state with the catalog metadata a client needs to
// render a matchup or a leaderboard row.
type RatedGame struct {
	ID          int64
	Name        string
	Price       *float64
	Score       *int
	Genres      *string
	Elo         float64
	GamesPlayed int
}

// RankedGame is a RatedGame with its 1-based leaderboard position.
type RankedGame struct {
	RatedGame
	Rank int
}

// RatingChange captures one side of a judgment outcome.
type RatingChange struct {
	GameID            int64
	EloBefore         float64
	EloAfter          float64
	GamesPlayedBefore int
	GamesPlayedAfter  int
}

// EloChange is the signed rating delta for this game.
func (c RatingChange) EloChange() float64 {
	return c.EloAfter - c.EloBefore
}

// JudgmentResult is the full outcome of a submitted comparison.
type JudgmentResult struct {
	JudgmentID string
	Game1      RatingChange
	Game2      RatingChange
	WinnerID   int64
}
