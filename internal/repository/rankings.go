package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playrank/playrank/internal/domain"
	"github.com/playrank/playrank/internal/elo"
)

// RankingsRepository owns ladder state: admissions, pair selection, judgment
// application and the leaderboard.
type RankingsRepository struct {
	pool *pgxpool.Pool
}

const (
	// leaderboardSize caps the leaderboard query; clients never page past it.
	leaderboardSize = 100

	// maxApplyAttempts bounds the retry loop around the judgment transaction.
	maxApplyAttempts = 3
)

// Admit places a game on the ladder at the initial rating. Re-admitting an
// already-ranked game is a no-op: its accumulated rating is never reset.
func (r *RankingsRepository) Admit(ctx context.Context, gameID int64) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO game_ratings (game_id, elo, games_played)
        VALUES ($1, $2, 0)
        ON CONFLICT (game_id) DO NOTHING
    `, gameID, elo.InitialRating)
	return err
}

// Rating returns the current ladder row for a game.
func (r *RankingsRepository) Rating(ctx context.Context, gameID int64) (domain.GameRating, error) {
	var rating domain.GameRating
	err := r.pool.QueryRow(ctx, `
        SELECT game_id, elo, games_played, created_at, updated_at
        FROM game_ratings
        WHERE game_id = $1
    `, gameID).Scan(&rating.GameID, &rating.Elo, &rating.GamesPlayed, &rating.CreatedAt, &rating.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GameRating{}, ErrNotFound
		}
		return domain.GameRating{}, err
	}
	return rating, nil
}

// RandomPair draws two distinct games from the ladder, uniformly at random.
// Every admitted game is eligible regardless of rating or play count.
func (r *RankingsRepository) RandomPair(ctx context.Context) ([2]domain.RatedGame, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT g.id, g.name, g.price, g.score, g.genres, gr.elo, gr.games_played
        FROM game_ratings gr
        JOIN games g ON g.id = gr.game_id
        ORDER BY random()
        LIMIT 2
    `)
	if err != nil {
		return [2]domain.RatedGame{}, err
	}
	defer rows.Close()

	var pair [2]domain.RatedGame
	count := 0
	for rows.Next() {
		if count >= 2 {
			break
		}
		var game domain.RatedGame
		if err := rows.Scan(&game.ID, &game.Name, &game.Price, &game.Score, &game.Genres, &game.Elo, &game.GamesPlayed); err != nil {
			return [2]domain.RatedGame{}, err
		}
		pair[count] = game
		count++
	}
	if err := rows.Err(); err != nil {
		return [2]domain.RatedGame{}, err
	}
	if count < 2 {
		return [2]domain.RatedGame{}, ErrInsufficientPool
	}
	return pair, nil
}

// ApplyJudgment records a user's choice between two games and moves both
// ratings atomically. Both ladder rows are locked in ascending id order so
// that concurrent judgments sharing a game serialize instead of deadlocking;
// the whole transaction is retried a bounded number of times when postgres
// reports a serialization failure.
func (r *RankingsRepository) ApplyJudgment(ctx context.Context, game1ID, game2ID, winnerID int64) (domain.JudgmentResult, error) {
	if game1ID == game2ID {
		return domain.JudgmentResult{}, ErrInvalidPair
	}
	if winnerID != game1ID && winnerID != game2ID {
		return domain.JudgmentResult{}, ErrInvalidWinner
	}

	var result domain.JudgmentResult
	var lastErr error
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		result, lastErr = r.applyJudgmentOnce(ctx, game1ID, game2ID, winnerID)
		if lastErr == nil {
			return result, nil
		}
		if !isSerializationFailure(lastErr) {
			return domain.JudgmentResult{}, lastErr
		}
	}
	return domain.JudgmentResult{}, fmt.Errorf("%w: %v", ErrConflict, lastErr)
}

func (r *RankingsRepository) applyJudgmentOnce(ctx context.Context, game1ID, game2ID, winnerID int64) (domain.JudgmentResult, error) {
	var result domain.JudgmentResult

	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
            SELECT game_id, elo, games_played
            FROM game_ratings
            WHERE game_id IN ($1, $2)
            ORDER BY game_id ASC
            FOR UPDATE
        `, game1ID, game2ID)
		if err != nil {
			return err
		}

		ratings := make(map[int64]domain.GameRating, 2)
		for rows.Next() {
			var rt domain.GameRating
			if err := rows.Scan(&rt.GameID, &rt.Elo, &rt.GamesPlayed); err != nil {
				rows.Close()
				return err
			}
			ratings[rt.GameID] = rt
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		r1, ok1 := ratings[game1ID]
		r2, ok2 := ratings[game2ID]
		if !ok1 || !ok2 {
			return ErrNotFound
		}

		newElo1, newElo2, err := elo.Apply(game1ID, game2ID, r1.Elo, r2.Elo, winnerID)
		if err != nil {
			return ErrInvalidWinner
		}

		if _, err := tx.Exec(ctx, `
            UPDATE game_ratings
            SET elo = $2, games_played = games_played + 1, updated_at = now()
            WHERE game_id = $1
        `, game1ID, newElo1); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
            UPDATE game_ratings
            SET elo = $2, games_played = games_played + 1, updated_at = now()
            WHERE game_id = $1
        `, game2ID, newElo2); err != nil {
			return err
		}

		judgmentID := uuid.New().String()
		if _, err := tx.Exec(ctx, `
            INSERT INTO judgments (id, game_a, game_b, winner_id)
            VALUES ($1, $2, $3, $4)
        `, judgmentID, game1ID, game2ID, winnerID); err != nil {
			return err
		}

		result = domain.JudgmentResult{
			JudgmentID: judgmentID,
			Game1: domain.RatingChange{
				GameID:            game1ID,
				EloBefore:         r1.Elo,
				EloAfter:          newElo1,
				GamesPlayedBefore: r1.GamesPlayed,
				GamesPlayedAfter:  r1.GamesPlayed + 1,
			},
			Game2: domain.RatingChange{
				GameID:            game2ID,
				EloBefore:         r2.Elo,
				EloAfter:          newElo2,
				GamesPlayedBefore: r2.GamesPlayed,
				GamesPlayedAfter:  r2.GamesPlayed + 1,
			},
			WinnerID: winnerID,
		}
		return nil
	})
	if err != nil {
		return domain.JudgmentResult{}, err
	}
	return result, nil
}

// Leaderboard returns the top of the ladder. Ties on rating break on games
// played (more first), then on game id, so the ordering is deterministic.
func (r *RankingsRepository) Leaderboard(ctx context.Context) ([]domain.RankedGame, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT
            ROW_NUMBER() OVER (ORDER BY gr.elo DESC, gr.games_played DESC, g.id ASC) AS rank,
            g.id, g.name, g.price, g.score, g.genres, gr.elo, gr.games_played
        FROM game_ratings gr
        JOIN games g ON g.id = gr.game_id
        ORDER BY gr.elo DESC, gr.games_played DESC, g.id ASC
        LIMIT $1
    `, leaderboardSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.RankedGame, 0, leaderboardSize)
	for rows.Next() {
		var rg domain.RankedGame
		if err := rows.Scan(&rg.Rank, &rg.ID, &rg.Name, &rg.Price, &rg.Score, &rg.Genres, &rg.Elo, &rg.GamesPlayed); err != nil {
			return nil, err
		}
		out = append(out, rg)
	}
	return out, rows.Err()
}

// JudgmentCount reports how many judgments have been recorded in total.
func (r *RankingsRepository) JudgmentCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM judgments`).Scan(&count)
	return count, err
}

// isSerializationFailure reports whether the error is a retryable postgres
// serialization or deadlock failure (SQLSTATE 40001 / 40P01).
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
