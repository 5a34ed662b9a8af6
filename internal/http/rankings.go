package httpserver

import (
	"errors"
	"net/http"

	"github.com/playrank/playrank/internal/domain"
	"github.com/playrank/playrank/internal/repository"
)

type ratedGameResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Price       *float64 `json:"price,omitempty"`
	Score       *int     `json:"score,omitempty"`
	Genres      []string `json:"genres"`
	Elo         float64  `json:"elo"`
	GamesPlayed int      `json:"gamesPlayed"`
}

type rankedGameResponse struct {
	Rank int `json:"rank"`
	ratedGameResponse
}

type compareRequest struct {
	Game1ID  int64 `json:"game1Id"`
	Game2ID  int64 `json:"game2Id"`
	WinnerID int64 `json:"winnerId"`
}

type ratingChangeResponse struct {
	ID                int64   `json:"id"`
	EloBefore         float64 `json:"eloBefore"`
	EloAfter          float64 `json:"eloAfter"`
	EloChange         float64 `json:"eloChange"`
	GamesPlayedBefore int     `json:"gamesPlayedBefore"`
	GamesPlayedAfter  int     `json:"gamesPlayedAfter"`
}

type compareResponse struct {
	JudgmentID string               `json:"judgmentId"`
	Game1      ratingChangeResponse `json:"game1"`
	Game2      ratingChangeResponse `json:"game2"`
	WinnerID   int64                `json:"winnerId"`
}

func (s *Server) handleRandomPair(w http.ResponseWriter, r *http.Request) {
	pair, err := s.repo.Rankings.RandomPair(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientPool) {
			s.respondError(w, http.StatusNotFound, "not enough games on the ladder")
			return
		}
		s.logger.Printf("random pair error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to draw a pair")
		return
	}

	s.respondJSON(w, http.StatusOK, []ratedGameResponse{
		toRatedGameResponse(pair[0]),
		toRatedGameResponse(pair[1]),
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Game1ID <= 0 || req.Game2ID <= 0 || req.WinnerID <= 0 {
		s.respondError(w, http.StatusBadRequest, "game1Id, game2Id and winnerId are required")
		return
	}

	result, err := s.repo.Rankings.ApplyJudgment(r.Context(), req.Game1ID, req.Game2ID, req.WinnerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidPair):
			s.respondError(w, http.StatusBadRequest, "a game cannot be compared against itself")
		case errors.Is(err, repository.ErrInvalidWinner):
			s.respondError(w, http.StatusBadRequest, "winner must be one of the two compared games")
		case errors.Is(err, repository.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "one or both games are not on the ladder")
		case errors.Is(err, repository.ErrConflict):
			s.logger.Printf("compare conflict: %v", err)
			s.respondError(w, http.StatusInternalServerError, "comparison could not be recorded, try again")
		default:
			s.logger.Printf("compare error: %v", err)
			s.respondError(w, http.StatusInternalServerError, "failed to record comparison")
		}
		return
	}

	s.respondJSON(w, http.StatusOK, compareResponse{
		JudgmentID: result.JudgmentID,
		Game1:      toRatingChangeResponse(result.Game1),
		Game2:      toRatingChangeResponse(result.Game2),
		WinnerID:   result.WinnerID,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := s.repo.Rankings.Leaderboard(r.Context())
	if err != nil {
		s.logger.Printf("leaderboard error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	out := make([]rankedGameResponse, 0, len(board))
	for _, entry := range board {
		out = append(out, rankedGameResponse{
			Rank:              entry.Rank,
			ratedGameResponse: toRatedGameResponse(entry.RatedGame),
		})
	}
	s.respondJSON(w, http.StatusOK, out)
}

func toRatedGameResponse(game domain.RatedGame) ratedGameResponse {
	return ratedGameResponse{
		ID:          game.ID,
		Name:        game.Name,
		Price:       game.Price,
		Score:       game.Score,
		Genres:      splitList(game.Genres),
		Elo:         game.Elo,
		GamesPlayed: game.GamesPlayed,
	}
}

func toRatingChangeResponse(change domain.RatingChange) ratingChangeResponse {
	return ratingChangeResponse{
		ID:                change.GameID,
		EloBefore:         change.EloBefore,
		EloAfter:          change.EloAfter,
		EloChange:         change.EloChange(),
		GamesPlayedBefore: change.GamesPlayedBefore,
		GamesPlayedAfter:  change.GamesPlayedAfter,
	}
}
