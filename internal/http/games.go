package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playrank/playrank/internal/domain"
	"github.com/playrank/playrank/internal/repository"
)

const (
	maxRequestBody    = 1 << 20 // 1 MiB
	maxSearchQueryLen = 100
)

type errorResponse struct {
	Error string `json:"error"`
}

type gameResponse struct {
	ID          int64    `json:"id"`
	AppID       int64    `json:"appId"`
	Name        string   `json:"name"`
	ReleaseDate *string  `json:"releaseDate,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Score       *int     `json:"score,omitempty"`
	Sentiment   *float64 `json:"sentiment,omitempty"`
	Genres      []string `json:"genres"`
	Developers  []string `json:"developers"`
	Publishers  []string `json:"publishers"`
	Description *string  `json:"description,omitempty"`
	HeaderImage *string  `json:"headerImage,omitempty"`
}

type developerSummaryResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	GameCount int64    `json:"gameCount"`
	AvgScore  *float64 `json:"avgScore"`
}

type developerGamesResponse struct {
	DeveloperID string         `json:"developerId"`
	Games       []gameResponse `json:"games"`
}

type developerDuoResponse struct {
	DeveloperA  string   `json:"developerA"`
	DeveloperB  string   `json:"developerB"`
	SharedGames int64    `json:"sharedGames"`
	AvgScore    *float64 `json:"avgScore"`
}

type gameComparisonResponse struct {
	Game1 gameResponse `json:"game1"`
	Game2 gameResponse `json:"game2"`
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	filters, err := buildGameFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	games, err := s.repo.Games.List(r.Context(), filters)
	if err != nil {
		s.logger.Printf("list games error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list games")
		return
	}

	items := make([]gameResponse, 0, len(games))
	for _, game := range games {
		items = append(items, toGameResponse(game))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func buildGameFilters(query url.Values) (repository.GameListFilters, error) {
	var filters repository.GameListFilters

	if q := strings.TrimSpace(query.Get("q")); q != "" {
		if len(q) > maxSearchQueryLen {
			return filters, fmt.Errorf("search query too long")
		}
		filters.Query = &q
	}
	if val := strings.TrimSpace(query.Get("genre")); val != "" {
		filters.Genre = &val
	}
	if val := strings.TrimSpace(query.Get("maxPrice")); val != "" {
		price, err := strconv.ParseFloat(val, 64)
		if err != nil || price < 0 {
			return filters, fmt.Errorf("invalid maxPrice value")
		}
		filters.MaxPrice = &price
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil || limit < 0 {
			return filters, fmt.Errorf("invalid limit value")
		}
		filters.Limit = limit
	}
	if val := strings.TrimSpace(query.Get("offset")); val != "" {
		offset, err := strconv.Atoi(val)
		if err != nil || offset < 0 {
			return filters, fmt.Errorf("invalid offset value")
		}
		filters.Offset = offset
	}
	return filters, nil
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseGameIDParam(r, "gameID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, err := s.repo.Games.GetByID(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "game not found")
			return
		}
		s.logger.Printf("get game error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to fetch game")
		return
	}
	s.respondJSON(w, http.StatusOK, toGameResponse(game))
}

func (s *Server) handleCompareGames(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseGameIDParam(r, "gameID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	otherID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("other")), 10, 64)
	if err != nil || otherID <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid other game id")
		return
	}
	if otherID == gameID {
		s.respondError(w, http.StatusBadRequest, "cannot compare a game against itself")
		return
	}

	game1, err := s.repo.Games.GetByID(r.Context(), gameID)
	if err != nil {
		s.respondGameFetchError(w, err)
		return
	}
	game2, err := s.repo.Games.GetByID(r.Context(), otherID)
	if err != nil {
		s.respondGameFetchError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, gameComparisonResponse{
		Game1: toGameResponse(game1),
		Game2: toGameResponse(game2),
	})
}

func (s *Server) respondGameFetchError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "game not found")
		return
	}
	s.logger.Printf("fetch game error: %v", err)
	s.respondError(w, http.StatusInternalServerError, "failed to fetch game")
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if val := strings.TrimSpace(r.URL.Query().Get("limit")); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil || parsed < 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit value")
			return
		}
		limit = parsed
	}

	summaries, err := s.repo.Games.Developers(r.Context(), limit)
	if err != nil {
		s.logger.Printf("explore error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load developers")
		return
	}

	out := make([]developerSummaryResponse, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, developerSummaryResponse{
			ID:        sum.ID,
			Name:      sum.Name,
			GameCount: sum.GameCount,
			AvgScore:  sum.AvgScore,
		})
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeveloperGames(w http.ResponseWriter, r *http.Request) {
	developerID := strings.TrimSpace(chi.URLParam(r, "developerID"))
	if developerID == "" {
		s.respondError(w, http.StatusBadRequest, "missing developer id")
		return
	}

	games, err := s.repo.Games.DeveloperGames(r.Context(), developerID)
	if err != nil {
		s.logger.Printf("developer games error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load developer games")
		return
	}
	if len(games) == 0 {
		s.respondError(w, http.StatusNotFound, "developer not found")
		return
	}

	out := developerGamesResponse{DeveloperID: developerID, Games: make([]gameResponse, 0, len(games))}
	for _, game := range games {
		out.Games = append(out.Games, toGameResponse(game))
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeveloperDuos(w http.ResponseWriter, r *http.Request) {
	minShared := 2
	if val := strings.TrimSpace(r.URL.Query().Get("minShared")); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil || parsed < 1 {
			s.respondError(w, http.StatusBadRequest, "invalid minShared value")
			return
		}
		minShared = parsed
	}

	duos, err := s.repo.Games.DeveloperDuos(r.Context(), minShared, 25)
	if err != nil {
		s.logger.Printf("developer duos error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load developer duos")
		return
	}

	out := make([]developerDuoResponse, 0, len(duos))
	for _, duo := range duos {
		out = append(out, developerDuoResponse{
			DeveloperA:  duo.DeveloperA,
			DeveloperB:  duo.DeveloperB,
			SharedGames: duo.SharedGames,
			AvgScore:    duo.AvgScore,
		})
	}
	s.respondJSON(w, http.StatusOK, out)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}

func toGameResponse(game domain.Game) gameResponse {
	resp := gameResponse{
		ID:          game.ID,
		AppID:       game.AppID,
		Name:        game.Name,
		Price:       game.Price,
		Score:       game.Score,
		Sentiment:   game.Sentiment,
		Genres:      splitList(game.Genres),
		Developers:  splitList(game.Developers),
		Publishers:  splitList(game.Publishers),
		Description: game.Description,
		HeaderImage: game.HeaderImage,
	}
	if game.ReleaseDate != nil {
		formatted := game.ReleaseDate.Format("2006-01-02")
		resp.ReleaseDate = &formatted
	}
	return resp
}

// splitList turns a comma-separated column into a JSON array, never null.
func splitList(raw *string) []string {
	if raw == nil {
		return []string{}
	}
	parts := strings.Split(*raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseGameIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid game id")
	}
	return id, nil
}
