package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func TestHandleListGames(t *testing.T) {
	srv := buildTestServer(t)
	seedGame(t, srv, 100, "Alpha Quest")
	seedGame(t, srv, 200, "Beta Racer")

	rec := doRequest(srv, http.MethodGet, "/api/games", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var games []gameResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &games); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("game count = %d, want 2", len(games))
	}
	if games[0].Genres == nil || len(games[0].Genres) != 2 {
		t.Fatalf("genres = %v, want split array", games[0].Genres)
	}

	rec = doRequest(srv, http.MethodGet, "/api/games?q=beta", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d, want 200", rec.Code)
	}
	games = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &games); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(games) != 1 || games[0].Name != "Beta Racer" {
		t.Fatalf("search result = %+v", games)
	}

	rec = doRequest(srv, http.MethodGet, "/api/games?maxPrice=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad maxPrice status = %d, want 400", rec.Code)
	}
}

func TestHandleGetGame(t *testing.T) {
	srv := buildTestServer(t)
	game := seedGame(t, srv, 100, "Alpha Quest")

	rec := doRequest(srv, http.MethodGet, fmt.Sprintf("/api/games/%d", game.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got gameResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != game.ID || got.AppID != 100 {
		t.Fatalf("game = %+v", got)
	}

	rec = doRequest(srv, http.MethodGet, "/api/games/999999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing game status = %d, want 404", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, "/api/games/notanumber", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", rec.Code)
	}
}

func TestHandleCompareGames(t *testing.T) {
	srv := buildTestServer(t)
	gameA := seedGame(t, srv, 100, "Alpha Quest")
	gameB := seedGame(t, srv, 200, "Beta Racer")

	rec := doRequest(srv, http.MethodGet, fmt.Sprintf("/api/games/%d/compare?other=%d", gameA.ID, gameB.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp gameComparisonResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Game1.ID != gameA.ID || resp.Game2.ID != gameB.ID {
		t.Fatalf("comparison = %+v", resp)
	}

	rec = doRequest(srv, http.MethodGet, fmt.Sprintf("/api/games/%d/compare?other=%d", gameA.ID, gameA.ID), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self compare status = %d, want 400", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, fmt.Sprintf("/api/games/%d/compare?other=999999", gameA.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing other status = %d, want 404", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, fmt.Sprintf("/api/games/%d/compare", gameA.ID), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing other param status = %d, want 400", rec.Code)
	}
}

func TestHandleExploreAndDeveloperRoutes(t *testing.T) {
	srv := buildTestServer(t)
	ctx := context.Background()

	gameA := seedGame(t, srv, 100, "Alpha Quest")
	gameB := seedGame(t, srv, 200, "Beta Racer")

	const devX = "11111111-1111-1111-1111-111111111111"
	const devY = "22222222-2222-2222-2222-222222222222"
	for _, d := range []struct{ id, name string }{{devX, "Studio X"}, {devY, "Studio Y"}} {
		if err := srv.repo.Games.UpsertDeveloper(ctx, d.id, d.name); err != nil {
			t.Fatalf("upsert developer: %v", err)
		}
	}
	for _, gameID := range []int64{gameA.ID, gameB.ID} {
		for _, devID := range []string{devX, devY} {
			if err := srv.repo.Games.LinkDeveloper(ctx, gameID, devID); err != nil {
				t.Fatalf("link developer: %v", err)
			}
		}
	}

	rec := doRequest(srv, http.MethodGet, "/api/games/explore", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("explore status = %d, want 200", rec.Code)
	}
	var summaries []developerSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("decode explore: %v", err)
	}
	if len(summaries) != 2 || summaries[0].GameCount != 2 {
		t.Fatalf("explore = %+v", summaries)
	}

	rec = doRequest(srv, http.MethodGet, "/api/games/developer/"+devX, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("developer games status = %d, want 200", rec.Code)
	}
	var devGames developerGamesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &devGames); err != nil {
		t.Fatalf("decode developer games: %v", err)
	}
	if devGames.DeveloperID != devX || len(devGames.Games) != 2 {
		t.Fatalf("developer games = %+v", devGames)
	}

	rec = doRequest(srv, http.MethodGet, "/api/games/developer/33333333-3333-3333-3333-333333333333", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown developer status = %d, want 404", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, "/api/games/analytics/developer-duos", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("duos status = %d, want 200", rec.Code)
	}
	var duos []developerDuoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &duos); err != nil {
		t.Fatalf("decode duos: %v", err)
	}
	if len(duos) != 1 || duos[0].SharedGames != 2 {
		t.Fatalf("duos = %+v", duos)
	}

	rec = doRequest(srv, http.MethodGet, "/api/games/analytics/developer-duos?minShared=0", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad minShared status = %d, want 400", rec.Code)
	}
}
