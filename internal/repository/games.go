package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playrank/playrank/internal/domain"
)

// GamesRepository provides persistence helpers for catalog entities.
type GamesRepository struct {
	pool *pgxpool.Pool
}

const gameColumns = `
    id,
    app_id,
    name,
    release_date,
    price,
    score,
    sentiment,
    genres,
    developers,
    publishers,
    description,
    header_image,
    created_at,
    updated_at
`

// GameUpsertParams bundles the fields written during ingestion.
type GameUpsertParams struct {
	AppID       int64
	Name        string
	ReleaseDate *time.Time
	Price       *float64
	Score       *int
	Sentiment   *float64
	Genres      *string
	Developers  *string
	Publishers  *string
	Description *string
	HeaderImage *string
}

// GameListFilters encapsulates search and pagination options.
type GameListFilters struct {
	Query    *string
	Genre    *string
	MaxPrice *float64
	Limit    int
	Offset   int
}

// Upsert inserts or refreshes a game row keyed by its external app id.
func (r *GamesRepository) Upsert(ctx context.Context, params GameUpsertParams) (domain.Game, error) {
	query := fmt.Sprintf(`
        INSERT INTO games (app_id, name, release_date, price, score, sentiment, genres, developers, publishers, description, header_image)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT (app_id) DO UPDATE SET
            name = EXCLUDED.name,
            release_date = EXCLUDED.release_date,
            price = EXCLUDED.price,
            score = EXCLUDED.score,
            sentiment = EXCLUDED.sentiment,
            genres = EXCLUDED.genres,
            developers = EXCLUDED.developers,
            publishers = EXCLUDED.publishers,
            description = EXCLUDED.description,
            header_image = EXCLUDED.header_image,
            updated_at = now()
        RETURNING %s
    `, gameColumns)

	row := r.pool.QueryRow(ctx, query,
		params.AppID, params.Name, params.ReleaseDate, params.Price, params.Score,
		params.Sentiment, params.Genres, params.Developers, params.Publishers,
		params.Description, params.HeaderImage)
	return scanGame(row)
}

// GetByID fetches a game by its identifier.
func (r *GamesRepository) GetByID(ctx context.Context, id int64) (domain.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE id = $1`, gameColumns)
	game, err := scanGame(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Game{}, ErrNotFound
		}
		return domain.Game{}, err
	}
	return game, nil
}

// GetByAppID fetches a game by its external catalog id.
func (r *GamesRepository) GetByAppID(ctx context.Context, appID int64) (domain.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE app_id = $1`, gameColumns)
	game, err := scanGame(r.pool.QueryRow(ctx, query, appID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Game{}, ErrNotFound
		}
		return domain.Game{}, err
	}
	return game, nil
}

// List returns games matching the provided filters, ordered by id for a
// stable browse sequence.
func (r *GamesRepository) List(ctx context.Context, filters GameListFilters) ([]domain.Game, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	} else if filters.Limit > 100 {
		filters.Limit = 100
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Query != nil && strings.TrimSpace(*filters.Query) != "" {
		q := "%" + strings.TrimSpace(*filters.Query) + "%"
		p1, p2, p3 := arg(q), arg(q), arg(q)
		where = append(where, fmt.Sprintf("(name ILIKE %s OR genres ILIKE %s OR developers ILIKE %s)", p1, p2, p3))
	}
	if filters.Genre != nil && strings.TrimSpace(*filters.Genre) != "" {
		where = append(where, fmt.Sprintf("genres ILIKE %s", arg("%"+strings.TrimSpace(*filters.Genre)+"%")))
	}
	if filters.MaxPrice != nil {
		where = append(where, fmt.Sprintf("price <= %s", arg(*filters.MaxPrice)))
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(gameColumns)
	queryBuilder.WriteString(" FROM games")
	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY id ASC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", filters.Limit, filters.Offset))

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Game, 0)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, game)
	}
	return items, rows.Err()
}

// UpsertDeveloper records a studio under its deterministic id.
func (r *GamesRepository) UpsertDeveloper(ctx context.Context, id, name string) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO developers (id, name) VALUES ($1, $2)
        ON CONFLICT (id) DO NOTHING
    `, id, name)
	return err
}

// LinkDeveloper associates a game with a studio; duplicate links are ignored.
func (r *GamesRepository) LinkDeveloper(ctx context.Context, gameID int64, developerID string) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO game_developers (game_id, developer_id) VALUES ($1, $2)
        ON CONFLICT (game_id, developer_id) DO NOTHING
    `, gameID, developerID)
	return err
}

// Developers lists studios with their catalog footprint, largest first.
func (r *GamesRepository) Developers(ctx context.Context, limit int) ([]domain.DeveloperSummary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
        SELECT d.id, d.name, COUNT(gd.game_id) AS game_count, AVG(g.score) AS avg_score
        FROM developers d
        JOIN game_developers gd ON gd.developer_id = d.id
        JOIN games g ON g.id = gd.game_id
        GROUP BY d.id, d.name
        ORDER BY game_count DESC, d.name ASC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.DeveloperSummary, 0, limit)
	for rows.Next() {
		var s domain.DeveloperSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.GameCount, &s.AvgScore); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeveloperGames returns the catalog entries attributed to a studio.
func (r *GamesRepository) DeveloperGames(ctx context.Context, developerID string) ([]domain.Game, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM games
        WHERE id IN (SELECT game_id FROM game_developers WHERE developer_id = $1)
        ORDER BY score DESC NULLS LAST, name ASC
    `, gameColumns)

	rows, err := r.pool.Query(ctx, query, developerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Game, 0)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, game)
	}
	return out, rows.Err()
}

// DeveloperDuos surfaces pairs of studios that shipped games together, ranked
// by how many titles they share.
func (r *GamesRepository) DeveloperDuos(ctx context.Context, minShared, limit int) ([]domain.DeveloperDuo, error) {
	if minShared < 1 {
		minShared = 2
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	rows, err := r.pool.Query(ctx, `
        SELECT d1.name, d2.name, COUNT(*) AS shared_games, AVG(g.score) AS avg_score
        FROM game_developers gd1
        JOIN game_developers gd2
          ON gd1.game_id = gd2.game_id AND gd1.developer_id < gd2.developer_id
        JOIN developers d1 ON d1.id = gd1.developer_id
        JOIN developers d2 ON d2.id = gd2.developer_id
        JOIN games g ON g.id = gd1.game_id
        GROUP BY d1.name, d2.name
        HAVING COUNT(*) >= $1
        ORDER BY shared_games DESC, avg_score DESC NULLS LAST, d1.name ASC
        LIMIT $2
    `, minShared, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.DeveloperDuo, 0, limit)
	for rows.Next() {
		var duo domain.DeveloperDuo
		if err := rows.Scan(&duo.DeveloperA, &duo.DeveloperB, &duo.SharedGames, &duo.AvgScore); err != nil {
			return nil, err
		}
		out = append(out, duo)
	}
	return out, rows.Err()
}

func scanGame(row pgx.Row) (domain.Game, error) {
	var game domain.Game
	err := row.Scan(
		&game.ID,
		&game.AppID,
		&game.Name,
		&game.ReleaseDate,
		&game.Price,
		&game.Score,
		&game.Sentiment,
		&game.Genres,
		&game.Developers,
		&game.Publishers,
		&game.Description,
		&game.HeaderImage,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		return domain.Game{}, err
	}
	return game, nil
}
