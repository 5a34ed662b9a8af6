package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playrank/playrank/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// Errors raised by the rankings subsystem. Validation errors are returned
// before any statement touches the database.
var (
	ErrInvalidPair      = errors.New("repository: a game cannot be compared against itself")
	ErrInvalidWinner    = errors.New("repository: winner must be one of the two compared games")
	ErrInsufficientPool = errors.New("repository: need at least two games on the ladder")
	ErrConflict         = errors.New("repository: concurrent judgment conflict")
)

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Games    *GamesRepository
	Rankings *RankingsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Games:    &GamesRepository{pool: pool},
		Rankings: &RankingsRepository{pool: pool},
	}
}
