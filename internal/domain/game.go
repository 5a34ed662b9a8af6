package domain

import "time"

// Game represents the canonical catalog entity in the database/service.
type Game struct {
	ID          int64
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
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Developer is a deduplicated studio; its ID is deterministic so repeated
// ingestion runs converge on the same row.
type Developer struct {
	ID   string
	Name string
}

// DeveloperSummary backs the explore view: a studio with its catalog footprint.
type DeveloperSummary struct {
	Developer
	GameCount int64
	AvgScore  *float64
}

// DeveloperDuo is a pair of studios that shipped games together.
type DeveloperDuo struct {
	DeveloperA  string
	DeveloperB  string
	SharedGames int64
	AvgScore    *float64
}
