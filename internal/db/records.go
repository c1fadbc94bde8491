package db

import "time"

// ItemRecord is the flat storage shape of an item. Drivers move these
// records without touching domain types; repositories do the mapping.
type ItemRecord struct {
	ID                string
	ExternalID        string
	Kind              string
	SourceName        string
	Title             string
	Body              string
	URL               string
	NormalizedURL     string
	AuthorID          string
	AuthorName        string
	AuthorFollowers   int
	Likes             int
	Shares            int
	Replies           int
	PublishedAt       time.Time
	TimestampInferred bool
	Language          string
	Tags              []string
	Score             float64
	Breakdown         map[string]float64
	FetchedAt         time.Time
}

// FeedbackRecord is the flat storage shape of one feedback entry.
type FeedbackRecord struct {
	ID        string
	ItemID    string
	Type      string
	Weight    float64
	CreatedAt time.Time
}
