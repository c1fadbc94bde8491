package redis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/feedradar/internal/db"
)

// buildItemFields converts an ItemRecord into a flat map[string]string for HSET.
func buildItemFields(rec db.ItemRecord) (map[string]string, error) {
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	breakdown, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("marshal breakdown: %w", err)
	}

	return map[string]string{
		"id":                 rec.ID,
		"external_id":        rec.ExternalID,
		"kind":               rec.Kind,
		"source_name":        rec.SourceName,
		"title":              rec.Title,
		"body":               rec.Body,
		"url":                rec.URL,
		"normalized_url":     rec.NormalizedURL,
		"author_id":          rec.AuthorID,
		"author_name":        rec.AuthorName,
		"author_followers":   strconv.Itoa(rec.AuthorFollowers),
		"likes":              strconv.Itoa(rec.Likes),
		"shares":             strconv.Itoa(rec.Shares),
		"replies":            strconv.Itoa(rec.Replies),
		"published_at":       strconv.FormatInt(rec.PublishedAt.UTC().Unix(), 10),
		"timestamp_inferred": strconv.FormatBool(rec.TimestampInferred),
		"language":           rec.Language,
		"tags":               string(tags),
		"score":              strconv.FormatFloat(rec.Score, 'f', -1, 64),
		"breakdown":          string(breakdown),
		"fetched_at":         strconv.FormatInt(unixOrZero(rec.FetchedAt), 10),
	}, nil
}

// parseItemFields converts a flat hash map back into an ItemRecord.
// Scalar fields written by buildItemFields always parse; the JSON fields
// are the only ones that can fail.
func parseItemFields(m map[string]string) (db.ItemRecord, error) {
	rec := db.ItemRecord{
		ID:                m["id"],
		ExternalID:        m["external_id"],
		Kind:              m["kind"],
		SourceName:        m["source_name"],
		Title:             m["title"],
		Body:              m["body"],
		URL:               m["url"],
		NormalizedURL:     m["normalized_url"],
		AuthorID:          m["author_id"],
		AuthorName:        m["author_name"],
		AuthorFollowers:   atoi(m["author_followers"]),
		Likes:             atoi(m["likes"]),
		Shares:            atoi(m["shares"]),
		Replies:           atoi(m["replies"]),
		PublishedAt:       timeOrZero(atoi64(m["published_at"])),
		TimestampInferred: m["timestamp_inferred"] == "true",
		Language:          m["language"],
		Score:             atof(m["score"]),
		FetchedAt:         timeOrZero(atoi64(m["fetched_at"])),
	}

	if raw := m["tags"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Tags); err != nil {
			return db.ItemRecord{}, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if raw := m["breakdown"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Breakdown); err != nil {
			return db.ItemRecord{}, fmt.Errorf("unmarshal breakdown: %w", err)
		}
	}

	return rec, nil
}

// feedbackBlob is the JSON shape of one list entry under fb:{itemID}.
type feedbackBlob struct {
	ID        string  `json:"id"`
	ItemID    string  `json:"item_id"`
	Type      string  `json:"type"`
	Weight    float64 `json:"weight"`
	CreatedAt int64   `json:"created_at"`
}

func encodeFeedback(rec db.FeedbackRecord) ([]byte, error) {
	return json.Marshal(feedbackBlob{
		ID:        rec.ID,
		ItemID:    rec.ItemID,
		Type:      rec.Type,
		Weight:    rec.Weight,
		CreatedAt: rec.CreatedAt.UTC().Unix(),
	})
}

func decodeFeedback(raw string) (db.FeedbackRecord, error) {
	var blob feedbackBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return db.FeedbackRecord{}, fmt.Errorf("unmarshal feedback: %w", err)
	}
	return db.FeedbackRecord{
		ID:        blob.ID,
		ItemID:    blob.ItemID,
		Type:      blob.Type,
		Weight:    blob.Weight,
		CreatedAt: timeOrZero(blob.CreatedAt),
	}, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoi64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().Unix()
}

func timeOrZero(unix int64) time.Time {
	if unix == 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0).UTC()
}
