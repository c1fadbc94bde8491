package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/kailas-cloud/feedradar/internal/db"
)

// itemColumns fixes the column order shared by inserts and scans.
var itemColumns = []string{
	"id", "external_id", "kind", "source_name", "title", "body",
	"url", "normalized_url", "author_id", "author_name", "author_followers",
	"likes", "shares", "replies", "published_at", "timestamp_inferred",
	"language", "tags", "score", "breakdown", "fetched_at",
}

// InsertItem stores a new row. The bare ON CONFLICT covers both the id
// primary key and the (external_id, kind) unique constraint, which agree by
// construction. Returns false when the row already existed.
func (s *Store) InsertItem(ctx context.Context, rec db.ItemRecord) (bool, error) {
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return false, &db.Error{Op: db.OpExec, Err: fmt.Errorf("marshal tags: %w", err)}
	}
	breakdown, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return false, &db.Error{Op: db.OpExec, Err: fmt.Errorf("marshal breakdown: %w", err)}
	}

	query, args, err := sq.Insert("items").
		Columns(itemColumns...).
		Values(
			rec.ID, rec.ExternalID, rec.Kind, rec.SourceName, rec.Title, rec.Body,
			rec.URL, rec.NormalizedURL, rec.AuthorID, rec.AuthorName, rec.AuthorFollowers,
			rec.Likes, rec.Shares, rec.Replies, rec.PublishedAt.UTC().Unix(), rec.TimestampInferred,
			rec.Language, string(tags), rec.Score, string(breakdown), unixOrZero(rec.FetchedAt),
		).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return false, &db.Error{Op: db.OpExec, Err: err}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, &db.Error{Op: db.OpExec, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &db.Error{Op: db.OpExec, Err: err}
	}
	return n > 0, nil
}

// GetItem returns the row stored under id, or db.ErrRecordNotFound.
func (s *Store) GetItem(ctx context.Context, id string) (db.ItemRecord, error) {
	query, args, err := sq.Select(itemColumns...).
		From("items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return db.ItemRecord{}, &db.Error{Op: db.OpQuery, Err: err}
	}

	rec, err := scanItem(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return db.ItemRecord{}, db.ErrRecordNotFound
	}
	if err != nil {
		return db.ItemRecord{}, &db.Error{Op: db.OpQuery, Err: err}
	}
	return rec, nil
}

// ItemExists checks whether a row exists for id.
func (s *Store) ItemExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM items WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, &db.Error{Op: db.OpQuery, Err: err}
	}
	return exists, nil
}

// RecentItems returns rows published at or after since, newest first.
func (s *Store) RecentItems(ctx context.Context, since time.Time) ([]db.ItemRecord, error) {
	query, args, err := sq.Select(itemColumns...).
		From("items").
		Where(sq.GtOrEq{"published_at": since.UTC().Unix()}).
		OrderBy("published_at DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return s.queryItems(ctx, query, args)
}

// UpdateItemScore rewrites the stored score and breakdown.
func (s *Store) UpdateItemScore(ctx context.Context, id string, score float64, breakdown map[string]float64) error {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("marshal breakdown: %w", err)}
	}

	query, args, err := sq.Update("items").
		Set("score", score).
		Set("breakdown", string(raw)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: err}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: err}
	}
	if n == 0 {
		return db.ErrRecordNotFound
	}
	return nil
}

// TopItems pages rows highest score first, ties broken by recency then id.
func (s *Store) TopItems(ctx context.Context, limit, offset int, kind string) ([]db.ItemRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	builder := sq.Select(itemColumns...).
		From("items").
		OrderBy("score DESC", "published_at DESC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	if kind != "" {
		builder = builder.Where(sq.Eq{"kind": kind})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return s.queryItems(ctx, query, args)
}

func (s *Store) queryItems(ctx context.Context, query string, args []any) ([]db.ItemRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	var recs []db.ItemRecord
	for rows.Next() {
		rec, err := scanItem(rows)
		if err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: err}
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return recs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (db.ItemRecord, error) {
	var rec db.ItemRecord
	var published, fetched int64
	var tags, breakdown string

	err := row.Scan(
		&rec.ID, &rec.ExternalID, &rec.Kind, &rec.SourceName, &rec.Title, &rec.Body,
		&rec.URL, &rec.NormalizedURL, &rec.AuthorID, &rec.AuthorName, &rec.AuthorFollowers,
		&rec.Likes, &rec.Shares, &rec.Replies, &published, &rec.TimestampInferred,
		&rec.Language, &tags, &rec.Score, &breakdown, &fetched,
	)
	if err != nil {
		return db.ItemRecord{}, err
	}

	rec.PublishedAt = timeOrZero(published)
	rec.FetchedAt = timeOrZero(fetched)
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
			return db.ItemRecord{}, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if breakdown != "" {
		if err := json.Unmarshal([]byte(breakdown), &rec.Breakdown); err != nil {
			return db.ItemRecord{}, fmt.Errorf("unmarshal breakdown: %w", err)
		}
	}
	return rec, nil
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
