package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/feedradar/internal/db"
)

// InsertItem claims the item id with HSETNX, then writes the full hash, the
// day bucket, and the ranking sets. Returns false when the id was already
// present.
func (s *Store) InsertItem(ctx context.Context, rec db.ItemRecord) (bool, error) {
	key := s.itemKey(rec.ID)

	claim := s.b().Hsetnx().Key(key).Field("id").Value(rec.ID).Build()
	created, err := s.do(ctx, claim).AsBool()
	if err != nil {
		return false, &db.Error{Op: db.OpHSetNX, Err: err}
	}
	if !created {
		return false, nil
	}

	fields, err := buildItemFields(rec)
	if err != nil {
		return false, &db.Error{Op: db.OpHSet, Err: err}
	}
	hset := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		hset = hset.FieldValue(k, v)
	}

	// Items published in the future land in today's bucket so window scans
	// never have to look past the current day.
	bucket := rec.PublishedAt.UTC()
	if now := time.Now().UTC(); bucket.After(now) {
		bucket = now
	}
	published := float64(rec.PublishedAt.UTC().Unix())

	cmds := []rueidis.Completed{
		hset.Build(),
		s.b().Zadd().Key(s.dayKey(bucket)).ScoreMember().ScoreMember(published, rec.ID).Build(),
		s.b().Zadd().Key(s.scoresKey("")).ScoreMember().ScoreMember(rec.Score, rec.ID).Build(),
		s.b().Zadd().Key(s.scoresKey(rec.Kind)).ScoreMember().ScoreMember(rec.Score, rec.ID).Build(),
	}
	for _, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return false, &db.Error{Op: db.OpExec, Err: err}
		}
	}
	return true, nil
}

// GetItem returns the record stored under id, or db.ErrRecordNotFound.
func (s *Store) GetItem(ctx context.Context, id string) (db.ItemRecord, error) {
	m, err := s.do(ctx, s.b().Hgetall().Key(s.itemKey(id)).Build()).AsStrMap()
	if err != nil {
		return db.ItemRecord{}, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	if len(m) == 0 {
		return db.ItemRecord{}, db.ErrRecordNotFound
	}
	rec, err := parseItemFields(m)
	if err != nil {
		return db.ItemRecord{}, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return rec, nil
}

// ItemExists checks whether an item hash exists for id.
func (s *Store) ItemExists(ctx context.Context, id string) (bool, error) {
	count, err := s.do(ctx, s.b().Exists().Key(s.itemKey(id)).Build()).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return count > 0, nil
}

// RecentItems walks the day buckets covering [since, now], collects the ids
// published at or after since, and hydrates them in one round-trip. Results
// are ordered newest first.
func (s *Store) RecentItems(ctx context.Context, since time.Time) ([]db.ItemRecord, error) {
	since = since.UTC()
	min := strconv.FormatInt(since.Unix(), 10)

	var ids []string
	now := time.Now().UTC()
	for day := since.Truncate(24 * time.Hour); !day.After(now); day = day.Add(24 * time.Hour) {
		cmd := s.b().Zrangebyscore().Key(s.dayKey(day)).Min(min).Max("+inf").Build()
		got, err := s.do(ctx, cmd).AsStrSlice()
		if err != nil {
			return nil, &db.Error{Op: db.OpZRangeByScore, Err: err}
		}
		ids = append(ids, got...)
	}

	recs, err := s.hydrate(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].PublishedAt.After(recs[j].PublishedAt)
	})
	return recs, nil
}

// UpdateItemScore rewrites the stored score and breakdown and refreshes the
// ranking sets.
func (s *Store) UpdateItemScore(ctx context.Context, id string, score float64, breakdown map[string]float64) error {
	key := s.itemKey(id)

	kind, err := s.do(ctx, s.b().Hget().Key(key).Field("kind").Build()).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return db.ErrRecordNotFound
		}
		return &db.Error{Op: db.OpHGet, Err: err}
	}

	raw, err := json.Marshal(breakdown)
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("marshal breakdown: %w", err)}
	}

	cmds := []rueidis.Completed{
		s.b().Hset().Key(key).FieldValue().
			FieldValue("score", strconv.FormatFloat(score, 'f', -1, 64)).
			FieldValue("breakdown", string(raw)).
			Build(),
		s.b().Zadd().Key(s.scoresKey("")).ScoreMember().ScoreMember(score, id).Build(),
		s.b().Zadd().Key(s.scoresKey(kind)).ScoreMember().ScoreMember(score, id).Build(),
	}
	for _, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpExec, Err: err}
		}
	}
	return nil
}

// TopItems pages the ranking set highest score first. The zset order is
// preserved through hydration.
func (s *Store) TopItems(ctx context.Context, limit, offset int, kind string) ([]db.ItemRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	cmd := s.b().Zrevrange().Key(s.scoresKey(kind)).Start(int64(offset)).Stop(int64(offset + limit - 1)).Build()
	ids, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRevRange, Err: err}
	}
	return s.hydrate(ctx, ids)
}

// hydrate fetches the hashes for ids in a single DoMulti round-trip,
// preserving input order and skipping ids whose hash has vanished.
func (s *Store) hydrate(ctx context.Context, ids []string) ([]db.ItemRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(ids))
	for i, id := range ids {
		cmds[i] = s.b().Hgetall().Key(s.itemKey(id)).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	recs := make([]db.ItemRecord, 0, len(results))
	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", s.itemKey(ids[i]), err)}
		}
		if len(m) == 0 {
			continue
		}
		rec, err := parseItemFields(m)
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Err: err}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
