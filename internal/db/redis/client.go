// Package redis implements db.Store on Redis via rueidis.
//
// Key layout (all keys carry the configured prefix):
//
//	item:{id}        hash with one field per item attribute
//	day:{2006-01-02} sorted set of item ids scored by published-at (UTC day buckets)
//	scores           sorted set of item ids scored by item score
//	scores:{kind}    per-kind ranking sorted set
//	fb:{itemID}      list of JSON-encoded feedback entries
//	summary:latest   JSON blob of the most recent cycle summary
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/feedradar/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Store implements db.Store via rueidis.
type Store struct {
	client rueidis.Client
	prefix string
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, prefix: cfg.KeyPrefix}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

func (s *Store) itemKey(id string) string     { return s.prefix + "item:" + id }
func (s *Store) feedbackKey(id string) string { return s.prefix + "fb:" + id }
func (s *Store) summaryKey() string           { return s.prefix + "summary:latest" }

func (s *Store) dayKey(t time.Time) string {
	return s.prefix + "day:" + t.UTC().Format("2006-01-02")
}

// scoresKey returns the ranking set for a source kind, or the global set
// when kind is empty.
func (s *Store) scoresKey(kind string) string {
	if kind == "" {
		return s.prefix + "scores"
	}
	return s.prefix + "scores:" + kind
}
