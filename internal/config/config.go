package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/feedradar/internal/domain"
)

// Config holds the feedradar configuration. Decoding is strict: keys outside
// this struct fail Load, so a typoed weight name cannot be silently ignored.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Sources   []SourceConfig  `yaml:"sources"`
	Relevance RelevanceConfig `yaml:"relevance"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Dedup     DedupConfig     `yaml:"dedup"`
	Quality   QualityConfig   `yaml:"quality"`
	Enrich    EnrichConfig    `yaml:"enrich"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Driver           string       `yaml:"driver"` // redis, sqlite (default: sqlite)
	Redis            RedisConfig  `yaml:"redis"`
	SQLite           SQLiteConfig `yaml:"sqlite"`
	KeyPrefix        string       `yaml:"key_prefix"`
	ReadinessTimeout int          `yaml:"readiness_timeout_sec"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
}

// SQLiteConfig holds SQLite file settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// SourceConfig describes one configured source. Kind selects the adapter;
// the remaining fields are interpreted per kind (URL for rss, Subreddit and
// Listing for reddit, Story for hackernews, Query for github).
type SourceConfig struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	Enabled   *bool  `yaml:"enabled"`
	URL       string `yaml:"url"`
	Subreddit string `yaml:"subreddit"`
	Listing   string `yaml:"listing"`
	Story     string `yaml:"story"`
	Query     string `yaml:"query"`
	MaxItems  int    `yaml:"max_items"`
}

// IsEnabled reports whether the source participates in cycles (default true).
func (s SourceConfig) IsEnabled() bool { return s.Enabled == nil || *s.Enabled }

// RelevanceConfig holds the domain keyword lists and topic vocabulary.
type RelevanceConfig struct {
	Keywords        []string            `yaml:"keywords"`
	ExcludeKeywords []string            `yaml:"exclude_keywords"`
	Languages       []string            `yaml:"languages"`
	Topics          map[string][]string `yaml:"topics"`
	TopKeywords     int                 `yaml:"top_keywords"`
}

// ScoringConfig holds all scoring weights and decay settings.
type ScoringConfig struct {
	Weights       WeightsConfig      `yaml:"weights"`
	SourceBonus   map[string]float64 `yaml:"source_bonus"`
	TagBonus      map[string]float64 `yaml:"tag_bonus"`
	HalfLifeHours int                `yaml:"half_life_hours"`
}

// WeightsConfig holds per-signal multipliers. A zero or negative value takes
// the documented default; the scoring formula is defined in the score usecase.
type WeightsConfig struct {
	Likes    float64 `yaml:"likes"`
	Shares   float64 `yaml:"shares"`
	Replies  float64 `yaml:"replies"`
	Feedback float64 `yaml:"feedback"`
}

// DedupConfig holds duplicate-detection thresholds.
type DedupConfig struct {
	TitleThreshold   float64 `yaml:"title_threshold"`
	ContentThreshold float64 `yaml:"content_threshold"`
	WindowDays       int     `yaml:"window_days"`
	Algorithm        string  `yaml:"algorithm"` // token_set, sequence (default: token_set)
}

// QualityConfig holds the quality filter settings.
type QualityConfig struct {
	MinLength    int      `yaml:"min_length"`
	StubPatterns []string `yaml:"stub_patterns"`
}

// EnrichConfig holds article-reader settings.
type EnrichConfig struct {
	Enabled      bool `yaml:"enabled"`
	MinBody      int  `yaml:"min_body"`
	MinExtracted int  `yaml:"min_extracted"`
	TimeoutSec   int  `yaml:"timeout_sec"`
}

// PipelineConfig holds cycle concurrency settings.
type PipelineConfig struct {
	Concurrency      int `yaml:"concurrency"`
	SourceTimeoutSec int `yaml:"source_timeout_sec"`
}

// SchedulerConfig holds periodic-cycle settings for serve mode.
type SchedulerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Spec     string `yaml:"spec"`
	Timezone string `yaml:"timezone"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error (default: determined by env)
	Encoding string `yaml:"encoding"` // json, console (default: determined by env)
}

// Load reads configuration from the given YAML path. An empty path falls
// back to config/<ENV>.yaml discovery.
func Load(path string) (Config, error) {
	if path == "" {
		path = findConfigPath(GetEnv())
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("%w: read config %s: %v", domain.ErrConfiguration, path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes, defaults and validates raw YAML configuration.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR} / ${VAR:-default}
	data = expandEnvVars(data)

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse config: %v", domain.ErrConfiguration, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// Defaults documented in one place; zero values in the file take these.
const (
	DefaultMinLength        = 40
	DefaultTitleThreshold   = 0.80
	DefaultContentThreshold = 0.70
	DefaultWindowDays       = 7
	DefaultHalfLifeHours    = 48
	DefaultTopKeywords      = 10
	DefaultConcurrency      = 8
	DefaultSourceTimeoutSec = 15
	DefaultMaxItems         = 50
)

// DefaultStubPatterns flag placeholder bodies whose real content was never
// retrieved. Matching is case-insensitive on folded text.
var DefaultStubPatterns = []string{"read more", "click here", "coming soon"}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "feedradar.db"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "feedradar:"
	}
	if c.Storage.ReadinessTimeout <= 0 {
		c.Storage.ReadinessTimeout = 10
	}
	for i := range c.Sources {
		if c.Sources[i].MaxItems <= 0 {
			c.Sources[i].MaxItems = DefaultMaxItems
		}
	}
	if c.Relevance.TopKeywords <= 0 {
		c.Relevance.TopKeywords = DefaultTopKeywords
	}
	if c.Scoring.Weights.Likes <= 0 {
		c.Scoring.Weights.Likes = 1.0
	}
	if c.Scoring.Weights.Shares <= 0 {
		c.Scoring.Weights.Shares = 2.0
	}
	if c.Scoring.Weights.Replies <= 0 {
		c.Scoring.Weights.Replies = 1.5
	}
	if c.Scoring.Weights.Feedback <= 0 {
		c.Scoring.Weights.Feedback = 3.0
	}
	if c.Scoring.HalfLifeHours <= 0 {
		c.Scoring.HalfLifeHours = DefaultHalfLifeHours
	}
	if c.Dedup.TitleThreshold <= 0 {
		c.Dedup.TitleThreshold = DefaultTitleThreshold
	}
	if c.Dedup.ContentThreshold <= 0 {
		c.Dedup.ContentThreshold = DefaultContentThreshold
	}
	if c.Dedup.WindowDays <= 0 {
		c.Dedup.WindowDays = DefaultWindowDays
	}
	if c.Dedup.Algorithm == "" {
		c.Dedup.Algorithm = "token_set"
	}
	if c.Quality.MinLength <= 0 {
		c.Quality.MinLength = DefaultMinLength
	}
	if len(c.Quality.StubPatterns) == 0 {
		c.Quality.StubPatterns = append([]string(nil), DefaultStubPatterns...)
	}
	if c.Enrich.MinBody <= 0 {
		c.Enrich.MinBody = 300
	}
	if c.Enrich.MinExtracted <= 0 {
		c.Enrich.MinExtracted = 200
	}
	if c.Enrich.TimeoutSec <= 0 {
		c.Enrich.TimeoutSec = 10
	}
	if c.Pipeline.Concurrency <= 0 {
		c.Pipeline.Concurrency = DefaultConcurrency
	}
	if c.Pipeline.SourceTimeoutSec <= 0 {
		c.Pipeline.SourceTimeoutSec = DefaultSourceTimeoutSec
	}
	if c.Scheduler.Timezone == "" {
		c.Scheduler.Timezone = "UTC"
	}
}

// Validate checks the configuration for correctness. Any violation is a
// ConfigurationError: fatal at startup, a cycle never runs on a bad config.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return confErrf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Storage.Driver {
	case "redis":
		if len(c.Storage.Redis.Addrs) == 0 {
			return confErrf("storage.redis.addrs is required for the redis driver")
		}
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return confErrf("storage.sqlite.path is required for the sqlite driver")
		}
	default:
		return confErrf("storage.driver must be \"redis\" or \"sqlite\", got %q", c.Storage.Driver)
	}

	if len(c.Sources) == 0 {
		return confErrf("at least one source is required")
	}
	names := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.Name == "" {
			return confErrf("sources[%d].name is required", i)
		}
		if names[s.Name] {
			return confErrf("duplicate source name %q", s.Name)
		}
		names[s.Name] = true
		if s.Kind == "" {
			return confErrf("sources[%d].kind is required", i)
		}
	}

	if len(c.Relevance.Keywords) == 0 && len(c.Relevance.Topics) == 0 {
		return confErrf("relevance.keywords or relevance.topics is required")
	}
	for topic, triggers := range c.Relevance.Topics {
		if len(triggers) == 0 {
			return confErrf("relevance.topics.%s has no trigger terms", topic)
		}
	}

	if c.Dedup.TitleThreshold > 1 {
		return confErrf("dedup.title_threshold must be in (0, 1], got %v", c.Dedup.TitleThreshold)
	}
	if c.Dedup.ContentThreshold > 1 {
		return confErrf("dedup.content_threshold must be in (0, 1], got %v", c.Dedup.ContentThreshold)
	}
	switch c.Dedup.Algorithm {
	case "token_set", "sequence":
	default:
		return confErrf("dedup.algorithm must be \"token_set\" or \"sequence\", got %q", c.Dedup.Algorithm)
	}

	if c.Scheduler.Enabled {
		if c.Scheduler.Spec == "" {
			return confErrf("scheduler.spec is required when scheduler.enabled")
		}
		if _, err := cron.ParseStandard(c.Scheduler.Spec); err != nil {
			return confErrf("scheduler.spec %q is not a valid cron expression: %v", c.Scheduler.Spec, err)
		}
	}
	return nil
}

func confErrf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrConfiguration, fmt.Sprintf(format, args...))
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
