// Package config builds the immutable run configuration for one shard
// process. Precedence: built-in defaults, then the optional YAML run file,
// then environment variables. The resulting struct is passed down
// explicitly; nothing here is mutated after Load returns.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zipscout/zipscout/internal/store"
)

// DefaultSearchTerms is the fallback chain of place-type keywords tried in
// priority order for every (zipcode, state) pair.
var DefaultSearchTerms = []string{
	"post office",
	"school",
	"library",
	"fire station",
	"police station",
}

// Config is the full immutable run configuration.
type Config struct {
	MasterPath string
	OutputDir  string

	ShardIndex  int
	TotalShards int
	MaxPerShard int
	States      []string

	SearchTerms    []string
	EntriesPerTerm int

	Concurrency     int
	BatchDelay      time.Duration
	CheckpointEvery int // batches between saves
	RateLimitRPS    float64

	MaxUnitRetries int
	BackoffInitial time.Duration
	BackoffMax     time.Duration

	NavTimeout  time.Duration
	UnitTimeout time.Duration

	Headless    bool
	ArchivePath string // SQLite run archive; empty disables
	CI          bool
}

func defaults() Config {
	return Config{
		MasterPath:      "data/master.csv",
		OutputDir:       "data",
		TotalShards:     1,
		MaxPerShard:     500,
		SearchTerms:     append([]string(nil), DefaultSearchTerms...),
		EntriesPerTerm:  3,
		Concurrency:     3,
		BatchDelay:      2 * time.Second,
		CheckpointEvery: 5,
		MaxUnitRetries:  2,
		BackoffInitial:  2 * time.Second,
		BackoffMax:      30 * time.Second,
		NavTimeout:      30 * time.Second,
		UnitTimeout:     4 * time.Minute,
		Headless:        true,
	}
}

// yamlConfig is the on-disk run file shape. Every field is optional.
type yamlConfig struct {
	Master          string   `yaml:"master"`
	OutputDir       string   `yaml:"output_dir"`
	SearchTerms     []string `yaml:"search_terms"`
	EntriesPerTerm  int      `yaml:"entries_per_term"`
	Concurrency     int      `yaml:"concurrency"`
	BatchDelayMS    int      `yaml:"batch_delay_ms"`
	CheckpointEvery int      `yaml:"checkpoint_every"`
	RateLimitRPS    float64  `yaml:"rate_limit_rps"`
	MaxUnitRetries  *int     `yaml:"max_unit_retries"`
	NavTimeoutSec   int      `yaml:"nav_timeout_sec"`
	Headless        *bool    `yaml:"headless"`
	Archive         string   `yaml:"archive"`
}

// Load builds the configuration. yamlPath may be empty; when it is, the
// conventional zipscout.yaml is used if present.
func Load(yamlPath string) (Config, error) {
	cfg := defaults()

	if yamlPath == "" {
		if _, err := os.Stat("zipscout.yaml"); err == nil {
			yamlPath = "zipscout.yaml"
		}
	}
	if yamlPath != "" {
		if err := applyYAML(&cfg, yamlPath); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.TotalShards < 1 {
		return Config{}, fmt.Errorf("TOTAL_SHARDS must be >= 1, got %d", cfg.TotalShards)
	}
	if cfg.ShardIndex < 0 || cfg.ShardIndex >= cfg.TotalShards {
		return Config{}, fmt.Errorf("SHARD_INDEX %d out of range [0,%d)", cfg.ShardIndex, cfg.TotalShards)
	}
	if len(cfg.SearchTerms) == 0 {
		cfg.SearchTerms = append([]string(nil), DefaultSearchTerms...)
	}
	if cfg.EntriesPerTerm < 1 {
		cfg.EntriesPerTerm = 1
	}
	return cfg, nil
}

func applyYAML(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read run config %s: %w", path, err)
	}
	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return fmt.Errorf("parse run config %s: %w", path, err)
	}

	if y.Master != "" {
		cfg.MasterPath = y.Master
	}
	if y.OutputDir != "" {
		cfg.OutputDir = y.OutputDir
	}
	if len(y.SearchTerms) > 0 {
		cfg.SearchTerms = y.SearchTerms
	}
	if y.EntriesPerTerm > 0 {
		cfg.EntriesPerTerm = y.EntriesPerTerm
	}
	if y.Concurrency > 0 {
		cfg.Concurrency = y.Concurrency
	}
	if y.BatchDelayMS > 0 {
		cfg.BatchDelay = time.Duration(y.BatchDelayMS) * time.Millisecond
	}
	if y.CheckpointEvery > 0 {
		cfg.CheckpointEvery = y.CheckpointEvery
	}
	if y.RateLimitRPS > 0 {
		cfg.RateLimitRPS = y.RateLimitRPS
	}
	if y.MaxUnitRetries != nil && *y.MaxUnitRetries >= 0 {
		cfg.MaxUnitRetries = *y.MaxUnitRetries
	}
	if y.NavTimeoutSec > 0 {
		cfg.NavTimeout = time.Duration(y.NavTimeoutSec) * time.Second
	}
	if y.Headless != nil {
		cfg.Headless = *y.Headless
	}
	if y.Archive != "" {
		cfg.ArchivePath = y.Archive
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var err error
	if cfg.ShardIndex, err = envInt("SHARD_INDEX", cfg.ShardIndex); err != nil {
		return err
	}
	if cfg.TotalShards, err = envInt("TOTAL_SHARDS", cfg.TotalShards); err != nil {
		return err
	}
	if cfg.MaxPerShard, err = envInt("MAX_RECORDS_PER_SHARD", cfg.MaxPerShard); err != nil {
		return err
	}
	if cfg.CI, err = envBool("CI"); err != nil {
		return err
	}
	if raw := strings.TrimSpace(os.Getenv("TARGET_STATE")); raw != "" {
		cfg.States = store.ParseStates(raw)
	}
	if raw := strings.TrimSpace(os.Getenv("MASTER_TABLE")); raw != "" {
		cfg.MasterPath = raw
	}
	return nil
}

// OutputPath returns this shard's output table path. Shards never share an
// output file.
func (c Config) OutputPath() string {
	return filepath.Join(c.OutputDir, fmt.Sprintf("shard_%d.csv", c.ShardIndex))
}

// Selection returns the store selection for this run.
func (c Config) Selection() store.Selection {
	return store.Selection{
		ShardIndex:  c.ShardIndex,
		TotalShards: c.TotalShards,
		MaxPerShard: c.MaxPerShard,
		States:      c.States,
	}
}

func envInt(varName string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envBool(varName string) (bool, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return false, nil
	}
	out, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}
