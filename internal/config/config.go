package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "CREDSCORE_CONFIG"
	serverPortEnv  = "CREDSCORE_PORT"
	databaseDSNEnv = "DATABASE_DSN"
	artifactDirEnv = "CREDSCORE_ARTIFACT_DIR"
	logLevelEnv    = "CREDSCORE_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Model    ModelConfig    `yaml:"model"`
	Database DatabaseConfig `yaml:"database"`
	Rules    RulesConfig    `yaml:"rules"`
	Seed     []SeedExample  `yaml:"seed"`
}

// ServerConfig describes the HTTP serving surface.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig controls the slog handler level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ScoringConfig carries the request-path defaults.
type ScoringConfig struct {
	DefaultAlpha           float64 `yaml:"defaultAlpha"`
	DefaultDeadlineSeconds float64 `yaml:"defaultDeadlineSeconds"`
}

// FetchConfig bounds the optional content enrichment fetch.
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	UserAgent      string `yaml:"userAgent"`
}

// Timeout resolves the fetch timeout as a duration.
func (f FetchConfig) Timeout() time.Duration {
	if f.TimeoutSeconds <= 0 {
		return 6 * time.Second
	}
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// ModelConfig describes training and artifact parameters.
type ModelConfig struct {
	ArtifactDir     string `yaml:"artifactDir"`
	DesiredFolds    int    `yaml:"desiredFolds"`
	RandomSeed      int64  `yaml:"randomSeed"`
	RetrainInterval string `yaml:"retrainInterval"`
}

// RetrainEvery resolves the retraining cadence; zero disables it.
func (m ModelConfig) RetrainEvery() time.Duration {
	if m.RetrainInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(m.RetrainInterval)
	if err != nil {
		log.Printf("config: bad retrainInterval %q, retraining disabled", m.RetrainInterval)
		return 0
	}
	return d
}

// DatabaseConfig describes the optional feedback store connection.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RulesConfig carries the curated tables the rule evaluator reads.
// Immutable after load; shared without locking across requests.
type RulesConfig struct {
	ReputableDomains  []string `yaml:"reputableDomains"`
	InstitutionalTLDs []string `yaml:"institutionalTlds"`
	BlogPlatforms     []string `yaml:"blogPlatforms"`
	TrackingPrefixes  []string `yaml:"trackingPrefixes"`
}

// SeedExample is one built-in labeled training row.
type SeedExample struct {
	URL   string `yaml:"url"`
	Label int    `yaml:"label"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Seed) == 0 {
		cfg.Seed = defaultConfig().Seed
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(serverPortEnv); v != "" {
		c.Server.Port = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(artifactDirEnv); v != "" {
		c.Model.ArtifactDir = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Port != "" {
		base.Server = override.Server
	}

	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Scoring.DefaultAlpha > 0 {
		base.Scoring.DefaultAlpha = override.Scoring.DefaultAlpha
	}
	if override.Scoring.DefaultDeadlineSeconds > 0 {
		base.Scoring.DefaultDeadlineSeconds = override.Scoring.DefaultDeadlineSeconds
	}

	if override.Fetch.TimeoutSeconds > 0 {
		base.Fetch.TimeoutSeconds = override.Fetch.TimeoutSeconds
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}

	if override.Model.ArtifactDir != "" {
		base.Model.ArtifactDir = override.Model.ArtifactDir
	}
	if override.Model.DesiredFolds > 0 {
		base.Model.DesiredFolds = override.Model.DesiredFolds
	}
	if override.Model.RandomSeed != 0 {
		base.Model.RandomSeed = override.Model.RandomSeed
	}
	if override.Model.RetrainInterval != "" {
		base.Model.RetrainInterval = override.Model.RetrainInterval
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if len(override.Rules.ReputableDomains) > 0 {
		base.Rules.ReputableDomains = override.Rules.ReputableDomains
	}
	if len(override.Rules.InstitutionalTLDs) > 0 {
		base.Rules.InstitutionalTLDs = override.Rules.InstitutionalTLDs
	}
	if len(override.Rules.BlogPlatforms) > 0 {
		base.Rules.BlogPlatforms = override.Rules.BlogPlatforms
	}
	if len(override.Rules.TrackingPrefixes) > 0 {
		base.Rules.TrackingPrefixes = override.Rules.TrackingPrefixes
	}

	if len(override.Seed) > 0 {
		base.Seed = override.Seed
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Port: "8000"},
		Logging: LoggingConfig{Level: "info"},
		Scoring: ScoringConfig{
			DefaultAlpha:           0.5,
			DefaultDeadlineSeconds: 3.0,
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 6,
			UserAgent:      "CredScore/1.0",
		},
		Model: ModelConfig{
			ArtifactDir:  "artifacts",
			DesiredFolds: 3,
			RandomSeed:   42,
		},
		Database: DatabaseConfig{DSN: ""},
		Rules: RulesConfig{
			ReputableDomains: []string{
				"nih.gov", "ncbi.nlm.nih.gov", "cdc.gov", "who.int", "nature.com",
				"science.org", "sciencedirect.com", "nejm.org", "thelancet.com",
				"bmj.com", "jamanetwork.com", "plos.org", "ox.ac.uk", "harvard.edu",
				"stanford.edu", "mit.edu", "webmd.com",
			},
			InstitutionalTLDs: []string{"gov", "edu", "ac", "int"},
			BlogPlatforms:     []string{"medium.com", "wordpress", "substack"},
			TrackingPrefixes:  []string{"utm_", "fbclid", "gclid"},
		},
		Seed: []SeedExample{
			{URL: "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC1234567/", Label: 1},
			{URL: "https://who.int/news/item/2020-health-advisory", Label: 1},
			{URL: "https://www.webmd.com/back-pain/guide/spinal-stenosis", Label: 1},
			{URL: "https://doi.org/10.1038/s41586-020-2649-2", Label: 1},
			{URL: "https://medium.com/@someone/health-tips-123", Label: 0},
			{URL: "http://example.com/blog/opinion", Label: 0},
		},
	}
}
