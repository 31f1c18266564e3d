package contract

import (
	"fmt"
	"maps"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/transcomplex/core/algo"
	"github.com/huangsam/transcomplex/schema"
)

// Default values for configuration.
const (
	DefaultPrecision           = 2
	MaxPrecision               = 4
	DefaultTextTimeout         = 30 * time.Second
	DefaultEmbedderTimeout     = 15 * time.Second
	DefaultEmbedderRetries     = 3
	DefaultEmbedderConcurrency = 4
	DefaultEmbedderModel       = "text-embedding-3-small"
	DefaultListenAddr          = "127.0.0.1:8080"
	DefaultMaxScore            = 1.0
	MaxResultLimit             = 100000
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

var validate = validator.New(validator.WithRequiredStructEnabled())

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// EmbedderConfig holds the settings for the optional embeddings endpoint.
type EmbedderConfig struct {
	URL         string        `validate:"omitempty,url"`
	Model       string        `validate:"required_with=URL"`
	APIKey      string        // Please use env var as this is plaintext
	RPS         float64       `validate:"gte=0"`
	Concurrency int           `validate:"gte=1"`
	Timeout     time.Duration `validate:"gte=0"`
	Retries     int           `validate:"gte=0,lte=10"`
}

// Enabled reports whether an embeddings endpoint is configured.
func (e EmbedderConfig) Enabled() bool {
	return e.URL != ""
}

// WeightsRawInput holds custom family weights from the config file.
// Use float64 pointers so absent keys keep their defaults.
type WeightsRawInput struct {
	Readability *float64 `mapstructure:"readability"`
	Linguistic  *float64 `mapstructure:"linguistic"`
	Translation *float64 `mapstructure:"translation"`
}

// ThresholdRawInput is one tier boundary from the config file.
type ThresholdRawInput struct {
	Tier       string  `mapstructure:"tier"`
	LowerBound float64 `mapstructure:"lower_bound"`
}

// NormParamRawInput is one normalization override from the config file.
type NormParamRawInput struct {
	Strategy string   `mapstructure:"strategy"`
	Min      *float64 `mapstructure:"min"`
	Max      *float64 `mapstructure:"max"`
}

// Config holds the runtime configuration for scoring.
// This struct remains the "final, validated" config.
type Config struct {
	Workers     int `validate:"gte=1"`
	Precision   int `validate:"gte=1,lte=4"`
	Output      schema.OutputMode
	OutputFile  string
	Width       int `validate:"gte=0"` // Terminal width override (0 = auto-detect)
	Detail      bool
	Explain     bool
	Sort        bool
	ResultLimit int `validate:"gte=0"` // 0 keeps every row

	Split       schema.SplitMode
	Globs       []string
	Excludes    []string
	TextTimeout time.Duration `validate:"gte=0"`
	LexiconFile string

	Embedder EmbedderConfig

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	FailTier schema.Tier
	MaxScore float64 `validate:"gte=0,lte=1"`

	Listen   string `validate:"required,hostname_port"`
	LogLevel string `validate:"oneof=panic fatal error warn warning info debug trace"`

	// Scoring is the validated engine configuration built from weights,
	// thresholds and normalization overrides.
	Scoring *algo.Configuration

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Workers           int    `mapstructure:"workers"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	Detail            bool   `mapstructure:"detail"`
	Explain           bool   `mapstructure:"explain"`
	LexiconFile       string `mapstructure:"lexicon-file"`
	TextTimeout       string `mapstructure:"text-timeout"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	LogLevel          string `mapstructure:"log-level"`

	// --- Embedder settings ---
	EmbedderURL         string  `mapstructure:"embedder-url"`
	EmbedderModel       string  `mapstructure:"embedder-model"`
	EmbedderAPIKey      string  `mapstructure:"embedder-api-key"`
	EmbedderRPS         float64 `mapstructure:"embedder-rps"`
	EmbedderConcurrency int     `mapstructure:"embedder-concurrency"`
	EmbedderTimeout     string  `mapstructure:"embedder-timeout"`
	EmbedderRetries     int     `mapstructure:"embedder-retries"`

	// --- Fields from batchCmd.Flags() and checkCmd.Flags() ---
	Split   string `mapstructure:"split"`
	Glob    string `mapstructure:"glob"`
	Exclude string `mapstructure:"exclude"`
	Sort    bool   `mapstructure:"sort"`
	Limit   int    `mapstructure:"limit"`

	// --- Fields from checkCmd.Flags() ---
	FailTier string  `mapstructure:"fail-tier"`
	MaxScore float64 `mapstructure:"max-score"`

	// --- Fields from serveCmd.Flags() ---
	Listen string `mapstructure:"listen"`

	// --- Scoring overrides from config file ---
	Weights       WeightsRawInput              `mapstructure:"weights"`
	Thresholds    []ThresholdRawInput          `mapstructure:"thresholds"`
	Normalization map[string]NormParamRawInput `mapstructure:"normalization"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Globs = slices.Clone(c.Globs)
	clone.Excludes = slices.Clone(c.Excludes)
	return &clone
}

// ProcessAndValidate converts raw input into cfg, checking every field.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processEmbedder(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processScoring(cfg, input); err != nil {
		return err
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return processCheckTargets(cfg, input)
}

// ValidateDatabaseConnectionString validates a connection string for the given backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must be a redis:// or rediss:// URL")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend settings.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		cfg.AnalysisBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidAnalysisBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	// Both stores create tables on open; sharing one sqlite file would mix them.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs copies and checks the scalar inputs.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Explain = input.Explain
	cfg.Width = input.Width
	cfg.Sort = input.Sort
	cfg.LexiconFile = strings.TrimSpace(input.LexiconFile)
	cfg.Listen = input.Listen
	if cfg.Listen == "" {
		cfg.Listen = DefaultListenAddr
	}
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, ndjson, yaml, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	cfg.Split = schema.SplitMode(strings.ToLower(input.Split))
	if cfg.Split == "" {
		cfg.Split = schema.SplitFile
	}
	if _, ok := schema.ValidSplitModes[cfg.Split]; !ok {
		return fmt.Errorf("invalid split mode '%s'. must be file, line, paragraph", input.Split)
	}

	cfg.Globs = splitList(input.Glob)
	cfg.Excludes = splitList(input.Exclude)

	cfg.TextTimeout = DefaultTextTimeout
	if input.TextTimeout != "" {
		d, err := time.ParseDuration(input.TextTimeout)
		if err != nil {
			return fmt.Errorf("invalid text-timeout '%s': %w", input.TextTimeout, err)
		}
		cfg.TextTimeout = d
	}

	return nil
}

// processEmbedder fills the embeddings endpoint settings.
func processEmbedder(cfg *Config, input *ConfigRawInput) error {
	e := EmbedderConfig{
		URL:         strings.TrimSpace(input.EmbedderURL),
		Model:       input.EmbedderModel,
		APIKey:      input.EmbedderAPIKey,
		RPS:         input.EmbedderRPS,
		Concurrency: input.EmbedderConcurrency,
		Timeout:     DefaultEmbedderTimeout,
		Retries:     input.EmbedderRetries,
	}
	if e.Model == "" {
		e.Model = DefaultEmbedderModel
	}
	if e.Concurrency == 0 {
		e.Concurrency = DefaultEmbedderConcurrency
	}
	if input.EmbedderTimeout != "" {
		d, err := time.ParseDuration(input.EmbedderTimeout)
		if err != nil {
			return fmt.Errorf("invalid embedder-timeout '%s': %w", input.EmbedderTimeout, err)
		}
		e.Timeout = d
	}
	cfg.Embedder = e
	return nil
}

// processScoring merges config-file overrides over the defaults and builds
// the immutable engine configuration.
func processScoring(cfg *Config, input *ConfigRawInput) error {
	opts := algo.Options{}

	if w := ProcessWeightsRawInput(input.Weights); w != nil {
		opts.Weights = w
	}

	if len(input.Thresholds) > 0 {
		opts.Thresholds = make([]schema.Threshold, 0, len(input.Thresholds))
		for _, t := range input.Thresholds {
			opts.Thresholds = append(opts.Thresholds, schema.Threshold{
				Tier:       schema.Tier(strings.ToLower(strings.TrimSpace(t.Tier))),
				LowerBound: t.LowerBound,
			})
		}
	}

	if len(input.Normalization) > 0 {
		defaults := schema.GetDefaultNormParams()
		opts.NormParams = make(map[string]schema.NormParam, len(input.Normalization))
		for _, metric := range slices.Sorted(maps.Keys(input.Normalization)) {
			raw := input.Normalization[metric]
			p, ok := defaults[metric]
			if !ok {
				return fmt.Errorf("normalization override for unknown metric '%s'", metric)
			}
			if raw.Strategy != "" {
				p.Strategy = schema.NormStrategy(strings.ToLower(raw.Strategy))
			}
			if raw.Min != nil {
				p.Min = *raw.Min
			}
			if raw.Max != nil {
				p.Max = *raw.Max
			}
			opts.NormParams[metric] = p
		}
	}

	scoring, err := algo.NewConfiguration(opts)
	if err != nil {
		return err
	}
	cfg.Scoring = scoring
	return nil
}

// ProcessWeightsRawInput overlays the weights present in raw onto the defaults.
// It returns nil when raw sets nothing.
func ProcessWeightsRawInput(raw WeightsRawInput) schema.FamilyWeights {
	custom := map[schema.Family]*float64{
		schema.ReadabilityFamily: raw.Readability,
		schema.LinguisticFamily:  raw.Linguistic,
		schema.TranslationFamily: raw.Translation,
	}
	weights := schema.GetDefaultFamilyWeights()
	changed := false
	for family, w := range custom {
		if w != nil {
			weights[family] = *w
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return weights
}

// processCheckTargets resolves the fail tier and max score used by the check command.
func processCheckTargets(cfg *Config, input *ConfigRawInput) error {
	cfg.MaxScore = input.MaxScore
	if cfg.MaxScore < 0 || cfg.MaxScore > 1 {
		return fmt.Errorf("max-score must be within [0, 1] (received %v)", input.MaxScore)
	}

	tier := schema.Tier(strings.ToLower(strings.TrimSpace(input.FailTier)))
	if tier == "" {
		return nil
	}
	if cfg.Scoring.TierIndex(tier) < 0 {
		names := make([]string, 0)
		for _, t := range cfg.Scoring.Thresholds() {
			names = append(names, string(t.Tier))
		}
		return fmt.Errorf("invalid fail-tier '%s'. must be one of %s", input.FailTier, strings.Join(names, ", "))
	}
	cfg.FailTier = tier
	return nil
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ProcessProfilingConfig enables profiling when a prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
