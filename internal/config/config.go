package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Mode string

const (
	ModeSelf  Mode = "self"
	ModeCross Mode = "cross"
)

// KeyStrategy selects which tokens of a record become its blocking keys.
type KeyStrategy string

const (
	KeyLongest      KeyStrategy = "longest"
	KeyShortest     KeyStrategy = "shortest"
	KeyAlphabetical KeyStrategy = "alphabetical"
)

// Duration decodes TOML strings such as "90s" or "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type ScanConfig struct {
	Mode      Mode     `toml:"mode"`
	Threshold float64  `toml:"threshold"`
	Deadline  Duration `toml:"deadline"` // 0 disables the deadline
	Workers   int      `toml:"workers"`  // 0 means GOMAXPROCS
}

type NormalizeConfig struct {
	MinTokenLength int         `toml:"min_token_length"`
	Stopwords      []string    `toml:"stopwords"`
	StemPrefix     int         `toml:"stem_prefix"` // 0 disables truncation
	KeyTokens      int         `toml:"key_tokens"`
	KeyStrategy    KeyStrategy `toml:"key_strategy"`
}

type ScoringConfig struct {
	Jaccard      float64 `toml:"jaccard"`
	EditDistance float64 `toml:"edit_distance"`
	LengthRatio  float64 `toml:"length_ratio"`
}

type BlockingConfig struct {
	MaxBlockSize int `toml:"max_block_size"`
}

// SourceConfig describes how rows of one dataset become records.
type SourceConfig struct {
	Path         string   `toml:"path"`
	Sheet        string   `toml:"sheet"`
	IDColumn     string   `toml:"id_column"`
	Fields       []string `toml:"fields"`
	Context      []string `toml:"context"`
	FillDown     []string `toml:"fill_down"`
	Placeholders []string `toml:"placeholders"`
	Query        string   `toml:"query"` // graph sources only
}

type SourcesConfig struct {
	A SourceConfig `toml:"a"`
	B SourceConfig `toml:"b"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type ReportConfig struct {
	Path string `toml:"path"`
}

type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
	MaxRecords int    `toml:"max_records"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	Scan      ScanConfig      `toml:"scan"`
	Normalize NormalizeConfig `toml:"normalize"`
	Scoring   ScoringConfig   `toml:"scoring"`
	Blocking  BlockingConfig  `toml:"blocking"`
	Sources   SourcesConfig   `toml:"sources"`
	Memgraph  MemgraphConfig  `toml:"memgraph"`
	Report    ReportConfig    `toml:"report"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
}

var DefaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "in",
	"into", "is", "it", "of", "on", "or", "the", "to", "with",
}

// Default returns the configuration used when no file overrides a value.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Mode:      ModeSelf,
			Threshold: 0.8,
		},
		Normalize: NormalizeConfig{
			MinTokenLength: 2,
			Stopwords:      append([]string(nil), DefaultStopwords...),
			KeyTokens:      3,
			KeyStrategy:    KeyShortest,
		},
		Scoring: ScoringConfig{
			Jaccard:      0.5,
			EditDistance: 0.35,
			LengthRatio:  0.15,
		},
		Blocking: BlockingConfig{
			MaxBlockSize: 200,
		},
		Sources: SourcesConfig{
			A: defaultSource(),
			B: defaultSource(),
		},
		Server: ServerConfig{
			ListenAddr: ":8080",
			MaxRecords: 50000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultSource() SourceConfig {
	return SourceConfig{
		IDColumn:     "id",
		Fields:       []string{"name", "description"},
		Placeholders: []string{"TBD", "(blank)"},
	}
}

// Load reads a TOML file on top of Default. It does not validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when path is
// empty or the file does not exist.
func LoadOrDefault(path string) (*Config, bool, error) {
	if path == "" {
		return Default(), false, nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Clone returns a deep copy, so per-request overrides never touch shared state.
func (c *Config) Clone() *Config {
	out := *c
	out.Normalize.Stopwords = append([]string(nil), c.Normalize.Stopwords...)
	out.Sources.A = c.Sources.A.clone()
	out.Sources.B = c.Sources.B.clone()
	return &out
}

func (s SourceConfig) clone() SourceConfig {
	s.Fields = append([]string(nil), s.Fields...)
	s.Context = append([]string(nil), s.Context...)
	s.FillDown = append([]string(nil), s.FillDown...)
	s.Placeholders = append([]string(nil), s.Placeholders...)
	return s
}

// ErrInvalidConfig is wrapped by every configuration error. Such errors are
// fatal and are reported before any record is processed.
var ErrInvalidConfig = errors.New("invalid configuration")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

const weightTolerance = 1e-6

// Validate checks the values the engine depends on and returns the first
// violation found.
func (c *Config) Validate() error {
	switch c.Scan.Mode {
	case ModeSelf, ModeCross:
	default:
		return invalid("scan.mode", "must be %q or %q (got %q)", ModeSelf, ModeCross, c.Scan.Mode)
	}
	if math.IsNaN(c.Scan.Threshold) || c.Scan.Threshold < 0 || c.Scan.Threshold > 1 {
		return invalid("scan.threshold", "must be between 0.0 and 1.0 (got %v)", c.Scan.Threshold)
	}
	if c.Scan.Deadline.Duration < 0 {
		return invalid("scan.deadline", "cannot be negative (got %v)", c.Scan.Deadline.Duration)
	}
	if c.Scan.Workers < 0 {
		return invalid("scan.workers", "cannot be negative (got %d)", c.Scan.Workers)
	}

	if c.Normalize.MinTokenLength < 1 {
		return invalid("normalize.min_token_length", "must be at least 1 (got %d)", c.Normalize.MinTokenLength)
	}
	if c.Normalize.StemPrefix < 0 {
		return invalid("normalize.stem_prefix", "cannot be negative (got %d)", c.Normalize.StemPrefix)
	}
	if c.Normalize.KeyTokens < 1 {
		return invalid("normalize.key_tokens", "must be at least 1 (got %d)", c.Normalize.KeyTokens)
	}
	switch c.Normalize.KeyStrategy {
	case KeyLongest, KeyShortest, KeyAlphabetical:
	default:
		return invalid("normalize.key_strategy", "must be one of shortest, longest, alphabetical (got %q)", c.Normalize.KeyStrategy)
	}

	w := c.Scoring
	for _, weight := range []struct {
		name  string
		value float64
	}{
		{"scoring.jaccard", w.Jaccard},
		{"scoring.edit_distance", w.EditDistance},
		{"scoring.length_ratio", w.LengthRatio},
	} {
		if math.IsNaN(weight.value) || weight.value < 0 || weight.value > 1 {
			return invalid(weight.name, "must be between 0.0 and 1.0 (got %v)", weight.value)
		}
	}
	if sum := w.Jaccard + w.EditDistance + w.LengthRatio; math.Abs(sum-1) > weightTolerance {
		return invalid("scoring", "weights must sum to 1.0 (got %.6f)", sum)
	}

	if c.Blocking.MaxBlockSize < 2 {
		return invalid("blocking.max_block_size", "must be at least 2 (got %d)", c.Blocking.MaxBlockSize)
	}
	if c.Server.MaxRecords < 0 {
		return invalid("server.max_records", "cannot be negative (got %d)", c.Server.MaxRecords)
	}
	return nil
}

// Validate checks the schema of a source that is about to be loaded. name
// prefixes the field in the returned error.
func (s SourceConfig) Validate(name string) error {
	if strings.TrimSpace(s.Path) == "" {
		return invalid(name+".path", "is required")
	}
	if strings.TrimSpace(s.IDColumn) == "" {
		return invalid(name+".id_column", "is required")
	}
	if len(s.Fields) == 0 {
		return invalid(name+".fields", "must name at least one comparison field")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Mode: %s, Threshold: %.2f, Deadline: %v, Workers: %d, MinTokenLen: %d, "+
			"Stopwords: %d, StemPrefix: %d, KeyTokens: %d, KeyStrategy: %s, "+
			"Weights: %.2f/%.2f/%.2f, MaxBlockSize: %d}",
		c.Scan.Mode, c.Scan.Threshold, c.Scan.Deadline.Duration, c.Scan.Workers,
		c.Normalize.MinTokenLength, len(c.Normalize.Stopwords), c.Normalize.StemPrefix,
		c.Normalize.KeyTokens, c.Normalize.KeyStrategy,
		c.Scoring.Jaccard, c.Scoring.EditDistance, c.Scoring.LengthRatio,
		c.Blocking.MaxBlockSize,
	)
}
