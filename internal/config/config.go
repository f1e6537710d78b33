// Package config loads and saves the TOML settings file HydraPing reads at
// startup, grounded on the teacher's trace.Config/DefaultConfig/Validate
// shape but re-expressed with TOML struct tags since spec.md §6 is a
// persisted document, not CLI-flag state.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultIntervalSeconds = 5.0
	DefaultTimeoutSeconds  = 5.0
	MinIntervalSeconds     = 0.25
	MinTimeoutSeconds      = 0.1
)

// TargetEntry is one `[endpoints] targets` list element. A bare TOML string
// and the structured object form both decode into this type; see
// UnmarshalTOML.
type TargetEntry struct {
	URL              string
	Name             string
	Protocol         string
	IPVersion        int
	PrimaryCheckType string
}

// UnmarshalTOML implements go-toml/v2's value-based Unmarshaler so a single
// `targets` list can mix bare strings and `{url = ..., name = ...}` objects,
// per spec.md §6's schema comment.
func (t *TargetEntry) UnmarshalTOML(value interface{}) error {
	switch v := value.(type) {
	case string:
		t.URL = v
		return nil
	case map[string]interface{}:
		url, ok := v["url"].(string)
		if !ok {
			return fmt.Errorf("target entry missing required \"url\" string field")
		}
		t.URL = url
		if n, ok := v["name"].(string); ok {
			t.Name = n
		}
		if p, ok := v["protocol"].(string); ok {
			t.Protocol = p
		}
		if iv, ok := toInt(v["ip_version"]); ok {
			t.IPVersion = iv
		}
		if pc, ok := v["primary_check_type"].(string); ok {
			t.PrimaryCheckType = pc
		}
		return nil
	default:
		return fmt.Errorf("target entry must be a string or object, got %T", value)
	}
}

// MarshalTOML renders t back to whichever form round-trips more simply:
// a bare string when no optional field is set, otherwise a full object.
func (t TargetEntry) MarshalTOML() ([]byte, error) {
	if t.Name == "" && t.Protocol == "" && t.IPVersion == 0 && t.PrimaryCheckType == "" {
		return toml.Marshal(t.URL)
	}
	obj := map[string]interface{}{"url": t.URL}
	if t.Name != "" {
		obj["name"] = t.Name
	}
	if t.Protocol != "" {
		obj["protocol"] = t.Protocol
	}
	if t.IPVersion != 0 {
		obj["ip_version"] = t.IPVersion
	}
	if t.PrimaryCheckType != "" {
		obj["primary_check_type"] = t.PrimaryCheckType
	}
	return toml.Marshal(obj)
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// Endpoints mirrors spec.md §6's `[endpoints]` table.
type Endpoints struct {
	Targets []TargetEntry `toml:"targets"`
}

// DNS mirrors `[dns]`.
type DNS struct {
	CustomServers []string `toml:"custom_servers"`
}

// Checks mirrors `[checks]`.
type Checks struct {
	IntervalSeconds float64 `toml:"interval_seconds"`
	TimeoutSeconds  float64 `toml:"timeout_seconds"`
}

// UI mirrors `[ui]`. ThresholdsMs is the Open-Question-13 opt-in override of
// the fixed 50/100/200ms color bins — exactly 3 ascending values when set.
type UI struct {
	GraphWidth   int   `toml:"graph_width"`
	ThresholdsMs []int `toml:"thresholds_ms,omitempty"`
}

// Config is the full settings document.
type Config struct {
	Endpoints Endpoints `toml:"endpoints"`
	DNS       DNS       `toml:"dns"`
	Checks    Checks    `toml:"checks"`
	UI        UI        `toml:"ui"`
}

// Default returns the configuration `hydraping init` writes when no file
// exists yet: one example target and every numeric field at spec.md §6's
// stated default.
func Default() *Config {
	return &Config{
		Endpoints: Endpoints{Targets: []TargetEntry{{URL: "https://example.com"}}},
		Checks:    Checks{IntervalSeconds: DefaultIntervalSeconds, TimeoutSeconds: DefaultTimeoutSeconds},
		UI:        UI{GraphWidth: 0},
	}
}

// Validate checks the numeric bounds spec.md §6 states; structural
// correctness of each target is checked later by endpoint.ParseEntries.
func (c *Config) Validate() error {
	if len(c.Endpoints.Targets) == 0 {
		return fmt.Errorf("endpoints.targets must not be empty")
	}
	if c.Checks.IntervalSeconds < MinIntervalSeconds {
		return fmt.Errorf("checks.interval_seconds must be >= %g", MinIntervalSeconds)
	}
	if c.Checks.TimeoutSeconds < MinTimeoutSeconds {
		return fmt.Errorf("checks.timeout_seconds must be >= %g", MinTimeoutSeconds)
	}
	if th := c.UI.ThresholdsMs; len(th) != 0 && (len(th) != 3 || th[0] >= th[1] || th[1] >= th[2]) {
		return fmt.Errorf("ui.thresholds_ms must have exactly 3 ascending values")
	}
	return nil
}

// applyDefaults fills zero-valued numeric fields after decode, so a
// minimal user-written file (just `[endpoints] targets = [...]`) still
// gets spec.md §6's stated defaults instead of failing Validate.
func (c *Config) applyDefaults() {
	if c.Checks.IntervalSeconds == 0 {
		c.Checks.IntervalSeconds = DefaultIntervalSeconds
	}
	if c.Checks.TimeoutSeconds == 0 {
		c.Checks.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// Load reads and parses the TOML document at path, applying defaults and
// validating before returning.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Save serializes cfg as TOML to path, creating its parent directory if
// needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Exists reports whether a config file is already present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DefaultPath returns `~/.config/hydraping/settings.toml`, the location
// spec.md §6 names.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hydraping", "settings.toml"), nil
}

// ResolvePath applies spec.md §12's precedence: --config flag, then
// $HYDRAPING_CONFIG, then DefaultPath.
func ResolvePath(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if envPath := os.Getenv("HYDRAPING_CONFIG"); envPath != "" {
		return envPath, nil
	}
	return DefaultPath()
}
