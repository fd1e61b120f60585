package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pothole-report/model"
)

const (
	ServiceName           = "pothole-report"
	ConfigFileName        = "pothole-report.yaml"
	DefaultReportURL      = "https://www.fillthathole.org.uk"
	DefaultKeyringAccount = "email"
	DefaultSeverity       = "MEDIUM RISK"
	DefaultNominatimURL   = "https://nominatim.openstreetmap.org/reverse"
	DefaultUserAgent      = "pothole-report/0.3.0"
	DefaultMaxSpread      = 100.0
	DefaultGeocodeTimeout = 10 * time.Second

	EnvConfigPath   = "POTHOLE_REPORT_CONFIG"
	EnvNominatimURL = "POTHOLE_REPORT_NOMINATIM_URL"
	EnvUserAgent    = "POTHOLE_REPORT_USER_AGENT"
)

var (
	ErrNotFound = errors.New("config not found")
	ErrInvalid  = errors.New("invalid config")
)

// Config is the report configuration document. It is loaded once per
// invocation and treated as read-only afterwards.
type Config struct {
	ReportURL        string                       `yaml:"report_url"`
	KeyringAccount   string                       `yaml:"keyring_account"`
	Attributes       map[string]map[string]string `yaml:"attributes"`
	ReportTemplate   *string                      `yaml:"report_template"`
	AttributePhrases map[string]map[string]string `yaml:"attribute_phrases"`
	Templates        map[string]string            `yaml:"templates"`
	Advice           model.Advice                 `yaml:"advice_for_reporters"`
	DefaultSeverity  string                       `yaml:"default_severity"`
	MultiSelect      []string                     `yaml:"multi_select"`
	MaxSpreadMetres  float64                      `yaml:"max_spread_metres"`
	Geocoder         GeocoderConfig               `yaml:"geocoder"`

	LoadedFrom string `yaml:"-"`
}

type GeocoderConfig struct {
	URL        string        `yaml:"url"`
	UserAgent  string        `yaml:"user_agent"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// Template returns the parameterized report template, or "" when the
// document has none.
func (c *Config) Template() string {
	if c.ReportTemplate == nil {
		return ""
	}
	return *c.ReportTemplate
}

func (c *Config) IsMultiSelect(category string) bool {
	for _, m := range c.MultiSelect {
		if m == category {
			return true
		}
	}
	return false
}

// TemplateNames lists the named templates in sorted order.
func (c *Config) TemplateNames() []string {
	return sortedKeys(c.Templates)
}

// AttributeNames lists the configured attribute categories in sorted order.
func (c *Config) AttributeNames() []string {
	return sortedKeys(c.Attributes)
}

// AttributeValues lists the values of one category in sorted order.
func (c *Config) AttributeValues(category string) []string {
	return sortedKeys(c.Attributes[category])
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Paths returns the search order for the config file. An explicit
// override is the only candidate when given.
func Paths(override string) []string {
	if override != "" {
		return []string{override}
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return []string{env}
	}
	return searchPaths(ConfigFileName)
}

func searchPaths(fileName string) []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, "conf", fileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", ServiceName, fileName))
	}
	return paths
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Load finds, parses and validates the config document.
func Load(override string) (*Config, error) {
	paths := Paths(override)
	path := firstExisting(paths)
	if path == "" {
		return nil, fmt.Errorf("%w: create one of:\n%s\nwith content like:\n%s",
			ErrNotFound, bulletList(paths), exampleConfig)
	}
	return LoadFile(path)
}

// LoadFile parses and validates the config document at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.LoadedFrom = path
	return cfg, nil
}

// Parse decodes a config document, validates it and merges defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing YAML: %v", ErrInvalid, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Attributes == nil && len(c.Templates) == 0 {
		return fmt.Errorf("%w: config must contain an 'attributes' section defining available attribute values, or a 'templates' section", ErrInvalid)
	}
	if c.Attributes != nil {
		if c.ReportTemplate == nil {
			return fmt.Errorf("%w: config must contain 'report_template' with a parameterized template", ErrInvalid)
		}
		for name, values := range c.Attributes {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("%w: attribute names must not be empty", ErrInvalid)
			}
			if len(values) == 0 {
				return fmt.Errorf("%w: attribute %q must map values to descriptions", ErrInvalid, name)
			}
		}
	}
	for name, text := range c.Templates {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: template %q is empty", ErrInvalid, name)
		}
	}
	if c.MaxSpreadMetres < 0 {
		return fmt.Errorf("%w: max_spread_metres must not be negative", ErrInvalid)
	}
	if c.Geocoder.MaxRetries < 0 {
		return fmt.Errorf("%w: geocoder.max_retries must not be negative", ErrInvalid)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.ReportURL == "" {
		c.ReportURL = DefaultReportURL
	}
	if c.KeyringAccount == "" {
		c.KeyringAccount = DefaultKeyringAccount
	}
	if c.DefaultSeverity == "" {
		c.DefaultSeverity = DefaultSeverity
	}
	if c.MultiSelect == nil {
		c.MultiSelect = []string{"location", "visibility"}
	}
	if c.MaxSpreadMetres == 0 {
		c.MaxSpreadMetres = DefaultMaxSpread
	}
	if c.AttributePhrases == nil {
		c.AttributePhrases = map[string]map[string]string{}
	}
	if env := os.Getenv(EnvNominatimURL); env != "" {
		c.Geocoder.URL = env
	} else if c.Geocoder.URL == "" {
		c.Geocoder.URL = DefaultNominatimURL
	}
	if env := os.Getenv(EnvUserAgent); env != "" {
		c.Geocoder.UserAgent = env
	} else if c.Geocoder.UserAgent == "" {
		c.Geocoder.UserAgent = DefaultUserAgent
	}
	if c.Geocoder.Timeout <= 0 {
		c.Geocoder.Timeout = DefaultGeocodeTimeout
	}
}

// KeyringAccount reads keyring_account from an explicitly named config
// file. No search path is walked: an empty path, or a missing or broken
// document, gives the default account.
func KeyringAccount(path string) string {
	if path == "" {
		return DefaultKeyringAccount
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultKeyringAccount
	}
	var doc struct {
		KeyringAccount string `yaml:"keyring_account"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil || doc.KeyringAccount == "" {
		return DefaultKeyringAccount
	}
	return doc.KeyringAccount
}

func bulletList(paths []string) string {
	lines := make([]string, len(paths))
	for i, p := range paths {
		lines[i] = "  - " + p
	}
	return strings.Join(lines, "\n")
}

const exampleConfig = `  report_url: "https://www.fillthathole.org.uk"
  keyring_account: "email"  # optional, default "email"
  attributes:
    depth:
      lt40mm: "Less than 40mm"
  report_template: "{severity}: {depth_description}"
  attribute_phrases:
    severity:
      gt50mm_sharp: "EMERGENCY"`
