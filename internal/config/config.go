package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the margarita API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
	Places     PlacesConfig     `yaml:"places"`
	Geocode    GeocodeConfig    `yaml:"geocode"`
	VenueStore VenueStoreConfig `yaml:"venue_store"`
	Cache      CacheConfig      `yaml:"cache"`
	Search     SearchConfig     `yaml:"search"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// PlacesConfig holds places provider settings.
type PlacesConfig struct {
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	RetryAttempts int    `yaml:"retry_attempts"`
}

// GeocodeConfig holds address geocoding settings. The provider key and URL are shared with places.
type GeocodeConfig struct {
	CacheTTLHours int `yaml:"cache_ttl_hours"`
}

// Venue store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverValkey   = "valkey"
	StoreDriverNone     = "none"
)

// VenueStoreConfig holds first-party venue store settings.
type VenueStoreConfig struct {
	Driver           string   `yaml:"driver"` // postgres, valkey, none (default: none)
	DSN              string   `yaml:"dsn"`    // postgres only
	Addrs            []string `yaml:"addrs"`  // valkey only
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds the Valkey geocode cache settings. Empty addrs disables the cache.
type CacheConfig struct {
	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	KeyPrefix string   `yaml:"key_prefix"`
}

// SearchConfig holds the search policy.
type SearchConfig struct {
	DefaultRadiusMeters     int             `yaml:"default_radius_meters"`
	ZipRadiusMeters         int             `yaml:"zip_radius_meters"`
	NamedSearchRadiusMeters int             `yaml:"named_search_radius_meters"`
	MaxResultRadiusMiles    float64         `yaml:"max_result_radius_miles"`
	StoreRadiusMiles        float64         `yaml:"store_radius_miles"`
	FallbackVenueCount      int             `yaml:"fallback_venue_count"`
	RatingTieThreshold      float64         `yaml:"rating_tie_threshold"`
	SubqueryTimeoutMs       int             `yaml:"subquery_timeout_ms"`
	Relevance               RelevanceConfig `yaml:"relevance"`
}

// RelevanceConfig holds the category lists used to drop non-food matches from name searches.
type RelevanceConfig struct {
	AllowedCategories []string `yaml:"allowed_categories"`
	DeniedCategories  []string `yaml:"denied_categories"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
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

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Places.BaseURL == "" {
		c.Places.BaseURL = "https://maps.googleapis.com/maps/api"
	}
	if c.Places.TimeoutSec <= 0 {
		c.Places.TimeoutSec = 5
	}
	if c.Places.RetryAttempts <= 0 {
		c.Places.RetryAttempts = 2
	}
	if c.Geocode.CacheTTLHours <= 0 {
		c.Geocode.CacheTTLHours = 720
	}
	if c.VenueStore.Driver == "" {
		c.VenueStore.Driver = StoreDriverNone
	}
	if c.VenueStore.KeyPrefix == "" {
		c.VenueStore.KeyPrefix = "margarita:"
	}
	if c.VenueStore.ReadinessTimeout <= 0 {
		c.VenueStore.ReadinessTimeout = 10
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "margarita:"
	}
	c.Search.applyDefaults()
}

func (s *SearchConfig) applyDefaults() {
	if s.DefaultRadiusMeters <= 0 {
		s.DefaultRadiusMeters = 16000
	}
	if s.ZipRadiusMeters <= 0 {
		s.ZipRadiusMeters = 40000
	}
	if s.NamedSearchRadiusMeters <= 0 {
		s.NamedSearchRadiusMeters = 32000
	}
	if s.MaxResultRadiusMiles <= 0 {
		s.MaxResultRadiusMiles = 10
	}
	if s.StoreRadiusMiles <= 0 {
		s.StoreRadiusMiles = 15
	}
	if s.FallbackVenueCount <= 0 {
		s.FallbackVenueCount = 5
	}
	if s.RatingTieThreshold <= 0 {
		s.RatingTieThreshold = 0.3
	}
	if s.SubqueryTimeoutMs <= 0 {
		s.SubqueryTimeoutMs = 4000
	}
	if len(s.Relevance.AllowedCategories) == 0 {
		s.Relevance.AllowedCategories = []string{"restaurant", "food", "meal_takeaway", "meal_delivery", "cafe"}
	}
	if s.Relevance.DeniedCategories == nil {
		s.Relevance.DeniedCategories = []string{
			"lawyer", "general_contractor", "roofing_contractor", "real_estate_agency",
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.VenueStore.Driver {
	case StoreDriverPostgres:
		if c.VenueStore.DSN == "" {
			return fmt.Errorf("venue_store.dsn is required for driver %q", StoreDriverPostgres)
		}
	case StoreDriverValkey:
		if len(c.VenueStore.Addrs) == 0 {
			return fmt.Errorf("venue_store.addrs is required for driver %q", StoreDriverValkey)
		}
	case StoreDriverNone:
	default:
		return fmt.Errorf(
			"venue_store.driver must be \"postgres\", \"valkey\" or \"none\", got %q",
			c.VenueStore.Driver,
		)
	}
	for name, r := range map[string]int{
		"default_radius_meters":      c.Search.DefaultRadiusMeters,
		"zip_radius_meters":          c.Search.ZipRadiusMeters,
		"named_search_radius_meters": c.Search.NamedSearchRadiusMeters,
	} {
		if r > maxProviderRadiusMeters {
			return fmt.Errorf("search.%s must be at most %d, got %d", name, maxProviderRadiusMeters, r)
		}
	}
	return nil
}

// maxProviderRadiusMeters is the largest radius the places provider accepts.
const maxProviderRadiusMeters = 50000

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
