package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"newsdesk/internal/parser"
)

// DefaultFeedURLs are the syndicated sources polled when none are configured.
var DefaultFeedURLs = []string{
	"https://www.yogonet.com/international/europe/rss.xml",
	"https://www.yogonet.com/international/united-states/rss.xml",
	"https://www.yogonet.com/international/latin-america/rss.xml",
	"https://www.yogonet.com/international/asia/rss.xml",
	"https://www.yogonet.com/international/online-gaming/rss.xml",
	"https://europeangaming.eu/portal/feed/",
	"https://igamingbusiness.com/company-news/feed/",
	"https://www.cdcgamingreports.com/feed/",
	"https://casinobeats.com/feed/",
	"https://sbcnews.co.uk/feed/",
	"https://www.slotbeats.com/feed/",
}

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	Database   Database   `mapstructure:"database"`
	AI         AI         `mapstructure:"ai"`
	Feeds      Feeds      `mapstructure:"feeds"`
	Enrichment Enrichment `mapstructure:"enrichment"`
	Search     Search     `mapstructure:"search"`
	Content    Content    `mapstructure:"content"`
	Digest     Digest     `mapstructure:"digest"`
	Server     Server     `mapstructure:"server"`
	Logging    Logging    `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// Database holds the article store connection settings.
// URL is either postgres://... or sqlite://path.
type Database struct {
	URL            string `mapstructure:"url"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns"`
	ConnectTimeout string `mapstructure:"connect_timeout"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	EmbeddingModel      string `mapstructure:"embedding_model"`
	EmbeddingDimensions int32  `mapstructure:"embedding_dimensions"`
	SummaryMaxTokens    int32  `mapstructure:"summary_max_tokens"`
	DigestMaxTokens     int32  `mapstructure:"digest_max_tokens"`
	Timeout             string `mapstructure:"timeout"`
}

// Feeds holds RSS/feed configuration
type Feeds struct {
	Sources         []string `mapstructure:"sources"`
	MaxItemsPerFeed int      `mapstructure:"max_items_per_feed"`
	RequestInterval string   `mapstructure:"request_interval"`
	FetchInterval   string   `mapstructure:"fetch_interval"`
	Timeout         string   `mapstructure:"timeout"`
	UserAgent       string   `mapstructure:"user_agent"`
}

// Enrichment holds summary and embedding backfill settings
type Enrichment struct {
	BatchLimit       int    `mapstructure:"batch_limit"`
	Interval         string `mapstructure:"interval"`
	EmbeddingCharCap int    `mapstructure:"embedding_char_cap"`
}

// Search holds semantic search defaults
type Search struct {
	DefaultLimit   int     `mapstructure:"default_limit"`
	MaxLimit       int     `mapstructure:"max_limit"`
	MinSimilarity  float64 `mapstructure:"min_similarity"`
	MaxQueryLength int     `mapstructure:"max_query_length"`
}

// Content holds article excerpt settings
type Content struct {
	ExcerptChars int `mapstructure:"excerpt_chars"`
}

// Digest holds digest composition settings
type Digest struct {
	Window string `mapstructure:"window"`
}

// Server holds HTTP server configuration
type Server struct {
	Host           string     `mapstructure:"host"`
	Port           int        `mapstructure:"port"`
	ReadTimeout    string     `mapstructure:"read_timeout"`
	WriteTimeout   string     `mapstructure:"write_timeout"`
	RequestTimeout string     `mapstructure:"request_timeout"`
	CORSOrigins    []string   `mapstructure:"cors_origins"`
	StaticDir      string     `mapstructure:"static_dir"`
	RateLimits     RateLimits `mapstructure:"rate_limits"`
}

// RateLimits holds per-client request budgets, expressed per minute, for each route class
type RateLimits struct {
	Read   int `mapstructure:"read"`
	Search int `mapstructure:"search"`
	Fetch  int `mapstructure:"fetch"`
	Enrich int `mapstructure:"enrich"`
	Digest int `mapstructure:"digest"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".newsdesk")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment overrides win over the config file.
	bindEnvironmentVariables()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)

	viper.SetDefault("database.url", "sqlite://newsdesk.db")
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.connect_timeout", "10s")

	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.embedding_model", "gemini-embedding-001")
	viper.SetDefault("ai.gemini.embedding_dimensions", 768)
	viper.SetDefault("ai.gemini.summary_max_tokens", 500)
	viper.SetDefault("ai.gemini.digest_max_tokens", 4000)
	viper.SetDefault("ai.gemini.timeout", "60s")

	viper.SetDefault("feeds.sources", DefaultFeedURLs)
	viper.SetDefault("feeds.max_items_per_feed", 10)
	viper.SetDefault("feeds.request_interval", "500ms")
	viper.SetDefault("feeds.fetch_interval", "1h")
	viper.SetDefault("feeds.timeout", "30s")
	viper.SetDefault("feeds.user_agent", "Newsdesk/1.0 (+https://github.com/newsdesk)")

	viper.SetDefault("enrichment.batch_limit", 50)
	viper.SetDefault("enrichment.interval", "500ms")
	viper.SetDefault("enrichment.embedding_char_cap", 30000)

	viper.SetDefault("search.default_limit", 10)
	viper.SetDefault("search.max_limit", 100)
	viper.SetDefault("search.min_similarity", 0.65)
	viper.SetDefault("search.max_query_length", 500)

	viper.SetDefault("content.excerpt_chars", 250)

	viper.SetDefault("digest.window", "24h")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.request_timeout", "120s")
	viper.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:8080"})
	viper.SetDefault("server.rate_limits.read", 60)
	viper.SetDefault("server.rate_limits.search", 30)
	viper.SetDefault("server.rate_limits.fetch", 5)
	viper.SetDefault("server.rate_limits.enrich", 3)
	viper.SetDefault("server.rate_limits.digest", 2)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("ai.gemini.summary_max_tokens", []string{"SUMMARY_MAX_TOKENS"})
	bindEnvKeys("database.url", []string{"DATABASE_URL"})
	bindEnvKeys("server.port", []string{"PORT"})
	bindEnvKeys("server.host", []string{"HOST"})
	bindEnvKeys("app.environment", []string{"ENVIRONMENT", "NEWSDESK_ENV"})
	bindEnvKeys("app.debug", []string{"DEBUG", "NEWSDESK_DEBUG"})
	bindEnvKeys("feeds.max_items_per_feed", []string{"MAX_ARTICLES_PER_FEED"})
	bindEnvKeys("logging.level", []string{"LOG_LEVEL"})

	bindEnvList("feeds.sources", []string{"RSS_FEEDS", "FEED_URLS"})
	bindEnvList("server.cors_origins", []string{"CORS_ORIGINS"})

	// FETCH_INTERVAL_MINUTES is a bare number of minutes.
	if value := os.Getenv("FETCH_INTERVAL_MINUTES"); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil && minutes > 0 {
			viper.Set("feeds.fetch_interval", (time.Duration(minutes) * time.Minute).String())
		}
	}
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// bindEnvList binds the first found comma-separated environment variable to a list key
func bindEnvList(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		value := os.Getenv(envKey)
		if value == "" {
			continue
		}
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		viper.Set(viperKey, items)
		return
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	config.Feeds.Sources = dedupe(config.Feeds.Sources)

	durations := map[string]string{
		"database.connect_timeout": config.Database.ConnectTimeout,
		"ai.gemini.timeout":        config.AI.Gemini.Timeout,
		"feeds.request_interval":   config.Feeds.RequestInterval,
		"feeds.fetch_interval":     config.Feeds.FetchInterval,
		"feeds.timeout":            config.Feeds.Timeout,
		"enrichment.interval":      config.Enrichment.Interval,
		"digest.window":            config.Digest.Window,
		"server.read_timeout":      config.Server.ReadTimeout,
		"server.write_timeout":     config.Server.WriteTimeout,
		"server.request_timeout":   config.Server.RequestTimeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// validateConfig ensures required configuration is present and in range.
// The Gemini key is not required here: commands that need it fail with
// llm.ErrNotConfigured instead.
func validateConfig(config *Config) error {
	var errors []string

	if config.Database.URL == "" {
		errors = append(errors, "Database URL is required. Set DATABASE_URL or database.url in config file")
	}

	if len(config.Feeds.Sources) == 0 {
		errors = append(errors, "At least one feed source is required. Set RSS_FEEDS or feeds.sources")
	}
	for _, source := range config.Feeds.Sources {
		if err := parser.ValidateURL(source); err != nil {
			errors = append(errors, fmt.Sprintf("Invalid feed source %q: %v", source, err))
		}
	}

	if config.Feeds.MaxItemsPerFeed < 1 {
		errors = append(errors, "feeds.max_items_per_feed must be at least 1")
	}
	if config.Enrichment.BatchLimit < 1 {
		errors = append(errors, "enrichment.batch_limit must be at least 1")
	}
	if config.Search.MinSimilarity < 0 || config.Search.MinSimilarity > 1 {
		errors = append(errors, fmt.Sprintf("search.min_similarity must be within [0,1], got %v", config.Search.MinSimilarity))
	}
	if config.Search.DefaultLimit < 1 || config.Search.DefaultLimit > config.Search.MaxLimit {
		errors = append(errors, "search.default_limit must be between 1 and search.max_limit")
	}
	if config.Content.ExcerptChars < 1 {
		errors = append(errors, "content.excerpt_chars must be at least 1")
	}
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("server.port out of range: %d", config.Server.Port))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Duration parses a duration string validated at load time, returning fallback when empty.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Address returns the host:port the HTTP server listens on.
func (s Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the app runs in the production environment.
func (a App) IsProduction() bool {
	return strings.EqualFold(a.Environment, "production")
}

// HasGeminiKey reports whether a usable Gemini API key is configured.
func (c *Config) HasGeminiKey() bool {
	return isValidAPIKey(c.AI.Gemini.APIKey)
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "your-gemini-api-key", "your-google-api-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
