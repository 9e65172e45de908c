package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Reddit   RedditConfig   `yaml:"reddit" mapstructure:"reddit"`
	Twitter  TwitterConfig  `yaml:"twitter" mapstructure:"twitter"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Verify   VerifyConfig   `yaml:"verify" mapstructure:"verify"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     string `yaml:"port" mapstructure:"port"`
	Name     string `yaml:"name" mapstructure:"name"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
}

// DSN builds a pgx connection string from the individual settings.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", d.User, d.Password, d.Host, d.Port, d.Name)
}

// RedditConfig holds Reddit API credentials.
type RedditConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
}

// TwitterConfig holds Twitter/X API credentials.
type TwitterConfig struct {
	BearerToken string `yaml:"bearer_token" mapstructure:"bearer_token"`
}

// SearchConfig holds evidence-search API settings.
type SearchConfig struct {
	TavilyKey      string   `yaml:"tavily_key" mapstructure:"tavily_key"`
	NewsAPIKey     string   `yaml:"newsapi_key" mapstructure:"newsapi_key"`
	MaxResults     int      `yaml:"max_results" mapstructure:"max_results"`
	IncludeDomains []string `yaml:"include_domains" mapstructure:"include_domains"`
	CacheTTLMins   int      `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
}

// LLMConfig holds language-model provider settings.
type LLMConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	Model       string `yaml:"model" mapstructure:"model"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxTokens   int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// VerifyConfig tunes the verification run itself.
type VerifyConfig struct {
	Language             string   `yaml:"language" mapstructure:"language"`
	Subreddits           []string `yaml:"subreddits" mapstructure:"subreddits"`
	MaxPostsPerSubreddit int      `yaml:"max_posts_per_subreddit" mapstructure:"max_posts_per_subreddit"`
	MaxDaysReddit        int      `yaml:"max_days_reddit" mapstructure:"max_days_reddit"`
	ExtractLinks         bool     `yaml:"extract_links" mapstructure:"extract_links"`
	TwitterQuery         string   `yaml:"twitter_query" mapstructure:"twitter_query"`
	MaxTweets            int      `yaml:"max_tweets" mapstructure:"max_tweets"`
	SkipReddit           bool     `yaml:"skip_reddit" mapstructure:"skip_reddit"`
	SkipTwitter          bool     `yaml:"skip_twitter" mapstructure:"skip_twitter"`
	PacingPerSecond      float64  `yaml:"pacing_per_second" mapstructure:"pacing_per_second"`
	PhrasesFile          string   `yaml:"phrases_file" mapstructure:"phrases_file"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ReliableDomains is the default evidence-domain allowlist: Swedish news,
// government and statistics agencies, international news and fact-checkers,
// and scientific bodies.
var ReliableDomains = []string{
	"svt.se", "sr.se", "dn.se", "svd.se",
	"riksdagen.se", "regeringen.se", "scb.se", "faktiskt.se",
	"tillvaxtverket.se", "msb.se", "folkhalsomyndigheten.se",
	"apnews.com", "reuters.com", "bbc.com", "nytimes.com", "theguardian.com",
	"politifact.com", "factcheck.org", "snopes.com", "fullfact.org",
	"nature.com", "sciencemag.org", "nejm.org", "thelancet.com",
	"pubmed.ncbi.nlm.nih.gov", "who.int", "ecdc.europa.eu", "un.org", "europa.eu",
}

// Load reads configuration from .env, the config file, DESINFO_* environment
// variables and defaults, in ascending priority the other way around: flags
// and environment override the file, the file overrides defaults.
func Load(cfgFile string) (*Config, error) {
	// The original deployment was .env driven; keep supporting it. A missing
	// .env is not an error.
	_ = godotenv.Load()

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home + "/.desinfo")
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DESINFO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy environment names from the original .env layout.
	bindings := map[string]string{
		"database.host":        "DB_HOST",
		"database.port":        "DB_PORT",
		"database.name":        "DB_NAME",
		"database.user":        "DB_USER",
		"database.password":    "DB_PASSWORD",
		"reddit.client_id":     "REDDIT_CLIENT_ID",
		"reddit.client_secret": "REDDIT_CLIENT_SECRET",
		"reddit.user_agent":    "REDDIT_USER_AGENT",
		"twitter.bearer_token": "TWITTER_BEARER_TOKEN",
		"search.tavily_key":    "TAVILY_API_KEY",
		"search.newsapi_key":   "NEWSAPI_KEY",
		"llm.api_key":          "GOOGLE_API_KEY",
		"llm.model":            "GEMINI_MODEL_NAME",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}

	// Defaults
	v.SetDefault("database.port", "6543")
	v.SetDefault("reddit.user_agent", "go:desinformation-agent:v1.0 (by u/laughingmaymays)")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.include_domains", ReliableDomains)
	v.SetDefault("search.cache_ttl_mins", 30)
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-1.5-flash")
	v.SetDefault("llm.timeout_secs", 60)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("verify.language", "sv")
	v.SetDefault("verify.subreddits", []string{"svenskpolitik", "Sverige", "sweden"})
	v.SetDefault("verify.max_posts_per_subreddit", 20)
	v.SetDefault("verify.max_days_reddit", 7)
	v.SetDefault("verify.extract_links", false)
	v.SetDefault("verify.twitter_query", "#svpol")
	v.SetDefault("verify.max_tweets", 10)
	v.SetDefault("verify.pacing_per_second", 1.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that every credential required for a run is present.
// Failures here are fatal at startup, before any work begins.
func (c *Config) Validate() error {
	var missing []string

	if c.Database.Host == "" {
		missing = append(missing, "database.host (DB_HOST)")
	}
	if c.Database.Name == "" {
		missing = append(missing, "database.name (DB_NAME)")
	}
	if c.Database.User == "" {
		missing = append(missing, "database.user (DB_USER)")
	}
	if c.Database.Password == "" {
		missing = append(missing, "database.password (DB_PASSWORD)")
	}
	if c.Search.TavilyKey == "" {
		missing = append(missing, "search.tavily_key (TAVILY_API_KEY)")
	}
	if c.Search.NewsAPIKey == "" {
		missing = append(missing, "search.newsapi_key (NEWSAPI_KEY)")
	}
	if c.LLM.APIKey == "" {
		missing = append(missing, "llm.api_key (GOOGLE_API_KEY)")
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
