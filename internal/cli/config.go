package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lucassvahn/desinformation-agent/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Desinfo configuration",
	Long: `Manage Desinfo configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (DESINFO_* and the legacy .env names)
3. Config file (~/.desinfo/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Display the configuration after merging defaults, the config file, .env, and environment variables. Secrets are redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		redacted := *cfg
		redacted.Database.Password = redact(cfg.Database.Password)
		redacted.Reddit.ClientSecret = redact(cfg.Reddit.ClientSecret)
		redacted.Twitter.BearerToken = redact(cfg.Twitter.BearerToken)
		redacted.Search.TavilyKey = redact(cfg.Search.TavilyKey)
		redacted.Search.NewsAPIKey = redact(cfg.Search.NewsAPIKey)
		redacted.LLM.APIKey = redact(cfg.LLM.APIKey)

		yamlData, err := yaml.Marshal(redacted)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Print(string(yamlData))
		return nil
	},
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a default configuration file",
	Long:  `Create a configuration file at ~/.desinfo/config.yaml with all available options documented. Credentials stay in .env or the environment.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("find home directory: %w", err)
		}

		configDir := home + "/.desinfo"
		configPath := configDir + "/config.yaml"

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'desinfo config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("create config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		printf := func(format string, a ...interface{}) {
			if err != nil {
				return
			}
			_, err = fmt.Fprintf(f, format, a...)
		}

		printf("# Desinfo configuration file\n")
		printf("#\n")
		printf("# Credentials are NOT stored here. Set them in .env or the environment:\n")
		printf("#   DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD\n")
		printf("#   REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, REDDIT_USER_AGENT\n")
		printf("#   TWITTER_BEARER_TOKEN\n")
		printf("#   TAVILY_API_KEY, NEWSAPI_KEY\n")
		printf("#   GOOGLE_API_KEY, GEMINI_MODEL_NAME\n")
		printf("#\n")
		printf("# Hierarchy (highest to lowest priority):\n")
		printf("#   1. CLI flags\n")
		printf("#   2. Environment variables (DESINFO_* and the names above)\n")
		printf("#   3. This config file\n")
		printf("#   4. Built-in defaults\n\n")

		printf("llm:\n")
		printf("  provider: gemini        # gemini or openai\n")
		printf("  model: gemini-1.5-flash\n")
		printf("  timeout_secs: 60\n")
		printf("  max_tokens: 1024\n\n")

		printf("verify:\n")
		printf("  language: sv\n")
		printf("  subreddits: [svenskpolitik, Sverige, sweden]\n")
		printf("  max_posts_per_subreddit: 20\n")
		printf("  max_days_reddit: 7\n")
		printf("  extract_links: false\n")
		printf("  twitter_query: \"#svpol\"\n")
		printf("  max_tweets: 10\n")
		printf("  pacing_per_second: 1.0\n\n")

		printf("search:\n")
		printf("  max_results: 5\n")
		printf("  cache_ttl_mins: 30\n")
		printf("  # include_domains defaults to the built-in reliable-domains list\n\n")

		printf("log:\n")
		printf("  level: info\n")
		printf("  format: console         # console or json\n")

		if err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		fmt.Fprintf(os.Stderr, "✓ Created config file: %s\n", configPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
