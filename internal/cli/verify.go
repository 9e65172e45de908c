package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucassvahn/desinformation-agent/internal/config"
	"github.com/lucassvahn/desinformation-agent/internal/evaluate"
	"github.com/lucassvahn/desinformation-agent/internal/llm"
	"github.com/lucassvahn/desinformation-agent/internal/pipeline"
	"github.com/lucassvahn/desinformation-agent/internal/source"
	"github.com/lucassvahn/desinformation-agent/internal/store"
)

var (
	manualClaim  string
	manualURL    string
	manualAuthor string
	skipReddit   bool
	skipTwitter  bool
	extractLinks bool
	phrasesFile  string
	runTimeout   time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Fetch posts and verify the claims they contain",
	Long: `Verify runs the full pipeline: fetch recent posts from the configured
subreddits and the Twitter query, derive a claim from each post, search
Tavily and NewsAPI for evidence, ask the language model for a verdict,
and store everything in PostgreSQL.

With --claim, the platforms are skipped and the given text is verified
as a single manually supplied claim.

Examples:
  desinfo verify
  desinfo verify --skip-twitter
  desinfo verify --claim "Sverige har 12 miljoner invånare" --author test`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&manualClaim, "claim", "", "verify this claim text instead of fetching posts")
	verifyCmd.Flags().StringVar(&manualURL, "source-url", "", "source URL recorded for a manual claim")
	verifyCmd.Flags().StringVar(&manualAuthor, "author", "", "author recorded for a manual claim")
	verifyCmd.Flags().BoolVar(&skipReddit, "skip-reddit", false, "skip fetching Reddit posts")
	verifyCmd.Flags().BoolVar(&skipTwitter, "skip-twitter", false, "skip fetching tweets")
	verifyCmd.Flags().BoolVar(&extractLinks, "extract-links", false, "also verify articles linked from Reddit posts")
	verifyCmd.Flags().StringVar(&phrasesFile, "phrases", "", "YAML file with extra no-claim phrases")
	verifyCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute, "overall run timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Flag overrides
	if skipReddit {
		cfg.Verify.SkipReddit = true
	}
	if skipTwitter {
		cfg.Verify.SkipTwitter = true
	}
	if extractLinks {
		cfg.Verify.ExtractLinks = true
	}
	if phrasesFile != "" {
		cfg.Verify.PhrasesFile = phrasesFile
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		return err
	}
	log := zap.L()
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	// Database connectivity is checked up front. No point fetching posts if
	// results cannot be stored.
	st, err := store.NewPostgres(ctx, cfg.Database.DSN(), cfg.Verify.Language, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	provider, err := llm.NewProvider(llm.Config{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Timeout:   cfg.LLM.TimeoutSecs,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}

	phrases := evaluate.DefaultNoClaimPhrases
	if cfg.Verify.PhrasesFile != "" {
		phrases, err = evaluate.LoadPhrases(cfg.Verify.PhrasesFile)
		if err != nil {
			return fmt.Errorf("load no-claim phrases: %w", err)
		}
	}

	evaluator := evaluate.NewEvaluator(provider, log)
	normalizer := evaluate.NewNormalizer(phrases, log)

	cacheTTL := time.Duration(cfg.Search.CacheTTLMins) * time.Minute
	searchers := []source.EvidenceSearcher{
		source.NewCachedSearcher(source.NewTavilyClient(cfg.Search.TavilyKey), cacheTTL),
		source.NewCachedSearcher(source.NewNewsAPIClient(cfg.Search.NewsAPIKey, cfg.Verify.Language), cacheTTL),
	}

	runner := buildRunner(cfg, st, evaluator, normalizer, searchers, provider.Model(), log)

	if manualClaim != "" {
		if err := runner.VerifyManual(ctx, manualClaim, manualURL, manualAuthor); err != nil {
			return fmt.Errorf("verify claim: %w", err)
		}
		fmt.Fprintln(os.Stderr, "✓ Claim verified and stored")
		return nil
	}

	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("verification run: %w", err)
	}
	fmt.Fprintln(os.Stderr, "✓ Verification run complete")
	return nil
}

func buildRunner(cfg *config.Config, st store.Store, evaluator *evaluate.Evaluator, normalizer *evaluate.Normalizer, searchers []source.EvidenceSearcher, modelName string, log *zap.Logger) *pipeline.Runner {
	var reddit *source.RedditClient
	if !cfg.Verify.SkipReddit && cfg.Reddit.ClientID != "" {
		var extractor *source.ArticleExtractor
		if cfg.Verify.ExtractLinks {
			extractor = source.NewArticleExtractor(cfg.Reddit.UserAgent, 30*time.Second, 2_000_000)
		}
		reddit = source.NewRedditClient(cfg.Reddit.ClientID, cfg.Reddit.ClientSecret,
			cfg.Reddit.UserAgent, extractor, log)
	}

	var twitter source.PostSource
	if !cfg.Verify.SkipTwitter && cfg.Twitter.BearerToken != "" {
		twitter = source.NewTwitterClient(cfg.Twitter.BearerToken,
			cfg.Verify.TwitterQuery, cfg.Verify.Language, cfg.Verify.MaxTweets)
	}

	return pipeline.NewRunner(cfg, st, evaluator, normalizer, searchers, reddit, twitter, modelName, log)
}
