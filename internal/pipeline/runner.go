package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lucassvahn/desinformation-agent/internal/config"
	"github.com/lucassvahn/desinformation-agent/internal/evaluate"
	"github.com/lucassvahn/desinformation-agent/internal/model"
	"github.com/lucassvahn/desinformation-agent/internal/source"
	"github.com/lucassvahn/desinformation-agent/internal/store"
)

// Runner orchestrates a verification run: fetch posts, derive claims, search
// for evidence, evaluate, normalize, and persist. Items are processed one at
// a time; one item failing never aborts the run.
type Runner struct {
	cfg        *config.Config
	store      store.Store
	evaluator  *evaluate.Evaluator
	normalizer *evaluate.Normalizer
	searchers  []source.EvidenceSearcher
	reddit     *source.RedditClient
	twitter    source.PostSource
	limiter    *rate.Limiter
	modelName  string
	log        *zap.Logger
}

// NewRunner assembles a runner from already-constructed components. The
// reddit and twitter clients may be nil when their platform is skipped.
func NewRunner(cfg *config.Config, st store.Store, evaluator *evaluate.Evaluator, normalizer *evaluate.Normalizer, searchers []source.EvidenceSearcher, reddit *source.RedditClient, twitter source.PostSource, modelName string, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	pacing := cfg.Verify.PacingPerSecond
	if pacing <= 0 {
		pacing = 1.0
	}
	return &Runner{
		cfg:        cfg,
		store:      st,
		evaluator:  evaluator,
		normalizer: normalizer,
		searchers:  searchers,
		reddit:     reddit,
		twitter:    twitter,
		limiter:    rate.NewLimiter(rate.Limit(pacing), 1),
		modelName:  modelName,
		log:        log,
	}
}

// Run fetches posts from every enabled platform and verifies each one.
func (r *Runner) Run(ctx context.Context) error {
	if r.reddit != nil && !r.cfg.Verify.SkipReddit {
		for _, sub := range r.cfg.Verify.Subreddits {
			posts, err := r.reddit.FetchSubreddit(ctx, sub,
				r.cfg.Verify.MaxPostsPerSubreddit, r.cfg.Verify.MaxDaysReddit,
				r.cfg.Verify.ExtractLinks)
			if err != nil {
				r.log.Error("fetching subreddit failed",
					zap.String("subreddit", sub), zap.Error(err))
				continue
			}
			r.log.Info("fetched subreddit",
				zap.String("subreddit", sub), zap.Int("posts", len(posts)))
			for _, post := range posts {
				if err := ctx.Err(); err != nil {
					return err
				}
				r.processRedditPost(ctx, post)
			}
		}
	}

	if r.twitter != nil && !r.cfg.Verify.SkipTwitter {
		tweets, err := r.twitter.Fetch(ctx)
		if err != nil {
			r.log.Error("fetching tweets failed", zap.Error(err))
		} else {
			r.log.Info("fetched tweets", zap.Int("tweets", len(tweets)))
			for _, tweet := range tweets {
				if err := ctx.Err(); err != nil {
					return err
				}
				r.processTweet(ctx, tweet)
			}
		}
	}

	return ctx.Err()
}

// VerifyManual verifies a single user-supplied claim. The source URL
// defaults to a synthetic manual:// URL so every claim still has an origin
// row to hang off.
func (r *Runner) VerifyManual(ctx context.Context, claimText, sourceURL, author string) error {
	claimText = strings.TrimSpace(claimText)
	if claimText == "" {
		return fmt.Errorf("empty claim text")
	}
	if sourceURL == "" {
		sourceURL = "manual://" + store.ClaimHash(claimText)[:16]
	}

	src := model.SourceRecord{
		Platform:       model.PlatformManual,
		SourceURL:      sourceURL,
		AuthorUsername: author,
		FetchTimestamp: time.Now().UTC(),
	}
	return r.verify(ctx, src, model.TruncateClaim(claimText),
		model.ExtractionManual, DeriveQuery(claimText), "", "")
}

func (r *Runner) processRedditPost(ctx context.Context, post model.Post) {
	text := post.Title
	if strings.TrimSpace(post.Text) != "" {
		text = post.Title + "\n\n" + post.Text
	}
	text = strings.TrimSpace(text)
	if text == "" {
		r.log.Debug("skipping empty reddit post", zap.String("url", post.URL))
		return
	}

	src := model.SourceRecord{
		Platform:       model.PlatformReddit,
		SourceURL:      post.URL,
		AuthorUsername: post.Author,
		AuthorID:       post.AuthorID,
		PostTimestamp:  post.CreatedAt,
		FetchTimestamp: time.Now().UTC(),
	}
	if err := r.verify(ctx, src, model.TruncateClaim(text),
		model.ExtractionRedditPost, DeriveQuery(text), "reddit_post", ""); err != nil {
		r.log.Error("verifying reddit post failed",
			zap.String("url", post.URL), zap.Error(err))
	}

	if post.Link != nil {
		r.processArticle(ctx, post, post.Link)
	}
}

// processArticle verifies every chunk of an article linked from a post. Each
// chunk is its own claim against the article's source row, with the chunk
// index recorded in the extraction method.
func (r *Runner) processArticle(ctx context.Context, post model.Post, article *model.LinkedArticle) {
	src := model.SourceRecord{
		Platform:       model.PlatformArticleReddit,
		SourceURL:      article.URL,
		AuthorUsername: post.Author,
		PostTimestamp:  post.CreatedAt,
		FetchTimestamp: time.Now().UTC(),
	}
	for i, chunk := range article.Chunks {
		if ctx.Err() != nil {
			return
		}
		method := fmt.Sprintf("%s%d", model.ExtractionArticleChunk, i+1)
		query := DeriveArticleQuery(article, chunk)
		if err := r.verify(ctx, src, model.TruncateClaim(chunk),
			method, query, "article_via_reddit", article.URL); err != nil {
			r.log.Error("verifying article chunk failed",
				zap.String("url", article.URL), zap.Int("chunk", i+1), zap.Error(err))
		}
	}
}

func (r *Runner) processTweet(ctx context.Context, tweet model.Post) {
	text := strings.TrimSpace(tweet.Text)
	if text == "" {
		r.log.Debug("skipping empty tweet", zap.String("url", tweet.URL))
		return
	}

	src := model.SourceRecord{
		Platform:       model.PlatformTwitter,
		SourceURL:      tweet.URL,
		AuthorUsername: tweet.Author,
		AuthorID:       tweet.AuthorID,
		PostTimestamp:  tweet.CreatedAt,
		FetchTimestamp: time.Now().UTC(),
	}
	if err := r.verify(ctx, src, model.TruncateClaim(text),
		model.ExtractionTwitterPost, DeriveQuery(text), "twitter_post", ""); err != nil {
		r.log.Error("verifying tweet failed",
			zap.String("url", tweet.URL), zap.Error(err))
	}
}

// verify runs the full search-evaluate-normalize-store sequence for one
// claim. provenance, when non-empty, is prepended to the search API list so
// the stored record says where the claim came from. excludeURL drops the
// claim's own article from its evidence.
//
// The limiter is consumed here between items and again inside
// gatherEvidence before every search call.
func (r *Runner) verify(ctx context.Context, src model.SourceRecord, claimText, extractionMethod, query, provenance, excludeURL string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}

	evidence := r.gatherEvidence(ctx, query, excludeURL)

	postDate := ""
	if src.PostTimestamp != nil {
		postDate = src.PostTimestamp.UTC().Format("2006-01-02")
	}
	raw := r.evaluator.Evaluate(ctx, claimText, evidence, evaluate.Metadata{
		Platform: src.Platform,
		PostDate: postDate,
	})
	verdict := r.normalizer.Normalize(raw)

	bundle := store.Bundle{
		Source: src,
		Claim: model.ClaimRecord{
			Text:             claimText,
			ExtractionMethod: extractionMethod,
			DateExtracted:    time.Now().UTC(),
		},
		Evaluation: model.EvaluationRecord{
			EvaluationTimestamp: time.Now().UTC(),
			LLMModelUsed:        r.modelName,
			SearchAPIUsed:       r.searchAPIsUsed(provenance),
			SearchQueryUsed:     query,
			Verdict:             verdict,
			EvaluationStatus:    model.StatusCompleted,
		},
		Evidence: evidence,
	}
	if err := r.store.StoreVerification(ctx, bundle); err != nil {
		return fmt.Errorf("store verification: %w", err)
	}

	r.log.Info("claim verified",
		zap.String("platform", string(src.Platform)),
		zap.String("rating", verdict.Rating),
		zap.Int("evidence", len(evidence)))
	return nil
}

// gatherEvidence queries every configured searcher, pacing each call
// through the shared limiter. A searcher failing is logged and contributes
// nothing; the evaluation proceeds on whatever the rest returned.
func (r *Runner) gatherEvidence(ctx context.Context, query, excludeURL string) []model.EvidenceItem {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	var evidence []model.EvidenceItem
	for _, searcher := range r.searchers {
		if err := r.limiter.Wait(ctx); err != nil {
			return evidence
		}
		items, err := searcher.Search(ctx, query,
			r.cfg.Search.MaxResults, r.cfg.Search.IncludeDomains)
		if err != nil {
			r.log.Warn("evidence search failed",
				zap.String("api", searcher.Name()), zap.Error(err))
			continue
		}
		for _, item := range items {
			if excludeURL != "" && item.URL == excludeURL {
				continue
			}
			evidence = append(evidence, item)
		}
	}
	return evidence
}

func (r *Runner) searchAPIsUsed(provenance string) string {
	names := make([]string, 0, len(r.searchers)+1)
	if provenance != "" {
		names = append(names, provenance)
	}
	for _, s := range r.searchers {
		names = append(names, s.Name())
	}
	return strings.Join(names, ",")
}
