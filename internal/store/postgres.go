package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock's pool
// implements the same signatures, which is what the unit tests stand in.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store over a pgx connection pool.
type PostgresStore struct {
	pool     Pool
	language string
	log      *zap.Logger
}

// NewPostgres connects to the database and verifies the connection. A
// failure here is fatal at startup by design: no work begins without a
// reachable database.
func NewPostgres(ctx context.Context, connString, language string, log *zap.Logger) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// One sequential writer; a large pool buys nothing here.
	pgxCfg.MaxConns = 2
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresStore{pool: pool, language: language, log: log}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS sources (
	source_id       BIGSERIAL PRIMARY KEY,
	platform        TEXT NOT NULL,
	source_url      TEXT NOT NULL UNIQUE,
	author_id       TEXT,
	author_username TEXT,
	post_timestamp  TIMESTAMPTZ,
	fetch_timestamp TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS claims (
	claim_id          BIGSERIAL PRIMARY KEY,
	source_id         BIGINT NOT NULL REFERENCES sources(source_id),
	claim_text        TEXT NOT NULL,
	claim_hash        TEXT NOT NULL,
	extraction_method TEXT,
	date_extracted    TIMESTAMPTZ NOT NULL,
	UNIQUE (claim_hash, source_id)
);

CREATE TABLE IF NOT EXISTS evaluations (
	evaluation_id        BIGSERIAL PRIMARY KEY,
	claim_id             BIGINT NOT NULL REFERENCES claims(claim_id),
	evaluation_timestamp TIMESTAMPTZ NOT NULL,
	llm_model_used       TEXT NOT NULL,
	search_api_used      TEXT,
	search_query_used    TEXT,
	truthfulness_rating  TEXT NOT NULL,
	truthfulness_score   NUMERIC(4,1),
	llm_reasoning        TEXT,
	claims_detected      TEXT,
	evaluation_status    TEXT NOT NULL DEFAULT 'Completed'
);

CREATE TABLE IF NOT EXISTS evidence (
	evidence_id         BIGSERIAL PRIMARY KEY,
	evaluation_id       BIGINT NOT NULL REFERENCES evaluations(evaluation_id),
	evidence_url        TEXT,
	evidence_title      TEXT,
	evidence_snippet    TEXT,
	retrieved_timestamp TIMESTAMPTZ NOT NULL,
	language            TEXT,
	relevance_score     DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS idx_claims_source ON claims(source_id);
CREATE INDEX IF NOT EXISTS idx_claims_hash ON claims(claim_hash);
CREATE INDEX IF NOT EXISTS idx_evaluations_claim ON evaluations(claim_id);
CREATE INDEX IF NOT EXISTS idx_evidence_evaluation ON evidence(evaluation_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// StoreVerification writes one bundle inside a single transaction:
//
//	1. resolve the source by URL, inserting if absent
//	2. resolve the claim by (hash, source), inserting if absent
//	3. if the claim existed, skip everything when an evaluation for the
//	   same model already exists
//	4. insert the evaluation
//	5. insert the evidence rows with one shared retrieval timestamp
//
// Any failure rolls the whole transaction back; nothing partial is ever
// left behind.
func (s *PostgresStore) StoreVerification(ctx context.Context, bundle Bundle) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sourceID, err := s.resolveSource(ctx, tx, bundle)
	if err != nil {
		return err
	}

	claimID, claimExisted, err := s.resolveClaim(ctx, tx, sourceID, bundle)
	if err != nil {
		return err
	}

	if claimExisted {
		var evaluationID int64
		err := tx.QueryRow(ctx,
			`SELECT evaluation_id FROM evaluations WHERE claim_id = $1 AND llm_model_used = $2`,
			claimID, bundle.Evaluation.LLMModelUsed,
		).Scan(&evaluationID)
		switch {
		case err == nil:
			// Already evaluated with this model; the whole write is done.
			s.log.Info("evaluation already exists, skipping",
				zap.Int64("claim_id", claimID),
				zap.Int64("evaluation_id", evaluationID),
				zap.String("model", bundle.Evaluation.LLMModelUsed))
			return eris.Wrap(tx.Commit(ctx), "postgres: commit")
		case !errors.Is(err, pgx.ErrNoRows):
			return eris.Wrap(err, "postgres: check existing evaluation")
		}
	}

	evaluationID, err := s.insertEvaluation(ctx, tx, claimID, bundle)
	if err != nil {
		return err
	}

	if err := s.insertEvidence(ctx, tx, evaluationID, bundle.Evidence); err != nil {
		return err
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit")
}

func (s *PostgresStore) resolveSource(ctx context.Context, tx pgx.Tx, bundle Bundle) (int64, error) {
	var sourceID int64
	err := tx.QueryRow(ctx,
		`SELECT source_id FROM sources WHERE source_url = $1`,
		bundle.Source.SourceURL,
	).Scan(&sourceID)
	if err == nil {
		return sourceID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, eris.Wrap(err, "postgres: look up source")
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO sources (platform, source_url, author_id, author_username, post_timestamp, fetch_timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING source_id`,
		string(bundle.Source.Platform), bundle.Source.SourceURL,
		bundle.Source.AuthorID, bundle.Source.AuthorUsername,
		bundle.Source.PostTimestamp, bundle.Source.FetchTimestamp,
	).Scan(&sourceID)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert source")
	}

	s.log.Debug("inserted new source",
		zap.Int64("source_id", sourceID),
		zap.String("url", bundle.Source.SourceURL))
	return sourceID, nil
}

func (s *PostgresStore) resolveClaim(ctx context.Context, tx pgx.Tx, sourceID int64, bundle Bundle) (int64, bool, error) {
	hash := ClaimHash(bundle.Claim.Text)

	var claimID int64
	err := tx.QueryRow(ctx,
		`SELECT claim_id FROM claims WHERE claim_hash = $1 AND source_id = $2`,
		hash, sourceID,
	).Scan(&claimID)
	if err == nil {
		return claimID, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, eris.Wrap(err, "postgres: look up claim")
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO claims (source_id, claim_text, claim_hash, extraction_method, date_extracted)
		 VALUES ($1, $2, $3, $4, $5) RETURNING claim_id`,
		sourceID, bundle.Claim.Text, hash,
		bundle.Claim.ExtractionMethod, bundle.Claim.DateExtracted,
	).Scan(&claimID)
	if err != nil {
		return 0, false, eris.Wrap(err, "postgres: insert claim")
	}

	s.log.Debug("inserted new claim",
		zap.Int64("claim_id", claimID),
		zap.String("hash", hash))
	return claimID, false, nil
}

func (s *PostgresStore) insertEvaluation(ctx context.Context, tx pgx.Tx, claimID int64, bundle Bundle) (int64, error) {
	ev := bundle.Evaluation
	status := ev.EvaluationStatus
	if status == "" {
		status = "Completed"
	}

	var evaluationID int64
	err := tx.QueryRow(ctx,
		`INSERT INTO evaluations (claim_id, evaluation_timestamp, llm_model_used, search_api_used,
		                          search_query_used, truthfulness_rating, truthfulness_score,
		                          llm_reasoning, claims_detected, evaluation_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING evaluation_id`,
		claimID, ev.EvaluationTimestamp, ev.LLMModelUsed, ev.SearchAPIUsed,
		ev.SearchQueryUsed, ev.Verdict.Rating, ev.Verdict.TruthfulnessScore,
		ev.Verdict.Reasoning, ev.Verdict.ClaimsDetected, status,
	).Scan(&evaluationID)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert evaluation")
	}
	return evaluationID, nil
}

func (s *PostgresStore) insertEvidence(ctx context.Context, tx pgx.Tx, evaluationID int64, items []model.EvidenceItem) error {
	// One timestamp for the whole batch, taken once per call.
	retrieved := time.Now().UTC()

	for _, item := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO evidence (evaluation_id, evidence_url, evidence_title, evidence_snippet,
			                       retrieved_timestamp, language, relevance_score)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			evaluationID, item.URL, item.Title, item.Snippet,
			retrieved, s.language, item.RelevanceScore,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert evidence")
		}
	}
	return nil
}
