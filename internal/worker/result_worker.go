package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/attestly/attest-backend/internal/config"
	"github.com/attestly/attest-backend/internal/model"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWorker drains the result queue and persists denormalized result rows
// in batches. Sessions remain the source of truth; this table only feeds
// reporting, so the worker retries by requeueing instead of failing requests.
type ResultWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewResultWorker creates a new ResultWorker.
func NewResultWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "result_worker").Logger(),
	}
}

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]*model.SessionResult, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var res model.SessionResult
			if err := json.Unmarshal([]byte(item[1]), &res); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &res)
		}
	}
}

func (w *ResultWorker) flushSafe(ctx context.Context, batch []*model.SessionResult) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk result upsert failed, using fallback")

		for _, res := range batch {
			if err := w.persistSingle(ctx, res); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed, requeueing")
				raw, _ := json.Marshal(res)
				w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
			}
		}
	}
}

// bulkUpsert writes the whole batch with a single UNNEST statement.
// Conflicting on session_id keeps the row current when a review revises a
// frozen total and the session is re-enqueued.
func (w *ResultWorker) bulkUpsert(ctx context.Context, batch []*model.SessionResult) error {
	n := len(batch)

	assessmentIDs := make([]uuid.UUID, 0, n)
	participantIDs := make([]int, 0, n)
	sessionIDs := make([]uuid.UUID, 0, n)
	scores := make([]float64, 0, n)
	finishedAts := make([]time.Time, 0, n)

	for _, res := range batch {
		assessmentIDs = append(assessmentIDs, res.AssessmentID)
		participantIDs = append(participantIDs, res.ParticipantID)
		sessionIDs = append(sessionIDs, res.SessionID)
		scores = append(scores, res.Score)
		finishedAts = append(finishedAts, res.FinishedAt)
	}

	query := `
		INSERT INTO assessment_results
			(assessment_id, participant_id, session_id, score, finished_at)
		SELECT u.assessment_id, u.participant_id, u.session_id, u.score, u.finished_at
		FROM UNNEST(
			$1::uuid[],
			$2::int[],
			$3::uuid[],
			$4::float8[],
			$5::timestamptz[]
		) AS u (assessment_id, participant_id, session_id, score, finished_at)
		ON CONFLICT (session_id) DO UPDATE
		SET score = EXCLUDED.score,
		    finished_at = EXCLUDED.finished_at
	`

	_, err := w.pool.Exec(ctx, query,
		assessmentIDs, participantIDs, sessionIDs, scores, finishedAts)
	if err != nil {
		return err
	}

	w.log.Debug().Int("count", n).Msg("Result batch persisted")
	return nil
}

func (w *ResultWorker) persistSingle(ctx context.Context, res *model.SessionResult) error {
	_, err := w.pool.Exec(ctx,
		`INSERT INTO assessment_results
			(assessment_id, participant_id, session_id, score, finished_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (session_id) DO UPDATE
		 SET score = EXCLUDED.score,
		     finished_at = EXCLUDED.finished_at`,
		res.AssessmentID, res.ParticipantID, res.SessionID, res.Score, res.FinishedAt)
	return err
}
