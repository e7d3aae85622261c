package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"prediction-dashboard/internal/model"
	"prediction-dashboard/internal/observability"
)

var (
	// ErrNotConfigured indicates the store pool was not initialised.
	ErrNotConfigured = errors.New("store: pool not configured")
)

const (
	collectionPredictions = "predictions"
	collectionSystem      = "system"

	keyHeartbeat        = "heartbeat"
	keyModelPerformance = "model_performance"
)

const (
	getDocumentSQL = `SELECT doc FROM documents
    WHERE collection = $1 AND key = $2;`

	listRecentPredictionsSQL = `SELECT doc FROM documents
    WHERE collection = 'predictions'
    ORDER BY updated_at DESC
    LIMIT $1;`

	listValidatedPredictionsSQL = `SELECT doc FROM documents
    WHERE collection = 'predictions'
      AND COALESCE((doc->>'validated')::boolean, false)
    ORDER BY updated_at DESC
    LIMIT $1;`

	listPendingValidationSQL = `SELECT doc FROM documents
    WHERE collection = 'predictions'
      AND NOT COALESCE((doc->>'validated')::boolean, false)
    ORDER BY updated_at DESC
    LIMIT $1;`

	listValidatedBetweenSQL = `SELECT doc FROM documents
    WHERE collection = 'predictions'
      AND COALESCE((doc->>'validated')::boolean, false)
      AND updated_at >= $1
      AND updated_at < $2
    ORDER BY updated_at;`
)

// PredictionStore reads prediction documents.
type PredictionStore interface {
	ListRecentPredictions(ctx context.Context, limit int) ([]model.Prediction, error)
	ListValidatedPredictions(ctx context.Context, limit int) ([]model.Prediction, error)
	ListPendingValidation(ctx context.Context, limit int) ([]model.Prediction, error)
	ListValidatedBetween(ctx context.Context, from, to time.Time) ([]model.Prediction, error)
}

// HeartbeatStore reads the heartbeat document. A missing document is
// reported as (nil, nil), not an error.
type HeartbeatStore interface {
	LatestHeartbeat(ctx context.Context) (*model.Heartbeat, error)
}

// PerformanceStore reads the model-performance document. A missing
// document is reported as (nil, nil), not an error.
type PerformanceStore interface {
	LatestModelPerformance(ctx context.Context) (*model.ModelPerformance, error)
}

// Store reads every collection through one pgx pool.
type Store struct {
	pool    *pgxpool.Pool
	metrics *observability.Metrics
}

// NewStore wires a pgx pool into a Store. metrics may be nil.
func NewStore(pool *pgxpool.Pool, metrics *observability.Metrics) *Store {
	return &Store{pool: pool, metrics: metrics}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// ListRecentPredictions returns the most recently written predictions,
// newest first.
func (s *Store) ListRecentPredictions(ctx context.Context, limit int) ([]model.Prediction, error) {
	return s.listPredictions(ctx, "list_recent", listRecentPredictionsSQL, limit)
}

// ListValidatedPredictions returns the most recently written validated
// predictions, newest first.
func (s *Store) ListValidatedPredictions(ctx context.Context, limit int) ([]model.Prediction, error) {
	return s.listPredictions(ctx, "list_validated", listValidatedPredictionsSQL, limit)
}

// ListPendingValidation returns the most recently written unvalidated
// predictions, newest first.
func (s *Store) ListPendingValidation(ctx context.Context, limit int) ([]model.Prediction, error) {
	return s.listPredictions(ctx, "list_pending", listPendingValidationSQL, limit)
}

// ListValidatedBetween returns validated predictions written inside
// [from, to), oldest first.
func (s *Store) ListValidatedBetween(ctx context.Context, from, to time.Time) ([]model.Prediction, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	started := time.Now()
	rows, queryErr := pool.Query(ctx, listValidatedBetweenSQL, from, to)
	s.metrics.ObserveStoreQuery("list_validated_between", time.Since(started).Seconds(), queryErr)
	if queryErr != nil {
		return nil, fmt.Errorf("list validated between: %w", queryErr)
	}
	defer rows.Close()

	return scanPredictions(rows)
}

func (s *Store) listPredictions(ctx context.Context, op, sql string, limit int) ([]model.Prediction, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	started := time.Now()
	rows, queryErr := pool.Query(ctx, sql, limit)
	s.metrics.ObserveStoreQuery(op, time.Since(started).Seconds(), queryErr)
	if queryErr != nil {
		return nil, fmt.Errorf("%s: %w", op, queryErr)
	}
	defer rows.Close()

	return scanPredictions(rows)
}

func scanPredictions(rows pgx.Rows) ([]model.Prediction, error) {
	predictions := make([]model.Prediction, 0)
	for rows.Next() {
		var raw []byte
		if scanErr := rows.Scan(&raw); scanErr != nil {
			return nil, fmt.Errorf("scan prediction doc: %w", scanErr)
		}
		var doc predictionDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			// Malformed document: skip the record rather than abort the
			// whole read.
			continue
		}
		predictions = append(predictions, doc.toModel())
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return predictions, nil
}

// LatestHeartbeat reads the heartbeat document.
func (s *Store) LatestHeartbeat(ctx context.Context) (*model.Heartbeat, error) {
	raw, err := s.getDocument(ctx, "get_heartbeat", collectionSystem, keyHeartbeat)
	if err != nil || raw == nil {
		return nil, err
	}

	var doc heartbeatDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		// A corrupt heartbeat is treated the same as a missing one.
		return nil, nil
	}
	hb := doc.toModel()
	return &hb, nil
}

// LatestModelPerformance reads the model-performance document.
func (s *Store) LatestModelPerformance(ctx context.Context) (*model.ModelPerformance, error) {
	raw, err := s.getDocument(ctx, "get_performance", collectionSystem, keyModelPerformance)
	if err != nil || raw == nil {
		return nil, err
	}

	var doc performanceDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil
	}
	perf := doc.toModel()
	return &perf, nil
}

func (s *Store) getDocument(ctx context.Context, op, collection, key string) ([]byte, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	started := time.Now()
	var raw []byte
	scanErr := pool.QueryRow(ctx, getDocumentSQL, collection, key).Scan(&raw)
	if errors.Is(scanErr, pgx.ErrNoRows) {
		s.metrics.ObserveStoreQuery(op, time.Since(started).Seconds(), nil)
		return nil, nil
	}
	s.metrics.ObserveStoreQuery(op, time.Since(started).Seconds(), scanErr)
	if scanErr != nil {
		return nil, fmt.Errorf("%s: %w", op, scanErr)
	}
	return raw, nil
}

var (
	_ PredictionStore  = (*Store)(nil)
	_ HeartbeatStore   = (*Store)(nil)
	_ PerformanceStore = (*Store)(nil)
)
