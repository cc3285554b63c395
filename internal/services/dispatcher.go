package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/aigoflow/batch-predictor/internal/config"
	"github.com/aigoflow/batch-predictor/internal/models"
	"github.com/aigoflow/batch-predictor/internal/repository"
	"github.com/aigoflow/batch-predictor/pkg/client"
)

// parallelThreshold is the batch length above which a parallel dispatch
// hint takes effect. Batches of this length or shorter always run
// sequentially.
const parallelThreshold = 10

// Dispatcher fans batches of feature vectors out to the prediction
// service and assembles outcomes in input order.
type Dispatcher struct {
	client       client.PredictionClient
	repo         repository.Repository
	maxWorkers   int
	modelVersion string

	activeWorkers int64 // atomic counter
	totalItems    int64 // atomic counter
	totalFailed   int64 // atomic counter
}

// DispatchStats reports cumulative dispatch counters.
type DispatchStats struct {
	TotalItems  int64 `json:"total_items"`
	TotalFailed int64 `json:"total_failed"`
}

func NewDispatcher(predictionClient client.PredictionClient, repo repository.Repository, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		client:       predictionClient,
		repo:         repo,
		maxWorkers:   cfg.MaxWorkers,
		modelVersion: cfg.ModelVersion,
	}
}

// Dispatch sends every feature vector in the batch to the prediction
// service and returns one outcome per item, ordered by batch index.
// Per-item remote failures are contained in their outcome; the returned
// error covers caller mistakes only (malformed feature vectors).
func (d *Dispatcher) Dispatch(ctx context.Context, model string, features []models.FeatureVector, useParallel bool) (models.BatchResult, error) {
	for i, fv := range features {
		if len(fv) == 0 {
			return nil, fmt.Errorf("feature vector at index %d is empty", i)
		}
	}

	if len(features) == 0 {
		return models.BatchResult{}, nil
	}

	batchID := ulid.Make().String()
	start := time.Now()

	var result models.BatchResult
	parallel := useParallel && len(features) > parallelThreshold
	if parallel {
		result = d.dispatchParallel(ctx, batchID, model, features)
	} else {
		result = d.dispatchSequential(ctx, batchID, model, features)
	}

	slog.Info("Batch dispatched",
		"batch_id", batchID,
		"model", model,
		"items", len(result),
		"successful", result.SuccessCount(),
		"parallel", parallel,
		"duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

// Stats returns cumulative counters across all dispatch calls.
func (d *Dispatcher) Stats() DispatchStats {
	return DispatchStats{
		TotalItems:  atomic.LoadInt64(&d.totalItems),
		TotalFailed: atomic.LoadInt64(&d.totalFailed),
	}
}

// ActiveWorkers returns the number of in-flight prediction calls.
func (d *Dispatcher) ActiveWorkers() int64 {
	return atomic.LoadInt64(&d.activeWorkers)
}

func (d *Dispatcher) dispatchSequential(ctx context.Context, batchID, model string, features []models.FeatureVector) models.BatchResult {
	result := make(models.BatchResult, len(features))

	for i, fv := range features {
		result[i] = d.predictOne(ctx, batchID, model, i, fv)
	}

	return result
}

// dispatchParallel fans one unit of work per item out to a bounded pool.
// Each worker writes only the slot matching its own index, so the shared
// result buffer needs no lock; the group wait is the single join point.
func (d *Dispatcher) dispatchParallel(ctx context.Context, batchID, model string, features []models.FeatureVector) models.BatchResult {
	result := make(models.BatchResult, len(features))

	g := new(errgroup.Group)
	g.SetLimit(d.maxWorkers)

	for i, fv := range features {
		i, fv := i, fv
		g.Go(func() error {
			result[i] = d.predictOne(ctx, batchID, model, i, fv)
			return nil
		})
	}

	// Workers never return errors; outcomes carry per-item failures.
	_ = g.Wait()

	return result
}

func (d *Dispatcher) predictOne(ctx context.Context, batchID, model string, index int, features models.FeatureVector) models.PredictionOutcome {
	atomic.AddInt64(&d.activeWorkers, 1)
	defer atomic.AddInt64(&d.activeWorkers, -1)

	start := time.Now()
	payload, err := d.client.Predict(ctx, model, features, d.modelVersion)

	atomic.AddInt64(&d.totalItems, 1)

	var outcome models.PredictionOutcome
	if err != nil {
		atomic.AddInt64(&d.totalFailed, 1)
		slog.Debug("Prediction failed",
			"batch_id", batchID,
			"batch_index", index,
			"model", model,
			"error", err)
		outcome = models.Failure(index, err)
	} else {
		outcome = models.Success(index, payload.Prediction, payload.Probability, payload.LatencyMs, payload.CacheHit)
	}

	d.logOutcome(ctx, start, batchID, model, payload, outcome)
	return outcome
}

func (d *Dispatcher) logOutcome(ctx context.Context, start time.Time, batchID, model string, payload *client.PredictionPayload, outcome models.PredictionOutcome) {
	if d.repo == nil {
		return
	}

	status := "ok"
	reqID := ""
	if payload != nil {
		reqID = payload.ReqID
	}
	if !outcome.OK() {
		status = "error"
	}

	d.repo.Prediction().LogPrediction(ctx, &models.PredictionLog{
		Timestamp:   start,
		BatchID:     batchID,
		ReqID:       reqID,
		ModelName:   model,
		BatchIndex:  outcome.Index,
		Prediction:  toJSON(outcome.Prediction),
		Probability: outcome.Probability,
		LatencyMs:   outcome.LatencyMs,
		CacheHit:    outcome.CacheHit,
		Status:      status,
		Error:       outcome.Error,
	})
}

func toJSON(v interface{}) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
