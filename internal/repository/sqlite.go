package repository

import (
	"context"
	"time"

	"github.com/aigoflow/batch-predictor/internal/models"
	"github.com/aigoflow/batch-predictor/internal/store"
)

// SQLiteRepository implements Repository interface using SQLite
type SQLiteRepository struct {
	db             *store.DB
	predictionRepo PredictionRepositoryInterface
	benchmarkRepo  BenchmarkRepositoryInterface
	eventRepo      EventRepositoryInterface
}

func NewSQLiteRepository(db *store.DB) Repository {
	return &SQLiteRepository{
		db:             db,
		predictionRepo: &SQLitePredictionRepository{db: db},
		benchmarkRepo:  &SQLiteBenchmarkRepository{db: db},
		eventRepo:      &SQLiteEventRepository{db: db},
	}
}

func (r *SQLiteRepository) Prediction() PredictionRepositoryInterface {
	return r.predictionRepo
}

func (r *SQLiteRepository) Benchmark() BenchmarkRepositoryInterface {
	return r.benchmarkRepo
}

func (r *SQLiteRepository) Event() EventRepositoryInterface {
	return r.eventRepo
}

// SQLitePredictionRepository handles per-item prediction logging
type SQLitePredictionRepository struct {
	db *store.DB
}

func (r *SQLitePredictionRepository) LogPrediction(ctx context.Context, log *models.PredictionLog) error {
	r.db.Prediction(
		log.Timestamp,
		log.BatchID,
		log.ReqID,
		log.ModelName,
		log.BatchIndex,
		log.Prediction,
		log.Probability,
		log.LatencyMs,
		log.CacheHit,
		log.Status,
		log.Error,
	)
	return nil
}

func (r *SQLitePredictionRepository) GetPredictionLogs(ctx context.Context, limit int) ([]*models.PredictionLog, error) {
	rows, err := r.db.Query(`SELECT ts,batch_id,req_id,model_name,batch_index,prediction,probability,latency_ms,cache_hit,status,error FROM predictions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.PredictionLog
	for rows.Next() {
		var log models.PredictionLog
		var tsFloat float64
		var hit int

		if err := rows.Scan(
			&tsFloat, &log.BatchID, &log.ReqID, &log.ModelName, &log.BatchIndex,
			&log.Prediction, &log.Probability, &log.LatencyMs, &hit,
			&log.Status, &log.Error,
		); err == nil {
			log.Timestamp = time.Unix(0, int64(tsFloat*1e9))
			log.CacheHit = hit != 0
			logs = append(logs, &log)
		}
	}

	return logs, nil
}

// SQLiteBenchmarkRepository handles benchmark record persistence
type SQLiteBenchmarkRepository struct {
	db *store.DB
}

func (r *SQLiteBenchmarkRepository) SaveRecord(ctx context.Context, modelName string, record *models.BenchmarkRecord) error {
	r.db.Benchmark(
		time.Now(),
		modelName,
		record.BatchSize,
		record.TotalTime,
		record.Throughput,
		record.AvgLatencyMs,
		record.Successful,
	)
	return nil
}

func (r *SQLiteBenchmarkRepository) GetRecords(ctx context.Context, modelName string, limit int) ([]*models.BenchmarkRecord, error) {
	rows, err := r.db.Query(`SELECT batch_size,total_time_ms,throughput,avg_latency_ms,successful FROM benchmarks WHERE model_name = ? ORDER BY id DESC LIMIT ?`, modelName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.BenchmarkRecord
	for rows.Next() {
		var rec models.BenchmarkRecord
		var totalMs float64

		if err := rows.Scan(&rec.BatchSize, &totalMs, &rec.Throughput, &rec.AvgLatencyMs, &rec.Successful); err == nil {
			rec.TotalTime = time.Duration(totalMs * float64(time.Millisecond))
			records = append(records, &rec)
		}
	}

	return records, nil
}

// SQLiteEventRepository handles event logging
type SQLiteEventRepository struct {
	db *store.DB
}

func (r *SQLiteEventRepository) LogEvent(ctx context.Context, level, code, msg string, meta map[string]interface{}) error {
	r.db.Event(level, code, msg, meta)
	return nil
}
