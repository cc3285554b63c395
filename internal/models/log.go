package models

import "time"

// PredictionLog represents a logged per-item prediction
type PredictionLog struct {
	Timestamp   time.Time `json:"ts"`
	BatchID     string    `json:"batch_id"`
	ReqID       string    `json:"req_id"`
	ModelName   string    `json:"model_name"`
	BatchIndex  int       `json:"batch_index"`
	Prediction  string    `json:"prediction"`
	Probability float64   `json:"probability"`
	LatencyMs   float64   `json:"latency_ms"`
	CacheHit    bool      `json:"cache_hit"`
	Status      string    `json:"status"`
	Error       string    `json:"error"`
}
