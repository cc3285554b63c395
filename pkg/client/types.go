package client

import "time"

// PredictionRequest represents a request to the prediction service
type PredictionRequest struct {
	ReqID        string    `json:"req_id"`
	ModelName    string    `json:"model_name"`
	Features     []float64 `json:"features"`
	ModelVersion string    `json:"model_version,omitempty"`
	ReplyTo      string    `json:"reply_to,omitempty"`
}

// PredictionPayload represents a response from the prediction service
type PredictionPayload struct {
	ReqID        string  `json:"req_id"`
	Prediction   any     `json:"prediction"`
	Probability  float64 `json:"probability,omitempty"`
	ModelName    string  `json:"model_name"`
	ModelVersion string  `json:"model_version,omitempty"`
	LatencyMs    float64 `json:"latency_ms"`
	CacheHit     bool    `json:"cache_hit"`
	Error        string  `json:"error,omitempty"`
}

// HealthStatus represents model health information
type HealthStatus struct {
	ModelName    string    `json:"model_name"`
	Status       string    `json:"status"`
	LastActivity time.Time `json:"last_activity"`
	Version      string    `json:"version"`
}
