package models

import "time"

// BenchmarkRecord captures the measurements for one tested batch size.
type BenchmarkRecord struct {
	BatchSize    int           `json:"batch_size"`
	TotalTime    time.Duration `json:"total_time"`
	Throughput   float64       `json:"throughput"`
	AvgLatencyMs float64       `json:"avg_latency_ms"`
	Successful   int           `json:"successful"`
}
