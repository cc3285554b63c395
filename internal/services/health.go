package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/aigoflow/batch-predictor/pkg/client"
)

// HealthService probes prediction service availability before a run.
type HealthService struct {
	client client.PredictionClient
}

func NewHealthService(predictionClient client.PredictionClient) *HealthService {
	return &HealthService{client: predictionClient}
}

// Check performs a single health probe for the model.
func (h *HealthService) Check(ctx context.Context, model string) bool {
	return h.client.HealthCheck(ctx, model)
}

// WaitUntilHealthy probes the model up to attempts times, waiting
// interval between probes. Returns true as soon as a probe succeeds.
func (h *HealthService) WaitUntilHealthy(ctx context.Context, model string, attempts int, interval time.Duration) bool {
	for i := 0; i < attempts; i++ {
		if h.client.HealthCheck(ctx, model) {
			return true
		}

		slog.Warn("Prediction service not ready",
			"model", model,
			"attempt", i+1,
			"max_attempts", attempts)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
	return false
}
