package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aigoflow/batch-predictor/internal/models"
)

// WindowHandler consumes the result of one flushed window.
type WindowHandler func(result models.BatchResult)

// StreamingService converts an unbounded sequence of feature vectors into
// fixed-size windows and dispatches each window as one parallel batch.
type StreamingService struct {
	dispatcher *Dispatcher
}

func NewStreamingService(dispatcher *Dispatcher) *StreamingService {
	return &StreamingService{dispatcher: dispatcher}
}

// Stream accumulates feature vectors from source into windows of
// windowSize items, dispatching each full window and a final partial
// window in source order. The handler, when non-nil, is invoked exactly
// once per flushed window. Returns the total number of items processed.
func (s *StreamingService) Stream(ctx context.Context, model string, source <-chan models.FeatureVector, windowSize int, handler WindowHandler) (int, error) {
	if windowSize < 1 {
		return 0, fmt.Errorf("window size must be positive, got %d", windowSize)
	}

	window := make([]models.FeatureVector, 0, windowSize)
	windowCount := 0
	total := 0

	flush := func() error {
		result, err := s.dispatcher.Dispatch(ctx, model, window, true)
		if err != nil {
			return fmt.Errorf("failed to dispatch window %d: %w", windowCount+1, err)
		}

		if handler != nil {
			handler(result)
		}

		total += len(window)
		windowCount++
		slog.Info("Processed window",
			"model", model,
			"window", windowCount,
			"window_size", len(window),
			"total_processed", total)

		window = window[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case fv, ok := <-source:
			if !ok {
				// Source exhausted; flush the final partial window.
				if len(window) > 0 {
					if err := flush(); err != nil {
						return total, err
					}
				}
				return total, nil
			}

			window = append(window, fv)
			if len(window) == windowSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}
