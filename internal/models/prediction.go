package models

// FeatureVector is an ordered, fixed-length sequence of numeric feature values.
type FeatureVector []float64

// PredictionOutcome is the per-item result of one prediction attempt.
// A non-empty Error marks the outcome as a failure; all prediction
// fields are zero in that case.
type PredictionOutcome struct {
	Index       int     `json:"batch_index"`
	Prediction  any     `json:"prediction,omitempty"`
	Probability float64 `json:"probability,omitempty"`
	LatencyMs   float64 `json:"latency_ms,omitempty"`
	CacheHit    bool    `json:"cache_hit,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// OK reports whether the outcome is a success.
func (o PredictionOutcome) OK() bool {
	return o.Error == ""
}

// Success builds a successful outcome for the item at index.
func Success(index int, prediction any, probability, latencyMs float64, cacheHit bool) PredictionOutcome {
	return PredictionOutcome{
		Index:       index,
		Prediction:  prediction,
		Probability: probability,
		LatencyMs:   latencyMs,
		CacheHit:    cacheHit,
	}
}

// Failure builds a failed outcome for the item at index.
func Failure(index int, err error) PredictionOutcome {
	return PredictionOutcome{
		Index: index,
		Error: err.Error(),
	}
}

// BatchResult holds one outcome per input item, ordered by batch index.
type BatchResult []PredictionOutcome

// SuccessCount returns the number of successful outcomes.
func (r BatchResult) SuccessCount() int {
	n := 0
	for _, o := range r {
		if o.OK() {
			n++
		}
	}
	return n
}
