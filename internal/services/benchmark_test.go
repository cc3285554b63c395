package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigoflow/batch-predictor/internal/models"
	"github.com/aigoflow/batch-predictor/pkg/client"
)

var benchSample = models.FeatureVector{5.1, 3.5, 1.4, 0.2}

func TestBenchmarkRecordsPerSize(t *testing.T) {
	fake := &fakeClient{delay: time.Millisecond}
	bench := NewBenchmarkService(newTestDispatcher(fake, 10), nil)

	sizes := []int{1, 10, 25}
	records, err := bench.Benchmark(context.Background(), "iris_classifier", benchSample, sizes)
	require.NoError(t, err)
	require.Len(t, records, len(sizes))

	for _, size := range sizes {
		record, ok := records[size]
		require.True(t, ok, "missing record for batch size %d", size)
		assert.Equal(t, size, record.BatchSize)
		assert.Greater(t, record.Throughput, 0.0)
		assert.Greater(t, record.AvgLatencyMs, 0.0)
		assert.Greater(t, record.TotalTime, time.Duration(0))
		assert.Equal(t, size, record.Successful)
	}
}

func TestBenchmarkCountsOnlySuccesses(t *testing.T) {
	fake := &fakeClient{
		predictFn: func(model string, features []float64) (*client.PredictionPayload, error) {
			return nil, fmt.Errorf("model not found")
		},
	}
	bench := NewBenchmarkService(newTestDispatcher(fake, 10), nil)

	records, err := bench.Benchmark(context.Background(), "missing_model", benchSample, []int{20})
	require.NoError(t, err)

	record := records[20]
	require.NotNil(t, record)
	assert.Equal(t, 0, record.Successful)
	assert.LessOrEqual(t, record.Successful, record.BatchSize)
	assert.Greater(t, record.Throughput, 0.0)
}

func TestBenchmarkRejectsNonPositiveSize(t *testing.T) {
	fake := &fakeClient{}
	bench := NewBenchmarkService(newTestDispatcher(fake, 10), nil)

	_, err := bench.Benchmark(context.Background(), "iris_classifier", benchSample, []int{10, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch size")
	assert.Equal(t, int64(0), fake.callCount())
}

func TestBenchmarkRejectsEmptySample(t *testing.T) {
	fake := &fakeClient{}
	bench := NewBenchmarkService(newTestDispatcher(fake, 10), nil)

	_, err := bench.Benchmark(context.Background(), "iris_classifier", models.FeatureVector{}, []int{1})
	require.Error(t, err)
	assert.Equal(t, int64(0), fake.callCount())
}
