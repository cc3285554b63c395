package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheckPassthrough(t *testing.T) {
	healthy := false
	fake := &fakeClient{healthFn: func() bool { return healthy }}
	h := NewHealthService(fake)

	assert.False(t, h.Check(context.Background(), "iris_classifier"))
	healthy = true
	assert.True(t, h.Check(context.Background(), "iris_classifier"))
}

func TestWaitUntilHealthyRetries(t *testing.T) {
	probes := 0
	fake := &fakeClient{healthFn: func() bool {
		probes++
		return probes >= 3
	}}
	h := NewHealthService(fake)

	ok := h.WaitUntilHealthy(context.Background(), "iris_classifier", 5, time.Millisecond)
	assert.True(t, ok)
	assert.Equal(t, 3, probes)
}

func TestWaitUntilHealthyGivesUp(t *testing.T) {
	probes := 0
	fake := &fakeClient{healthFn: func() bool {
		probes++
		return false
	}}
	h := NewHealthService(fake)

	ok := h.WaitUntilHealthy(context.Background(), "iris_classifier", 3, time.Millisecond)
	assert.False(t, ok)
	assert.Equal(t, 3, probes)
}
