package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
)

// PredictionClient provides a client interface for the prediction service
type PredictionClient interface {
	// Predict sends one feature vector for prediction
	Predict(ctx context.Context, model string, features []float64, modelVersion string) (*PredictionPayload, error)

	// HealthCheck probes model availability; false on any error
	HealthCheck(ctx context.Context, model string) bool

	// Lifecycle
	Close() error
}

// NATSPredictionClient implements PredictionClient using NATS request/reply
type NATSPredictionClient struct {
	conn          *nats.Conn
	clientID      string
	timeout       time.Duration
	healthTimeout time.Duration
}

// NewNATSClient creates a new NATS-based prediction client
func NewNATSClient(natsURL, clientID string) (*NATSPredictionClient, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	if clientID == "" {
		clientID = "prediction-client"
	}

	return &NATSPredictionClient{
		conn:          conn,
		clientID:      clientID,
		timeout:       30 * time.Second,
		healthTimeout: 2 * time.Second,
	}, nil
}

// Predict sends a single prediction request over the reply-subject pattern
func (c *NATSPredictionClient) Predict(ctx context.Context, model string, features []float64, modelVersion string) (*PredictionPayload, error) {
	topic := fmt.Sprintf("prediction.request.%s", model)

	// Generate ULID request ID
	reqID := ulid.Make().String()
	replySubject := fmt.Sprintf("prediction.response.%s.%s", c.clientID, reqID)

	request := PredictionRequest{
		ReqID:        reqID,
		ModelName:    model,
		Features:     features,
		ModelVersion: modelVersion,
		ReplyTo:      replySubject,
	}

	slog.Debug("Sending prediction request",
		"topic", topic,
		"req_id", reqID,
		"reply_subject", replySubject,
		"feature_count", len(features))

	// Marshal request
	requestBytes, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Subscribe to reply subject before publishing
	replyChan := make(chan *nats.Msg, 1)
	sub, err := c.conn.Subscribe(replySubject, func(msg *nats.Msg) {
		replyChan <- msg
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to reply: %w", err)
	}
	defer sub.Unsubscribe()

	// Publish request to topic
	if err := c.conn.Publish(topic, requestBytes); err != nil {
		return nil, fmt.Errorf("failed to publish request: %w", err)
	}

	// Wait for response with timeout
	select {
	case msg := <-replyChan:
		var payload PredictionPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}

		if payload.Error != "" {
			return nil, fmt.Errorf("prediction service error: %s", payload.Error)
		}

		return &payload, nil

	case <-time.After(c.timeout):
		return nil, fmt.Errorf("request timeout after %v", c.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// HealthCheck checks if a model is available, returning false on any error
func (c *NATSPredictionClient) HealthCheck(ctx context.Context, model string) bool {
	healthTopic := fmt.Sprintf("models.%s.health", model)

	reqID := ulid.Make().String()
	replySubject := fmt.Sprintf("health.response.%s.%s", c.clientID, reqID)

	healthReq := map[string]interface{}{
		"req_id":   reqID,
		"reply_to": replySubject,
	}

	requestBytes, err := json.Marshal(healthReq)
	if err != nil {
		return false
	}

	replyChan := make(chan *nats.Msg, 1)
	sub, err := c.conn.Subscribe(replySubject, func(msg *nats.Msg) {
		replyChan <- msg
	})
	if err != nil {
		return false
	}
	defer sub.Unsubscribe()

	if err := c.conn.Publish(healthTopic, requestBytes); err != nil {
		return false
	}

	select {
	case msg := <-replyChan:
		var health HealthStatus
		if err := json.Unmarshal(msg.Data, &health); err != nil {
			return false
		}
		return health.Status == "online" || health.Status == "healthy"

	case <-time.After(c.healthTimeout):
		return false
	case <-ctx.Done():
		return false
	}
}

// Close closes the NATS connection
func (c *NATSPredictionClient) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}

// SetTimeout configures the per-request timeout
func (c *NATSPredictionClient) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// SetHealthTimeout configures the health probe timeout
func (c *NATSPredictionClient) SetHealthTimeout(timeout time.Duration) {
	c.healthTimeout = timeout
}
