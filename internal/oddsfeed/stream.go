package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gold-envelope/internal/metrics"
)

// OddsUpdate represents a single push message from the odds stream
type OddsUpdate struct {
	CategoryID     string   `json:"categoryId"`
	NomineeID      string   `json:"nomineeId"`
	Name           string   `json:"name"`
	Film           *string  `json:"film"`
	WinProbability *float64 `json:"winProbability"`
	Timestamp      int64    `json:"timestamp"`
}

// UpdateHandler is called for every odds update received from the stream
type UpdateHandler func(update OddsUpdate) error

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// StreamClient handles the WebSocket connection to the odds push stream
type StreamClient struct {
	streamURL       string
	apiKey          string
	reconnectConfig ReconnectConfig
	logger          *logrus.Logger

	mu              sync.RWMutex
	conn            *websocket.Conn
	isConnected     bool
	handlers        []UpdateHandler
	lastMessageTime time.Time
}

// NewStreamClient creates a new stream client
func NewStreamClient(streamURL, apiKey string, logger *logrus.Logger) *StreamClient {
	return &StreamClient{
		streamURL:       streamURL,
		apiKey:          apiKey,
		reconnectConfig: DefaultReconnectConfig(),
		handlers:        make([]UpdateHandler, 0),
		logger:          logger,
	}
}

// AddHandler registers an update handler
func (s *StreamClient) AddHandler(handler UpdateHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Connect establishes the WebSocket connection
func (s *StreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	s.logger.WithField("url", s.streamURL).Info("Connecting to odds stream")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	header := map[string][]string{
		"Authorization": {"Bearer " + s.apiKey},
	}

	conn, _, err := dialer.DialContext(ctx, s.streamURL, header)
	if err != nil {
		return fmt.Errorf("failed to connect to odds stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()
	metrics.UpdateStreamConnected(true)

	go s.readMessages()

	return nil
}

// Run keeps the stream connected until the context is cancelled, reconnecting
// with exponential backoff after drops.
func (s *StreamClient) Run(ctx context.Context) error {
	backoff := s.reconnectConfig.InitialBackoff
	retries := 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if !s.IsConnected() {
			if err := s.Connect(ctx); err != nil {
				retries++
				if s.reconnectConfig.MaxRetries > 0 && retries > s.reconnectConfig.MaxRetries {
					return fmt.Errorf("odds stream reconnect attempts exhausted: %w", err)
				}

				s.logger.WithError(err).WithFields(logrus.Fields{
					"retry":   retries,
					"backoff": backoff.String(),
				}).Warn("Odds stream reconnect failed")

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(backoff):
				}

				backoff = time.Duration(float64(backoff) * s.reconnectConfig.BackoffMultiplier)
				if backoff > s.reconnectConfig.MaxBackoff {
					backoff = s.reconnectConfig.MaxBackoff
				}
				continue
			}

			retries = 0
			backoff = s.reconnectConfig.InitialBackoff
		}

		select {
		case <-ctx.Done():
			s.Close()
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}
}

// readMessages reads updates from the WebSocket connection
func (s *StreamClient) readMessages() {
	defer func() {
		s.mu.Lock()
		s.isConnected = false
		if s.conn != nil {
			s.conn.Close()
		}
		s.mu.Unlock()
		metrics.UpdateStreamConnected(false)
	}()

	for {
		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn == nil {
			return
		}

		var raw json.RawMessage
		if err := conn.ReadJSON(&raw); err != nil {
			s.logger.WithError(err).Warn("Odds stream read error")
			return
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		var update OddsUpdate
		if err := json.Unmarshal(raw, &update); err != nil {
			s.logger.WithError(err).Warn("Failed to parse odds stream message")
			continue
		}
		if update.CategoryID == "" || update.NomineeID == "" {
			continue
		}

		s.mu.RLock()
		handlers := s.handlers
		s.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(update); err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"category_id": update.CategoryID,
					"nominee_id":  update.NomineeID,
				}).Error("Odds update handler failed")
			}
		}
	}
}

// IsConnected returns whether the stream is connected
func (s *StreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *StreamClient) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Close closes the stream connection
func (s *StreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	s.isConnected = false
	return s.conn.Close()
}
