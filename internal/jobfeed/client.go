// Package jobfeed connects the engine to the external job layer over
// WebSocket: runs to execute arrive as JSON jobs, receipts go back on the
// same connection.
package jobfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"prop-amm-lab/internal/domain"
)

// Job is one run request from the job layer.
type Job struct {
	JobID       string   `json:"job_id"`
	Simulations int      `json:"simulations"`
	Steps       int      `json:"steps"`
	EpochLen    int      `json:"epoch_len"`
	SeedStart   uint64   `json:"seed_start"`
	Strategies  []string `json:"strategies"` // builtin names or artifact paths
}

// Result reports one finished or failed run back to the job layer.
type Result struct {
	JobID   string             `json:"job_id"`
	Error   string             `json:"error,omitempty"`
	Receipt *domain.RunReceipt `json:"receipt,omitempty"`
}

// Config configures client behavior.
type Config struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultConfig returns default client configuration.
func DefaultConfig() Config {
	return Config{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Client consumes jobs from and publishes results to the job layer.
type Client struct {
	endpoint string
	config   Config
	log      *zap.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	jobs chan Job
	done chan struct{}
	wg   sync.WaitGroup
}

// NewClient connects to the job feed endpoint and starts consuming.
func NewClient(ctx context.Context, endpoint string, config *Config, logger *zap.Logger) (*Client, error) {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		endpoint: endpoint,
		config:   cfg,
		log:      logger,
		jobs:     make(chan Job, 16),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

// Jobs returns the stream of incoming run requests. The channel closes when
// the client shuts down.
func (c *Client) Jobs() <-chan Job {
	return c.jobs
}

// SubmitResult publishes a run outcome back to the job layer.
func (c *Client) SubmitResult(res Result) error {
	if c.closed.Load() {
		return fmt.Errorf("jobfeed client closed")
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("jobfeed not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// Close shuts down the client and closes the jobs channel.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.jobs)
	return nil
}

func (c *Client) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			c.log.Warn("jobfeed read failed, reconnecting", zap.Error(err))
			if !c.reconnect() {
				return
			}
			continue
		}

		var job Job
		if err := json.Unmarshal(data, &job); err != nil {
			c.log.Warn("jobfeed skipping malformed job", zap.Error(err))
			continue
		}
		if job.JobID == "" {
			c.log.Warn("jobfeed skipping job without id")
			continue
		}

		select {
		case c.jobs <- job:
		case <-c.done:
			return
		}
	}
}

// reconnect retries with exponential backoff until connected or closed.
func (c *Client) reconnect() bool {
	delay := c.config.ReconnectDelay
	for {
		select {
		case <-c.done:
			return false
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := c.connect(ctx)
		cancel()
		if err == nil {
			c.log.Info("jobfeed reconnected")
			return true
		}

		c.log.Warn("jobfeed reconnect failed", zap.Error(err), zap.Duration("next_delay", delay))
		delay *= 2
		if delay > c.config.MaxReconnectDelay {
			delay = c.config.MaxReconnectDelay
		}
	}
}

func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					c.log.Debug("jobfeed ping failed", zap.Error(err))
				}
			}
			c.connMu.Unlock()
		}
	}
}
