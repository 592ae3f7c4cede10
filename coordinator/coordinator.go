package coordinator

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Config holds configuration for the Coordinator.
type Config struct {
	// WhenURL is the WebSocket URL to connect to (e.g., "ws://localhost:8080/v1/coordination")
	WhenURL string

	// ServiceName is the name of this service (e.g., "amsync")
	ServiceName string

	// Reconnect settings
	ReconnectInitialDelay  time.Duration
	ReconnectMaxDelay      time.Duration
	ReconnectBackoffFactor float64
	ReconnectMaxAttempts   int // 0 = infinite

	// PingInterval is how often to send pings
	PingInterval time.Duration

	// Logger for coordinator messages
	Logger *logrus.Entry
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReconnectInitialDelay:  1 * time.Second,
		ReconnectMaxDelay:      30 * time.Second,
		ReconnectBackoffFactor: 2.0,
		ReconnectMaxAttempts:   0, // infinite
		PingInterval:           30 * time.Second,
	}
}

// Coordinator reports one pipeline run's lifecycle to when-v3 over a
// reconnecting WebSocket connection. It has no incoming-command authority:
// the only inbound messages it acts on are when-v3's registration
// acknowledgement, which it records, and its keep-alive ping, which it
// answers with a pong.
type Coordinator struct {
	config Config
	logger *logrus.Entry

	conn      *websocket.Conn
	connMu    sync.RWMutex
	connected bool

	// Outgoing messages
	sendChan chan *WSMessage

	// Lifecycle
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	registered bool
	runID      string

	// Callbacks
	onConnected    func()
	onDisconnected func(error)
	onRegistered   func()
}

// New creates a new Coordinator.
func New(config Config) *Coordinator {
	if config.Logger == nil {
		config.Logger = logrus.NewEntry(logrus.StandardLogger())
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Coordinator{
		config:   config,
		logger:   config.Logger.WithField("component", "coordinator"),
		sendChan: make(chan *WSMessage, 100),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnConnected sets a callback for when connection is established.
func (c *Coordinator) OnConnected(fn func()) {
	c.onConnected = fn
}

// OnDisconnected sets a callback for when connection is lost.
func (c *Coordinator) OnDisconnected(fn func(error)) {
	c.onDisconnected = fn
}

// OnRegistered sets a callback for when registration completes.
func (c *Coordinator) OnRegistered(fn func()) {
	c.onRegistered = fn
}

// Connect records runID and starts the background connection loop, which
// dials and reconnects on its own; it returns without waiting for a
// connection.
func (c *Coordinator) Connect(runID string) error {
	c.runID = runID
	c.wg.Add(1)
	go c.connectionLoop()
	return nil
}

// Close shuts down the coordinator.
func (c *Coordinator) Close() error {
	c.cancel()
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.connMu.Unlock()
	c.wg.Wait()
	return nil
}

// IsConnected returns whether the WebSocket is connected.
func (c *Coordinator) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected
}

// connectionLoop manages connection and reconnection.
func (c *Coordinator) connectionLoop() {
	defer c.wg.Done()

	delay := c.config.ReconnectInitialDelay
	attempts := 0

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		err := c.connect()
		if err != nil {
			attempts++
			c.logger.WithError(err).WithField("attempt", attempts).Warn("connection to when-v3 failed")

			if c.config.ReconnectMaxAttempts > 0 && attempts >= c.config.ReconnectMaxAttempts {
				c.logger.Error("max reconnection attempts reached")
				return
			}

			select {
			case <-c.ctx.Done():
				return
			case <-time.After(delay):
			}

			delay = time.Duration(float64(delay) * c.config.ReconnectBackoffFactor)
			if delay > c.config.ReconnectMaxDelay {
				delay = c.config.ReconnectMaxDelay
			}
			continue
		}

		delay = c.config.ReconnectInitialDelay
		attempts = 0

		err = c.runConnection()
		if err != nil {
			c.logger.WithError(err).Warn("connection to when-v3 lost")
			if c.onDisconnected != nil {
				c.onDisconnected(err)
			}
		}

		c.connMu.Lock()
		c.connected = false
		c.registered = false
		c.connMu.Unlock()
	}
}

// connect establishes the WebSocket connection.
func (c *Coordinator) connect() error {
	c.logger.WithField("url", c.config.WhenURL).Info("connecting to when-v3")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	headers := http.Header{}
	headers.Set("X-Service-Name", c.config.ServiceName)
	headers.Set("X-Run-ID", c.runID)

	conn, _, err := dialer.DialContext(c.ctx, c.config.WhenURL, headers)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connected = true
	c.connMu.Unlock()

	c.logger.Info("connected to when-v3")
	if c.onConnected != nil {
		c.onConnected()
	}

	if err := c.sendRegistration(); err != nil {
		conn.Close()
		return fmt.Errorf("registration failed: %w", err)
	}

	return nil
}

// sendRegistration sends the register message.
func (c *Coordinator) sendRegistration() error {
	msg := NewMessageWithRun(MessageTypeRegister, c.runID)
	msg.SetPayload(RegisterPayload{
		ServiceName:  c.config.ServiceName,
		RunID:        c.runID,
		Capabilities: []string{"am-graph-sync"},
	})

	return c.sendMessage(msg)
}

// runConnection handles the connection lifecycle.
func (c *Coordinator) runConnection() error {
	senderDone := make(chan struct{})
	go func() {
		defer close(senderDone)
		c.senderLoop()
	}()

	pingDone := make(chan struct{})
	go func() {
		defer close(pingDone)
		c.pingLoop()
	}()

	err := c.readLoop()

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.connMu.Unlock()

	<-senderDone
	<-pingDone

	return err
}

// readLoop reads and dispatches incoming messages. The only inbound message
// types this pipeline acts on are registered and ping; anything else is
// logged and ignored since when-v3 has no control authority here.
func (c *Coordinator) readLoop() error {
	for {
		select {
		case <-c.ctx.Done():
			return c.ctx.Err()
		default:
		}

		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()

		if conn == nil {
			return fmt.Errorf("connection closed")
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		msg, err := ParseMessage(data)
		if err != nil {
			c.logger.WithError(err).Warn("failed to parse message from when-v3")
			continue
		}

		c.handleMessage(msg)
	}
}

// senderLoop sends outgoing messages.
func (c *Coordinator) senderLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case msg, ok := <-c.sendChan:
			if !ok {
				return
			}
			if err := c.sendMessage(msg); err != nil {
				c.logger.WithError(err).Warn("failed to send message to when-v3")
			}
		}
	}
}

// pingLoop sends periodic pings.
func (c *Coordinator) pingLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()

			if conn == nil {
				return
			}

			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				c.logger.WithError(err).Debug("ping failed")
			}
		}
	}
}

// sendMessage sends a message immediately.
func (c *Coordinator) sendMessage(msg *WSMessage) error {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	data, err := msg.JSON()
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	return conn.WriteMessage(websocket.TextMessage, data)
}

// Send queues a message for sending.
func (c *Coordinator) Send(msg *WSMessage) {
	select {
	case c.sendChan <- msg:
	default:
		c.logger.Warn("send channel full, dropping message")
	}
}

// handleMessage dispatches a message from when-v3.
func (c *Coordinator) handleMessage(msg *WSMessage) {
	switch msg.Type {
	case MessageTypePing:
		pong := NewMessage(MessageTypePong)
		pong.ID = msg.ID
		if err := c.sendMessage(pong); err != nil {
			c.logger.WithError(err).Warn("failed to send pong")
		}
	case MessageTypeRegistered:
		payload, err := msg.GetRegisteredPayload()
		if err != nil {
			c.logger.WithError(err).Warn("failed to decode registered payload")
			return
		}
		c.connMu.Lock()
		c.registered = true
		c.connMu.Unlock()
		c.logger.WithField("service_id", payload.ServiceID).Info("registered with when-v3")
		if c.onRegistered != nil {
			c.onRegistered()
		}
	default:
		c.logger.WithField("type", msg.Type).Debug("ignoring message from when-v3")
	}
}

// SendStepStarted announces that step has begun.
func (c *Coordinator) SendStepStarted(step string) {
	msg := NewMessageWithRun(MessageTypeStepStarted, c.runID)
	msg.SetPayload(StepPayload{RunID: c.runID, Step: step})
	c.Send(msg)
}

// SendStepCompleted announces that step finished and its results are
// durably recorded, acting as a resumability checkpoint mirrored outward.
func (c *Coordinator) SendStepCompleted(step, reason string) {
	msg := NewMessageWithRun(MessageTypeStepCompleted, c.runID)
	msg.SetPayload(StepPayload{RunID: c.runID, Step: step, Reason: reason})
	c.Send(msg)
}

// SendProgress notifies when-v3 of progress within the current step.
func (c *Coordinator) SendProgress(step string, percent float64, message string) {
	msg := NewMessageWithRun(MessageTypeProgress, c.runID)
	msg.SetPayload(ProgressPayload{RunID: c.runID, Step: step, Percent: percent, Message: message})
	c.Send(msg)
}

// SendRunCompleted marks the run as finished successfully.
func (c *Coordinator) SendRunCompleted() {
	c.Send(NewMessageWithRun(MessageTypeRunCompleted, c.runID))
}

// SendRunFailed notifies when-v3 that the run failed at step.
func (c *Coordinator) SendRunFailed(step, errorMsg string) {
	msg := NewMessageWithRun(MessageTypeRunFailed, c.runID)
	msg.SetPayload(RunFailedPayload{RunID: c.runID, Step: step, Error: errorMsg})
	c.Send(msg)
}

// LogEntry is one forwarded log line, sent to when-v3 by LogrusHook so
// pipeline run logs are visible centrally alongside the step/progress
// stream.
type LogEntry struct {
	Timestamp     time.Time              `json:"timestamp"`
	Level         string                 `json:"level"`
	Message       string                 `json:"message"`
	TraceID       string                 `json:"trace_id,omitempty"`
	SpanID        string                 `json:"span_id,omitempty"`
	RunID         string                 `json:"run_id,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	SourceFile    string                 `json:"source_file,omitempty"`
	SourceLine    int                    `json:"source_line,omitempty"`
	Fields        map[string]interface{} `json:"fields,omitempty"`
}

// SendLog forwards a single log entry.
func (c *Coordinator) SendLog(entry LogEntry) {
	msg := NewMessage(MessageTypeLog)
	msg.SetPayload(entry)
	c.Send(msg)
}

// generateMessageID produces a short random correlation ID for a message.
func generateMessageID() string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 12)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return fmt.Sprintf("msg-%s-%d", string(b), time.Now().UnixNano()%1000000)
}
