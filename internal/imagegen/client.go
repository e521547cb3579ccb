package imagegen

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"codeberg.org/printableperks/server/internal/logger"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// rate limiter for inference requests (2 requests/second with burst capacity of 5)
var inferenceRateLimiter = rate.NewLimiter(2, 5)

// Client talks to the Runware image inference API over a single WebSocket
// connection. Tasks are correlated by UUID; the connection is dialed
// lazily and re-authenticated with the session UUID after a drop.
type Client struct {
	endpoint string
	apiKey   string

	mu            sync.Mutex // guards conn, sessionUUID, authenticated
	conn          *websocket.Conn
	sessionUUID   string
	authenticated bool

	pendingMu sync.Mutex
	pending   map[string]chan taskResult
}

// creates a new Runware client; the connection is established on first use
func NewClient(apiKey string) *Client {
	return &Client{
		endpoint: defaultEndpoint,
		apiKey:   apiKey,
		pending:  make(map[string]chan taskResult),
	}
}

// runs one inference task and waits for the finished image
func (c *Client) GenerateImage(ctx context.Context, params GenerateParams) (*GeneratedImage, error) {
	if err := inferenceRateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	if err := c.ensureConnected(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to inference service: %w", err)
	}

	taskUUID, err := newTaskUUID()
	if err != nil {
		return nil, fmt.Errorf("failed to create task id: %w", err)
	}

	results := make(chan taskResult, 1)

	c.pendingMu.Lock()
	c.pending[taskUUID] = results
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, taskUUID)
		c.pendingMu.Unlock()
	}()

	message := []task{{
		TaskType:       "imageInference",
		TaskUUID:       taskUUID,
		PositivePrompt: enhancePrompt(params.PositivePrompt, params.AgeGroup, params.Model),
		Model:          orDefault(params.Model, "runware:100@1"),
		Width:          orDefaultInt(params.Width, 1024),
		Height:         orDefaultInt(params.Height, 1024),
		NumberResults:  1,
		OutputFormat:   orDefault(params.OutputFormat, "WEBP"),
		Steps:          4,
		CFGScale:       orDefaultFloat(params.CFGScale, 1),
		Scheduler:      orDefault(params.Scheduler, "FlowMatchEulerDiscreteScheduler"),
		Strength:       orDefaultFloat(params.Strength, 0.8),
		Lora:           []string{},
	}}

	if err := c.send(message); err != nil {
		return nil, fmt.Errorf("failed to send inference task: %w", err)
	}

	timeout := time.NewTimer(defaultTaskTimeout)
	defer timeout.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout.C:
		return nil, fmt.Errorf("inference task timed out")
	case result := <-results:
		if result.err != nil {
			return nil, result.err
		}

		return &GeneratedImage{
			ImageURL:       result.item.ImageURL,
			PositivePrompt: result.item.PositivePrompt,
			Seed:           result.item.Seed,
			NSFWContent:    result.item.NSFWContent,
		}, nil
	}
}

// closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	c.authenticated = false

	return err
}

// dials and authenticates if there is no live connection
func (c *Client) ensureConnected(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && c.authenticated {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", c.endpoint, err)
	}

	c.conn = conn
	c.authenticated = false

	authDone := make(chan error, 1)

	go c.readPump(conn, authDone)

	// re-supplying the session UUID resumes the previous session after a drop
	auth := []task{{
		TaskType:              "authentication",
		APIKey:                c.apiKey,
		ConnectionSessionUUID: c.sessionUUID,
	}}

	if err := conn.WriteJSON(auth); err != nil {
		conn.Close() //nolint:errcheck,gosec // best-effort cleanup on auth failure
		c.conn = nil
		return fmt.Errorf("failed to send authentication: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-authDone:
		if err != nil {
			conn.Close() //nolint:errcheck,gosec // best-effort cleanup on auth failure
			c.conn = nil
			return err
		}

		c.authenticated = true
		return nil
	}
}

// reads responses and dispatches them to waiting tasks until the
// connection drops
func (c *Client) readPump(conn *websocket.Conn, authDone chan<- error) {
	authPending := true

	for {
		var envelope responseEnvelope

		if err := conn.ReadJSON(&envelope); err != nil {
			c.handleDisconnect(conn, err)

			if authPending {
				authDone <- fmt.Errorf("connection closed during authentication: %w", err)
			}

			return
		}

		if envelope.ErrorMessage != "" && len(envelope.Errors) == 0 && len(envelope.Data) == 0 {
			logger.Warn("inference service error", "message", envelope.ErrorMessage)
			continue
		}

		for _, respErr := range envelope.Errors {
			err := fmt.Errorf("inference failed: %s", respErr.Message)

			if respErr.TaskUUID == "" && authPending {
				authPending = false
				authDone <- err
				continue
			}

			c.deliver(respErr.TaskUUID, taskResult{err: err})
		}

		for _, item := range envelope.Data {
			if item.TaskType == "authentication" {
				c.mu.Lock()
				c.sessionUUID = item.ConnectionSessionUUID
				c.mu.Unlock()

				if authPending {
					authPending = false
					authDone <- nil
				}

				continue
			}

			c.deliver(item.TaskUUID, taskResult{item: item})
		}
	}
}

// hands a result to the goroutine waiting on the task, if any
func (c *Client) deliver(taskUUID string, result taskResult) {
	c.pendingMu.Lock()
	results, exists := c.pending[taskUUID]
	c.pendingMu.Unlock()

	if !exists {
		logger.Debug("dropping response for unknown task", "task_uuid", taskUUID)
		return
	}

	select {
	case results <- result:
	default:
	}
}

// marks the connection dead and fails every in-flight task
func (c *Client) handleDisconnect(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.authenticated = false
	}
	c.mu.Unlock()

	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	for taskUUID, results := range c.pending {
		select {
		case results <- taskResult{err: fmt.Errorf("connection lost: %w", cause)}:
		default:
		}

		delete(c.pending, taskUUID)
	}

	if !errors.Is(cause, websocket.ErrCloseSent) {
		logger.Warn("inference connection dropped", "error", cause)
	}
}

// sends one message, serializing writes on the connection
func (c *Client) send(message []task) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	return c.conn.WriteJSON(message)
}

// returns a new random UUIDv4-format task id
func newTaskUUID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	bytes[6] = (bytes[6] & 0x0f) | 0x40
	bytes[8] = (bytes[8] & 0x3f) | 0x80

	hexed := hex.EncodeToString(bytes)

	return fmt.Sprintf("%s-%s-%s-%s-%s",
		hexed[0:8], hexed[8:12], hexed[12:16], hexed[16:20], hexed[20:32],
	), nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}

func orDefaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}

	return value
}

func orDefaultFloat(value, fallback float64) float64 {
	if value == 0 {
		return fallback
	}

	return value
}
