package ws

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// SSEClient writes timeline events as Server-Sent Events frames.
type SSEClient struct {
	mu   sync.Mutex
	w    io.Writer
	rc   *http.ResponseController
	log  *slog.Logger
	done chan struct{}
	once sync.Once
}

// NewSSEClient wraps a streaming response. Every write carries a deadline of
// writeWait where the underlying connection supports it.
func NewSSEClient(w http.ResponseWriter, logger *slog.Logger) *SSEClient {
	return &SSEClient{
		w:    w,
		rc:   http.NewResponseController(w),
		log:  logger,
		done: make(chan struct{}),
	}
}

// Send emits one event. Multi-line payloads are split over several data lines.
func (c *SSEClient) Send(event string, payload []byte) error {
	var buf bytes.Buffer
	if event != "" {
		buf.WriteString("event: ")
		buf.WriteString(event)
		buf.WriteByte('\n')
	}
	for _, line := range bytes.Split(payload, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return c.write(buf.Bytes())
}

// Heartbeat emits a comment frame so proxies keep the stream open.
func (c *SSEClient) Heartbeat() error {
	return c.write([]byte(": ping\n\n"))
}

// Done is closed once the stream failed or Close was called.
func (c *SSEClient) Done() <-chan struct{} {
	return c.done
}

// Close ends the stream. It waits for an in-flight write, so no write reaches
// the response after Close returns.
func (c *SSEClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finish()
}

func (c *SSEClient) finish() {
	c.once.Do(func() { close(c.done) })
}

func (c *SSEClient) write(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.done:
		return io.EOF
	default:
	}
	if err := c.rc.SetWriteDeadline(time.Now().Add(writeWait)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		c.finish()
		return err
	}
	if _, err := c.w.Write(frame); err != nil {
		c.finish()
		c.log.Warn("sse write failed", "error", err)
		return err
	}
	if err := c.rc.Flush(); err != nil {
		c.finish()
		return err
	}
	return nil
}
