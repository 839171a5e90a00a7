package fieldproto

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// DisconnectHandler is a callback function called when the connection is lost.
type DisconnectHandler func(err error)

// Client is a Unix domain socket client for a fieldsh server.
//
// It sends command lines and waits for the matching response. Requests are
// answered in order, one at a time.
//
// Thread Safety:
// The client uses a mutex to protect its state and is safe for concurrent
// use from multiple goroutines.
type Client struct {
	mu sync.Mutex

	// sendMu serializes request/response round trips.
	sendMu sync.Mutex

	conn          net.Conn
	connectedPath string
	isConnected   bool

	reader *bufio.Reader

	// Response channel for pending requests
	pendingResponse chan responseResult

	disconnectHandler DisconnectHandler

	responseParser *ResponseParser

	// Cancellation for the reader goroutine
	cancelReader context.CancelFunc
	readerDone   chan struct{}
}

// responseResult wraps a response or error from the server.
type responseResult struct {
	response Response
	err      error
}

// NewClient creates a new socket client.
func NewClient() *Client {
	return &Client{
		responseParser: NewResponseParser(),
	}
}

// SetDisconnectHandler sets the callback for disconnection events.
func (c *Client) SetDisconnectHandler(handler DisconnectHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnectHandler = handler
}

// IsConnected returns true if the client is currently connected.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnected
}

// ConnectedPath returns the path of the currently connected socket.
// Returns empty string if not connected.
func (c *Client) ConnectedPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectedPath
}

// Connect connects to a server socket.
func (c *Client) Connect(path string) error {
	return c.ConnectWithContext(context.Background(), path)
}

// ConnectWithContext connects to a server socket with a context for cancellation.
func (c *Client) ConnectWithContext(ctx context.Context, path string) error {
	c.mu.Lock()
	if c.isConnected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	connectCtx, cancel := context.WithTimeout(ctx, ConnectionTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(connectCtx, "unix", path)
	if err != nil {
		return NewConnectionError("failed to connect", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connectedPath = path
	c.isConnected = true
	c.reader = bufio.NewReader(conn)
	c.pendingResponse = make(chan responseResult, 1)

	readerCtx, cancelReader := context.WithCancel(context.Background())
	c.cancelReader = cancelReader
	c.readerDone = make(chan struct{})

	go c.readerLoop(readerCtx)
	c.mu.Unlock()

	// Verify connection with ping
	pingCtx, pingCancel := context.WithTimeout(ctx, PingTimeout)
	defer pingCancel()

	resp, err := c.SendWithContext(pingCtx, "ping")
	if err != nil {
		c.Disconnect()
		return NewConnectionError("ping failed", err)
	}
	if !resp.IsOK() || resp.Data != "pong" {
		c.Disconnect()
		return NewConnectionError("server ping failed", nil)
	}

	return nil
}

// Disconnect disconnects from the server.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if !c.isConnected && c.conn == nil {
		c.mu.Unlock()
		return
	}

	c.isConnected = false

	if c.cancelReader != nil {
		c.cancelReader()
	}
	readerDone := c.readerDone
	c.mu.Unlock()

	// Wait for reader to finish (outside lock to avoid deadlock)
	if readerDone != nil {
		<-readerDone
	}

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	if c.pendingResponse != nil {
		select {
		case <-c.pendingResponse:
		default:
		}
		c.pendingResponse = nil
	}

	c.connectedPath = ""
	c.reader = nil
	c.cancelReader = nil
	c.readerDone = nil
	c.mu.Unlock()
}

// Send sends a command line to the server and waits for a response.
// Uses the default CommandTimeout.
func (c *Client) Send(line string) (Response, error) {
	return c.SendWithTimeout(line, CommandTimeout)
}

// SendWithTimeout sends a command line with a custom timeout.
func (c *Client) SendWithTimeout(line string, timeout time.Duration) (Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.SendWithContext(ctx, line)
}

// SendWithContext sends a command line with a context for cancellation/timeout.
// The line must not include the CMD: prefix or a trailing newline.
func (c *Client) SendWithContext(ctx context.Context, line string) (Response, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.mu.Lock()
	if !c.isConnected {
		c.mu.Unlock()
		return Response{}, ErrNotConnected
	}

	conn := c.conn
	pendingChan := c.pendingResponse
	c.mu.Unlock()

	// Drop a reply that arrived after an earlier request timed out.
	select {
	case <-pendingChan:
	default:
	}

	request := fmt.Sprintf("%s%s\n", CommandPrefix, line)
	if len(request) > MaxLineLength {
		return Response{}, ErrLineTooLong
	}
	if _, err := conn.Write([]byte(request)); err != nil {
		return Response{}, NewConnectionError("failed to send command", err)
	}

	select {
	case result := <-pendingChan:
		return result.response, result.err
	case <-ctx.Done():
		return Response{}, ErrTimeout
	}
}

// readerLoop continuously reads responses from the socket.
func (c *Client) readerLoop(ctx context.Context) {
	c.mu.Lock()
	done := c.readerDone
	c.mu.Unlock()
	defer close(done)

	var partial strings.Builder
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Set read deadline to allow checking for cancellation
		c.mu.Lock()
		if c.conn == nil {
			c.mu.Unlock()
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		reader := c.reader
		c.mu.Unlock()

		line, err := reader.ReadString('\n')
		if err != nil {
			// Timeouts are expected; they keep cancellation responsive.
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				partial.WriteString(line)
				continue
			}

			c.handleDisconnect(err)
			return
		}

		if partial.Len() > 0 {
			partial.WriteString(line)
			line = partial.String()
			partial.Reset()
		}
		c.processLine(line)
	}
}

// processLine hands a received line to the pending request.
func (c *Client) processLine(line string) {
	resp, err := c.responseParser.Parse(line)

	c.mu.Lock()
	pendingChan := c.pendingResponse
	c.mu.Unlock()

	if pendingChan != nil {
		select {
		case pendingChan <- responseResult{response: resp, err: err}:
		default:
			// Unsolicited line - nobody is waiting
		}
	}
}

// handleDisconnect handles an unexpected disconnection.
func (c *Client) handleDisconnect(err error) {
	c.mu.Lock()
	if !c.isConnected {
		c.mu.Unlock()
		return
	}

	c.isConnected = false
	handler := c.disconnectHandler
	pendingChan := c.pendingResponse
	c.mu.Unlock()

	if pendingChan != nil {
		select {
		case pendingChan <- responseResult{err: NewConnectionError("disconnected", err)}:
		default:
		}
	}

	if handler != nil {
		handler(err)
	}
}

// DiscoverAndConnect attempts to discover a running server and connect to it.
func (c *Client) DiscoverAndConnect() error {
	return c.DiscoverAndConnectWithContext(context.Background())
}

// DiscoverAndConnectWithContext attempts to discover and connect with a context.
func (c *Client) DiscoverAndConnectWithContext(ctx context.Context) error {
	socketPath := DiscoverSocket()
	if socketPath == "" {
		return ErrSocketNotFound
	}
	return c.ConnectWithContext(ctx, socketPath)
}
