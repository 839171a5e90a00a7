package fieldproto

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"
)

// ServerOptions configures a Server.
type ServerOptions struct {
	// Logger receives session and dispatch records. Defaults to a
	// discarding logger.
	Logger *slog.Logger
}

// Server answers protocol lines on Unix domain sockets (and websockets, see
// WebSocketHandler) by running them through a Dispatcher.
//
// Every connection is an independent session with its own Line; no state is
// shared between lines or sessions.
type Server struct {
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu        sync.Mutex
	listeners map[net.Listener]struct{}
	conns     map[net.Conn]struct{}
	closed    bool

	wg sync.WaitGroup
}

// NewServer creates a server for d.
func NewServer(d *Dispatcher, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		dispatcher: d,
		logger:     logger,
		listeners:  make(map[net.Listener]struct{}),
		conns:      make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on the Unix socket at path and serves until ctx is
// done or Close is called. A stale socket file at path is replaced and the
// socket file is removed on return.
func (s *Server) ListenAndServe(ctx context.Context, path string) error {
	if info, err := os.Stat(path); err == nil && info.Mode()&os.ModeSocket != 0 {
		os.Remove(path)
	}

	l, err := net.Listen("unix", path)
	if err != nil {
		return NewConnectionError("failed to listen on "+path, err)
	}
	defer os.Remove(path)

	return s.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is done or Close is called. It
// returns ErrServerClosed after Close, ctx.Err() after cancellation.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	if !s.trackListener(l) {
		l.Close()
		return ErrServerClosed
	}
	defer s.untrackListener(l)

	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	s.logger.Info("listening", slog.String("addr", l.Addr().String()))

	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if s.isClosed() {
				return ErrServerClosed
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.ServeConn(ctx, conn)
		}()
	}
}

// ServeConn runs one session on conn until the peer disconnects, a line
// exceeds MaxLineLength, or ctx is done. conn is closed on return.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	if !s.trackConn(conn) {
		conn.Close()
		return
	}
	defer s.untrackConn(conn)
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	session := uuid.NewString()
	logger := s.logger.With(slog.String("session", session))
	logger.Info("session started", slog.String("transport", "socket"))
	defer logger.Info("session ended")

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 256), MaxLineLength+1)

	var line Line
	for scanner.Scan() {
		resp := s.handle(logger, &line, scanner.Text())
		if _, err := io.WriteString(conn, resp.FormatLine()); err != nil {
			logger.Warn("write failed", slog.Any("error", err))
			return
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			logger.Warn("line too long", slog.Int("limit", MaxLineLength))
			io.WriteString(conn, NewErrorResponse(ErrLineTooLong.Error()).FormatLine())
			return
		}
		if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
			logger.Warn("read failed", slog.Any("error", err))
		}
	}
}

// handle answers one request line. ping is answered at protocol level so
// clients can verify a connection.
func (s *Server) handle(logger *slog.Logger, l *Line, text string) Response {
	req := parseRequest(text)
	if req == "ping" {
		return NewOKResponse("pong")
	}

	l.Load(req)
	l.Parse()
	resp := s.dispatcher.Dispatch(l)

	verb, _ := l.FieldString(0)
	logger.Debug("dispatched line",
		slog.String("verb", verb),
		slog.Int("fields", l.Fields().Count()),
		slog.Bool("ok", resp.IsOK()))
	return resp
}

// Close stops all listeners and sessions and waits for sessions started by
// Serve to finish.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	for l := range s.listeners {
		l.Close()
	}
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) trackListener(l net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.listeners[l] = struct{}{}
	return true
}

func (s *Server) untrackListener(l net.Listener) {
	s.mu.Lock()
	delete(s.listeners, l)
	s.mu.Unlock()
}

func (s *Server) trackConn(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrackConn(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}
