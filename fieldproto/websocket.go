package fieldproto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocketPath is the endpoint served by ListenAndServeWebSocket.
const WebSocketPath = "/ws"

// webSocketShutdownTimeout bounds graceful shutdown of the HTTP server.
const webSocketShutdownTimeout = 5 * time.Second

// WebSocketHandler returns a handler that upgrades to a websocket and
// answers each text message as one command line. Replies are formatted
// responses (OK:... or ERR:...) sent as text messages.
func (s *Server) WebSocketHandler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn("websocket upgrade failed", slog.Any("error", err))
			return
		}
		defer conn.Close()
		conn.SetReadLimit(MaxLineLength)

		logger := s.logger.With(slog.String("session", uuid.NewString()))
		logger.Info("session started",
			slog.String("transport", "websocket"),
			slog.String("remote", r.RemoteAddr))
		defer logger.Info("session ended")

		var line Line
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Warn("read failed", slog.Any("error", err))
				}
				return
			}

			var resp Response
			if msgType != websocket.TextMessage {
				resp = NewErrorResponse("text messages only")
			} else {
				resp = s.handle(logger, &line, string(data))
			}

			if err := conn.WriteMessage(websocket.TextMessage, []byte(resp.Format())); err != nil {
				logger.Warn("write failed", slog.Any("error", err))
				return
			}
		}
	})
}

// ListenAndServeWebSocket serves WebSocketHandler at WebSocketPath on addr
// until ctx is done.
func (s *Server) ListenAndServeWebSocket(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle(WebSocketPath, s.WebSocketHandler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr), slog.String("path", WebSocketPath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), webSocketShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}
