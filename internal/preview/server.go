package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	lierrors "github.com/vango-dev/labeled-input/internal/errors"
	"github.com/vango-dev/labeled-input/pkg/host"
	"github.com/vango-dev/labeled-input/pkg/metrics"
	"github.com/vango-dev/labeled-input/pkg/render"
	"github.com/vango-dev/labeled-input/pkg/runtime"
)

const (
	// maxMessageSize bounds one client message.
	maxMessageSize = 64 * 1024

	writeTimeout = 5 * time.Second
)

// Options configures the preview server.
type Options struct {
	// Definition is the element shown on the page. Each connection gets
	// its own document, scheduler and element.
	Definition *host.Definition

	// Attributes are the initial attributes of the previewed element.
	Attributes map[string]string

	// Logger receives request and session logs.
	// Default: slog.Default()
	Logger *slog.Logger

	// Collector records scheduler metrics for every session.
	Collector *metrics.Collector

	// Gatherer backs the /metrics endpoint. Nil disables it.
	Gatherer prometheus.Gatherer

	// Trace records a span per flush through the global tracer provider.
	Trace bool

	// CheckOrigin validates websocket origins. Default: allow all.
	CheckOrigin func(r *http.Request) bool

	// MessageRate bounds client messages per second on one connection.
	// Messages over the limit are answered with an error and dropped.
	// Default: 50
	MessageRate rate.Limit

	// MessageBurst is the number of messages accepted at once.
	// Default: 20
	MessageBurst int
}

// Server serves a live preview of one element over HTTP and WebSocket.
//
// Routes:
//
//	GET /                  page with the server-rendered element
//	GET /labeled-input.css the element's style sheet
//	GET /ws                live session
//	GET /healthz           liveness
//	GET /metrics           Prometheus metrics, when a Gatherer is set
type Server struct {
	opts     Options
	logger   *slog.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*websocket.Conn
}

// New creates a preview server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	if opts.MessageRate == 0 {
		opts.MessageRate = 50
	}
	if opts.MessageBurst <= 0 {
		opts.MessageBurst = 20
	}

	s := &Server{
		opts:     opts,
		logger:   logger,
		conns:    make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handlePage)
	r.Get("/labeled-input.css", s.handleStyle)
	r.Get("/ws", s.HandleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully and closes every session.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return lierrors.New("E060").WithDetail("listen on " + addr).Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview: listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.closeSessions()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return lierrors.New("E060").Wrap(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeSessions()
	if err != nil {
		return lierrors.New("E060").WithDetail("shutdown").Wrap(err)
	}
	return nil
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// closeSessions closes every connection. Each connection's goroutine then
// tears down its own session.
func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, conn := range s.conns {
		conn.Close()
		delete(s.conns, id)
	}
}

func (s *Server) fieldConfig(id string) render.FieldConfig {
	var observers []runtime.Observer
	if s.opts.Collector != nil {
		observers = append(observers, s.opts.Collector)
	}
	if s.opts.Trace {
		observers = append(observers, metrics.NewTracer(
			metrics.WithAttributes(attribute.String("labeled_input.session", id))))
	}

	config := render.FieldConfig{
		Logger:     s.logger.With("session", id),
		Attributes: s.opts.Attributes,
	}
	if len(observers) > 0 {
		config.Observer = runtime.Observers(observers...)
	}
	return config
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	field, err := render.NewField(s.opts.Definition, render.FieldConfig{
		Logger:     s.logger,
		Attributes: s.opts.Attributes,
	})
	if err != nil {
		s.logger.Error("preview: render failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer field.Close()

	var buf bytes.Buffer
	err = render.RenderPage(&buf, render.PageData{
		Title:   "<" + s.opts.Definition.Tag + "> preview",
		Body:    `<div id="preview">` + field.HTML() + `</div>`,
		Scripts: []render.ScriptTag{{Inline: ClientScript}},
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleStyle(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write([]byte(s.opts.Definition.Style))
}

// HandleWebSocket upgrades the request and runs one session until the
// client disconnects. Messages are handled in order on this goroutine, so
// the session's scheduler is never shared.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("preview: websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	id := uuid.Must(uuid.NewV7()).String()
	sess, err := newSession(id, s.opts.Definition, s.fieldConfig(id))
	if err != nil {
		s.logger.Error("preview: session failed", "session", id, "error", err)
		s.send(conn, ServerMessage{Type: MessageError, Error: err.Error()})
		return
	}

	s.mu.Lock()
	s.conns[id] = conn
	s.mu.Unlock()
	s.logger.Info("preview: session opened", "session", id)

	defer func() {
		s.mu.Lock()
		delete(s.conns, id)
		s.mu.Unlock()
		sess.Close()
		s.logger.Info("preview: session closed", "session", id)
	}()

	if err := s.send(conn, sess.Render()); err != nil {
		return
	}

	limiter := rate.NewLimiter(s.opts.MessageRate, s.opts.MessageBurst)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("preview: read failed", "session", id, "error", err)
			}
			return
		}

		if !limiter.Allow() {
			s.logger.Warn("preview: message dropped", "session", id, "reason", "rate limit")
			if s.send(conn, ServerMessage{Type: MessageError, Error: "rate limit exceeded"}) != nil {
				return
			}
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if s.send(conn, ServerMessage{Type: MessageError, Error: "invalid message: " + err.Error()}) != nil {
				return
			}
			continue
		}

		for _, out := range sess.Handle(msg) {
			if s.send(conn, out) != nil {
				return
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// logRequests logs each request at Debug with its status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("preview: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
