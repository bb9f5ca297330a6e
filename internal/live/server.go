package live

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/anchor/internal/config"
	"github.com/vango-dev/anchor/internal/errors"
	"github.com/vango-dev/anchor/pkg/anchor"
	"github.com/vango-dev/anchor/pkg/observe"
)

const (
	// sweepInterval is how often the loop releases subscriptions of
	// collected clients while nothing is being written.
	sweepInterval = 30 * time.Second

	maxBodySize    = 256
	maxMessageSize = 512
)

// Options configures a Server.
type Options struct {
	// Config is the loaded configuration. Nil means config.New().
	Config *config.Config

	// Logger receives server and engine logs. Nil means slog.Default().
	Logger *slog.Logger

	// Registry collects the engine and server metrics. Nil means a new
	// registry private to the server.
	Registry *prometheus.Registry

	// EngineOptions are appended to the options derived from Config.
	EngineOptions []anchor.Option
}

// Server is the live playground.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	loop       *Loop
	playground *Playground

	upgrader websocket.Upgrader
	clientsG prometheus.Gauge

	mu      sync.RWMutex
	clients map[string]*client
	wg      sync.WaitGroup

	closeOnce sync.Once
}

// NewServer creates a server and its engine. Call Close to release it.
func NewServer(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	observer := observe.Multi(
		observe.Logger(logger),
		observe.Prometheus(observe.WithRegistry(reg)),
		observe.OpenTelemetry(observe.WithTracerName("anchor/live")),
	)
	engineOpts := append([]anchor.Option{anchor.WithObserver(observer)}, opts.EngineOptions...)
	engine := anchor.NewEngine(cfg.EngineOptions(logger, engineOpts...)...)

	s := &Server{
		cfg:      cfg,
		logger:   logger.With("component", "anchor.live"),
		registry: reg,
		loop:     NewLoop(),
		clients:  make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clientsG: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "anchor",
			Subsystem: "live",
			Name:      "clients",
			Help:      "Number of connected WebSocket clients",
		}),
	}

	// Containers are created on the loop like every other engine access.
	s.loop.Do(func() {
		s.playground = NewPlayground(engine, cfg.Live)
	})
	return s
}

// Handler returns the HTTP handler serving every playground route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/ws", s.handleWebSocket)
	r.Get("/state", s.handleState)
	r.Post("/state/{name}", s.handleSet)

	if s.cfg.MetricsEnabled() {
		r.Handle(s.cfg.Server.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Start serves on the configured address until ctx is cancelled, then shuts
// down and closes the server.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	go s.sweepLoop(ctx)

	s.logger.Info("playground listening", "url", s.cfg.URL())

	select {
	case err := <-errCh:
		s.Close()
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.New("A203").WithSubject("%s", srv.Addr).Wrap(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return errors.New("A203").WithSubject("%s", srv.Addr).Wrap(err)
	}
	return nil
}

func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var n int
			if err := s.loop.Do(func() { n = s.playground.Engine().Sweep() }); err != nil {
				return
			}
			if n > 0 {
				s.logger.Debug("released subscriptions", "count", n)
			}
		}
	}
}

// Close disconnects every client and stops the loop.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.mu.RLock()
		for _, c := range s.clients {
			c.kick()
		}
		s.mu.RUnlock()

		s.wg.Wait()
		s.loop.Close()
	})
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Snapshot returns the playground state.
func (s *Server) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.loop.Do(func() {
		snap = s.playground.Snapshot()
	})
	snap.Clients = s.ClientCount()
	return snap, err
}

// Set writes a playground container.
func (s *Server) Set(name, value string) error {
	var setErr error
	if err := s.loop.Do(func() {
		setErr = s.playground.Set(name, value)
	}); err != nil {
		return err
	}
	return setErr
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied.
		s.logger.Warn("websocket upgrade failed", "code", "A202", "error", err)
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()

	c := newClient(conn, s.cfg.Live.SendBuffer)
	go c.writePump()
	s.addClient(c)

	if err := s.loop.Do(func() {
		s.playground.Watch(anchor.Ref(c), c.ctx, func(captured any, m Message) {
			captured.(*client).push(m)
		})
	}); err != nil {
		s.removeClient(c)
		c.kick()
		close(c.send)
		return
	}

	s.logger.Info("client connected", "client_id", c.id, "remote", r.RemoteAddr)

	s.readPump(c)

	s.loop.Do(func() {
		c.ctx.Dispose()
	})
	s.removeClient(c)
	close(c.send)
	c.kick()
	s.logger.Info("client disconnected", "client_id", c.id)
}

// readPump applies SetRequests until the connection fails.
func (s *Server) readPump(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var req SetRequest
		if err := json.Unmarshal(data, &req); err != nil {
			c.push(Message{Error: "malformed request"})
			continue
		}
		if err := s.Set(req.Name, req.Value); err != nil {
			if stderrors.Is(err, ErrLoopClosed) {
				return
			}
			c.push(Message{Name: req.Name, Error: err.Error()})
		}
	}
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.clientsG.Inc()
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	s.clientsG.Dec()
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.Set(name, strings.TrimSpace(string(body))); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError replies with the JSON form of err.
func writeError(w http.ResponseWriter, err error) {
	if stderrors.Is(err, ErrLoopClosed) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	ae := errors.FromError(err, "A203")
	status := http.StatusInternalServerError
	switch ae.Code {
	case "A201":
		status = http.StatusNotFound
	case "A204":
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(ae.FormatJSON()))
}
