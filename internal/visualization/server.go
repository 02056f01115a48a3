package visualization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nvandessel/nback/internal/history"
)

// Server serves the level chart, read fresh from the store on every request.
type Server struct {
	store      history.Store
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// NewServer creates a chart server over store.
func NewServer(store history.Store) *Server {
	return &Server{store: store}
}

// Addr returns the address the server is listening on (e.g., "127.0.0.1:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ListenAndServe starts the HTTP server on an OS-assigned port and blocks
// until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/series", s.handleSeries)

	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// series returns the chart points, empty when nothing has been saved yet.
func (s *Server) series(ctx context.Context) ([]history.Point, error) {
	days, err := s.store.Days(ctx)
	if err != nil {
		return nil, err
	}
	points, err := history.CollectSeries(days)
	if errors.Is(err, history.ErrInsufficientData) {
		return []history.Point{}, nil
	}
	return points, err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	points, err := s.series(r.Context())
	if err != nil {
		http.Error(w, "history error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	html, err := RenderHTML(points)
	if err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	points, err := s.series(r.Context())
	if err != nil {
		http.Error(w, "history error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"points": points})
}
