// Package api serves the latest inspection results over HTTP JSON. Watch
// mode mounts it next to the metrics endpoint.
package api

import (
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"bchwatch/internal/inspect"
)

// PoolStatus is one pool's latest outcome, success or failure.
type PoolStatus struct {
	Pool      string          `json:"pool"`
	OK        bool            `json:"ok"`
	Error     string          `json:"error,omitempty"`
	ErrorKind string          `json:"error_kind,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
	Result    *inspect.Result `json:"result,omitempty"`
}

// Server keeps the latest result per pool in memory and exposes them.
type Server struct {
	mux *http.ServeMux

	mu     sync.RWMutex
	latest map[string]*PoolStatus
}

func New() *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		latest: make(map[string]*PoolStatus),
	}
	s.mux.HandleFunc("/api/results", s.corsMiddleware(s.handleResults))
	s.mux.HandleFunc("/api/results/", s.corsMiddleware(s.handleResult))
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// RecordResult stores a successful inspection, replacing any prior state for
// the pool.
func (s *Server) RecordResult(res *inspect.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[res.Pool] = &PoolStatus{
		Pool:      res.Pool,
		OK:        true,
		UpdatedAt: time.Now().UTC(),
		Result:    res,
	}
}

// RecordFailure stores a failed inspection.
func (s *Server) RecordFailure(pool, kind string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[pool] = &PoolStatus{
		Pool:      pool,
		Error:     err.Error(),
		ErrorKind: kind,
		UpdatedAt: time.Now().UTC(),
	}
}

func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	all := make([]*PoolStatus, 0, len(s.latest))
	for _, st := range s.latest {
		all = append(all, st)
	}
	s.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].Pool < all[j].Pool })
	s.writeJSON(w, map[string]any{
		"pools": all,
		"count": len(all),
	})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(strings.TrimPrefix(r.URL.Path, "/api/results/"))
	s.mu.RLock()
	st, ok := s.latest[name]
	s.mu.RUnlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "no result for pool "+name)
		return
	}
	s.writeJSON(w, st)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	out, err := sonic.Marshal(data)
	if err != nil {
		log.Printf("api: json encode error: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(out)
}

func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	out, _ := sonic.Marshal(map[string]string{"error": message})
	_, _ = w.Write(out)
}
