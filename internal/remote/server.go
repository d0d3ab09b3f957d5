package remote

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/spachava753/procreg/internal/catalog"
	"github.com/spachava753/procreg/internal/models"
)

// Op names one of the remote endpoints.
type Op string

const (
	OpStart Op = "start"
	OpStop  Op = "stop"
	OpList  Op = "list"
)

// Server is an in-memory implementation of the remote process API. It is
// meant for local development and tests: processes are "running" as soon as
// they are started and nothing is actually launched.
type Server struct {
	logger   *slog.Logger
	byLaunch map[string]models.CatalogEntry

	mu       sync.Mutex
	procs    map[string]Process
	order    []string
	failures map[Op]int
}

// NewServer creates a Server that resolves launch refs against cat.
func NewServer(cat *catalog.Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	byLaunch := make(map[string]models.CatalogEntry, cat.Len())
	for _, e := range cat.Entries() {
		byLaunch[e.LaunchRef] = e
	}
	return &Server{
		logger:   logger,
		byLaunch: byLaunch,
		procs:    make(map[string]Process),
		failures: make(map[Op]int),
	}
}

// Handler returns the HTTP handler serving /start, /stop and /processes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /start", s.handleStart)
	mux.HandleFunc("POST /stop", s.handleStop)
	mux.HandleFunc("GET /processes", s.handleList)
	return mux
}

// Fail makes every subsequent call to op answer with status. A status of 0
// clears the failure.
func (s *Server) Fail(op Op, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, op)
		return
	}
	s.failures[op] = status
}

// Put records p as running, replacing any process with the same id.
func (s *Server) Put(p Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(p)
}

// Remove forgets the process with the given id, as if it exited on its own.
func (s *Server) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

// Processes returns the running processes in start order.
func (s *Server) Processes() []Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Process, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.procs[id])
	}
	return out
}

func (s *Server) put(p Process) {
	if _, exists := s.procs[p.ID]; !exists {
		s.order = append(s.order, p.ID)
	}
	s.procs[p.ID] = p
}

func (s *Server) remove(id string) {
	delete(s.procs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// injected returns the configured failure status for op, or 0.
func (s *Server) injected(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[op]
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if status := s.injected(OpStart); status != 0 {
		writeError(w, status, "injected start failure")
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
		return
	}
	if req.ProcessID == "" {
		writeError(w, http.StatusBadRequest, "missing processId")
		return
	}

	entry, ok := s.byLaunch[req.LaunchRef]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown launchRef %q", req.LaunchRef))
		return
	}

	s.mu.Lock()
	if _, exists := s.procs[req.ProcessID]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, fmt.Sprintf("process %s already running", req.ProcessID))
		return
	}
	s.put(Process{
		ID:       req.ProcessID,
		Name:     entry.Name,
		Category: string(entry.Category),
		Status:   string(models.StatusActive),
	})
	s.mu.Unlock()

	s.logger.Info("process started", "id", req.ProcessID, "launch_ref", req.LaunchRef)
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if status := s.injected(OpStop); status != 0 {
		writeError(w, status, "injected stop failure")
		return
	}

	var req stopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
		return
	}

	s.mu.Lock()
	if _, exists := s.procs[req.ProcessID]; !exists {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, fmt.Sprintf("process %s not running", req.ProcessID))
		return
	}
	s.remove(req.ProcessID)
	s.mu.Unlock()

	s.logger.Info("process stopped", "id", req.ProcessID)
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if status := s.injected(OpList); status != 0 {
		writeError(w, status, "injected list failure")
		return
	}
	writeJSON(w, http.StatusOK, s.Processes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
