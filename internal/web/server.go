// internal/web exposes the bot over HTTP for the browser panel and
// anything else on the bench network. The API is small and JSON only:
// observing status is a GET, everything that moves metal is a POST.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SeamusWaldron/cubebot"
	"github.com/SeamusWaldron/cubebot/internal/bot"
	"github.com/SeamusWaldron/cubebot/internal/storage"
)

// Server wraps the HTTP listener in front of a bot.
type Server struct {
	bot  *bot.Bot
	repo *storage.SolveRepository
	addr string
	log  *zap.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer prepares a control server. repo may be nil; the history
// endpoint then reports an empty list.
func NewServer(addr string, b *bot.Bot, repo *storage.SolveRepository, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{bot: b, repo: repo, addr: addr, log: log}
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("web: server already started")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("web: listen %s: %w", s.addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/solve", s.handleSolve)
	mux.HandleFunc("/abort", s.handleAbort)
	mux.HandleFunc("/recover", s.handleRecover)
	mux.HandleFunc("/manual", s.handleManual)
	mux.HandleFunc("/calibrate", s.handleCalibrate)
	mux.HandleFunc("/fault/clear", s.handleClearFault)
	mux.HandleFunc("/solves", s.handleSolves)

	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("serve error", zap.Error(err))
		}
	}()
	s.log.Info("control surface listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight
// requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.server = nil
	s.listener = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, cubebot.ErrSessionActive):
		status = http.StatusConflict
	case errors.Is(err, cubebot.ErrNoActiveSession):
		status = http.StatusConflict
	case errors.Is(err, cubebot.ErrSensingUncertain):
		status = http.StatusServiceUnavailable
	case errors.Is(err, cubebot.ErrInvalidNotation), errors.Is(err, cubebot.ErrInvalidMove):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST required"})
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "GET required"})
		return
	}
	writeJSON(w, http.StatusOK, s.bot.Status())
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	sess, err := s.bot.StartSolve(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, sess.Progress())
}

func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := s.bot.Abort(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "aborting"})
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := s.bot.Recover(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.bot.Status())
}

func (s *Server) handleManual(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		Move string `json:"move"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	move, err := cubebot.ParseMove(req.Move)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.bot.ManualMove(r.Context(), move); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"executed": move.Notation()})
}

// handleCalibrate sweeps both arms when the body is empty, or nudges one
// calibration point when it carries {"arm", "axis", "value"}.
func (s *Server) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		Arm   string `json:"arm"`
		Axis  string `json:"axis"`
		Value int    `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if req.Arm == "" && req.Axis == "" {
		if err := s.bot.Calibrate(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "calibrated"})
		return
	}

	arm := cubebot.ArmID(req.Arm)
	if arm != cubebot.ArmLeft && arm != cubebot.ArmRight {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "arm must be left or right"})
		return
	}
	if err := s.bot.CalibratePoint(r.Context(), arm, req.Axis, req.Value); err != nil {
		if errors.Is(err, cubebot.ErrSessionActive) {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"arm": req.Arm, "axis": req.Axis, "value": req.Value,
	})
}

func (s *Server) handleClearFault(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		Arm string `json:"arm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	switch cubebot.ArmID(req.Arm) {
	case cubebot.ArmLeft, cubebot.ArmRight:
		s.bot.ClearFault(cubebot.ArmID(req.Arm))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "arm must be left or right"})
		return
	}
	writeJSON(w, http.StatusOK, s.bot.Status())
}

type solveSummary struct {
	SolveID    string `json:"solve_id"`
	StartedAt  string `json:"started_at"`
	Status     string `json:"status"`
	MoveCount  *int   `json:"move_count,omitempty"`
	DurationMs *int64 `json:"duration_ms,omitempty"`
}

func (s *Server) handleSolves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "GET required"})
		return
	}
	summaries := []solveSummary{}
	if s.repo != nil {
		solves, err := s.repo.List(50)
		if err != nil {
			writeError(w, err)
			return
		}
		for _, sv := range solves {
			summaries = append(summaries, solveSummary{
				SolveID:    sv.SolveID,
				StartedAt:  sv.StartedAt.Format(time.RFC3339),
				Status:     sv.Status,
				MoveCount:  sv.MoveCount,
				DurationMs: sv.DurationMs,
			})
		}
	}
	writeJSON(w, http.StatusOK, summaries)
}
