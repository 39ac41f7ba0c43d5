// Package server is the HTTP surface of the orchestrator.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pokedex-genai/server/internal/agent/graph"
	"github.com/pokedex-genai/server/internal/agent/model"
	errx "github.com/pokedex-genai/server/internal/core/error"
	"github.com/pokedex-genai/server/internal/observe"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

const maxBodyBytes = 64 << 10

// History reads and clears stored turns.
type History interface {
	History(ctx context.Context, conversationID string) (*model.ConversationHistory, error)
	Clear(ctx context.Context, conversationID string) error
}

type Server struct {
	runner  graph.Runner
	history History
	cfg     model.ServerConfig
	metrics *observe.Metrics
}

// New builds the server. history may be nil, which disables the
// conversation routes.
func New(runner graph.Runner, history History, cfg model.ServerConfig, metrics *observe.Metrics) *Server {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Server{runner: runner, history: history, cfg: cfg, metrics: metrics}
}

// IntentQueryRequest is the body of POST /intent_query/.
type IntentQueryRequest struct {
	UserQuery      string `json:"user_query"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type IntentQueryResponse struct {
	Response *model.ResponseDocument `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /intent_query/", s.handleIntentQuery)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", observe.Handler())
	if s.history != nil {
		mux.HandleFunc("GET /conversations/{id}", s.handleGetConversation)
		mux.HandleFunc("DELETE /conversations/{id}", s.handleDeleteConversation)
	}
	return observe.Middleware(s.metrics)(mux)
}

// ListenAndServe serves until ctx is cancelled, then drains for up to
// ten seconds.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logx.Info().Msg("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIntentQuery(w http.ResponseWriter, r *http.Request) {
	var req IntentQueryRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, errx.BadRequest(fmt.Errorf("decode body: %w", err)))
		return
	}
	if strings.TrimSpace(req.UserQuery) == "" {
		writeError(w, errx.BadRequest(errors.New("user_query is required")))
		return
	}

	ctx := r.Context()
	if s.cfg.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.TurnTimeout)
		defer cancel()
	}

	doc, err := s.runner.Invoke(ctx, model.QueryInput{ConversationID: req.ConversationID, Query: req.UserQuery})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, IntentQueryResponse{Response: doc})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	h, err := s.history.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError exposes client errors verbatim and hides server errors
// behind their safe message.
func writeError(w http.ResponseWriter, err error) {
	status := errx.StatusOf(err)
	msg := errx.MessageOf(err)
	if status < http.StatusInternalServerError {
		msg = err.Error()
	} else {
		logx.Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
