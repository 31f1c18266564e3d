// Package server exposes the scoring engine as an HTTP JSON service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/transcomplex/core"
	"github.com/huangsam/transcomplex/core/algo"
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
	"github.com/sirupsen/logrus"
)

const (
	// MaxBatchTexts caps the texts accepted by one batch request.
	MaxBatchTexts = 1000

	maxBodyBytes    = 8 << 20
	shutdownTimeout = 5 * time.Second
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ScoreRequest is the POST /v1/score body.
type ScoreRequest struct {
	Text   string `json:"text" validate:"required"`
	Source string `json:"source" validate:"omitempty,max=512"`
}

// BatchRequest is the POST /v1/batch body.
type BatchRequest struct {
	Texts []string `json:"texts" validate:"required,min=1,max=1000"`
	Sort  bool     `json:"sort"`
	Limit int      `json:"limit" validate:"gte=0"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server serves scoring requests over HTTP.
type Server struct {
	baseCfg *contract.Config
	eng     *core.Engine
	metrics *serverMetrics
	mux     *http.ServeMux
}

// New creates a server for baseCfg. Every request scores on eng.
func New(baseCfg *contract.Config, eng *core.Engine) *Server {
	s := &Server{
		baseCfg: baseCfg,
		eng:     eng,
		metrics: newServerMetrics(),
		mux:     http.NewServeMux(),
	}

	s.route("POST /v1/score", "/v1/score", http.HandlerFunc(s.handleScore))
	s.route("POST /v1/batch", "/v1/batch", http.HandlerFunc(s.handleBatch))
	s.route("GET /v1/metrics/definitions", "/v1/metrics/definitions", http.HandlerFunc(s.handleDefinitions))
	s.route("GET /healthz", "/healthz", http.HandlerFunc(s.handleHealth))
	s.mux.Handle("GET /metrics", s.metrics.handler())
	return s
}

func (s *Server) route(pattern, name string, h http.Handler) {
	s.mux.Handle(pattern, s.metrics.instrument(name, h))
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		contract.LogInfo("Scoring server listening", logrus.Fields{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		contract.LogInfo("Shutting down scoring server", nil)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Source == "" {
		req.Source = "http"
	}

	item, err := core.GetScoreResult(core.WithSuppressHeader(r.Context()), s.baseCfg.Clone(), s.eng,
		schema.TextInput{Source: req.Source, Text: req.Text})
	if err != nil {
		if item.Failed() {
			s.metrics.observe(item)
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.metrics.observe(item)
	writeJSON(w, http.StatusOK, schema.EnrichItems([]schema.BatchItem{item})[0])
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	cfg := s.baseCfg.Clone()
	cfg.Sort = req.Sort
	if req.Limit > 0 {
		cfg.ResultLimit = req.Limit
	}

	inputs := make([]schema.TextInput, len(req.Texts))
	for i, t := range req.Texts {
		inputs[i] = schema.TextInput{Source: "text" + strconv.Itoa(i+1), Text: t}
	}

	items, err := core.GetBatchResults(core.WithSuppressHeader(r.Context()), cfg, s.eng, inputs, s.metrics.observe)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, schema.EnrichItems(items))
}

func (s *Server) handleDefinitions(w http.ResponseWriter, _ *http.Request) {
	scoring := s.baseCfg.Scoring
	if scoring == nil {
		scoring = algo.DefaultConfiguration()
	}
	writeJSON(w, http.StatusOK, core.BuildMetricsModel(scoring))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeRequest reads a JSON body into dst and validates it. It writes the
// error response and returns false on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contract.LogWarn("Failed to encode response", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
