// Package server provides the local HTTP API over the allocation engine.
// It never fetches prices on its own; every fetch is triggered by a request.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/firetrack/internal/allocation"
	"github.com/theirongolddev/firetrack/internal/cli"
	"github.com/theirongolddev/firetrack/internal/model"
)

// Price sources reported by /api/prices.
const (
	SourceMarketstack = "marketstack"
	SourceCache       = "cache"
)

const maxRequestBody = 64 << 10

// Config controls the server runtime behavior.
type Config struct {
	Addr   string
	Logger logrus.FieldLogger
}

// PricesResponse is served at /api/prices.
type PricesResponse struct {
	Prices    map[model.Symbol]*float64 `json:"prices"`
	Source    string                    `json:"source"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt   time.Time  `json:"started_at"`
	LastFetchAt *time.Time `json:"last_fetch_at,omitempty"`
	FetchCount  int64      `json:"fetch_count"`
	PricesAsOf  *time.Time `json:"prices_as_of,omitempty"`
	Symbols     []string   `json:"symbols"`
	LastError   string     `json:"last_error,omitempty"`
}

// InputsRequest is the body of PUT /v1/inputs. Amounts are raw text and are
// parsed leniently when the plan is computed.
type InputsRequest struct {
	PayAmount     string          `json:"payAmount"`
	PayFrequency  model.Frequency `json:"payFrequency"`
	RentAmount    string          `json:"rentAmount"`
	RentFrequency model.Frequency `json:"rentFrequency"`
}

// Service provides the HTTP API.
type Service struct {
	cfg    Config
	log    logrus.FieldLogger
	prices allocation.PriceSource

	mu          sync.Mutex
	engine      *allocation.Engine
	startedAt   time.Time
	lastFetchAt time.Time
	fetchCount  int64
	lastError   string
}

// New returns a service serving engine. prices must be the same source the
// engine was built with.
func New(cfg Config, engine *allocation.Engine, prices allocation.PriceSource) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}

	return &Service{
		cfg:       cfg,
		log:       log.WithField("component", "server"),
		prices:    prices,
		engine:    engine,
		startedAt: time.Now(),
	}
}

// Handler returns the API router.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/prices", s.handlePrices).Methods(http.MethodGet)
	r.HandleFunc("/v1/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/plan", s.handlePlan).Methods(http.MethodGet)
	r.HandleFunc("/v1/plan.png", s.handlePlanChart).Methods(http.MethodGet)
	r.HandleFunc("/v1/inputs", s.handleGetInputs).Methods(http.MethodGet)
	r.HandleFunc("/v1/inputs", s.handlePutInputs).Methods(http.MethodPut)
	r.HandleFunc("/v1/holdings", s.handleGetHoldings).Methods(http.MethodGet)
	r.HandleFunc("/v1/holdings", s.handlePutHoldings).Methods(http.MethodPut)
	r.HandleFunc("/v1/holdings", s.handleDeleteHoldings).Methods(http.MethodDelete)
	r.Use(s.logRequests)
	return r
}

// Run serves HTTP until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.WithField("addr", s.cfg.Addr).Info("listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).Round(time.Millisecond),
		}).Debug("request")
	})
}

// loadPrices serves the fresh stored snapshot unless forceRefresh is set or
// nothing fresh is stored. Callers must hold s.mu.
func (s *Service) loadPrices(ctx context.Context, forceRefresh bool) (model.PriceSnapshot, string, error) {
	if s.prices == nil {
		return model.PriceSnapshot{}, "", errors.New("no price source configured")
	}
	if !forceRefresh {
		if snap, ok := s.prices.Peek(); ok {
			s.engine.SetSnapshot(snap)
			return snap, SourceCache, nil
		}
	}

	s.lastFetchAt = time.Now()
	s.fetchCount++
	snap, err := s.prices.Get(ctx, true)
	if err != nil {
		s.lastError = err.Error()
		return model.PriceSnapshot{}, "", err
	}
	s.lastError = ""
	s.engine.SetSnapshot(snap)
	return snap, SourceMarketstack, nil
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handlePrices(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap, source, err := s.loadPrices(r.Context(), wantRefresh(r))
	s.mu.Unlock()
	if err != nil {
		s.log.WithError(err).Warn("price load failed")
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, PricesResponse{
		Prices:    snap.Prices,
		Source:    source,
		UpdatedAt: snap.CapturedAt,
	})
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	st := Status{
		StartedAt:  s.startedAt,
		FetchCount: s.fetchCount,
		LastError:  s.lastError,
	}
	if !s.lastFetchAt.IsZero() {
		at := s.lastFetchAt
		st.LastFetchAt = &at
	}
	if at := s.engine.Snapshot().CapturedAt; !at.IsZero() {
		st.PricesAsOf = &at
	}
	for _, sym := range s.engine.Targets().Symbols() {
		st.Symbols = append(st.Symbols, string(sym))
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, st)
}

// currentPlan loads prices through the cache when refresh is requested or no
// snapshot is held yet, then computes the plan.
func (s *Service) currentPlan(r *http.Request) (model.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if refresh := wantRefresh(r); refresh || s.engine.Snapshot().IsZero() {
		if _, _, err := s.loadPrices(r.Context(), refresh); err != nil {
			return model.Plan{}, err
		}
	}
	return s.engine.Plan(), nil
}

func (s *Service) handlePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.currentPlan(r)
	if err != nil {
		s.log.WithError(err).Warn("price load failed")
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Service) handlePlanChart(w http.ResponseWriter, r *http.Request) {
	plan, err := s.currentPlan(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	png, err := cli.RenderAllocationChart(plan)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *Service) handleGetInputs(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	p := s.engine.Profile()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, InputsRequest{
		PayAmount:     p.PayAmount,
		PayFrequency:  p.PayFrequency,
		RentAmount:    p.RentAmount,
		RentFrequency: p.RentFrequency,
	})
}

func (s *Service) handlePutInputs(w http.ResponseWriter, r *http.Request) {
	var req InputsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.PayFrequency == "" {
		req.PayFrequency = model.Biweekly
	}
	if req.RentFrequency == "" {
		req.RentFrequency = model.Monthly
	}
	if !validFrequency(req.PayFrequency, model.PayFrequencies) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown pay frequency %q", req.PayFrequency))
		return
	}
	if !validFrequency(req.RentFrequency, model.RentFrequencies) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown rent frequency %q", req.RentFrequency))
		return
	}

	s.mu.Lock()
	err := s.engine.SetProfile(model.PaycheckProfile{
		PayAmount:     req.PayAmount,
		PayFrequency:  req.PayFrequency,
		RentAmount:    req.RentAmount,
		RentFrequency: req.RentFrequency,
		SavedAt:       time.Now(),
	})
	plan := s.engine.Plan()
	s.mu.Unlock()
	if err != nil {
		s.log.WithError(err).Error("saving inputs failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

func (s *Service) handleGetHoldings(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	shares := s.engine.Shares()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, shares)
}

// handlePutHoldings merges the posted share counts into the current ones.
// Values may be JSON strings or numbers.
func (s *Service) handlePutHoldings(w http.ResponseWriter, r *http.Request) {
	var req map[string]json.RawMessage
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	updates := make(map[model.Symbol]string, len(req))
	for sym, raw := range req {
		n, err := rawShares(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%s: %w", sym, err))
			return
		}
		updates[model.NormalizeSymbol(sym)] = n
	}

	s.mu.Lock()
	for sym, n := range updates {
		s.engine.SetShares(sym, n)
	}
	err := s.engine.SaveHoldings()
	plan := s.engine.Plan()
	s.mu.Unlock()
	if err != nil {
		s.log.WithError(err).Error("saving holdings failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// handleDeleteHoldings resets every share count to 0.
func (s *Service) handleDeleteHoldings(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	err := s.engine.ClearHoldings()
	plan := s.engine.Plan()
	s.mu.Unlock()
	if err != nil {
		s.log.WithError(err).Error("clearing holdings failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

func rawShares(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", errors.New("share count must be a string or number")
}

func validFrequency(f model.Frequency, allowed []model.Frequency) bool {
	for _, a := range allowed {
		if f == a {
			return true
		}
	}
	return false
}

func wantRefresh(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return v
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
