// Package server is the local HTTP host the browser extension talks to.
//
// Routes:
//
//	POST   /v1/translate         translate selected text
//	POST   /v1/lookup            translate + phonetic + audio for a word
//	GET    /v1/phonetic          normalize an IPA string
//	GET    /v1/classify          classify locale signals
//	POST   /v1/scopes            open a scope (browser tab)
//	DELETE /v1/scopes/{scope}    close a scope, forgetting its disabled providers
//	GET    /metrics              prometheus
//	GET    /healthz              liveness
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/minios-linux/quicktrans/locale"
	"github.com/minios-linux/quicktrans/phonetic"
	"github.com/minios-linux/quicktrans/translate"
)

// maxBodyBytes caps request bodies; selections are short.
const maxBodyBytes = 64 << 10

// ScopeStore is the teardown side of failure memory.
type ScopeStore interface {
	ForgetScope(scope string) int
}

// Server holds the handlers' dependencies.
type Server struct {
	orch     *translate.Orchestrator
	scopes   ScopeStore
	policy   locale.Policy
	style    phonetic.Style
	signals  func() locale.Signals
	gatherer prometheus.Gatherer
	log      *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPolicy sets the classification policy used when a request names none.
func WithPolicy(p locale.Policy) Option {
	return func(s *Server) { s.policy = p }
}

// WithStyle sets the phonetic style used when a request names none.
func WithStyle(st phonetic.Style) Option {
	return func(s *Server) { s.style = st }
}

// WithSignals replaces locale.DetectSignals as the source of host-side
// signals for requests that carry none.
func WithSignals(fn func() locale.Signals) Option {
	return func(s *Server) {
		if fn != nil {
			s.signals = fn
		}
	}
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// New builds a Server.
func New(orch *translate.Orchestrator, scopes ScopeStore, opts ...Option) *Server {
	s := &Server{
		orch:     orch,
		scopes:   scopes,
		policy:   locale.DefaultPolicy,
		style:    phonetic.StyleSimplified,
		signals:  locale.DetectSignals,
		gatherer: prometheus.DefaultGatherer,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(s.accessLog)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/translate", s.handleTranslate)
		r.Post("/lookup", s.handleLookup)
		r.Get("/phonetic", s.handlePhonetic)
		r.Get("/classify", s.handleClassify)
		r.Post("/scopes", s.handleOpenScope)
		r.Delete("/scopes/{scope}", s.handleCloseScope)
	})
	return r
}

// Run serves on addr until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

type translateBody struct {
	Text          string `json:"text"`
	Scope         string `json:"scope,omitempty"`
	Regional      *bool  `json:"regional,omitempty"`
	Language      string `json:"language,omitempty"`
	Timezone      string `json:"timezone,omitempty"`
	NumericLocale string `json:"numericLocale,omitempty"`
	Policy        string `json:"policy,omitempty"`
	Style         string `json:"style,omitempty"`
}

func (s *Server) decodeTranslate(w http.ResponseWriter, r *http.Request) (translate.Request, translateBody, bool) {
	var body translateBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return translate.Request{}, body, false
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return translate.Request{}, body, false
	}

	regional := false
	if body.Regional != nil {
		regional = *body.Regional
	} else {
		policy, err := s.resolvePolicy(body.Policy)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return translate.Request{}, body, false
		}
		regional = s.resolveSignals(body.Language, body.Timezone, body.NumericLocale).Classify(policy)
	}
	return translate.Request{Text: body.Text, IsRegionalUser: regional, Scope: body.Scope}, body, true
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	req, _, ok := s.decodeTranslate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.orch.Translate(r.Context(), req))
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	req, body, ok := s.decodeTranslate(w, r)
	if !ok {
		return
	}
	style, err := s.resolveStyle(body.Style)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.orch.Lookup(r.Context(), req, style))
}

func (s *Server) handlePhonetic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	style, err := s.resolveStyle(q.Get("style"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ipa := q.Get("ipa")
	writeJSON(w, http.StatusOK, map[string]any{
		"phonetic": phonetic.Normalize(ipa, style),
		"show":     phonetic.LooksLikeIPA(ipa),
		"style":    style,
	})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	policy, err := s.resolvePolicy(q.Get("policy"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sig := s.resolveSignals(q.Get("language"), q.Get("timezone"), q.Get("numericLocale"))
	regional := sig.Classify(policy)
	chain := s.orch.Chains().Global
	if regional {
		chain = s.orch.Chains().Regional
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"regional": regional,
		"policy":   policy,
		"signals":  sig,
		"chain":    chain,
	})
}

func (s *Server) handleOpenScope(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"scope": uuid.NewString()})
}

func (s *Server) handleCloseScope(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")
	removed := s.scopes.ForgetScope(scope)
	s.log.Debug("scope closed", zap.String("scope", scope), zap.Int("removed", removed))
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *Server) resolvePolicy(name string) (locale.Policy, error) {
	if name == "" {
		return s.policy, nil
	}
	return locale.ParsePolicy(name)
}

func (s *Server) resolveStyle(name string) (phonetic.Style, error) {
	if name == "" {
		return s.style, nil
	}
	return phonetic.ParseStyle(name)
}

// resolveSignals fills signals the client did not send from the host.
func (s *Server) resolveSignals(language, timezone, numeric string) locale.Signals {
	sig := locale.Signals{Language: language, Timezone: timezone, NumericLocale: numeric}
	if sig.Language != "" && sig.Timezone != "" {
		return sig
	}
	host := s.signals()
	if sig.Language == "" {
		sig.Language = host.Language
	}
	if sig.Timezone == "" {
		sig.Timezone = host.Timezone
	}
	if sig.NumericLocale == "" {
		sig.NumericLocale = host.NumericLocale
	}
	return sig
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
