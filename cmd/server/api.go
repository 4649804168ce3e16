package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/audit"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/export"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/override"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/quote"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/services"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/store"
)

const maxBodyBytes = 1 << 20

type server struct {
	db           *sql.DB
	catalog      *services.Catalog
	resolver     *rates.Resolver
	configs      *store.ConfigStore
	changes      *store.ChangeStore
	globalMonths int
	logger       *zap.Logger
}

func newServer(database *sql.DB, catalog *services.Catalog, globalMonths int, logger *zap.Logger) *server {
	configs := store.NewConfigStore(database)
	return &server{
		db:           database,
		catalog:      catalog,
		resolver:     rates.NewResolver(configs, logger.Named("rates")),
		configs:      configs,
		changes:      store.NewChangeStore(database),
		globalMonths: override.ClampMonths(globalMonths),
		logger:       logger,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/services", s.handleServicesList)
		r.Get("/services/{id}/config", s.handleServiceConfig)
		r.Put("/admin/services/{id}/config", s.handleAdminConfigUpdate)
		r.Post("/quote", s.handleQuote)
		r.Post("/proposal", s.handleProposal)
		r.Post("/proposal/export", s.handleProposalExport)
		r.Post("/changes", s.handleChangesRecord)
		r.Get("/changes", s.handleChangesList)
	})
	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type serviceView struct {
	ID               string   `json:"id"`
	DisplayName      string   `json:"displayName"`
	DefaultFrequency string   `json:"defaultFrequency"`
	FirstVisit       string   `json:"firstVisit"`
	CustomRows       string   `json:"customRows"`
	Qualifying       []string `json:"qualifying"`
	RateKeys         []string `json:"rateKeys"`
}

func (s *server) handleServicesList(w http.ResponseWriter, r *http.Request) {
	views := lo.Map(s.catalog.All(), func(rule services.Rule, _ int) serviceView {
		return serviceView{
			ID:               rule.ID,
			DisplayName:      rule.DisplayName,
			DefaultFrequency: string(rule.DefaultFrequency),
			FirstVisit:       string(rule.FirstVisit),
			CustomRows:       string(rule.CustomRows),
			Qualifying:       rule.Qualifying,
			RateKeys:         rule.Schema.Defaults().Keys(),
		}
	})
	writeJSON(w, http.StatusOK, views)
}

func (s *server) handleServiceConfig(w http.ResponseWriter, r *http.Request) {
	rule, ok := s.rule(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.resolver.Fetch(r.Context(), rule.ID, rule.Schema))
}

func (s *server) handleAdminConfigUpdate(w http.ResponseWriter, r *http.Request) {
	rule, ok := s.rule(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var payload map[string]any
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(payload) == 0 {
		writeError(w, http.StatusBadRequest, "config must not be empty")
		return
	}

	rec, err := s.configs.SaveConfig(r.Context(), rule.ID, payload)
	if err != nil {
		s.logger.Error("save service config", zap.String("service", rule.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save config")
		return
	}
	s.logger.Info("service config updated", zap.String("service", rule.ID), zap.Int("version", rec.Version))

	eff := rates.Resolve(rule.ID, payload, rule.Schema)
	eff.ResolvedAt = rec.CreatedAt
	writeJSON(w, http.StatusOK, struct {
		Version   int             `json:"version"`
		Effective rates.Effective `json:"effective"`
	}{rec.Version, eff})
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var form quote.FormState
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rule, ok := s.rule(w, form.ServiceID)
	if !ok {
		return
	}

	eff := s.resolver.Fetch(r.Context(), rule.ID, rule.Schema)
	writeJSON(w, http.StatusOK, struct {
		quote.Result
		UsingDefaults bool `json:"usingDefaults"`
	}{quote.Compute(rule, form, eff.Config), eff.UsingDefaults})
}

type proposalRequest struct {
	Title                string            `json:"title"`
	GlobalContractMonths any               `json:"globalContractMonths"`
	Services             []quote.FormState `json:"services"`
}

func (s *server) handleProposal(w http.ResponseWriter, r *http.Request) {
	p, _, ok := s.proposal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleProposalExport(w http.ResponseWriter, r *http.Request) {
	p, title, ok := s.proposal(w, r)
	if !ok {
		return
	}
	raw, err := export.Proposal(p, title)
	if err != nil {
		s.logger.Error("export proposal", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export proposal")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="proposal.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *server) proposal(w http.ResponseWriter, r *http.Request) (quote.Proposal, string, bool) {
	var req proposalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return quote.Proposal{}, "", false
	}

	global := s.globalMonths
	if req.GlobalContractMonths != nil {
		global = override.ContractMonths(req.GlobalContractMonths)
	}

	p, err := quote.Assemble(r.Context(), s.catalog, s.resolver, req.Services, global)
	if errors.Is(err, services.ErrUnknownService) {
		writeError(w, http.StatusNotFound, err.Error())
		return quote.Proposal{}, "", false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to assemble proposal")
		return quote.Proposal{}, "", false
	}
	return p, req.Title, true
}

type edit struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type changesRequest struct {
	// Form is the record as saved before the edits.
	Form  quote.FormState `json:"form"`
	Edits []edit          `json:"edits"`
}

type changesResponse struct {
	Recorded []audit.Change `json:"recorded"`
	Ignored  []string       `json:"ignored,omitempty"`
	Result   quote.Result   `json:"result"`
}

// handleChangesRecord replays manual edits on a saved record and persists the resulting change
// entries.
func (s *server) handleChangesRecord(w http.ResponseWriter, r *http.Request) {
	var req changesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rule, ok := s.rule(w, req.Form.ServiceID)
	if !ok {
		return
	}

	eff := s.resolver.Fetch(r.Context(), rule.ID, rule.Schema)
	session := quote.NewSessionFrom(rule, &req.Form, eff, s.globalMonths, s.logger)

	var resp changesResponse
	for _, e := range req.Edits {
		if !session.Pin(e.Field, e.Value) {
			resp.Ignored = append(resp.Ignored, e.Field)
		}
	}
	resp.Recorded = session.PendingChanges()

	sink := audit.MultiSink{s.changes, audit.LogSink{Logger: s.logger}}
	if err := session.Flush(r.Context(), sink); err != nil {
		s.logger.Error("record changes", zap.String("service", rule.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to record changes")
		return
	}
	resp.Result = session.Result()
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleChangesList(w http.ResponseWriter, r *http.Request) {
	serviceID := strings.TrimSpace(r.URL.Query().Get("service"))
	if serviceID != "" {
		rule, ok := s.rule(w, serviceID)
		if !ok {
			return
		}
		serviceID = rule.ID
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	changes, err := s.changes.List(r.Context(), serviceID, limit)
	if err != nil {
		s.logger.Error("list changes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list changes")
		return
	}
	if changes == nil {
		changes = []audit.Change{}
	}
	writeJSON(w, http.StatusOK, changes)
}

// rule looks up id and writes a 404 when it is unknown.
func (s *server) rule(w http.ResponseWriter, id string) (services.Rule, bool) {
	rule, err := s.catalog.Get(id)
	if errors.Is(err, services.ErrUnknownService) {
		writeError(w, http.StatusNotFound, err.Error())
		return services.Rule{}, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to look up service")
		return services.Rule{}, false
	}
	return rule, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
