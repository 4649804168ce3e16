package quote

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/audit"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/override"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/services"
)

// Proposal collects the active services of an agreement.
type Proposal struct {
	Services         []Summary       `json:"services"`
	PerVisitTotal    decimal.Decimal `json:"perVisitTotal"`
	MonthlyRecurring decimal.Decimal `json:"monthlyRecurring"`
	ContractTotal    decimal.Decimal `json:"contractTotal"`
	ContractMonths   int             `json:"contractMonths"`
	// UsingDefaults lists services priced from static defaults because no remote config was
	// available.
	UsingDefaults []string  `json:"usingDefaults,omitempty"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// BuildProposal keeps the active results and totals them. usingDefaults names services whose
// config fell back to defaults.
func BuildProposal(results []Result, globalMonths int, usingDefaults []string) Proposal {
	active := lo.Filter(results, func(r Result, _ int) bool { return r.Active })
	summaries := lo.Map(active, func(r Result, _ int) Summary { return r.Summary() })

	sum := func(get func(Summary) decimal.Decimal) decimal.Decimal {
		return lo.Reduce(summaries, func(acc decimal.Decimal, s Summary, _ int) decimal.Decimal {
			return acc.Add(get(s))
		}, decimal.Zero)
	}

	activeIDs := lo.Map(active, func(r Result, _ int) string { return r.ServiceID })
	return Proposal{
		Services:         summaries,
		PerVisitTotal:    sum(func(s Summary) decimal.Decimal { return s.PerVisitPrice }),
		MonthlyRecurring: sum(func(s Summary) decimal.Decimal { return s.MonthlyRecurring }),
		ContractTotal:    sum(func(s Summary) decimal.Decimal { return s.ContractTotal }),
		ContractMonths:   override.ClampMonths(globalMonths),
		UsingDefaults:    lo.Intersect(activeIDs, usingDefaults),
		GeneratedAt:      time.Now().UTC(),
	}
}

// Assemble prices stateless forms against configs resolved together and builds their proposal.
// Every form keeps its own contract length. Unknown services fail with
// services.ErrUnknownService.
func Assemble(ctx context.Context, catalog *services.Catalog, r *rates.Resolver, forms []FormState, globalMonths int) (Proposal, error) {
	rules := make([]services.Rule, len(forms))
	for i, f := range forms {
		rule, err := catalog.Get(f.ServiceID)
		if err != nil {
			return Proposal{}, err
		}
		rules[i] = rule
	}

	effs := r.FetchAll(ctx, lo.SliceToMap(rules, func(rule services.Rule) (string, rates.Schema) {
		return rule.ID, rule.Schema
	}))

	results := make([]Result, len(rules))
	for i, rule := range rules {
		results[i] = Compute(rule, forms[i], effs[rule.ID].Config)
	}
	defaults := lo.Uniq(lo.FilterMap(rules, func(rule services.Rule, _ int) (string, bool) {
		return rule.ID, effs[rule.ID].UsingDefaults
	}))
	return BuildProposal(results, globalMonths, defaults), nil
}

// Agreement holds one session per service and the global contract length they share.
type Agreement struct {
	mu       sync.Mutex
	catalog  *services.Catalog
	sessions map[string]*Session
	global   int
	logger   *zap.Logger
}

// NewAgreement starts an empty agreement.
func NewAgreement(catalog *services.Catalog, globalMonths int, logger *zap.Logger) *Agreement {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agreement{
		catalog:  catalog,
		sessions: map[string]*Session{},
		global:   override.ClampMonths(globalMonths),
		logger:   logger,
	}
}

// Session returns the session of serviceID, starting a new-record session on first use.
func (a *Agreement) Session(serviceID string) (*Session, error) {
	rule, err := a.catalog.Get(serviceID)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.sessions[rule.ID]; ok {
		return s, nil
	}
	s := NewSession(rule, nil, a.global, a.logger)
	a.sessions[rule.ID] = s
	return s, nil
}

// Open starts an existing-record session from a saved form, replacing any session of the
// same service.
func (a *Agreement) Open(saved FormState) (*Session, error) {
	rule, err := a.catalog.Get(saved.ServiceID)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	s := NewSession(rule, &saved, a.global, a.logger)
	a.sessions[rule.ID] = s
	return s, nil
}

// SetGlobalContractMonths propagates a new global contract length to every session.
func (a *Agreement) SetGlobalContractMonths(months int) {
	a.mu.Lock()
	a.global = override.ClampMonths(months)
	sessions := lo.Values(a.sessions)
	a.mu.Unlock()
	for _, s := range sessions {
		s.SetGlobalContractMonths(months)
	}
}

// LoadAll fetches every session's config concurrently and waits until all are delivered.
func (a *Agreement) LoadAll(ctx context.Context, r *rates.Resolver) {
	pending := lo.Map(a.ordered(), func(s *Session, _ int) <-chan struct{} {
		return s.Load(ctx, r)
	})
	for _, done := range pending {
		<-done
	}
}

// Proposal assembles the agreement's current results in catalog order.
func (a *Agreement) Proposal() Proposal {
	sessions := a.ordered()
	results := lo.Map(sessions, func(s *Session, _ int) Result { return s.Result() })
	defaults := lo.FilterMap(sessions, func(s *Session, _ int) (string, bool) {
		return s.rule.ID, s.Effective().UsingDefaults
	})
	a.mu.Lock()
	global := a.global
	a.mu.Unlock()
	return BuildProposal(results, global, defaults)
}

// Flush sends every session's pending audit entries to sink.
func (a *Agreement) Flush(ctx context.Context, sink audit.Sink) error {
	for _, s := range a.ordered() {
		if err := s.Flush(ctx, sink); err != nil {
			return err
		}
	}
	return nil
}

func (a *Agreement) ordered() []*Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return lo.FilterMap(a.catalog.IDs(), func(id string, _ int) (*Session, bool) {
		s, ok := a.sessions[id]
		return s, ok
	})
}
