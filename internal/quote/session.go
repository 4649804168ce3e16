package quote

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/audit"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/override"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/pricing"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/rates"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/services"
)

// ContractLink tracks whether a service follows the agreement's global contract length.
type ContractLink int

const (
	// NeverActivated services have had no qualifying input yet.
	NeverActivated ContractLink = iota
	// FollowingGlobal services adopt every change of the global contract length.
	FollowingGlobal
	// ExplicitlyOverridden services keep the contract length the user set.
	ExplicitlyOverridden
)

func (l ContractLink) String() string {
	switch l {
	case FollowingGlobal:
		return "followingGlobal"
	case ExplicitlyOverridden:
		return "explicitlyOverridden"
	default:
		return "neverActivated"
	}
}

// Session is the interactive state of one service on an agreement. It is safe for concurrent
// use: config fetches may be delivered from another goroutine.
type Session struct {
	mu sync.Mutex

	rule   services.Rule
	form   FormState
	eff    rates.Effective
	logger *zap.Logger

	loadedFromExisting bool
	link               ContractLink
	global             int

	recorder  *audit.Recorder
	baselined bool
}

// NewSession starts a session. A non-nil saved form marks the session as editing an existing
// record: late config fetches no longer replace its values unless forced, and its baseline is
// taken immediately.
func NewSession(rule services.Rule, saved *FormState, globalMonths int, logger *zap.Logger) *Session {
	return NewSessionFrom(rule, saved, rates.Defaults(rule.ID, rule.Schema), globalMonths, logger)
}

// NewSessionFrom is NewSession starting from an already resolved config instead of the static
// defaults. Baselines are taken against eff.
func NewSessionFrom(rule services.Rule, saved *FormState, eff rates.Effective, globalMonths int, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		rule:     rule,
		eff:      eff,
		logger:   logger.With(zap.String("service", rule.ID)),
		global:   override.ClampMonths(globalMonths),
		recorder: audit.NewRecorder(rule.ID, nil),
	}

	if saved == nil {
		s.form = NewForm(rule.ID, rule.DefaultFrequency, s.global)
		s.takeBaseline()
		return s
	}

	s.loadedFromExisting = true
	s.form = saved.Clone()
	s.form.ServiceID = rule.ID
	if s.form.Frequency == "" {
		s.form.Frequency = rule.DefaultFrequency
	}
	s.form.ContractMonths = override.ClampMonths(s.form.ContractMonths)
	if s.form.Overrides == nil {
		s.form.Overrides = override.Set{}
	}
	if s.form.Rates == nil {
		s.form.Rates = override.Set{}
	}
	if rule.Active(s.form.Inputs()) {
		s.link = ExplicitlyOverridden
	}
	s.takeBaseline()
	return s
}

// takeBaseline snapshots the overridable fields once. Rate leaves always get a baseline; computed
// figures only when editing an existing record, since a new record has no prior figures.
func (s *Session) takeBaseline() {
	if s.baselined {
		return
	}
	if s.loadedFromExisting {
		res := Compute(s.rule, s.form, s.eff.Config)
		for field, v := range res.Figures() {
			s.recorder.Baseline(field, v)
		}
	}
	for key, v := range s.eff.Config.With(s.form.Rates) {
		s.recorder.Baseline(key, v)
	}
	s.baselined = true
}

// ApplyFetched delivers a resolved config. A session editing an existing record ignores it
// unless force is set; force is the explicit refresh and clears every override, rates included.
// Reports whether the config was applied.
func (s *Session) ApplyFetched(eff rates.Effective, force bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadedFromExisting && !force {
		s.logger.Debug("ignoring late config for existing record")
		return false
	}
	s.eff = eff
	if force {
		s.clearOverrides(true)
		return true
	}
	// A new record is baselined against the first resolved config it sees.
	if len(s.recorder.Pending()) == 0 {
		s.recorder = audit.NewRecorder(s.rule.ID, nil)
		s.baselined = false
		s.takeBaseline()
	}
	return true
}

// Load fetches the config in the background and delivers it without force. The returned channel
// closes once the result has been delivered.
func (s *Session) Load(ctx context.Context, r *rates.Resolver) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.ApplyFetched(r.Fetch(ctx, s.rule.ID, s.rule.Schema), false)
	}()
	return done
}

// Refresh re-fetches the config and applies it with force.
func (s *Session) Refresh(ctx context.Context, r *rates.Resolver) rates.Effective {
	eff := r.Fetch(ctx, s.rule.ID, s.rule.Schema)
	s.ApplyFetched(eff, true)
	return eff
}

// SetQuantity changes a quantity input. Text and negative values coerce to zero.
// Overrides are cleared only when the value actually changes.
func (s *Session) SetQuantity(name string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value := override.Number(v)
	if s.form.Quantities[name] == value {
		s.form.Quantities[name] = value
		return
	}

	wasActive := s.rule.Active(s.form.Inputs())
	s.form.Quantities[name] = value
	if !wasActive && s.rule.Active(s.form.Inputs()) {
		s.activated()
	}
	s.baseInputChanged()
}

// SetOption changes a selection input such as region or a step-pricing mode.
func (s *Session) SetOption(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.form.Options[name]; ok && old == value {
		return
	}
	s.form.Options[name] = value
	s.baseInputChanged()
}

// SetToggle changes a boolean input.
func (s *Session) SetToggle(name string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.form.Toggles[name] != on
	s.form.Toggles[name] = on
	if changed {
		s.baseInputChanged()
	}
}

// SetFrequency changes the billing frequency. Unknown names resolve to weekly.
func (s *Session) SetFrequency(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := frequency.Parse(name)
	if f == s.frequency() {
		s.form.Frequency = f
		return
	}
	s.form.Frequency = f
	s.baseInputChanged()
}

// SetContractMonths sets this service's contract length explicitly; it stops following the
// global value.
func (s *Session) SetContractMonths(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	months := override.ContractMonths(v)
	s.link = ExplicitlyOverridden
	if months == s.form.ContractMonths {
		return
	}
	s.form.ContractMonths = months
	s.baseInputChanged()
}

// SetGlobalContractMonths records a new agreement-wide contract length and adopts it when the
// service follows the global value.
func (s *Session) SetGlobalContractMonths(months int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = override.ClampMonths(months)
	if s.link == FollowingGlobal && s.form.ContractMonths != s.global {
		s.form.ContractMonths = s.global
		s.baseInputChanged()
	}
}

func (s *Session) activated() {
	if s.link == ExplicitlyOverridden {
		return
	}
	s.link = FollowingGlobal
	s.form.ContractMonths = s.global
}

func (s *Session) baseInputChanged() {
	s.clearOverrides(false)
}

// clearOverrides drops computed-figure overrides, and rate overrides too when includeRates is set.
// Pending audit entries for dropped overrides go with them.
func (s *Session) clearOverrides(includeRates bool) {
	for _, f := range s.form.Overrides.Fields() {
		s.recorder.Discard(f)
	}
	s.form.Overrides.Reset()
	if includeRates {
		for _, f := range s.form.Rates.Fields() {
			s.recorder.Discard(f)
		}
		s.form.Rates.Reset()
	}
}

// Pin overrides a computed figure or a rate leaf, named directly or by its custom wire name.
// Unknown fields are ignored; reports whether the pin was applied.
func (s *Session) Pin(field string, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	field = s.fieldKey(field)
	value := override.Number(v)
	switch {
	case s.rule.IsRate(field):
		s.form.Rates.Pin(field, value)
	case s.isFigure(field):
		s.form.Overrides.Pin(field, value)
	default:
		return false
	}
	s.note(field, value)
	return true
}

// Unpin returns a field to its calculated value.
func (s *Session) Unpin(field string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	field = s.fieldKey(field)
	if s.rule.IsRate(field) {
		s.form.Rates.Unpin(field)
		s.note(field, s.eff.Config.Get(field))
		return
	}
	s.form.Overrides.Unpin(field)
	if v, ok := Compute(s.rule, s.form, s.eff.Config).Figure(field); ok {
		s.note(field, v)
	}
}

// fieldKey accepts a wire override name such as customPerVisitPrice in place of the field it
// overrides.
func (s *Session) fieldKey(field string) string {
	if s.rule.IsRate(field) || s.isFigure(field) {
		return field
	}
	if name, ok := override.FieldName(field); ok {
		return name
	}
	return field
}

func (s *Session) isFigure(field string) bool {
	_, ok := Compute(s.rule, s.form, s.eff.Config).Figure(field)
	return ok
}

func (s *Session) note(field string, v float64) {
	in := s.form.Inputs()
	s.recorder.Note(field, s.rule.FieldDisplayName(field), v, s.rule.QualifyingCount(in), s.frequency())
}

func (s *Session) frequency() frequency.Key {
	if s.form.Frequency == "" {
		return s.rule.DefaultFrequency
	}
	return s.form.Frequency
}

// AddCustomRow appends an ad-hoc row. Rows are not base inputs and leave overrides alone.
func (s *Session) AddCustomRow(row pricing.CustomRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.CustomRows = append(s.form.CustomRows, row)
}

// Result recomputes the quote from the current state.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Compute(s.rule, s.form, s.eff.Config)
}

// Form returns a copy of the current form.
func (s *Session) Form() FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Clone()
}

// Effective returns the config in use and whether it is the static default.
func (s *Session) Effective() rates.Effective {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eff
}

func (s *Session) Link() ContractLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link
}

// PendingChanges returns the audit entries not yet flushed.
func (s *Session) PendingChanges() []audit.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder.Pending()
}

// Flush sends pending audit entries to sink.
func (s *Session) Flush(ctx context.Context, sink audit.Sink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder.Flush(ctx, sink)
}
