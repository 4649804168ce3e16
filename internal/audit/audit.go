// Package audit records manual edits against a baseline for the change log.
package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
)

// Change is one field whose value differs from its baseline.
type Change struct {
	ID               uuid.UUID     `json:"id"`
	ServiceID        string        `json:"serviceId"`
	FieldKey         string        `json:"fieldKey"`
	FieldDisplayName string        `json:"fieldDisplayName"`
	OriginalValue    float64       `json:"originalValue"`
	NewValue         float64       `json:"newValue"`
	Quantity         float64       `json:"quantity"`
	Frequency        frequency.Key `json:"frequency"`
	RecordedAt       time.Time     `json:"recordedAt"`
}

// Baseline holds each overridable field's value at first load.
type Baseline map[string]float64

// Sink receives flushed changes.
type Sink interface {
	Record(ctx context.Context, changes []Change) error
}

// Recorder collapses edits per field against the original baseline. It is not safe for
// concurrent use; callers own its synchronization.
type Recorder struct {
	serviceID string
	baseline  Baseline
	pending   map[string]Change
	order     []string
	now       func() time.Time
}

// NewRecorder creates a recorder for serviceID.
func NewRecorder(serviceID string, baseline Baseline) *Recorder {
	b := make(Baseline, len(baseline))
	for k, v := range baseline {
		b[k] = v
	}
	return &Recorder{
		serviceID: serviceID,
		baseline:  b,
		pending:   map[string]Change{},
		now:       time.Now,
	}
}

// Baseline sets field's baseline unless one is already recorded.
func (r *Recorder) Baseline(field string, v float64) {
	if _, ok := r.baseline[field]; !ok {
		r.baseline[field] = v
	}
}

// HasBaseline reports whether field can be audited.
func (r *Recorder) HasBaseline(field string) bool {
	_, ok := r.baseline[field]
	return ok
}

// Note records field's new value. Fields without a baseline are ignored. An edit back to the
// baseline drops any pending entry for the field. Reports whether a change is now pending.
func (r *Recorder) Note(field, displayName string, newValue, quantity float64, freq frequency.Key) bool {
	original, ok := r.baseline[field]
	if !ok {
		return false
	}
	if newValue == original {
		r.Discard(field)
		return false
	}

	c, pending := r.pending[field]
	if !pending {
		c = Change{
			ID:            uuid.New(),
			ServiceID:     r.serviceID,
			FieldKey:      field,
			OriginalValue: original,
		}
		r.order = append(r.order, field)
	}
	c.FieldDisplayName = displayName
	c.NewValue = newValue
	c.Quantity = quantity
	c.Frequency = freq
	c.RecordedAt = r.now()
	r.pending[field] = c
	return true
}

// Discard drops the pending entry for field, if any.
func (r *Recorder) Discard(field string) {
	if _, ok := r.pending[field]; ok {
		delete(r.pending, field)
		r.order = remove(r.order, field)
	}
}

// Pending returns the pending changes in first-edit order.
func (r *Recorder) Pending() []Change {
	out := make([]Change, 0, len(r.order))
	for _, f := range r.order {
		out = append(out, r.pending[f])
	}
	return out
}

// Flush sends pending changes to sink. On success the new values become the baseline.
func (r *Recorder) Flush(ctx context.Context, sink Sink) error {
	changes := r.Pending()
	if len(changes) == 0 {
		return nil
	}
	if err := sink.Record(ctx, changes); err != nil {
		return err
	}
	for _, c := range changes {
		r.baseline[c.FieldKey] = c.NewValue
	}
	r.pending = map[string]Change{}
	r.order = nil
	return nil
}

func remove(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// MemorySink keeps changes in memory.
type MemorySink struct {
	mu      sync.Mutex
	changes []Change
}

func (m *MemorySink) Record(_ context.Context, changes []Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, changes...)
	return nil
}

// Changes returns a copy of everything recorded.
func (m *MemorySink) Changes() []Change {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Change(nil), m.changes...)
}

// LogSink writes each change as a structured log entry.
type LogSink struct {
	Logger *zap.Logger
}

func (l LogSink) Record(_ context.Context, changes []Change) error {
	for _, c := range changes {
		l.Logger.Info("price override",
			zap.String("change_id", c.ID.String()),
			zap.String("service", c.ServiceID),
			zap.String("field", c.FieldKey),
			zap.String("field_name", c.FieldDisplayName),
			zap.Float64("original", c.OriginalValue),
			zap.Float64("new", c.NewValue),
			zap.Float64("quantity", c.Quantity),
			zap.Stringer("frequency", c.Frequency),
		)
	}
	return nil
}

// MultiSink fans out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Record(ctx context.Context, changes []Change) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, changes); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
