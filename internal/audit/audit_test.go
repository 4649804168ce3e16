package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/frequency"
)

func TestRepeatedEditsCollapseAgainstOriginal(t *testing.T) {
	r := NewRecorder("saniclean", Baseline{"perVisitPrice": 40})

	assert.True(t, r.Note("perVisitPrice", "Per Visit Price", 45, 3, frequency.Weekly))
	first := r.Pending()[0].ID
	assert.True(t, r.Note("perVisitPrice", "Per Visit Price", 50, 3, frequency.Weekly))

	pending := r.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 40.0, pending[0].OriginalValue)
	assert.Equal(t, 50.0, pending[0].NewValue)
	assert.Equal(t, first, pending[0].ID)
	assert.Equal(t, "saniclean", pending[0].ServiceID)
}

func TestEditBackToBaselineDropsEntry(t *testing.T) {
	r := NewRecorder("saniclean", Baseline{"perVisitPrice": 40, "contractTotal": 2000})
	r.Note("perVisitPrice", "Per Visit Price", 45, 3, frequency.Weekly)
	r.Note("contractTotal", "Contract Total", 2100, 3, frequency.Weekly)

	assert.False(t, r.Note("perVisitPrice", "Per Visit Price", 40, 3, frequency.Weekly))

	pending := r.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "contractTotal", pending[0].FieldKey)
}

func TestFieldWithoutBaselineIsIgnored(t *testing.T) {
	r := NewRecorder("saniclean", nil)

	assert.False(t, r.Note("perVisitPrice", "Per Visit Price", 45, 3, frequency.Weekly))
	assert.Empty(t, r.Pending())

	r.Baseline("perVisitPrice", 40)
	r.Baseline("perVisitPrice", 99)
	assert.True(t, r.Note("perVisitPrice", "Per Visit Price", 45, 3, frequency.Weekly))
	assert.Equal(t, 40.0, r.Pending()[0].OriginalValue, "first baseline sticks")
}

func TestFlushAdvancesBaseline(t *testing.T) {
	var sink MemorySink
	r := NewRecorder("sanipod", Baseline{"pods": 70})
	r.Note("pods", "Pods", 60, 10, frequency.Biweekly)

	require.NoError(t, r.Flush(context.Background(), &sink))
	require.Len(t, sink.Changes(), 1)
	assert.Empty(t, r.Pending())

	assert.False(t, r.Note("pods", "Pods", 60, 10, frequency.Biweekly), "saved value is the new baseline")
	assert.NoError(t, r.Flush(context.Background(), &sink))
	assert.Len(t, sink.Changes(), 1)
}

type failingSink struct{}

func (failingSink) Record(context.Context, []Change) error { return errors.New("disk full") }

func TestFlushFailureKeepsPending(t *testing.T) {
	r := NewRecorder("sanipod", Baseline{"pods": 70})
	r.Note("pods", "Pods", 60, 10, frequency.Weekly)

	err := r.Flush(context.Background(), MultiSink{&MemorySink{}, failingSink{}})
	assert.EqualError(t, err, "disk full")
	assert.Len(t, r.Pending(), 1)
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := LogSink{Logger: zap.New(core)}

	r := NewRecorder("saniclean", Baseline{"tripCharge": 8})
	r.Note("tripCharge", "Trip Charge", 0, 3, frequency.Monthly)
	require.NoError(t, r.Flush(context.Background(), sink))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "tripCharge", fields["field"])
	assert.Equal(t, 8.0, fields["original"])
	assert.Equal(t, "monthly", fields["frequency"])
}
