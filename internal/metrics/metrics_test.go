package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Search(OutcomeAllowed)
	m.Search(OutcomeAllowed)
	m.Search(OutcomeDenied)
	m.Sync(true)
	m.Cache(true)
	m.Cache(false)
	m.Event("device.quota_exhausted", nil)
	m.Event("device.quota_exhausted", errors.New("closed"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Searches.WithLabelValues(OutcomeAllowed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues(OutcomeDenied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Syncs.WithLabelValues("offline")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Syncs.WithLabelValues("online")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookup.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("device.quota_exhausted", "failed")))
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Search(OutcomeAllowed)
		m.Sync(false)
		m.Cache(true)
		m.Event("x", nil)
	})
}
