package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveTransition(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry(), "appointment-service")

	m.ObserveTransition("confirm", "ok")
	m.ObserveTransition("confirm", "ok")
	m.ObserveTransition("confirm", "invalid_transition")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("confirm", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("confirm", "invalid_transition")))
}

func TestObserveTransition_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveTransition("start", "ok") })
}
