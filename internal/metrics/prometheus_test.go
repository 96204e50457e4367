package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.ObserveFlush(time.Millisecond, nil)
	p.ObserveFlush(time.Millisecond, errors.New("disk full"))
	p.ObserveReload(nil)
	p.SetTrackers(3, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.flushes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.flushes.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.reloads.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.trackers))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.trackerRunning))

	p.SetTrackers(0, false)
	assert.Equal(t, 0.0, testutil.ToFloat64(p.trackerRunning))
}
