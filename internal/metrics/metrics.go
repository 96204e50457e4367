// Package metrics records operational measurements of the tracker engine.
package metrics

import "time"

// Recorder receives measurements from the tracker manager.
type Recorder interface {
	// ObserveFlush records one write of the full state to the durable store.
	ObserveFlush(d time.Duration, err error)
	// ObserveReload records one replacement of the state from the durable
	// store.
	ObserveReload(err error)
	// SetTrackers records the number of trackers and whether one is running.
	SetTrackers(total int, running bool)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

var _ Recorder = (*NopMetrics)(nil)

// NewNop creates a new no-op recorder.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

func (n *NopMetrics) ObserveFlush(_ time.Duration, _ error) {}

func (n *NopMetrics) ObserveReload(_ error) {}

func (n *NopMetrics) SetTrackers(_ int, _ bool) {}
