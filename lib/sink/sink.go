// Package sink accumulates timestamped measurements for one acquisition
// run.
package sink

import (
	"sync"
	"time"
)

// Sample is one voltage/current reading, stamped with the elapsed time
// since the run began configuring the supply.
type Sample struct {
	Elapsed time.Duration
	Voltage float64 // volts
	Current float64 // amps
}

// Memory is an append-only, in-memory sample store. One Memory belongs
// to one run; the lock only exists so a control surface may snapshot
// while the run is still appending.
type Memory struct {
	mu      sync.Mutex
	samples []Sample
}

func NewMemory() *Memory { return &Memory{} }

// Append records s. Samples arrive in append order with strictly
// increasing Elapsed; there is no way to remove or edit one.
func (m *Memory) Append(s Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, s)
}

// All returns a copy of the recorded samples in append order.
func (m *Memory) All() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sample, len(m.samples))
	copy(out, m.samples)
	return out
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.samples)
}
