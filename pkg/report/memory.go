package report

import (
	"encoding/json"
	"sync"
	"time"
)

// RecordedAttack is one attack report held by the MemoryReporter.
type RecordedAttack struct {
	Time    time.Time
	Payload json.RawMessage
	ReqCtx  any
}

// MemoryReporter retains attack reports in memory, for tests and
// introspection endpoints. It is safe for concurrent use.
type MemoryReporter struct {
	mu      sync.Mutex
	attacks []RecordedAttack
}

// NewMemoryReporter creates an empty in-memory reporter.
func NewMemoryReporter() *MemoryReporter {
	return &MemoryReporter{}
}

// ReportAttack implements Reporter.
func (m *MemoryReporter) ReportAttack(payload json.RawMessage, reqCtx any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attacks = append(m.attacks, RecordedAttack{
		Time:    time.Now(),
		Payload: payload,
		ReqCtx:  reqCtx,
	})
}

// Attacks returns a copy of every recorded attack.
func (m *MemoryReporter) Attacks() []RecordedAttack {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedAttack, len(m.attacks))
	copy(out, m.attacks)
	return out
}

// Reset drops all recorded attacks.
func (m *MemoryReporter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attacks = nil
}
