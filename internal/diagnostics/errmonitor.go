package diagnostics

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskbell/taskbell/internal/faults"
)

// ErrorMonitor keeps a bounded in-memory history of classified delivery
// failures. The bound is enforced at insertion: once full, the oldest record
// is evicted. Recording never fails and never blocks delivery.
type ErrorMonitor struct {
	mu      sync.RWMutex
	records []faults.Record
	max     int
	device  *faults.DeviceInfo
	now     func() time.Time
}

// DefaultHistorySize bounds the ring when no explicit size is configured.
const DefaultHistorySize = 50

func NewErrorMonitor(max int, device *faults.DeviceInfo) *ErrorMonitor {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &ErrorMonitor{
		records: make([]faults.Record, 0, max),
		max:     max,
		device:  device,
		now:     time.Now,
	}
}

// Record classifies and appends a failure, evicting the oldest entry when the
// buffer is full.
func (m *ErrorMonitor) Record(err error) {
	if err == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := faults.Record{
		ID:        uuid.New().String(),
		Kind:      faults.Classify(err),
		Message:   err.Error(),
		Timestamp: m.now(),
		Device:    m.device,
	}

	if len(m.records) >= m.max {
		copy(m.records, m.records[1:])
		m.records[len(m.records)-1] = rec
		return
	}
	m.records = append(m.records, rec)
}

// History returns up to limit of the most recent records, oldest first.
// limit <= 0 returns the whole history.
func (m *ErrorMonitor) History(limit int) []faults.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]faults.Record, n)
	copy(out, m.records[len(m.records)-n:])
	return out
}

// Clear drops the entire history.
func (m *ErrorMonitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = m.records[:0]
}

// Export serializes the history as a downloadable JSON artifact. The
// suggested filename carries a date stamp.
func (m *ErrorMonitor) Export() (filename string, data []byte, err error) {
	m.mu.RLock()
	records := make([]faults.Record, len(m.records))
	copy(records, m.records)
	now := m.now()
	m.mu.RUnlock()

	data, err = json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("marshal error history: %w", err)
	}
	filename = fmt.Sprintf("taskbell-errors-%s.json", now.Format("2006-01-02"))
	return filename, data, nil
}
