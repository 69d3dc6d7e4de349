package mqtt

import (
	"fmt"
	"sync"

	"github.com/kilianp07/tacho/core/compliance"
	coremqtt "github.com/kilianp07/tacho/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher records published reports in memory.
type MockPublisher struct {
	Reports map[string][]compliance.Report
	FailIDs map[string]bool
	mu      sync.Mutex
	seq     int
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Reports: make(map[string][]compliance.Report),
		FailIDs: make(map[string]bool),
	}
}

// PublishReport records the report or returns an error if configured to fail.
func (m *MockPublisher) PublishReport(vehicleID string, rep compliance.Report) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[vehicleID] {
		return "", fmt.Errorf("publish failed")
	}
	m.Reports[vehicleID] = append(m.Reports[vehicleID], rep)
	m.seq++
	return fmt.Sprintf("msg-%d", m.seq), nil
}

// Count returns the number of reports recorded for the vehicle.
func (m *MockPublisher) Count(vehicleID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Reports[vehicleID])
}
