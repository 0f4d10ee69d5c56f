package executor

import "sync"

// InMemoryMetricsSink counts fetch errors per service and code. It backs
// local development and tests; production deployments wire a real metrics
// backend behind the same MetricsSink interface.
type InMemoryMetricsSink struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewInMemoryMetricsSink builds an empty sink.
func NewInMemoryMetricsSink() *InMemoryMetricsSink {
	return &InMemoryMetricsSink{counts: map[string]int{}}
}

func (s *InMemoryMetricsSink) IncFetchError(service, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[service+"|"+code]++
}

// Count returns how many times service/code has been observed.
func (s *InMemoryMetricsSink) Count(service, code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[service+"|"+code]
}
