//go:build !integration

package bandit

import (
	"context"
	"io"
	"sync"
	"testing"

	"recoEngine/domain"
	"recoEngine/pkg/logger"
)

func quietLogs(t *testing.T) {
	t.Helper()
	logger.SetOutput("production", io.Discard)
	t.Cleanup(func() { logger.Init("development") })
}

type memStore struct {
	mu        sync.Mutex
	records   map[string]map[string]domain.PerformanceRecord
	decisions []domain.Decision

	getErr    error
	incErr    error
	appendErr error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]map[string]domain.PerformanceRecord)}
}

func (m *memStore) seed(scope, name string, trials, successes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records[scope] == nil {
		m.records[scope] = make(map[string]domain.PerformanceRecord)
	}
	m.records[scope][name] = domain.PerformanceRecord{Scope: scope, StrategyName: name, Trials: trials, Successes: successes}
}

func (m *memStore) Get(_ context.Context, scope string, names []string) (map[string]domain.PerformanceRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.PerformanceRecord, len(names))
	for _, n := range names {
		if rec, ok := m.records[scope][n]; ok {
			out[n] = rec
		}
	}
	return out, nil
}

func (m *memStore) Increment(_ context.Context, scope, name string, success bool) error {
	if m.incErr != nil {
		return m.incErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records[scope] == nil {
		m.records[scope] = make(map[string]domain.PerformanceRecord)
	}
	rec := m.records[scope][name]
	rec.Scope, rec.StrategyName = scope, name
	rec.Trials++
	if success {
		rec.Successes++
	}
	m.records[scope][name] = rec
	return nil
}

func (m *memStore) AppendDecision(_ context.Context, d domain.Decision) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, d)
	return nil
}

func (m *memStore) record(scope, name string) domain.PerformanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[scope][name]
}

func (m *memStore) decisionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.decisions)
}

type fakeExperiments struct {
	experiments map[string]domain.Experiment
	variants    map[uint64][]domain.ExperimentVariant
	err         error
}

func (f *fakeExperiments) FindByName(_ context.Context, name string) (domain.Experiment, bool, error) {
	if f.err != nil {
		return domain.Experiment{}, false, f.err
	}
	e, ok := f.experiments[name]
	return e, ok, nil
}

func (f *fakeExperiments) Variants(_ context.Context, id uint64) ([]domain.ExperimentVariant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.variants[id], nil
}
