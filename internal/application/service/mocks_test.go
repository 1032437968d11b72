package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/provalon/quality-engine/internal/domain/entity"
	"github.com/provalon/quality-engine/internal/domain/qerrors"
	"github.com/provalon/quality-engine/internal/domain/status"
)

// Mock repositories

type mockStatusRepo struct {
	mu       sync.Mutex
	statuses map[string]string // key: entityType/entityID
	getCalls int
	// getCurrentFunc overrides lookup when set
	getCurrentFunc func(call int) (string, bool, error)
}

func newMockStatusRepo() *mockStatusRepo {
	return &mockStatusRepo{statuses: make(map[string]string)}
}

func statusKey(entityType status.EntityType, entityID string) string {
	return string(entityType) + "/" + entityID
}

func (m *mockStatusRepo) GetCurrent(ctx context.Context, orgID string, entityType status.EntityType, entityID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getCurrentFunc != nil {
		return m.getCurrentFunc(m.getCalls)
	}
	s, ok := m.statuses[statusKey(entityType, entityID)]
	return s, ok, nil
}

func (m *mockStatusRepo) SetCurrent(ctx context.Context, orgID string, entityType status.EntityType, entityID string, newStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[statusKey(entityType, entityID)] = newStatus
	return nil
}

func (m *mockStatusRepo) Register(ctx context.Context, orgID string, entityType status.EntityType, entityID string, initial string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := statusKey(entityType, entityID)
	if _, exists := m.statuses[key]; exists {
		return fmt.Errorf("entity already registered: %s", key)
	}
	m.statuses[key] = initial
	return nil
}

type mockHistoryRepo struct {
	mu      sync.Mutex
	entries []*entity.StatusHistoryEntry
	nextID  int
}

func (m *mockHistoryRepo) Append(ctx context.Context, e *entity.StatusHistoryEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = fmt.Sprintf("hist-%d", m.nextID)
	m.entries = append(m.entries, e)
	return e.ID, nil
}

func (m *mockHistoryRepo) ListByEntity(ctx context.Context, orgID string, entityType status.EntityType, entityID string, limit, offset int) ([]*entity.StatusHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// newest first
	var out []*entity.StatusHistoryEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	if out == nil {
		out = []*entity.StatusHistoryEntry{}
	}
	return out, nil
}

func (m *mockHistoryRepo) last() *entity.StatusHistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return nil
	}
	return m.entries[len(m.entries)-1]
}

type mockInspectionRepo struct {
	exists bool
	err    error
}

func (m *mockInspectionRepo) ExistsForEntity(ctx context.Context, orgID string, entityType status.EntityType, entityID string) (bool, error) {
	return m.exists, m.err
}

type mockUserRepo struct {
	users map[string]*entity.User
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	if u, ok := m.users[userID]; ok {
		return u, nil
	}
	return nil, &qerrors.NotFoundError{Resource: "user", ID: userID}
}

type mockSequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
}

func newMockSequenceRepo() *mockSequenceRepo {
	return &mockSequenceRepo{counters: make(map[string]int64)}
}

func (m *mockSequenceRepo) Increment(ctx context.Context, orgID, prefix string, year int) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s/%s/%d", orgID, prefix, year)
	m.counters[key]++
	return m.counters[key], nil
}

type mockNCRRepo struct {
	mu   sync.Mutex
	ncrs map[string]*entity.NCR
	// getByIDFunc overrides lookup when set
	getByIDFunc func(call int) (*entity.NCR, error)
	getCalls    int
}

func newMockNCRRepo() *mockNCRRepo {
	return &mockNCRRepo{ncrs: make(map[string]*entity.NCR)}
}

func (m *mockNCRRepo) Create(ctx context.Context, ncr *entity.NCR) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ncr
	m.ncrs[ncr.ID] = &cp
	return nil
}

func (m *mockNCRRepo) GetByID(ctx context.Context, orgID, id string) (*entity.NCR, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getByIDFunc != nil {
		return m.getByIDFunc(m.getCalls)
	}
	if ncr, ok := m.ncrs[id]; ok {
		cp := *ncr
		return &cp, nil
	}
	return nil, &qerrors.NotFoundError{Resource: "ncr", ID: id}
}

func (m *mockNCRRepo) UpdateStatus(ctx context.Context, orgID, id, newStatus string, closedBy *string, closedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ncr, ok := m.ncrs[id]
	if !ok {
		return &qerrors.NotFoundError{Resource: "ncr", ID: id}
	}
	ncr.Status = newStatus
	ncr.ClosedBy = closedBy
	ncr.ClosedAt = closedAt
	return nil
}

func (m *mockNCRRepo) List(ctx context.Context, orgID string, limit, offset int) ([]*entity.NCR, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.NCR{}
	for _, ncr := range m.ncrs {
		cp := *ncr
		out = append(out, &cp)
	}
	return out, nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
