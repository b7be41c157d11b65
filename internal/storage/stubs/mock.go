package stubs

import (
	"context"
	"sort"
	"sync"
	"time"

	"cryptomate/internal/models"
)

// MockDB is an in-memory implementation of the Storage interface for testing and local runs
type MockDB struct {
	mu      sync.RWMutex
	records []models.ExchangeRecord
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		records: make([]models.ExchangeRecord, 0),
	}
}

// Initialize is a no-op for the in-memory log
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// SaveExchange appends a record
func (m *MockDB) SaveExchange(ctx context.Context, record models.ExchangeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	m.records = append(m.records, record)
	return nil
}

// LastExchanges returns the newest records first
func (m *MockDB) LastExchanges(ctx context.Context, userID int64, limit int) ([]models.ExchangeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.ExchangeRecord
	for _, r := range m.records {
		if userID == 0 || r.UserID == userID {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TopPairs aggregates records by resolved pair
func (m *MockDB) TopPairs(ctx context.Context, limit int, since time.Time) ([]models.PairStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type pair struct{ give, get string }
	counts := make(map[pair]int)
	for _, r := range m.records {
		if r.CreatedAt.Before(since) {
			continue
		}
		counts[pair{r.GiveCode, r.GetCode}]++
	}

	stats := make([]models.PairStat, 0, len(counts))
	for p, c := range counts {
		stats = append(stats, models.PairStat{GiveCode: p.give, GetCode: p.get, Count: c})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		if stats[i].GiveCode != stats[j].GiveCode {
			return stats[i].GiveCode < stats[j].GiveCode
		}
		return stats[i].GetCode < stats[j].GetCode
	})

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

// Close is a no-op
func (m *MockDB) Close() error {
	return nil
}
