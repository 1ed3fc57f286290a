package insights

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sofa/agi"
	"sofa/structs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	events []agi.EventProjection
	entry  *structs.InsightEntry
}

func (s *fakeStore) OwnedEvents(ctx context.Context, userID string) ([]agi.EventProjection, error) {
	return s.events, nil
}

func (s *fakeStore) Entry(ctx context.Context, userID string) (*structs.InsightEntry, error) {
	return s.entry, nil
}

func (s *fakeStore) Upsert(ctx context.Context, entry structs.InsightEntry) error {
	s.entry = &entry
	return nil
}

type fakeGenerator struct {
	calls  int
	result agi.Insights
	err    error
}

func (g *fakeGenerator) GenerateAnalysis(title, description string, location, tags []string) (string, error) {
	return "", nil
}

func (g *fakeGenerator) GenerateInsights(events []agi.EventProjection) (agi.Insights, error) {
	g.calls++
	return g.result, g.err
}

func portfolio() []agi.EventProjection {
	return []agi.EventProjection{
		{EventID: "e1", AttendeeCount: 10, UpdatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)},
	}
}

func newTestService(store *fakeStore, gen *fakeGenerator, now time.Time) *Service {
	svc := NewService(store, gen)
	svc.now = func() time.Time { return now }
	return svc
}

func TestEmptyPortfolioSkipsGenerator(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{}
	svc := newTestService(store, gen, time.Now())

	result, err := svc.GetInsights(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, agi.Insights{Pros: []string{}, Cons: []string{}}, result)
	assert.Equal(t, 0, gen.calls)
}

func TestSecondCallWithin24hHitsCache(t *testing.T) {
	store := &fakeStore{events: portfolio()}
	gen := &fakeGenerator{result: agi.Insights{
		Pros: []string{"p1", "p2", "p3"},
		Cons: []string{"c1", "c2", "c3"},
	}}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, gen, now)

	first, err := svc.GetInsights(context.Background(), "u1")
	require.NoError(t, err)

	// 23 hours later, same portfolio
	svc.now = func() time.Time { return now.Add(23 * time.Hour) }
	second, err := svc.GetInsights(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls)
}

func TestExpiredEntryRegenerates(t *testing.T) {
	store := &fakeStore{events: portfolio()}
	gen := &fakeGenerator{result: agi.Insights{
		Pros: []string{"p1", "p2", "p3"},
		Cons: []string{"c1", "c2", "c3"},
	}}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, gen, now)

	_, err := svc.GetInsights(context.Background(), "u1")
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(25 * time.Hour) }
	_, err = svc.GetInsights(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls)
}

func TestChangedPortfolioBypassesStaleEntry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		events: portfolio(),
		entry: &structs.InsightEntry{
			UserID:      "u1",
			Hash:        "stale-hash-from-old-portfolio",
			Pros:        []string{"old1", "old2", "old3"},
			Cons:        []string{"old1", "old2", "old3"},
			LastUpdated: now.Add(-time.Hour), // still fresh by age
		},
	}
	gen := &fakeGenerator{result: agi.Insights{
		Pros: []string{"new1", "new2", "new3"},
		Cons: []string{"new1", "new2", "new3"},
	}}
	svc := newTestService(store, gen, now)

	result, err := svc.GetInsights(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, []string{"new1", "new2", "new3"}, result.Pros)

	// The single per-user entry was overwritten with the new hash
	require.NotNil(t, store.entry)
	assert.Equal(t, PortfolioHash(portfolio()), store.entry.Hash)
}

func TestConcurrentServiceCallsShareOneInstance(t *testing.T) {
	results := make([]*Service, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = service()
		}(i)
	}
	wg.Wait()

	for _, svc := range results {
		require.NotNil(t, svc)
		assert.Same(t, results[0], svc)
	}
}

func TestGeneratorFailureDegradesToEmpty(t *testing.T) {
	store := &fakeStore{events: portfolio()}
	gen := &fakeGenerator{err: errors.New("model overloaded")}
	svc := newTestService(store, gen, time.Now())

	result, err := svc.GetInsights(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, agi.Insights{Pros: []string{}, Cons: []string{}}, result)
	assert.Nil(t, store.entry, "failed generation must not be cached")
}
