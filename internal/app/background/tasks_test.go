package background

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngest struct {
	mu    sync.Mutex
	rates []*domain.CompetitorRate
}

func (f *fakeIngest) IngestCompetitorRates(_ context.Context, rates []*domain.CompetitorRate) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rates = append(f.rates, rates...)
	return len(rates), nil
}

type fakeCycle struct {
	mu    sync.Mutex
	calls []domain.CycleRequest
}

func (f *fakeCycle) RunCycle(_ context.Context, req domain.CycleRequest) (*domain.CycleSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return &domain.CycleSummary{RunID: "run"}, nil
}

func (f *fakeCycle) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestDecodeCompetitorRates(t *testing.T) {
	single := []byte(`{"competitor_id":"HOTEL_A","room_label":"Deluxe King","date":"2025-06-10","rate":260,"observed_at":"2025-06-09T10:00:00Z"}`)
	rates, err := decodeCompetitorRates(single)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.True(t, rates[0].Available)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), rates[0].Date)

	batch := []byte(`[{"competitor_id":"HOTEL_A","room_label":"Deluxe","date":"2025-06-10","rate":260},{"competitor_id":"HOTEL_B","room_label":"Deluxe","date":"2025-06-10","rate":0,"available":false}]`)
	rates, err = decodeCompetitorRates(batch)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.False(t, rates[1].Available)

	_, err = decodeCompetitorRates([]byte(`{"competitor_id":"HOTEL_A","date":"10/06/2025"}`))
	assert.Error(t, err)
}

func TestConsumeCompetitorFeed_SkipsBadMessages(t *testing.T) {
	ingest := &fakeIngest{}
	bt := NewBackgroundTasks(nil, ingest, nil, 0, "feed", "rms", nil)

	msgs := make(chan domain.Message, 3)
	msgs <- domain.Message{Value: []byte(`not json`)}
	msgs <- domain.Message{Value: []byte(`{"competitor_id":"HOTEL_A","room_label":"Deluxe","date":"2025-06-10","rate":260}`)}
	msgs <- domain.Message{Value: []byte(`{"competitor_id":"HOTEL_B","room_label":"Deluxe","date":"2025-06-10","rate":270}`)}
	close(msgs)

	bt.consumeCompetitorFeed(context.Background(), msgs)
	assert.Len(t, ingest.rates, 2)
}

func TestScheduledCycle_RunsUntilCanceled(t *testing.T) {
	cycle := &fakeCycle{}
	bt := NewBackgroundTasks(cycle, nil, nil, 10*time.Millisecond, "", "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	bt.StartAll(ctx)

	require.Eventually(t, func() bool { return cycle.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	cycle.mu.Lock()
	defer cycle.mu.Unlock()
	assert.Equal(t, "schedule", cycle.calls[0].Trigger)
}
