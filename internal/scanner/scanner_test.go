package scanner_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/alejandrodnm/surebet/internal/ports"
	"github.com/alejandrodnm/surebet/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mu       sync.Mutex
	notified []domain.OpportunitySet
	err      error
}

func (m *mockNotifier) Notify(_ context.Context, set domain.OpportunitySet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = append(m.notified, set)
	return m.err
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notified)
}

func TestScanner_RunOnceNotifies(t *testing.T) {
	live := &fakeProvider{name: "live", res: ports.FetchResult{Events: liveEvents()}}
	notifier := &mockNotifier{}
	s := scanner.New(scanner.Config{Once: true}, newService(nil, live, allOn(), nil), notifier)

	require.NoError(t, s.Run(context.Background()))
	require.Equal(t, 1, notifier.count())
	assert.Equal(t, 1, notifier.notified[0].Count)
}

func TestScanner_NotifierErrorIsNotFatal(t *testing.T) {
	live := &fakeProvider{name: "live", res: ports.FetchResult{Events: liveEvents()}}
	notifier := &mockNotifier{err: errors.New("stdout closed")}
	s := scanner.New(scanner.Config{Once: true}, newService(nil, live, allOn(), nil), notifier)

	assert.NoError(t, s.Run(context.Background()))
}

func TestScanner_AllFailedWithoutHistoryReturnsError(t *testing.T) {
	live := &fakeProvider{name: "live", err: errors.New("down")}
	notifier := &mockNotifier{}
	s := scanner.New(scanner.Config{Once: true}, newService(nil, live, allOn(), nil), notifier)

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, scanner.ErrAllSourcesFailed)
	assert.Equal(t, 0, notifier.count())
}

func TestScanner_AllFailedFallsBackToLastKnown(t *testing.T) {
	store := &fakeStorage{}
	live := &fakeProvider{name: "live", res: ports.FetchResult{Events: liveEvents()}}
	svc := newService(nil, live, allOn(), store)

	// primer ciclo bueno: deja una lista persistida
	_, err := svc.GetOpportunities(context.Background(), scanner.Query{})
	require.NoError(t, err)

	live.err = errors.New("down")
	notifier := &mockNotifier{}
	s := scanner.New(scanner.Config{Once: true}, svc, notifier)

	require.NoError(t, s.Run(context.Background()))
	require.Equal(t, 1, notifier.count())
	got := notifier.notified[0]
	assert.True(t, got.IsFromCache)
	assert.Equal(t, 1, got.Count)
}

func TestScanner_LoopStopsOnCancel(t *testing.T) {
	live := &fakeProvider{name: "live", res: ports.FetchResult{Events: liveEvents()}}
	notifier := &mockNotifier{}
	s := scanner.New(scanner.Config{ScanInterval: 10 * time.Millisecond}, newService(nil, live, allOn(), nil), notifier)

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	require.NoError(t, s.Run(ctx))
	assert.GreaterOrEqual(t, notifier.count(), 2)
}

func TestScanner_RunOnceReturnsSet(t *testing.T) {
	live := &fakeProvider{name: "live", res: ports.FetchResult{Events: liveEvents()}}
	s := scanner.New(scanner.Config{}, newService(nil, live, allOn(), nil), nil)

	set, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, set.Count)
}
