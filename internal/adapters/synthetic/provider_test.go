package synthetic_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/surebet/internal/adapters/synthetic"
	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/alejandrodnm/surebet/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 16, 12, 30, 0, 0, time.UTC) }

func TestProvider_FiltersBySport(t *testing.T) {
	p := synthetic.NewProvider(fixedNow)

	res, err := p.FetchOdds(context.Background(), ports.FetchRequest{Sports: []string{"soccer_epl"}})
	require.NoError(t, err)
	require.Len(t, res.Events, 2)
	for _, ev := range res.Events {
		assert.Equal(t, "soccer_epl", ev.SportKey)
	}
	assert.False(t, res.FromCache)
	assert.Equal(t, "mock", p.Name())
}

func TestProvider_AllSportsWhenEmpty(t *testing.T) {
	p := synthetic.NewProvider(fixedNow)

	res, err := p.FetchOdds(context.Background(), ports.FetchRequest{})
	require.NoError(t, err)
	assert.Len(t, res.Events, 5)

	none, err := p.FetchOdds(context.Background(), ports.FetchRequest{Sports: []string{"icehockey_nhl"}})
	require.NoError(t, err)
	assert.Empty(t, none.Events)
}

func TestProvider_Deterministic(t *testing.T) {
	p := synthetic.NewProvider(fixedNow)
	a, err := p.FetchOdds(context.Background(), ports.FetchRequest{})
	require.NoError(t, err)
	b, err := p.FetchOdds(context.Background(), ports.FetchRequest{})
	require.NoError(t, err)
	assert.Equal(t, a.Events, b.Events)
}

func TestProvider_CanceledContext(t *testing.T) {
	p := synthetic.NewProvider(fixedNow)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.FetchOdds(ctx, ports.FetchRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

// El catálogo tiene que cubrir casos con y sin surebet.
func TestEvents_ArbitrageMix(t *testing.T) {
	want := map[string]bool{
		"mock-nba-1": true,
		"mock-nba-2": false,
		"mock-epl-1": true,
		"mock-epl-2": false,
		"mock-nfl-1": true,
	}

	for _, ev := range synthetic.Events(fixedNow()) {
		bets := domain.SelectBestPrices(ev, domain.MarketH2H)
		res, err := domain.EvaluateArbitrage(bets, domain.DefaultTotalStake)
		require.NoError(t, err, ev.ID)
		assert.Equal(t, want[ev.ID], res.HasArbitrage, ev.ID)
	}
}

func TestEvents_TwoWayArbProfit(t *testing.T) {
	ev := synthetic.Events(fixedNow())[0]
	bets := domain.SelectBestPrices(ev, domain.MarketH2H)
	require.Len(t, bets, 2)

	res, err := domain.EvaluateArbitrage(bets, domain.DefaultTotalStake)
	require.NoError(t, err)
	assert.InDelta(t, 4.76, res.ProfitPercentage, 0.01)
	assert.Equal(t, []float64{500, 500}, res.Stakes)
}
