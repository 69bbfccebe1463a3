package scanner_test

import (
	"testing"
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/alejandrodnm/surebet/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cycleAt = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

// makeEvent crea un evento h2h donde cada bookmaker i ofrece prices[i] para
// el outcome i y 1.01 para el resto.
func makeEvent(id string, books []string, prices []float64) domain.Event {
	names := make([]string, len(prices))
	for i := range prices {
		names[i] = string(rune('A' + i))
	}
	ev := domain.Event{ID: id, SportKey: "soccer_epl", HomeTeam: "Home " + id, AwayTeam: "Away " + id,
		CommenceTime: cycleAt.Add(24 * time.Hour)}
	for i, key := range books {
		m := domain.Market{Key: domain.MarketH2H}
		for j, n := range names {
			p := 1.01
			if j == i {
				p = prices[i]
			}
			m.Outcomes = append(m.Outcomes, domain.Outcome{Name: n, Price: p})
		}
		ev.Bookmakers = append(ev.Bookmakers, domain.Bookmaker{Key: key, Markets: []domain.Market{m}})
	}
	return ev
}

func TestFindOpportunities_SortedByProfit(t *testing.T) {
	// T: small≈99.01, none≈105.26, big≈95.24, three≈97.57
	events := []domain.Event{
		makeEvent("small", []string{"a", "b"}, []float64{2.02, 2.02}),
		makeEvent("none", []string{"a", "b"}, []float64{1.90, 1.90}),
		makeEvent("big", []string{"a", "b"}, []float64{2.10, 2.10}),
		makeEvent("three", []string{"a", "b", "c"}, []float64{2.5, 3.2, 3.8}),
	}

	opps := scanner.FindOpportunities(events, scanner.AssembleOptions{Now: cycleAt})
	require.Len(t, opps, 3)
	assert.Equal(t, "big", opps[0].EventID)
	assert.Equal(t, "three", opps[1].EventID)
	assert.Equal(t, "small", opps[2].EventID)

	for i := 1; i < len(opps); i++ {
		assert.GreaterOrEqual(t, opps[i-1].ProfitPercentage, opps[i].ProfitPercentage)
	}

	big := opps[0]
	assert.InDelta(t, 4.76, big.ProfitPercentage, 0.01)
	assert.Equal(t, domain.DefaultTotalStake, big.TotalStake)
	assert.Equal(t, domain.MarketH2H, big.Market)
	assert.Equal(t, cycleAt, big.DiscoveredAt)
	assert.Equal(t, domain.OpportunityID("big", domain.MarketH2H, cycleAt), big.ID)
	require.Len(t, big.Bets, 2)
	assert.Equal(t, 500.0, big.Bets[0].Stake)
	assert.Equal(t, "a", big.Bets[0].Source)
	assert.Equal(t, "b", big.Bets[1].Source)
}

func TestFindOpportunities_StableOnTies(t *testing.T) {
	events := []domain.Event{
		makeEvent("first", []string{"a", "b"}, []float64{2.10, 2.10}),
		makeEvent("second", []string{"c", "d"}, []float64{2.10, 2.10}),
		makeEvent("third", []string{"e", "f"}, []float64{2.10, 2.10}),
	}

	opps := scanner.FindOpportunities(events, scanner.AssembleOptions{Now: cycleAt})
	require.Len(t, opps, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{opps[0].EventID, opps[1].EventID, opps[2].EventID})
}

func TestFindOpportunities_MinProfit(t *testing.T) {
	events := []domain.Event{
		makeEvent("small", []string{"a", "b"}, []float64{2.02, 2.02}),
		makeEvent("big", []string{"a", "b"}, []float64{2.10, 2.10}),
	}

	opps := scanner.FindOpportunities(events, scanner.AssembleOptions{MinProfitPct: 2, Now: cycleAt})
	require.Len(t, opps, 1)
	assert.Equal(t, "big", opps[0].EventID)

	// el umbral es inclusivo
	opps = scanner.FindOpportunities(events, scanner.AssembleOptions{MinProfitPct: 4.76, Now: cycleAt})
	assert.Len(t, opps, 1)
}

func TestFindOpportunities_SkipsSingleOutcomeAndMissingMarket(t *testing.T) {
	single := domain.Event{ID: "single", Bookmakers: []domain.Bookmaker{
		{Key: "a", Markets: []domain.Market{{Key: domain.MarketH2H, Outcomes: []domain.Outcome{{Name: "A", Price: 50}}}}},
	}}
	noMarket := makeEvent("nomarket", []string{"a", "b"}, []float64{2.10, 2.10})

	assert.Empty(t, scanner.FindOpportunities([]domain.Event{single}, scanner.AssembleOptions{}))
	assert.Empty(t, scanner.FindOpportunities([]domain.Event{noMarket}, scanner.AssembleOptions{MarketKey: domain.MarketTotals}))
	assert.NotNil(t, scanner.FindOpportunities(nil, scanner.AssembleOptions{}))
}

func TestFindOpportunities_CustomStake(t *testing.T) {
	events := []domain.Event{makeEvent("big", []string{"a", "b"}, []float64{2.10, 2.10})}

	opps := scanner.FindOpportunities(events, scanner.AssembleOptions{TotalStake: 200, Now: cycleAt})
	require.Len(t, opps, 1)
	assert.Equal(t, 200.0, opps[0].TotalStake)
	assert.Equal(t, 100.0, opps[0].Bets[0].Stake)
	assert.InDelta(t, 10.0, opps[0].GuaranteedProfit, 0.01)
}

func TestFilter_Bookmakers(t *testing.T) {
	events := []domain.Event{
		makeEvent("ab", []string{"a", "b"}, []float64{2.10, 2.10}),
		makeEvent("ac", []string{"a", "c"}, []float64{2.08, 2.08}),
	}
	opps := scanner.FindOpportunities(events, scanner.AssembleOptions{Now: cycleAt})
	require.Len(t, opps, 2)

	// todas las patas tienen que estar permitidas
	f := scanner.NewFilter(scanner.FilterConfig{Bookmakers: []string{"a", "b"}})
	got := f.Apply(opps)
	require.Len(t, got, 1)
	assert.Equal(t, "ab", got[0].EventID)

	assert.Len(t, scanner.NewFilter(scanner.FilterConfig{}).Apply(opps), 2)
	assert.Empty(t, scanner.NewFilter(scanner.FilterConfig{Bookmakers: []string{"a"}}).Apply(opps))
}

func lineEvent(id, market string, books map[string][]domain.Outcome, order ...string) domain.Event {
	ev := domain.Event{ID: id, SportKey: "basketball_nba", HomeTeam: "Home", AwayTeam: "Away",
		CommenceTime: cycleAt.Add(24 * time.Hour)}
	for _, key := range order {
		ev.Bookmakers = append(ev.Bookmakers, domain.Bookmaker{Key: key, Markets: []domain.Market{
			{Key: market, Outcomes: books[key]},
		}})
	}
	return ev
}

func TestFindOpportunities_TotalsDoNotMixLines(t *testing.T) {
	// Over 224.5 y Under 220.5 pierden las dos con un total entre 221 y 224
	ev := lineEvent("mixed", domain.MarketTotals, map[string][]domain.Outcome{
		"a": {{Name: "Over", Price: 2.10, Point: 224.5}},
		"b": {{Name: "Under", Price: 2.10, Point: 220.5}},
	}, "a", "b")

	opps := scanner.FindOpportunities([]domain.Event{ev}, scanner.AssembleOptions{MarketKey: domain.MarketTotals, Now: cycleAt})
	assert.Empty(t, opps)
}

func TestFindOpportunities_TotalsOnePerLine(t *testing.T) {
	ev := lineEvent("totals", domain.MarketTotals, map[string][]domain.Outcome{
		"a": {
			{Name: "Over", Price: 2.10, Point: 220.5},
			{Name: "Under", Price: 1.80, Point: 220.5},
			{Name: "Over", Price: 2.20, Point: 224.5},
		},
		"b": {
			{Name: "Over", Price: 1.80, Point: 220.5},
			{Name: "Under", Price: 2.10, Point: 220.5},
			{Name: "Under", Price: 2.20, Point: 224.5},
		},
	}, "a", "b")

	opps := scanner.FindOpportunities([]domain.Event{ev}, scanner.AssembleOptions{MarketKey: domain.MarketTotals, Now: cycleAt})
	require.Len(t, opps, 2)

	// 224.5: T≈90.91 va primero
	assert.Equal(t, "224.5", opps[0].Line)
	assert.Equal(t, "totals 224.5", opps[0].MarketLabel())
	assert.Equal(t, "Over 224.5", opps[0].Bets[0].Outcome)
	assert.Equal(t, "Under 224.5", opps[0].Bets[1].Outcome)

	assert.Equal(t, "220.5", opps[1].Line)
	assert.InDelta(t, 4.76, opps[1].ProfitPercentage, 0.01)
	assert.Equal(t, "a", opps[1].Bets[0].Source)
	assert.Equal(t, "b", opps[1].Bets[1].Source)

	assert.NotEqual(t, opps[0].ID, opps[1].ID)
}

func TestFindOpportunities_SpreadsPairOppositePoints(t *testing.T) {
	ev := lineEvent("spreads", domain.MarketSpreads, map[string][]domain.Outcome{
		"a": {
			{Name: "Home", Price: 2.10, Point: -3.5},
			{Name: "Away", Price: 1.80, Point: 3.5},
			{Name: "Home", Price: 2.50, Point: 3.5},
		},
		"b": {
			{Name: "Home", Price: 1.80, Point: -3.5},
			{Name: "Away", Price: 2.10, Point: 3.5},
			{Name: "Away", Price: 1.60, Point: -3.5},
		},
	}, "a", "b")

	opps := scanner.FindOpportunities([]domain.Event{ev}, scanner.AssembleOptions{MarketKey: domain.MarketSpreads, Now: cycleAt})
	require.Len(t, opps, 1)

	// Home +3.5 / Away -3.5 (T=102.5) no es arbitraje
	opp := opps[0]
	assert.Equal(t, "-3.5", opp.Line)
	require.Len(t, opp.Bets, 2)
	assert.Equal(t, "Home -3.5", opp.Bets[0].Outcome)
	assert.Equal(t, "Away 3.5", opp.Bets[1].Outcome)
	assert.InDelta(t, 4.76, opp.ProfitPercentage, 0.01)
}
