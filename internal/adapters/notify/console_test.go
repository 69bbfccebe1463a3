package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alejandrodnm/surebet/internal/adapters/notify"
	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSet() domain.OpportunitySet {
	opp := domain.Opportunity{
		ID:           "id-1",
		EventID:      "ev1",
		EventName:    "Miami Heat @ Boston Celtics",
		Market:       domain.MarketH2H,
		CommenceTime: time.Now().Add(5 * time.Hour),
		Bets: []domain.StakedBet{
			{Bet: domain.Bet{Source: "fanduel", Outcome: "Boston Celtics", Price: 2.10}, Stake: 500, Payout: 1050},
			{Bet: domain.Bet{Source: "draftkings", Outcome: "Miami Heat", Price: 2.10}, Stake: 500, Payout: 1050},
		},
		ProfitPercentage: 4.76,
		ReturnOnStake:    5.00,
		TotalStake:       1000,
		GuaranteedProfit: 50,
		Source:           domain.SourceLive,
	}
	return domain.OpportunitySet{
		Opportunities: []domain.Opportunity{opp},
		Count:         1,
		Sources: []domain.SourceReport{
			{Name: "mock", Source: domain.SourceMock, Err: "boom"},
			{Name: "live", Source: domain.SourceLive, Opportunities: 1},
		},
	}
}

func TestConsole_Notify_Table(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, notify.FormatTable, false)

	require.NoError(t, n.Notify(context.Background(), makeSet()))

	out := buf.String()
	assert.Contains(t, out, "Miami Heat @ Boston Celtics")
	assert.Contains(t, out, "4.76")
	assert.Contains(t, out, "fanduel")
	assert.Contains(t, out, "$50.00")
	assert.Contains(t, out, "mock:FAIL")
	assert.Contains(t, out, "live:1")
}

func TestConsole_Notify_Compact(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, notify.FormatCompact, false)

	require.NoError(t, n.Notify(context.Background(), makeSet()))

	out := buf.String()
	assert.Contains(t, out, "1 surebets")
	assert.Contains(t, out, "+4.76%")
	assert.Contains(t, out, "fanduel/draftkings")
}

func TestConsole_Notify_Validation(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, notify.FormatCompact, true)

	require.NoError(t, n.Notify(context.Background(), makeSet()))

	out := buf.String()
	assert.Contains(t, out, "STAKING")
	assert.Contains(t, out, "implied= 47.62%")
	assert.Contains(t, out, "Σ implied = 95.24%")
}

func TestConsole_Notify_JSON(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, notify.FormatJSON, false)

	require.NoError(t, n.Notify(context.Background(), makeSet()))

	var got domain.OpportunitySet
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, "id-1", got.Opportunities[0].ID)
}

func TestConsole_Notify_Empty(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, "unknown-format", false)

	require.NoError(t, n.Notify(context.Background(), domain.OpportunitySet{}))
	assert.Contains(t, buf.String(), "no opportunities found")
}

func TestConsole_Notify_ValidationShowsLine(t *testing.T) {
	set := makeSet()
	set.Opportunities[0].Market = domain.MarketTotals
	set.Opportunities[0].Line = "220.5"

	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, notify.FormatCompact, true)
	require.NoError(t, n.Notify(context.Background(), set))

	assert.Contains(t, buf.String(), "[totals 220.5]")
}
