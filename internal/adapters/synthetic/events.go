package synthetic

import (
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
)

// Events construye el catálogo sintético relativo a base.
//
//	mock-nba-1   2 vías, surebet (2.10 / 2.10, T≈95.24)
//	mock-nba-2   2 vías, sin surebet
//	mock-epl-1   3 vías, surebet (2.50 / 3.80 / 3.20, T≈97.57)
//	mock-epl-2   3 vías, sin surebet
//	mock-nfl-1   2 vías, surebet pequeña en h2h + totals sin surebet
func Events(base time.Time) []domain.Event {
	base = base.UTC().Truncate(time.Hour)
	updated := base.Add(-5 * time.Minute)

	return []domain.Event{
		{
			ID: "mock-nba-1", SportKey: "basketball_nba", SportTitle: "NBA",
			HomeTeam: "Boston Celtics", AwayTeam: "Miami Heat",
			CommenceTime: base.Add(6 * time.Hour),
			Bookmakers: []domain.Bookmaker{
				h2h("fanduel", "FanDuel", updated, o("Boston Celtics", 2.10), o("Miami Heat", 1.75)),
				h2h("draftkings", "DraftKings", updated, o("Boston Celtics", 1.80), o("Miami Heat", 2.10)),
			},
		},
		{
			ID: "mock-nba-2", SportKey: "basketball_nba", SportTitle: "NBA",
			HomeTeam: "Denver Nuggets", AwayTeam: "Phoenix Suns",
			CommenceTime: base.Add(9 * time.Hour),
			Bookmakers: []domain.Bookmaker{
				h2h("fanduel", "FanDuel", updated, o("Denver Nuggets", 1.65), o("Phoenix Suns", 2.25)),
				h2h("betmgm", "BetMGM", updated, o("Denver Nuggets", 1.70), o("Phoenix Suns", 2.15)),
			},
		},
		{
			ID: "mock-epl-1", SportKey: "soccer_epl", SportTitle: "EPL",
			HomeTeam: "Arsenal", AwayTeam: "Chelsea",
			CommenceTime: base.Add(26 * time.Hour),
			Bookmakers: []domain.Bookmaker{
				h2h("williamhill", "William Hill", updated, o("Arsenal", 2.50), o("Draw", 3.30), o("Chelsea", 2.90)),
				h2h("unibet", "Unibet", updated, o("Arsenal", 2.20), o("Draw", 3.80), o("Chelsea", 3.00)),
				h2h("pinnacle", "Pinnacle", updated, o("Arsenal", 2.35), o("Draw", 3.40), o("Chelsea", 3.20)),
			},
		},
		{
			ID: "mock-epl-2", SportKey: "soccer_epl", SportTitle: "EPL",
			HomeTeam: "Liverpool", AwayTeam: "Everton",
			CommenceTime: base.Add(50 * time.Hour),
			Bookmakers: []domain.Bookmaker{
				h2h("williamhill", "William Hill", updated, o("Liverpool", 1.45), o("Draw", 4.50), o("Everton", 7.00)),
				h2h("unibet", "Unibet", updated, o("Liverpool", 1.48), o("Draw", 4.40), o("Everton", 6.50)),
			},
		},
		{
			ID: "mock-nfl-1", SportKey: "americanfootball_nfl", SportTitle: "NFL",
			HomeTeam: "Kansas City Chiefs", AwayTeam: "Buffalo Bills",
			CommenceTime: base.Add(72 * time.Hour),
			Bookmakers: []domain.Bookmaker{
				{
					Key: "betmgm", Title: "BetMGM", LastUpdate: updated,
					Markets: []domain.Market{
						{Key: domain.MarketH2H, Outcomes: []domain.Outcome{o("Kansas City Chiefs", 1.98), o("Buffalo Bills", 1.92)}},
						{Key: domain.MarketTotals, Outcomes: []domain.Outcome{
							{Name: "Over", Price: 1.91, Point: 47.5},
							{Name: "Under", Price: 1.91, Point: 47.5},
						}},
					},
				},
				h2h("caesars", "Caesars", updated, o("Kansas City Chiefs", 1.85), o("Buffalo Bills", 2.06)),
			},
		},
	}
}

func o(name string, price float64) domain.Outcome {
	return domain.Outcome{Name: name, Price: price}
}

func h2h(key, title string, updated time.Time, outcomes ...domain.Outcome) domain.Bookmaker {
	return domain.Bookmaker{
		Key: key, Title: title, LastUpdate: updated,
		Markets: []domain.Market{{Key: domain.MarketH2H, Outcomes: outcomes}},
	}
}
