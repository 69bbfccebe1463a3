package httpapi

import (
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
)

// DTOs JSON de la API. El dominio no lleva tags: la forma pública vive aquí.

type betDTO struct {
	Bookmaker string  `json:"bookmaker"`
	Outcome   string  `json:"outcome"`
	Price     float64 `json:"price"`
	Stake     float64 `json:"stake,omitempty"`
	Payout    float64 `json:"payout,omitempty"`
}

type opportunityDTO struct {
	ID               string    `json:"id"`
	EventID          string    `json:"event_id"`
	SportKey         string    `json:"sport_key"`
	EventName        string    `json:"event_name"`
	CommenceTime     time.Time `json:"commence_time"`
	Market           string    `json:"market"`
	Line             string    `json:"line,omitempty"`
	Bets             []betDTO  `json:"bets"`
	ProfitPercentage float64   `json:"profit_pct"`
	ReturnOnStake    float64   `json:"return_on_stake_pct"`
	TotalStake       float64   `json:"total_stake"`
	GuaranteedProfit float64   `json:"guaranteed_profit"`
	DiscoveredAt     time.Time `json:"discovered_at"`
	Source           string    `json:"source"`
}

type sourceDTO struct {
	Name          string `json:"name"`
	Source        string `json:"source"`
	Opportunities int    `json:"opportunities"`
	Error         string `json:"error,omitempty"`
}

type opportunitySetDTO struct {
	Opportunities   []opportunityDTO `json:"opportunities"`
	Count           int              `json:"count"`
	IsFromCache     bool             `json:"is_from_cache"`
	CacheAgeMinutes float64          `json:"cache_age_minutes"`
	Sources         []sourceDTO      `json:"sources"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// unavailableResponse es el cuerpo del 503 cuando fallan todas las fuentes.
type unavailableResponse struct {
	Error     string             `json:"error"`
	LastKnown *opportunitySetDTO `json:"last_known,omitempty"`
}

type arbitrageRequest struct {
	Bets       []betDTO `json:"bets"`
	TotalStake float64  `json:"total_stake"`
}

type arbitrageResponse struct {
	HasArbitrage            bool      `json:"has_arbitrage"`
	ProfitPercentage        float64   `json:"profit_pct"`
	ReturnOnStake           float64   `json:"return_on_stake_pct"`
	Stakes                  []float64 `json:"stakes"`
	ImpliedProbabilities    []float64 `json:"implied_probabilities"`
	TotalImpliedProbability float64   `json:"total_implied_probability"`
	Payout                  float64   `json:"payout"`
	GuaranteedProfit        float64   `json:"guaranteed_profit"`
	Hold                    float64   `json:"hold_pct"`
}

type kellyRequest struct {
	Price           float64  `json:"price"`
	TrueProbability float64  `json:"true_probability"`
	Bankroll        float64  `json:"bankroll"`
	KellyFraction   *float64 `json:"kelly_fraction"`
}

type kellyResponse struct {
	Stake         float64 `json:"stake"`
	KellyFraction float64 `json:"kelly_fraction"`
	ImpliedProb   float64 `json:"implied_probability"`
	EdgePercent   float64 `json:"edge_pct"`
}

type settingsDTO struct {
	ShowMockData        bool `json:"show_mock_data"`
	ShowLiveData        bool `json:"show_live_data"`
	MockMode            bool `json:"mock_mode"`
	CacheTimeoutSeconds int  `json:"cache_timeout_seconds"`
}

type priceRecordDTO struct {
	Bookmaker string    `json:"bookmaker"`
	Outcome   string    `json:"outcome"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// --- mapping ---

func toSetDTO(set domain.OpportunitySet) opportunitySetDTO {
	out := opportunitySetDTO{
		Opportunities:   make([]opportunityDTO, len(set.Opportunities)),
		Count:           set.Count,
		IsFromCache:     set.IsFromCache,
		CacheAgeMinutes: set.CacheAgeMinutes,
		Sources:         make([]sourceDTO, len(set.Sources)),
		GeneratedAt:     set.GeneratedAt,
	}
	for i, o := range set.Opportunities {
		out.Opportunities[i] = toOpportunityDTO(o)
	}
	for i, s := range set.Sources {
		out.Sources[i] = sourceDTO{Name: s.Name, Source: string(s.Source), Opportunities: s.Opportunities, Error: s.Err}
	}
	return out
}

func toOpportunityDTO(o domain.Opportunity) opportunityDTO {
	bets := make([]betDTO, len(o.Bets))
	for i, b := range o.Bets {
		bets[i] = betDTO{Bookmaker: b.Source, Outcome: b.Outcome, Price: b.Price, Stake: b.Stake, Payout: b.Payout}
	}
	return opportunityDTO{
		ID:               o.ID,
		EventID:          o.EventID,
		SportKey:         o.SportKey,
		EventName:        o.EventName,
		CommenceTime:     o.CommenceTime,
		Market:           o.Market,
		Line:             o.Line,
		Bets:             bets,
		ProfitPercentage: o.ProfitPercentage,
		ReturnOnStake:    o.ReturnOnStake,
		TotalStake:       o.TotalStake,
		GuaranteedProfit: o.GuaranteedProfit,
		DiscoveredAt:     o.DiscoveredAt,
		Source:           string(o.Source),
	}
}

func toSettingsDTO(s domain.Settings) settingsDTO {
	return settingsDTO{
		ShowMockData:        s.ShowMockData,
		ShowLiveData:        s.ShowLiveData,
		MockMode:            s.MockMode,
		CacheTimeoutSeconds: s.CacheTimeoutSeconds,
	}
}

func (s settingsDTO) toDomain() domain.Settings {
	return domain.Settings{
		ShowMockData:        s.ShowMockData,
		ShowLiveData:        s.ShowLiveData,
		MockMode:            s.MockMode,
		CacheTimeoutSeconds: s.CacheTimeoutSeconds,
	}
}
