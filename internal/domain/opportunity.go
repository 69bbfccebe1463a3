package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Source indica de dónde salió una oportunidad.
type Source string

const (
	SourceMock   Source = "mock"
	SourceLive   Source = "live"
	SourceCached Source = "cached" // live, pero servida desde la TTL cache
)

// opportunityNamespace es el namespace de los UUID v5 de oportunidades.
var opportunityNamespace = uuid.MustParse("5b0c8f3e-1f0d-4b8e-9a51-7c2e6f4d9a10")

// StakedBet es una Bet con el stake que le corresponde en el reparto.
type StakedBet struct {
	Bet
	Stake  float64
	Payout float64
}

// Opportunity es un arbitraje detectado en un ciclo. Se crea en cada ciclo y no
// se muta: el core no guarda historia.
type Opportunity struct {
	ID               string
	EventID          string
	SportKey         string
	EventName        string
	CommenceTime     time.Time
	Market           string
	Line             string // punto de spreads/totals, vacío en h2h
	Bets             []StakedBet
	ProfitPercentage float64
	ReturnOnStake    float64
	TotalStake       float64
	GuaranteedProfit float64
	DiscoveredAt     time.Time
	Source           Source
}

// OpportunityID deriva un ID determinista de evento + mercado + timestamp.
func OpportunityID(eventID, market string, at time.Time) string {
	name := fmt.Sprintf("%s|%s|%d", eventID, market, at.UnixNano())
	return uuid.NewSHA1(opportunityNamespace, []byte(name)).String()
}

// NewOpportunity construye la oportunidad a partir de un resultado con arbitraje.
// line distingue las oportunidades de un mismo evento en líneas distintas.
func NewOpportunity(event Event, market, line string, bets []Bet, res ArbitrageResult, totalStake float64, at time.Time) Opportunity {
	idMarket := market
	if line != "" {
		idMarket = market + "@" + line
	}
	staked := make([]StakedBet, len(bets))
	for i, b := range bets {
		staked[i] = StakedBet{Bet: b}
		if i < len(res.Stakes) {
			staked[i].Stake = res.Stakes[i]
			staked[i].Payout = Round2(res.Stakes[i] * b.Price)
		}
	}
	return Opportunity{
		ID:               OpportunityID(event.ID, idMarket, at),
		EventID:          event.ID,
		SportKey:         event.SportKey,
		EventName:        event.Name(),
		CommenceTime:     event.CommenceTime,
		Market:           market,
		Line:             line,
		Bets:             staked,
		ProfitPercentage: res.ProfitPercentage,
		ReturnOnStake:    res.ReturnOnStake,
		TotalStake:       totalStake,
		GuaranteedProfit: res.GuaranteedProfit,
		DiscoveredAt:     at,
	}
}

// MarketLabel es el mercado con su línea, si la tiene ("totals 220.5").
func (o Opportunity) MarketLabel() string {
	if o.Line == "" {
		return o.Market
	}
	return o.Market + " " + o.Line
}

// WithSource devuelve una copia etiquetada con la fuente dada.
func (o Opportunity) WithSource(s Source) Opportunity {
	o.Source = s
	return o
}

// Bookmakers devuelve los bookmakers de todas las patas.
func (o Opportunity) Bookmakers() []string {
	out := make([]string, len(o.Bets))
	for i, b := range o.Bets {
		out[i] = b.Source
	}
	return out
}

// SourceReport resume el resultado de una fuente en un ciclo de merge.
type SourceReport struct {
	Name          string
	Source        Source
	Opportunities int
	Err           string
}

// OpportunitySet es la respuesta de GetOpportunities para la capa de presentación.
type OpportunitySet struct {
	Opportunities   []Opportunity
	Count           int
	IsFromCache     bool
	CacheAgeMinutes float64
	Sources         []SourceReport
	GeneratedAt     time.Time
}

// Settings es el snapshot de preferencias que aporta el store externo.
// El core lo relee en cada llamada.
type Settings struct {
	ShowMockData        bool
	ShowLiveData        bool
	MockMode            bool // fuerza datos sintéticos aunque haya credenciales
	CacheTimeoutSeconds int
}

// DefaultSettings devuelve los valores usados cuando el store no tiene nada.
func DefaultSettings() Settings {
	return Settings{
		ShowMockData:        true,
		ShowLiveData:        true,
		CacheTimeoutSeconds: 300,
	}
}

// CacheTTL devuelve CacheTimeoutSeconds como duración.
func (s Settings) CacheTTL() time.Duration {
	return time.Duration(s.CacheTimeoutSeconds) * time.Second
}
