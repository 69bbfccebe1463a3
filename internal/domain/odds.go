package domain

import (
	"fmt"
	"time"
)

// Mercados soportados por el selector de mejores precios.
const (
	MarketH2H     = "h2h"     // moneyline (head-to-head)
	MarketH2HLay  = "h2h_lay" // exchanges: lado lay del moneyline
	MarketSpreads = "spreads" // handicap
	MarketTotals  = "totals"  // over/under
)

var supportedMarkets = map[string]bool{
	MarketH2H:     true,
	MarketH2HLay:  true,
	MarketSpreads: true,
	MarketTotals:  true,
}

// Event es el snapshot de un evento tal como lo devuelve un proveedor.
// Inmutable una vez obtenido: el resto del sistema solo lo lee.
type Event struct {
	ID           string
	SportKey     string
	SportTitle   string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
	Bookmakers   []Bookmaker
}

// Bookmaker agrupa los mercados que una casa de apuestas ofrece para un evento.
type Bookmaker struct {
	Key        string // identificador estable, p.ej. "pinnacle"
	Title      string
	LastUpdate time.Time
	Markets    []Market
}

// Market es la lista de outcomes de un mercado concreto de un bookmaker.
type Market struct {
	Key      string
	Outcomes []Outcome
}

// Outcome es un resultado posible con su cuota decimal.
type Outcome struct {
	Name  string
	Price float64 // cuota decimal: 2.10 devuelve 2.10 por cada 1.00 apostado
	Point float64 // línea para spreads/totals, 0 en h2h
}

// Name devuelve "Away @ Home" o el ID si faltan los equipos.
func (e Event) Name() string {
	if e.HomeTeam == "" || e.AwayTeam == "" {
		return e.ID
	}
	return fmt.Sprintf("%s @ %s", e.AwayTeam, e.HomeTeam)
}

// Market devuelve el mercado con la key dada para este bookmaker.
func (b Bookmaker) Market(key string) (Market, bool) {
	for _, m := range b.Markets {
		if m.Key == key {
			return m, true
		}
	}
	return Market{}, false
}

// HasMarket devuelve true si algún bookmaker del evento lista el mercado.
func (e Event) HasMarket(key string) bool {
	for _, b := range e.Bookmakers {
		if _, ok := b.Market(key); ok {
			return true
		}
	}
	return false
}

// ValidateMarketKey devuelve ErrUnsupportedMarket si la key no está soportada.
func ValidateMarketKey(key string) error {
	if !supportedMarkets[key] {
		return fmt.Errorf("%w: %q", ErrUnsupportedMarket, key)
	}
	return nil
}

// PriceRecord es una observación histórica de precio para persistencia externa.
type PriceRecord struct {
	EventID   string
	Bookmaker string
	Outcome   string
	Price     float64
	Timestamp time.Time
}

// PriceHistory aplana los precios de un mercado de todos los eventos.
func PriceHistory(events []Event, marketKey string, at time.Time) []PriceRecord {
	var out []PriceRecord
	for _, e := range events {
		for _, b := range e.Bookmakers {
			m, ok := b.Market(marketKey)
			if !ok {
				continue
			}
			for _, o := range m.Outcomes {
				if o.Price <= 0 {
					continue
				}
				out = append(out, PriceRecord{
					EventID:   e.ID,
					Bookmaker: b.Key,
					Outcome:   o.Name,
					Price:     o.Price,
					Timestamp: at,
				})
			}
		}
	}
	return out
}
