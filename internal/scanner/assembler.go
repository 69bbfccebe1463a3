package scanner

import (
	"log/slog"
	"sort"
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
)

// AssembleOptions parametriza FindOpportunities.
type AssembleOptions struct {
	MarketKey    string    // "" → h2h
	MinProfitPct float64   // se conservan las de ProfitPercentage >= MinProfitPct
	TotalStake   float64   // <= 0 → domain.DefaultTotalStake
	Now          time.Time // instante del ciclo; zero → time.Now()
}

func (o AssembleOptions) withDefaults() AssembleOptions {
	if o.MarketKey == "" {
		o.MarketKey = domain.MarketH2H
	}
	if o.TotalStake <= 0 {
		o.TotalStake = domain.DefaultTotalStake
	}
	if o.Now.IsZero() {
		o.Now = time.Now().UTC()
	}
	return o
}

// FindOpportunities recorre los eventos: mejores precios por línea → evaluación →
// filtro por beneficio mínimo. Devuelve las oportunidades ordenadas por
// ProfitPercentage descendente; a igualdad conserva el orden de los eventos.
func FindOpportunities(events []domain.Event, opts AssembleOptions) []domain.Opportunity {
	opts = opts.withDefaults()

	opps := make([]domain.Opportunity, 0)
	for _, ev := range events {
		if !ev.HasMarket(opts.MarketKey) {
			continue
		}
		// cada línea se evalúa sola: mezclar líneas no cubre todos los resultados
		for _, lb := range domain.SelectBestPricesByLine(ev, opts.MarketKey) {
			if len(lb.Bets) < 2 {
				continue
			}

			res, err := domain.EvaluateArbitrage(lb.Bets, opts.TotalStake)
			if err != nil {
				// el selector solo entrega precios > 0: no debería pasar
				slog.Debug("evaluate failed", "event_id", ev.ID, "line", lb.Line, "err", err)
				continue
			}
			if !res.HasArbitrage || res.ProfitPercentage < opts.MinProfitPct {
				continue
			}

			opps = append(opps, domain.NewOpportunity(ev, opts.MarketKey, lb.Line, lb.Bets, res, opts.TotalStake, opts.Now))
		}
	}

	rankByProfit(opps)
	return opps
}

// rankByProfit ordena in-place por ProfitPercentage descendente, estable.
func rankByProfit(opps []domain.Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ProfitPercentage > opps[j].ProfitPercentage
	})
}
