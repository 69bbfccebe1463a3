package scanner

import (
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
)

// FilterConfig contiene los filtros que se aplican después del merge.
type FilterConfig struct {
	// Bookmakers es la whitelist de casas. Una oportunidad pasa solo si TODAS
	// sus patas están en la lista. Vacía = todas.
	Bookmakers []string
	// MinHoursToStart descarta eventos que empiezan antes de X horas: las cuotas
	// cercanas al inicio se mueven demasiado rápido para colocar todas las patas.
	MinHoursToStart float64
	// MaxHoursToStart descarta eventos demasiado lejanos. 0 = sin límite.
	MaxHoursToStart float64
}

// Filter aplica los filtros configurados sobre una lista de oportunidades.
type Filter struct {
	cfg     FilterConfig
	allowed map[string]bool
	now     func() time.Time
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	f := &Filter{cfg: cfg, now: time.Now}
	if len(cfg.Bookmakers) > 0 {
		f.allowed = make(map[string]bool, len(cfg.Bookmakers))
		for _, b := range cfg.Bookmakers {
			f.allowed[b] = true
		}
	}
	return f
}

// Apply devuelve las oportunidades que pasan todos los filtros, en el mismo orden.
func (f *Filter) Apply(opps []domain.Opportunity) []domain.Opportunity {
	result := make([]domain.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if f.passes(opp) {
			result = append(result, opp)
		}
	}
	return result
}

func (f *Filter) passes(opp domain.Opportunity) bool {
	if f.allowed != nil {
		for _, b := range opp.Bets {
			if !f.allowed[b.Source] {
				return false
			}
		}
	}
	if f.cfg.MinHoursToStart > 0 || f.cfg.MaxHoursToStart > 0 {
		if opp.CommenceTime.IsZero() {
			return true
		}
		hours := opp.CommenceTime.Sub(f.now()).Hours()
		if f.cfg.MinHoursToStart > 0 && hours < f.cfg.MinHoursToStart {
			return false
		}
		if f.cfg.MaxHoursToStart > 0 && hours > f.cfg.MaxHoursToStart {
			return false
		}
	}
	return true
}
