// Package synthetic es una fuente de cuotas fija para demo y desarrollo.
//
// Devuelve siempre los mismos eventos: algunos con surebet y otros sin ella,
// en mercados de 2 y 3 resultados. No toca red ni cache.
package synthetic

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/alejandrodnm/surebet/internal/ports"
)

// SourceName es el nombre de la fuente mock en logs y SourceReport.
const SourceName = "mock"

// Provider implementa ports.OddsProvider con datos deterministas.
type Provider struct {
	now func() time.Time
}

var _ ports.OddsProvider = (*Provider)(nil)

// NewProvider crea el proveedor. now fija el reloj base de los commence_time;
// si es nil usa time.Now.
func NewProvider(now func() time.Time) *Provider {
	if now == nil {
		now = time.Now
	}
	return &Provider{now: now}
}

// Name implementa ports.OddsProvider.
func (p *Provider) Name() string { return SourceName }

// FetchOdds devuelve los eventos sintéticos de los deportes pedidos. Sin
// deportes devuelve todo el catálogo.
func (p *Provider) FetchOdds(ctx context.Context, req ports.FetchRequest) (ports.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.FetchResult{}, domain.NewFetchError(SourceName, "", err)
	}

	all := Events(p.now())
	events := make([]domain.Event, 0, len(all))
	for _, ev := range all {
		if len(req.Sports) > 0 && !slices.Contains(req.Sports, ev.SportKey) {
			continue
		}
		events = append(events, ev)
	}

	slog.Debug("synthetic odds served", "sports", len(req.Sports), "events", len(events))
	return ports.FetchResult{Events: events}, nil
}
