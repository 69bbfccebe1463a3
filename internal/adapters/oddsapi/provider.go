package oddsapi

// provider.go — proveedor live con TTL cache.
//
// Un GET por deporte, todos en paralelo con errgroup. Política all-or-nothing:
// el primer deporte que falla cancela al resto y el fetch entero devuelve ese
// error. La cache solo se escribe cuando TODOS los deportes validaron y el
// contexto sigue vivo, así un resultado parcial nunca queda cacheado.

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/alejandrodnm/surebet/internal/cache"
	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/alejandrodnm/surebet/internal/ports"
	"golang.org/x/sync/errgroup"
)

// SourceName es el nombre de la fuente live en logs y errores.
const SourceName = "live"

// SportFetcher es la parte del Client que usa el Provider.
type SportFetcher interface {
	FetchSportOdds(ctx context.Context, sport string, regions, markets []string) ([]domain.Event, error)
}

// Provider implementa ports.OddsProvider contra The Odds API.
type Provider struct {
	client SportFetcher
	cache  *cache.TTL[[]domain.Event]
}

var _ ports.OddsProvider = (*Provider)(nil)

// NewProvider crea el proveedor live. La cache se inyecta para que cada test
// use su propia instancia.
func NewProvider(client SportFetcher, c *cache.TTL[[]domain.Event]) *Provider {
	return &Provider{client: client, cache: c}
}

// Name implementa ports.OddsProvider.
func (p *Provider) Name() string { return SourceName }

// FetchOdds implementa ports.OddsProvider.
func (p *Provider) FetchOdds(ctx context.Context, req ports.FetchRequest) (ports.FetchResult, error) {
	if len(req.Sports) == 0 {
		return ports.FetchResult{}, nil
	}

	key := CacheKey(req)
	if e, ok := p.cache.Entry(key); ok {
		slog.Debug("odds served from cache", "key", key, "events", len(e.Value), "age", e.Age(p.cache.Now()).Round(time.Second))
		return ports.FetchResult{Events: e.Value, FromCache: true, StoredAt: e.StoredAt}, nil
	}

	perSport := make([][]domain.Event, len(req.Sports))
	g, gctx := errgroup.WithContext(ctx)
	for i, sport := range req.Sports {
		i, sport := i, sport
		g.Go(func() error {
			events, err := p.client.FetchSportOdds(gctx, sport, req.Regions, req.Markets)
			if err != nil {
				return err
			}
			perSport[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ports.FetchResult{}, err
	}
	// cancelado después de que todo terminara: no cacheamos
	if err := ctx.Err(); err != nil {
		return ports.FetchResult{}, domain.NewFetchError(SourceName, "", err)
	}

	var combined []domain.Event
	for _, evs := range perSport {
		combined = append(combined, evs...)
	}

	if req.CacheTTL > 0 {
		p.cache.Set(key, combined, req.CacheTTL)
	}

	slog.Info("live odds fetched",
		"sports", len(req.Sports),
		"events", len(combined),
		"cache_ttl", req.CacheTTL,
	)
	return ports.FetchResult{Events: combined}, nil
}

// CacheKey deriva la key de cache de (sports, regions, markets). El orden de
// cada lista no importa.
func CacheKey(req ports.FetchRequest) string {
	return strings.Join([]string{
		sortedJoin(req.Sports),
		sortedJoin(req.Regions),
		sortedJoin(req.Markets),
	}, "|")
}

func sortedJoin(vs []string) string {
	s := slices.Clone(vs)
	slices.Sort(s)
	return strings.Join(s, ",")
}
