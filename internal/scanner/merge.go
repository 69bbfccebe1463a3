package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/alejandrodnm/surebet/internal/ports"
)

// ErrAllSourcesFailed se devuelve cuando todas las fuentes habilitadas fallaron.
// Envuelve los errores individuales con errors.Join.
var ErrAllSourcesFailed = errors.New("all odds sources failed")

// ServiceConfig agrupa los parámetros fijos del merge (vienen del config).
type ServiceConfig struct {
	Sports       []string // deportes por defecto si la Query no trae
	Regions      []string
	Markets      []string // mercados pedidos al proveedor
	MarketKey    string   // mercado sobre el que se buscan surebets
	TotalStake   float64
	FetchTimeout time.Duration // tope por fuente
	Filter       FilterConfig  // filtros fijos; Query.Bookmakers tiene prioridad
}

// Query es la petición del consumidor.
type Query struct {
	Sports       []string
	MinProfitPct float64
	Bookmakers   []string
}

// Service combina las oportunidades de la fuente sintética y la live.
type Service struct {
	cfg      ServiceConfig
	mock     ports.OddsProvider
	live     ports.OddsProvider
	settings ports.SettingsStore
	storage  ports.Storage
	now      func() time.Time
}

// NewService crea el servicio de merge. mock, live y storage pueden ser nil.
func NewService(cfg ServiceConfig, mock, live ports.OddsProvider, settings ports.SettingsStore, storage ports.Storage) *Service {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.MarketKey == "" {
		cfg.MarketKey = domain.MarketH2H
	}
	if len(cfg.Markets) == 0 {
		cfg.Markets = []string{cfg.MarketKey}
	}
	return &Service{
		cfg:      cfg,
		mock:     mock,
		live:     live,
		settings: settings,
		storage:  storage,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// source es una fuente habilitada en esta llamada.
type source struct {
	provider ports.OddsProvider
	tag      domain.Source
}

type sourceResult struct {
	idx int
	res ports.FetchResult
	err error
}

// GetOpportunities consulta todas las fuentes habilitadas por los settings
// actuales y devuelve las oportunidades combinadas, ordenadas por beneficio.
// Una fuente que falla se omite; solo si fallan todas se devuelve error.
func (s *Service) GetOpportunities(ctx context.Context, q Query) (domain.OpportunitySet, error) {
	now := s.now()
	settings := s.currentSettings(ctx)
	sources := s.enabledSources(settings)

	set := domain.OpportunitySet{
		Opportunities: []domain.Opportunity{},
		Sources:       []domain.SourceReport{},
		GeneratedAt:   now,
	}
	if len(sources) == 0 {
		slog.Info("no odds source enabled")
		return set, nil
	}

	sports := q.Sports
	if len(sports) == 0 {
		sports = s.cfg.Sports
	}
	req := ports.FetchRequest{
		Sports:   sports,
		Regions:  s.cfg.Regions,
		Markets:  s.cfg.Markets,
		CacheTTL: settings.CacheTTL(),
	}

	results := s.fetchAll(ctx, sources, req)

	var (
		errs      []error
		fresh     []domain.Event
		cacheAge  time.Duration
		fromCache bool
	)
	opts := AssembleOptions{
		MarketKey:    s.cfg.MarketKey,
		MinProfitPct: q.MinProfitPct,
		TotalStake:   s.cfg.TotalStake,
		Now:          now,
	}

	for i, src := range sources {
		r := results[i]
		report := domain.SourceReport{Name: src.provider.Name(), Source: src.tag}

		if r.err != nil {
			slog.Warn("odds source failed", "source", report.Name, "err", r.err)
			report.Err = r.err.Error()
			set.Sources = append(set.Sources, report)
			errs = append(errs, fmt.Errorf("%s: %w", report.Name, r.err))
			continue
		}

		tag := src.tag
		if r.res.FromCache {
			tag = domain.SourceCached
			fromCache = true
			cacheAge = max(cacheAge, now.Sub(r.res.StoredAt))
		} else {
			fresh = append(fresh, r.res.Events...)
		}
		report.Source = tag

		opps := FindOpportunities(r.res.Events, opts)
		for _, o := range opps {
			set.Opportunities = append(set.Opportunities, o.WithSource(tag))
		}
		report.Opportunities = len(opps)
		set.Sources = append(set.Sources, report)
	}

	if len(errs) == len(sources) {
		return set, fmt.Errorf("scanner.GetOpportunities: %w: %w", ErrAllSourcesFailed, errors.Join(errs...))
	}

	rankByProfit(set.Opportunities)

	filterCfg := s.cfg.Filter
	if len(q.Bookmakers) > 0 {
		filterCfg.Bookmakers = q.Bookmakers
	}
	f := NewFilter(filterCfg)
	f.now = s.now
	set.Opportunities = f.Apply(set.Opportunities)

	set.Count = len(set.Opportunities)
	set.IsFromCache = fromCache
	if fromCache {
		set.CacheAgeMinutes = domain.Round2(cacheAge.Minutes())
	}

	s.persist(ctx, fresh, set)

	slog.Info("opportunities merged",
		"sources", len(sources),
		"failed", len(errs),
		"opportunities", set.Count,
		"from_cache", set.IsFromCache,
	)
	return set, nil
}

// LastKnown devuelve la última lista persistida, para cuando todas las
// fuentes fallan. ok=false si no hay storage o nunca se guardó nada.
func (s *Service) LastKnown(ctx context.Context) (domain.OpportunitySet, bool, error) {
	if s.storage == nil {
		return domain.OpportunitySet{}, false, nil
	}
	set, ok, err := s.storage.LastOpportunities(ctx)
	if err != nil {
		return domain.OpportunitySet{}, false, fmt.Errorf("scanner.LastKnown: %w", err)
	}
	return set, ok, nil
}

// currentSettings relee los settings. Si el store falla se usan los defaults:
// un store caído no debe tumbar la detección.
func (s *Service) currentSettings(ctx context.Context) domain.Settings {
	if s.settings == nil {
		return domain.DefaultSettings()
	}
	st, err := s.settings.Settings(ctx)
	if err != nil {
		slog.Warn("settings unavailable, using defaults", "err", err)
		return domain.DefaultSettings()
	}
	return st
}

// enabledSources: mock primero, live después.
func (s *Service) enabledSources(st domain.Settings) []source {
	var out []source
	if st.ShowMockData && s.mock != nil {
		out = append(out, source{provider: s.mock, tag: domain.SourceMock})
	}
	if st.ShowLiveData && !st.MockMode && s.live != nil {
		out = append(out, source{provider: s.live, tag: domain.SourceLive})
	}
	return out
}

// fetchAll lanza una goroutine por fuente, cada una con su propio timeout, y
// espera a que todas terminen. El resultado i corresponde a sources[i].
func (s *Service) fetchAll(ctx context.Context, sources []source, req ports.FetchRequest) []sourceResult {
	resultCh := make(chan sourceResult, len(sources))
	var wg sync.WaitGroup

	for i, src := range sources {
		i, src := i, src
		wg.Add(1)
		go func() {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
			defer cancel()
			res, err := src.provider.FetchOdds(fctx, req)
			resultCh <- sourceResult{idx: i, res: res, err: err}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]sourceResult, len(sources))
	for r := range resultCh {
		results[r.idx] = r
	}
	return results
}

// persist guarda historia de precios y la lista final. Best-effort: un fallo
// se loguea y no afecta a la respuesta.
func (s *Service) persist(ctx context.Context, fresh []domain.Event, set domain.OpportunitySet) {
	if s.storage == nil {
		return
	}
	if records := domain.PriceHistory(fresh, s.cfg.MarketKey, set.GeneratedAt); len(records) > 0 {
		if err := s.storage.SavePriceHistory(ctx, records); err != nil {
			slog.Warn("save price history failed", "err", err)
		}
	}
	if err := s.storage.SaveOpportunities(ctx, set); err != nil {
		slog.Warn("save opportunities failed", "err", err)
	}
}
