package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/alejandrodnm/surebet/internal/ports"
)

// Config contiene la configuración del loop de escaneo.
type Config struct {
	ScanInterval time.Duration
	Query        Query
	Once         bool // un solo ciclo y salir
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{ScanInterval: 60 * time.Second}
}

// Scanner repite GetOpportunities cada ScanInterval y notifica el resultado.
type Scanner struct {
	cfg      Config
	service  *Service
	notifier ports.Notifier
}

// New crea un Scanner con todas las dependencias inyectadas.
func New(cfg Config, service *Service, notifier ports.Notifier) *Scanner {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = DefaultConfig().ScanInterval
	}
	return &Scanner{cfg: cfg, service: service, notifier: notifier}
}

// Run ejecuta el loop hasta que el contexto se cancele.
// Si cfg.Once está activo, solo ejecuta un ciclo y devuelve su error.
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner starting",
		"interval", s.cfg.ScanInterval,
		"once", s.cfg.Once,
		"sports", s.cfg.Query.Sports,
	)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("scan cycle failed", "err", err)
		if s.cfg.Once {
			return err
		}
	}

	if s.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped")
			return nil
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("scan cycle failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta exactamente un ciclo y devuelve el set sin notificar.
func (s *Scanner) RunOnce(ctx context.Context) (domain.OpportunitySet, error) {
	return s.service.GetOpportunities(ctx, s.cfg.Query)
}

// runCycle ejecuta un ciclo y notifica. Si fallan todas las fuentes se
// notifica la última lista conocida, marcada como cacheada.
func (s *Scanner) runCycle(ctx context.Context) error {
	start := time.Now()

	set, err := s.service.GetOpportunities(ctx, s.cfg.Query)
	if err != nil {
		if !errors.Is(err, ErrAllSourcesFailed) {
			return fmt.Errorf("scanner.runCycle: %w", err)
		}
		last, ok, lerr := s.service.LastKnown(ctx)
		if lerr != nil || !ok {
			return fmt.Errorf("scanner.runCycle: %w", err)
		}
		slog.Warn("all sources failed, showing last known opportunities",
			"generated_at", last.GeneratedAt,
			"err", err,
		)
		last.IsFromCache = true
		last.CacheAgeMinutes = domain.Round2(time.Since(last.GeneratedAt).Minutes())
		set = last
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, set); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("scan cycle complete",
		"opportunities", set.Count,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
