package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
)

// FetchRequest son los parámetros de un fetch de cuotas.
type FetchRequest struct {
	Sports  []string
	Regions []string
	Markets []string
	// CacheTTL es el TTL con el que el proveedor live guarda el resultado.
	// Lo decide el caller en cada llamada (settings.cacheTimeoutSeconds).
	CacheTTL time.Duration
}

// FetchResult es el snapshot devuelto por un proveedor.
type FetchResult struct {
	Events    []domain.Event
	FromCache bool      // servido desde la TTL cache, sin llamada remota
	StoredAt  time.Time // cuándo se guardó en cache (zero si FromCache es false)
}

// OddsProvider obtiene snapshots de cuotas de una fuente concreta.
type OddsProvider interface {
	// Name identifica la fuente en logs y en los SourceReport.
	Name() string

	// FetchOdds devuelve los eventos con sus bookmakers/mercados/outcomes.
	// Los fallos se devuelven como *domain.FetchError.
	FetchOdds(ctx context.Context, req FetchRequest) (FetchResult, error)
}
