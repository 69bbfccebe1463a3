package ports

import (
	"context"

	"github.com/alejandrodnm/surebet/internal/domain"
)

// Storage persiste lo que el core entrega al exterior: historia de precios y
// la última lista de oportunidades (para continuidad en la presentación).
type Storage interface {
	// SavePriceHistory guarda tuplas (evento, bookmaker, outcome, precio, timestamp).
	SavePriceHistory(ctx context.Context, records []domain.PriceRecord) error

	// SaveOpportunities reemplaza la última lista conocida.
	SaveOpportunities(ctx context.Context, set domain.OpportunitySet) error

	// LastOpportunities devuelve la última lista guardada. ok=false si no hay.
	LastOpportunities(ctx context.Context) (set domain.OpportunitySet, ok bool, err error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
