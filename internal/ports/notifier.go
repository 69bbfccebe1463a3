package ports

import (
	"context"

	"github.com/alejandrodnm/surebet/internal/domain"
)

// Notifier presenta las oportunidades encontradas al usuario.
type Notifier interface {
	// Notify muestra el set ordenado por beneficio.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, set domain.OpportunitySet) error
}
