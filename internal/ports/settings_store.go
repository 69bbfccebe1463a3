package ports

import (
	"context"

	"github.com/alejandrodnm/surebet/internal/domain"
)

// SettingsStore es el store externo de preferencias. El core solo lee.
type SettingsStore interface {
	Settings(ctx context.Context) (domain.Settings, error)
}
