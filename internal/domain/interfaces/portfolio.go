package interfaces

import (
	"context"

	portfolio "main/internal/domain/entity/portfolio"

	"github.com/google/uuid"
)

// PortfolioRepository persists user-entered holdings. Holdings survive
// restarts indefinitely; they are mutated only by explicit add/remove and
// rewritten wholesale on revaluation.
type PortfolioRepository interface {
	AddHolding(ctx context.Context, holding *portfolio.Holding) error
	RemoveHolding(ctx context.Context, id uuid.UUID) error
	ListHoldings(ctx context.Context) ([]portfolio.Holding, error)
	ReplaceHoldings(ctx context.Context, holdings []portfolio.Holding) error

	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error

	Close() error
}
