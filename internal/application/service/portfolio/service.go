package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"main/internal/domain/currency"
	market "main/internal/domain/entity/market"
	domain "main/internal/domain/entity/portfolio"
	"main/internal/domain/interfaces"

	"github.com/google/uuid"
)

var (
	ErrMissingCoinID  = errors.New("coin id is required")
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrPriceNotQuoted = errors.New("price not quoted in requested currency")
)

// detailFetcher is the one provider operation this service needs; the full
// market service satisfies it.
type detailFetcher interface {
	CoinDetail(ctx context.Context, coinID string) (*market.CoinDetail, error)
}

// Service maintains the portfolio: positions are priced at addition time
// in the active display currency and revalued wholesale when that
// currency changes.
type Service struct {
	repo    interfaces.PortfolioRepository
	details detailFetcher
	rates   *currency.Converter
}

func NewService(repo interfaces.PortfolioRepository, details detailFetcher) *Service {
	return &Service{
		repo:    repo,
		details: details,
		rates:   currency.NewConverter(nil),
	}
}

// quote resolves the coin's price in the requested currency: the upstream
// quote when present, otherwise the USD quote run through the static
// conversion table.
func (s *Service) quote(detail *market.CoinDetail, cur domain.Currency) (float64, error) {
	if price, ok := detail.MarketData.Price(cur.String()); ok {
		return price, nil
	}
	usd, ok := detail.MarketData.Price(currency.USD)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrPriceNotQuoted, cur)
	}
	return s.rates.Convert(usd, cur.String()), nil
}

// Add fetches the coin's current price in the given currency and stores a
// new position valued at that price.
func (s *Service) Add(ctx context.Context, coinID string, amount float64, cur domain.Currency) (*domain.Holding, error) {
	if coinID == "" {
		return nil, ErrMissingCoinID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !cur.IsValid() {
		cur = domain.CurrencyUSD
	}

	detail, err := s.details.CoinDetail(ctx, coinID)
	if err != nil {
		return nil, err
	}
	price, err := s.quote(detail, cur)
	if err != nil {
		return nil, err
	}

	holding := &domain.Holding{
		ID:       uuid.New(),
		CoinID:   detail.ID,
		Name:     detail.Name,
		Symbol:   detail.Symbol,
		Amount:   amount,
		Price:    price,
		Value:    price * amount,
		Currency: cur,
		AddedAt:  time.Now().UTC(),
	}
	if err := s.repo.AddHolding(ctx, holding); err != nil {
		return nil, err
	}
	return holding, nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	return s.repo.RemoveHolding(ctx, id)
}

// List returns all holdings plus their summed value. The total mixes
// nothing: every stored value is already denominated in the holding's own
// currency, which SetCurrency keeps uniform.
func (s *Service) List(ctx context.Context) ([]domain.Holding, float64, error) {
	holdings, err := s.repo.ListHoldings(ctx)
	if err != nil {
		return nil, 0, err
	}
	return holdings, domain.TotalValue(holdings), nil
}

// SetCurrency re-fetches the current price of every holding in the new
// display currency and rewrites price and value across the board.
func (s *Service) SetCurrency(ctx context.Context, cur domain.Currency) ([]domain.Holding, error) {
	if !cur.IsValid() {
		return nil, fmt.Errorf("unsupported currency: %s", cur)
	}

	holdings, err := s.repo.ListHoldings(ctx)
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return holdings, nil
	}

	for i := range holdings {
		detail, err := s.details.CoinDetail(ctx, holdings[i].CoinID)
		if err != nil {
			return nil, fmt.Errorf("revalue %s: %w", holdings[i].CoinID, err)
		}
		price, err := s.quote(detail, cur)
		if err != nil {
			return nil, fmt.Errorf("revalue %s: %w", holdings[i].CoinID, err)
		}
		holdings[i].Price = price
		holdings[i].Value = price * holdings[i].Amount
		holdings[i].Currency = cur
	}

	if err := s.repo.ReplaceHoldings(ctx, holdings); err != nil {
		return nil, err
	}
	return holdings, nil
}

// Preferences

const (
	PrefLang  = "lang"
	PrefTheme = "theme"
)

func (s *Service) Preference(ctx context.Context, key string) (string, error) {
	return s.repo.GetPreference(ctx, key)
}

func (s *Service) SetPreference(ctx context.Context, key, value string) error {
	if key != PrefLang && key != PrefTheme {
		return fmt.Errorf("unknown preference: %s", key)
	}
	return s.repo.SetPreference(ctx, key, value)
}
