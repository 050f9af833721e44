package portfolio

import (
	"time"

	domain "main/internal/domain/entity/portfolio"

	"github.com/google/uuid"
)

// HoldingModel maps a portfolio position onto the `holdings` table.
type HoldingModel struct {
	ID       string    `gorm:"primaryKey;column:id;type:varchar(36)"`
	CoinID   string    `gorm:"column:coin_id;type:varchar(100);not null;index"`
	Name     string    `gorm:"column:name;type:varchar(255);not null"`
	Symbol   string    `gorm:"column:symbol;type:varchar(50);not null"`
	Amount   float64   `gorm:"column:amount;not null"`
	Price    float64   `gorm:"column:price;not null"`
	Value    float64   `gorm:"column:value;not null"`
	Currency string    `gorm:"column:currency;type:varchar(10);not null"`
	AddedAt  time.Time `gorm:"column:added_at"`
}

func (HoldingModel) TableName() string { return "holdings" }

// PreferenceModel stores a single user preference ("lang", "theme") as a
// key-value row.
type PreferenceModel struct {
	Key   string `gorm:"primaryKey;column:key;type:varchar(50)"`
	Value string `gorm:"column:value;type:varchar(255);not null"`
}

func (PreferenceModel) TableName() string { return "preferences" }

func toModel(h *domain.Holding) HoldingModel {
	return HoldingModel{
		ID:       h.ID.String(),
		CoinID:   h.CoinID,
		Name:     h.Name,
		Symbol:   h.Symbol,
		Amount:   h.Amount,
		Price:    h.Price,
		Value:    h.Value,
		Currency: h.Currency.String(),
		AddedAt:  h.AddedAt,
	}
}

func (m HoldingModel) toDomain() (domain.Holding, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return domain.Holding{}, err
	}
	return domain.Holding{
		ID:       id,
		CoinID:   m.CoinID,
		Name:     m.Name,
		Symbol:   m.Symbol,
		Amount:   m.Amount,
		Price:    m.Price,
		Value:    m.Value,
		Currency: domain.Currency(m.Currency),
		AddedAt:  m.AddedAt,
	}, nil
}
