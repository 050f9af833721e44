// Package portfolio persists user holdings and preferences in a local
// sqlite file — the durable, per-installation storage of this dashboard.
package portfolio

import (
	"context"
	"errors"
	"fmt"

	domain "main/internal/domain/entity/portfolio"
	"main/internal/domain/interfaces"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrPreferenceNotFound = errors.New("preference not found")

type Repository struct {
	db *gorm.DB
}

var _ interfaces.PortfolioRepository = (*Repository)(nil)

func NewRepository(path string) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open portfolio db: %w", err)
	}
	if err := db.AutoMigrate(&HoldingModel{}, &PreferenceModel{}); err != nil {
		return nil, fmt.Errorf("migrate portfolio db: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repository) AddHolding(ctx context.Context, holding *domain.Holding) error {
	if holding == nil {
		return errors.New("nil holding")
	}
	if holding.ID == uuid.Nil {
		holding.ID = uuid.New()
	}
	model := toModel(holding)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *Repository) RemoveHolding(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&HoldingModel{}, "id = ?", id.String()).Error
}

func (r *Repository) ListHoldings(ctx context.Context) ([]domain.Holding, error) {
	var models []HoldingModel
	if err := r.db.WithContext(ctx).Order("added_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	holdings := make([]domain.Holding, 0, len(models))
	for _, model := range models {
		holding, err := model.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode holding %s: %w", model.ID, err)
		}
		holdings = append(holdings, holding)
	}
	return holdings, nil
}

// ReplaceHoldings rewrites the whole table in one transaction. Used by the
// revaluation path, where every row changes at once.
func (r *Repository) ReplaceHoldings(ctx context.Context, holdings []domain.Holding) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&HoldingModel{}).Error; err != nil {
			return err
		}
		for i := range holdings {
			model := toModel(&holdings[i])
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetPreference(ctx context.Context, key string) (string, error) {
	var model PreferenceModel
	err := r.db.WithContext(ctx).First(&model, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrPreferenceNotFound
	}
	if err != nil {
		return "", err
	}
	return model.Value, nil
}

func (r *Repository) SetPreference(ctx context.Context, key, value string) error {
	model := PreferenceModel{Key: key, Value: value}
	return r.db.WithContext(ctx).Save(&model).Error
}
