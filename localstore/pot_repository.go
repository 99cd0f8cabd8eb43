package localstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"animalitos/domain/entities"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxVersionAttempts bounds the compare-and-swap loop of AdjustBalance
const maxVersionAttempts = 3

type potRepository struct {
	db *gorm.DB
}

func (r *potRepository) find(ctx context.Context, name string) (*potRow, error) {
	var row potRow
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get local pot %s: %w", name, err)
	}
	return &row, nil
}

func (r *potRepository) GetByName(ctx context.Context, name string) (*entities.Pot, error) {
	row, err := r.find(ctx, name)
	if err != nil || row == nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *potRepository) list(ctx context.Context, query *gorm.DB) ([]*entities.Pot, error) {
	var rows []potRow
	if err := query.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list local pots: %w", err)
	}
	pots := make([]*entities.Pot, 0, len(rows))
	for i := range rows {
		pots = append(pots, rows[i].toEntity())
	}
	return pots, nil
}

func (r *potRepository) List(ctx context.Context) ([]*entities.Pot, error) {
	return r.list(ctx, r.db)
}

// LockByNames reads the named pots in name order. The store lock already
// serializes writers, so no row lock is needed.
func (r *potRepository) LockByNames(ctx context.Context, names []string) ([]*entities.Pot, error) {
	if len(names) == 0 {
		return nil, nil
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return r.list(ctx, r.db.Where("name IN ?", sorted))
}

func (r *potRepository) LockActive(ctx context.Context) ([]*entities.Pot, error) {
	return r.list(ctx, r.db.Where("active = ?", true))
}

func (r *potRepository) Create(ctx context.Context, pot *entities.Pot) error {
	row := potRow{
		ID:              pot.ID,
		Name:            pot.Name,
		Percentage:      pot.Percentage,
		Balance:         pot.Balance,
		SnapshotBalance: pot.Balance,
		Color:           pot.Color,
		Description:     pot.Description,
		Active:          pot.Active,
		Version:         0,
		CreatedAt:       pot.CreatedAt,
		UpdatedAt:       pot.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create local pot %s: %w", pot.Name, err)
	}
	pot.Version = row.Version
	pot.CreatedAt = row.CreatedAt
	pot.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *potRepository) UpdateConfig(ctx context.Context, pot *entities.Pot) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&potRow{}).Where("name = ?", pot.Name).Updates(map[string]any{
		"percentage":  pot.Percentage,
		"color":       pot.Color,
		"description": pot.Description,
		"active":      pot.Active,
		"version":     gorm.Expr("version + 1"),
		"updated_at":  now,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update local pot %s: %w", pot.Name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", entities.ErrPotNotFound, pot.Name)
	}

	stored, err := r.find(ctx, pot.Name)
	if err != nil {
		return err
	}
	pot.Version = stored.Version
	pot.UpdatedAt = stored.UpdatedAt
	return nil
}

// AdjustBalance applies delta with a compare-and-swap on the version column
func (r *potRepository) AdjustBalance(ctx context.Context, name string, delta decimal.Decimal) (*entities.Pot, error) {
	for attempt := 0; attempt < maxVersionAttempts; attempt++ {
		row, err := r.find(ctx, name)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, fmt.Errorf("%w: %s", entities.ErrPotNotFound, name)
		}

		next := row.Balance.Add(delta)
		if next.IsNegative() {
			return nil, fmt.Errorf("%w: pot %s holds %s, needs %s", entities.ErrInsufficientFunds, name, row.Balance.String(), delta.Neg().String())
		}

		now := time.Now().UTC()
		res := r.db.WithContext(ctx).Model(&potRow{}).
			Where("name = ? AND version = ?", name, row.Version).
			Updates(map[string]any{
				"balance":    next,
				"version":    row.Version + 1,
				"updated_at": now,
			})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to adjust local pot %s: %w", name, res.Error)
		}
		if res.RowsAffected == 1 {
			row.Balance = next
			row.Version++
			row.UpdatedAt = now
			return row.toEntity(), nil
		}
	}
	return nil, fmt.Errorf("failed to adjust local pot %s: version changed %d times", name, maxVersionAttempts)
}
