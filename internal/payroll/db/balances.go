package db

import (
	"context"
	"errors"

	"github.com/OBuskas/ananaPayroll/internal/payroll/db/models"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompanyBalance returns the vault balance held for a company admin address.
// Unknown addresses hold zero.
func (r *Repository) CompanyBalance(ctx context.Context, company common.Address, lock bool) (uint64, error) {
	var b models.CompanyBalance
	err := r.locked(ctx, lock).Where("company = ?", addr(company)).Take(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return b.Amount, nil
}

func (r *Repository) SetCompanyBalance(ctx context.Context, company common.Address, amount uint64) error {
	row := models.CompanyBalance{Company: addr(company), Amount: amount}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&row).Error
}

// TokenBalance returns owner's token balance, 0 when owner never held any.
func (r *Repository) TokenBalance(ctx context.Context, owner common.Address) (uint64, error) {
	var b models.TokenBalance
	err := r.locked(ctx, true).Where("owner = ?", addr(owner)).Take(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return b.Amount, nil
}

func (r *Repository) SetTokenBalance(ctx context.Context, owner common.Address, amount uint64) error {
	row := models.TokenBalance{Owner: addr(owner), Amount: amount}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).Create(&row).Error
}

func (r *Repository) TokenAllowance(ctx context.Context, owner, spender common.Address) (uint64, error) {
	var a models.TokenAllowance
	err := r.locked(ctx, true).
		Where("owner = ? AND spender = ?", addr(owner), addr(spender)).
		Take(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return a.Amount, nil
}

func (r *Repository) SetTokenAllowance(ctx context.Context, owner, spender common.Address, amount uint64) error {
	row := models.TokenAllowance{Owner: addr(owner), Spender: addr(spender), Amount: amount}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "spender"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).Create(&row).Error
}
