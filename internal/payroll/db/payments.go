package db

import (
	"context"
	"errors"

	"github.com/OBuskas/ananaPayroll/internal/payroll/db/models"
	e "github.com/OBuskas/ananaPayroll/internal/payroll/errors"
	domain "github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"gorm.io/gorm"
)

const defaultListLimit = 100

func (r *Repository) CreatePayment(ctx context.Context, p *domain.Payment) error {
	row := models.Payment{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		Company:   addr(p.Company),
		Employee:  addr(p.Employee),
		Amount:    p.Amount,
		ReleaseAt: p.ReleaseAt.Unix(),
	}
	result := r.db.WithContext(ctx).Create(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrAlreadyExists
		}
		return result.Error
	}
	return nil
}

func (r *Repository) GetPayment(ctx context.Context, id uint64, lock bool) (*domain.Payment, error) {
	var p models.Payment
	result := r.locked(ctx, lock).Where("id = ?", id).Take(&p)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return toPayment(&p), nil
}

// MarkPaymentClaimed flips the claimed flag once. A payment that is already
// claimed is reported as ErrAlreadyClaimed.
func (r *Repository) MarkPaymentClaimed(ctx context.Context, id uint64, claimedAt int64) error {
	result := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND claimed = ?", id, false).
		Updates(map[string]interface{}{
			"claimed":    true,
			"claimed_at": claimedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrAlreadyClaimed
	}
	return nil
}

func (r *Repository) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Company != nil {
		query = query.Where("company = ?", addr(*filter.Company))
	}
	if filter.Employee != nil {
		query = query.Where("employee = ?", addr(*filter.Employee))
	}
	if filter.Claimed != nil {
		query = query.Where("claimed = ?", *filter.Claimed)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var rows []models.Payment
	if err := query.Order("id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]*domain.Payment, 0, len(rows))
	for i := range rows {
		payments = append(payments, toPayment(&rows[i]))
	}
	return payments, nil
}
