package db

import (
	"context"

	"github.com/OBuskas/ananaPayroll/internal/payroll/db/models"
	domain "github.com/OBuskas/ananaPayroll/internal/payroll/models"
)

func (r *Repository) CreatePayrollRun(ctx context.Context, run *domain.PayrollRun) error {
	row := models.PayrollRun{
		ID:            run.ID,
		CompanyID:     run.CompanyID,
		CreatedBy:     addr(run.CreatedBy),
		Timestamp:     run.Timestamp.Unix(),
		PaymentsCount: run.PaymentsCount,
		TotalAmount:   run.TotalAmount,
		PaymentIDs:    run.PaymentIDs,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// ListPayrollRuns returns a company's runs, newest first.
func (r *Repository) ListPayrollRuns(ctx context.Context, companyID uint64, limit int) ([]*domain.PayrollRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var rows []models.PayrollRun
	result := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id DESC").
		Limit(limit).
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	runs := make([]*domain.PayrollRun, 0, len(rows))
	for i := range rows {
		runs = append(runs, toPayrollRun(&rows[i]))
	}
	return runs, nil
}
