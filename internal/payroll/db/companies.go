package db

import (
	"context"
	"errors"

	"github.com/OBuskas/ananaPayroll/internal/payroll/db/models"
	e "github.com/OBuskas/ananaPayroll/internal/payroll/errors"
	domain "github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

func (r *Repository) CreateCompany(ctx context.Context, company *domain.Company) error {
	row := models.Company{
		ID:        company.ID,
		Admin:     addr(company.Admin),
		Name:      company.Name,
		CreatedAt: company.CreatedAt,
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

func (r *Repository) GetCompany(ctx context.Context, id uint64) (*domain.Company, error) {
	var company models.Company
	result := r.db.WithContext(ctx).Where("id = ?", id).Take(&company)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return toCompany(&company), nil
}

// ListCompaniesByAdmin returns the companies administered by admin, oldest first.
func (r *Repository) ListCompaniesByAdmin(ctx context.Context, admin common.Address) ([]*domain.Company, error) {
	var rows []models.Company
	result := r.db.WithContext(ctx).
		Where("admin = ?", addr(admin)).
		Order("id").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	companies := make([]*domain.Company, 0, len(rows))
	for i := range rows {
		companies = append(companies, toCompany(&rows[i]))
	}
	return companies, nil
}
