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

func (r *Repository) CreateEmployee(ctx context.Context, emp *domain.Employee) error {
	row := models.Employee{
		CompanyID:  emp.CompanyID,
		Wallet:     addr(emp.Wallet),
		Amount:     emp.Amount,
		Frequency:  emp.Frequency,
		LockPeriod: emp.LockPeriod,
		Accepted:   emp.Accepted,
		Active:     emp.Active,
		CreatedAt:  emp.CreatedAt,
		UpdatedAt:  emp.CreatedAt,
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

// GetEmployee loads the record for (companyID, wallet). With lock set the row
// stays locked until the enclosing transaction ends.
func (r *Repository) GetEmployee(ctx context.Context, companyID uint64, wallet common.Address, lock bool) (*domain.Employee, error) {
	var emp models.Employee
	result := r.locked(ctx, lock).
		Where("company_id = ? AND wallet = ?", companyID, addr(wallet)).
		Take(&emp)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return toEmployee(&emp), nil
}

// UpdateEmployeeState writes the accepted and active flags of a record.
func (r *Repository) UpdateEmployeeState(ctx context.Context, emp *domain.Employee) error {
	result := r.db.WithContext(ctx).Model(&models.Employee{}).
		Where("company_id = ? AND wallet = ?", emp.CompanyID, addr(emp.Wallet)).
		Updates(map[string]interface{}{
			"accepted": emp.Accepted,
			"active":   emp.Active,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// ListEmployees returns a company's roster in the order employees were added.
func (r *Repository) ListEmployees(ctx context.Context, companyID uint64) ([]*domain.Employee, error) {
	var rows []models.Employee
	result := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	employees := make([]*domain.Employee, 0, len(rows))
	for i := range rows {
		employees = append(employees, toEmployee(&rows[i]))
	}
	return employees, nil
}

func (r *Repository) AddDocument(ctx context.Context, doc *domain.EmployeeDocument) error {
	row := models.EmployeeDocument{
		CompanyID:  doc.CompanyID,
		Employee:   addr(doc.Employee),
		PieceCID:   doc.PieceCID,
		FileName:   doc.FileName,
		FileSize:   doc.FileSize,
		Uploader:   addr(doc.Uploader),
		UploadedAt: doc.UploadedAt.Unix(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// ListDocuments returns a company's documents in upload order, optionally
// restricted to one employee.
func (r *Repository) ListDocuments(ctx context.Context, companyID uint64, employee *common.Address) ([]*domain.EmployeeDocument, error) {
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if employee != nil {
		query = query.Where("employee = ?", addr(*employee))
	}

	var rows []models.EmployeeDocument
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]*domain.EmployeeDocument, 0, len(rows))
	for i := range rows {
		docs = append(docs, toDocument(&rows[i]))
	}
	return docs, nil
}
