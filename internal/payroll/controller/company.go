package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OBuskas/ananaPayroll/internal/payroll/db"
	e "github.com/OBuskas/ananaPayroll/internal/payroll/errors"
	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/OBuskas/ananaPayroll/internal/pkg/utils"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const maxCompanyNameLength = 128

// CompanyService is the company registry: it issues company ids and records
// each company's admin.
type CompanyService struct {
	x      *executor
	logger *zap.Logger
}

// RegisterCompany registers a company administered by caller and returns its
// id. Ids start at 0 and increase by one per registration.
func (s *CompanyService) RegisterCompany(ctx context.Context, caller common.Address, name string) (uint64, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxCompanyNameLength {
		return 0, fmt.Errorf("%w: invalid name", e.ErrInvalidInput)
	}
	if caller == (common.Address{}) {
		return 0, fmt.Errorf("%w: zero caller", e.ErrUnauthorized)
	}

	var id uint64
	err := s.x.run(ctx, func(c *call) error {
		next, err := c.repo.NextSequence(ctx, db.CompanySequence)
		if err != nil {
			return fmt.Errorf("failed to allocate company id: %w", err)
		}
		company := &models.Company{
			ID:        next,
			Admin:     caller,
			Name:      name,
			CreatedAt: c.now,
		}
		if err := c.repo.CreateCompany(ctx, company); err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}
		id = next
		return c.emit(models.CompanyRegistered, utils.Ptr(next), models.CompanyRegisteredPayload{
			CompanyID: next,
			Admin:     caller,
			Name:      name,
		})
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Company registered",
		zap.Uint64("company_id", id),
		zap.String("admin", caller.Hex()),
	)
	return id, nil
}

// GetCompany returns the company with the given id. Unknown ids yield a
// zero-valued Company with Exists unset.
func (s *CompanyService) GetCompany(ctx context.Context, id uint64) (*models.Company, error) {
	var company *models.Company
	err := s.x.view(ctx, func(c *call) error {
		var err error
		company, err = lookupCompany(c, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

func (s *CompanyService) IsCompanyAdmin(ctx context.Context, id uint64, addr common.Address) (bool, error) {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return false, err
	}
	return company.IsAdmin(addr), nil
}

// ListCompaniesByAdmin returns every company admin registered.
func (s *CompanyService) ListCompaniesByAdmin(ctx context.Context, admin common.Address) ([]*models.Company, error) {
	var companies []*models.Company
	err := s.x.view(ctx, func(c *call) error {
		var err error
		companies, err = c.repo.ListCompaniesByAdmin(ctx, admin)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

func lookupCompany(c *call, id uint64) (*models.Company, error) {
	company, err := c.repo.GetCompany(c.ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return &models.Company{}, nil
		}
		return nil, err
	}
	return company, nil
}

// requireAdmin loads the company and checks caller administers it.
func requireAdmin(c *call, companyID uint64, caller common.Address) (*models.Company, error) {
	company, err := lookupCompany(c, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if !company.Exists {
		return nil, fmt.Errorf("%w: id %d", e.ErrCompanyNotFound, companyID)
	}
	if company.Admin != caller {
		return nil, fmt.Errorf("%w: not company admin", e.ErrUnauthorized)
	}
	return company, nil
}
