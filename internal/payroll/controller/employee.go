package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	e "github.com/OBuskas/ananaPayroll/internal/payroll/errors"
	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/OBuskas/ananaPayroll/internal/payroll/token"
	"github.com/OBuskas/ananaPayroll/internal/pkg/utils"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// EmployeeService is the employee registry: employment records per
// (company, wallet) and the documents attached to them.
type EmployeeService struct {
	x      *executor
	logger *zap.Logger
}

// EmployeeTerms are the payment terms of an employment record.
type EmployeeTerms struct {
	Amount     uint64
	Frequency  uint64
	LockPeriod uint64
}

// AddEmployee creates an employment record. Only the company admin may add
// employees, and a wallet is added to a company at most once.
func (s *EmployeeService) AddEmployee(ctx context.Context, caller common.Address, companyID uint64, wallet common.Address, terms EmployeeTerms) error {
	if wallet == (common.Address{}) {
		return fmt.Errorf("%w: zero wallet", e.ErrInvalidInput)
	}
	if terms.Amount == 0 {
		return fmt.Errorf("%w: zero amount", e.ErrInvalidInput)
	}
	if err := token.CheckAmount(terms.Amount); err != nil {
		return err
	}
	if terms.LockPeriod > MaxLockPeriod {
		return fmt.Errorf("%w: lock period %d exceeds %d", e.ErrInvalidInput, terms.LockPeriod, MaxLockPeriod)
	}

	err := s.x.run(ctx, func(c *call) error {
		if _, err := requireAdmin(c, companyID, caller); err != nil {
			return err
		}
		emp := &models.Employee{
			CompanyID:  companyID,
			Wallet:     wallet,
			Amount:     terms.Amount,
			Frequency:  terms.Frequency,
			LockPeriod: terms.LockPeriod,
			Active:     true,
			CreatedAt:  c.now,
		}
		if err := c.repo.CreateEmployee(ctx, emp); err != nil {
			if errors.Is(err, e.ErrAlreadyExists) {
				return fmt.Errorf("%w: employee %s", e.ErrAlreadyExists, wallet.Hex())
			}
			return fmt.Errorf("failed to create employee: %w", err)
		}
		return c.emit(models.EmployeeAdded, utils.Ptr(companyID), models.EmployeeAddedPayload{
			CompanyID:  companyID,
			Employee:   wallet,
			Amount:     terms.Amount,
			Frequency:  terms.Frequency,
			LockPeriod: terms.LockPeriod,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Employee added",
		zap.Uint64("company_id", companyID),
		zap.String("employee", wallet.Hex()),
		zap.Uint64("amount", terms.Amount),
	)
	return nil
}

// AcceptJob marks caller's record at companyID as accepted.
func (s *EmployeeService) AcceptJob(ctx context.Context, caller common.Address, companyID uint64) error {
	return s.x.run(ctx, func(c *call) error {
		emp, err := c.repo.GetEmployee(ctx, companyID, caller, true)
		if err != nil {
			if errors.Is(err, e.ErrNotFound) {
				return fmt.Errorf("%w: no employment record", e.ErrNotFound)
			}
			return fmt.Errorf("failed to get employee: %w", err)
		}
		if emp.Accepted {
			return e.ErrAlreadyAccepted
		}
		if !emp.Active {
			return e.ErrNotActive
		}

		emp.Accepted = true
		if err := c.repo.UpdateEmployeeState(ctx, emp); err != nil {
			return fmt.Errorf("failed to accept job: %w", err)
		}
		return c.emit(models.EmployeeAccepted, utils.Ptr(companyID), models.EmployeePayload{
			CompanyID: companyID,
			Employee:  caller,
		})
	})
}

// TerminateEmployee deactivates an employment record. Terminating an already
// terminated record succeeds without emitting anything.
func (s *EmployeeService) TerminateEmployee(ctx context.Context, caller common.Address, companyID uint64, wallet common.Address) error {
	var terminated bool
	err := s.x.run(ctx, func(c *call) error {
		if _, err := requireAdmin(c, companyID, caller); err != nil {
			return err
		}
		emp, err := c.repo.GetEmployee(ctx, companyID, wallet, true)
		if err != nil {
			if errors.Is(err, e.ErrNotFound) {
				return fmt.Errorf("%w: no employment record", e.ErrNotFound)
			}
			return fmt.Errorf("failed to get employee: %w", err)
		}
		if !emp.Active {
			return nil
		}

		emp.Active = false
		if err := c.repo.UpdateEmployeeState(ctx, emp); err != nil {
			return fmt.Errorf("failed to terminate employee: %w", err)
		}
		terminated = true
		return c.emit(models.EmployeeTerminated, utils.Ptr(companyID), models.EmployeePayload{
			CompanyID: companyID,
			Employee:  wallet,
		})
	})
	if err != nil {
		return err
	}

	if terminated {
		s.logger.Info("Employee terminated",
			zap.Uint64("company_id", companyID),
			zap.String("employee", wallet.Hex()),
		)
	}
	return nil
}

// GetEmployee returns the record for (companyID, wallet), zero-valued when
// none exists.
func (s *EmployeeService) GetEmployee(ctx context.Context, companyID uint64, wallet common.Address) (*models.Employee, error) {
	var emp *models.Employee
	err := s.x.view(ctx, func(c *call) error {
		var err error
		emp, err = lookupEmployee(c, companyID, wallet, false)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

func (s *EmployeeService) IsEmployee(ctx context.Context, companyID uint64, wallet common.Address) (bool, error) {
	emp, err := s.GetEmployee(ctx, companyID, wallet)
	if err != nil {
		return false, err
	}
	return emp.Exists && emp.Active, nil
}

// ListEmployees returns a company's roster, terminated records included.
func (s *EmployeeService) ListEmployees(ctx context.Context, companyID uint64) ([]*models.Employee, error) {
	var roster []*models.Employee
	err := s.x.view(ctx, func(c *call) error {
		var err error
		roster, err = c.repo.ListEmployees(ctx, companyID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return roster, nil
}

// AddEmployeeDocument attaches a document reference to an employee. The
// content itself lives elsewhere; only its identifier is recorded.
func (s *EmployeeService) AddEmployeeDocument(ctx context.Context, caller common.Address, doc *models.EmployeeDocument) error {
	doc.PieceCID = strings.TrimSpace(doc.PieceCID)
	doc.FileName = strings.TrimSpace(doc.FileName)
	if doc.PieceCID == "" {
		return fmt.Errorf("%w: empty piece cid", e.ErrInvalidInput)
	}
	if doc.FileName == "" {
		return fmt.Errorf("%w: empty file name", e.ErrInvalidInput)
	}

	return s.x.run(ctx, func(c *call) error {
		if _, err := requireAdmin(c, doc.CompanyID, caller); err != nil {
			return err
		}
		emp, err := lookupEmployee(c, doc.CompanyID, doc.Employee, false)
		if err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}
		if !emp.Exists {
			return fmt.Errorf("%w: no employment record", e.ErrNotFound)
		}

		doc.Uploader = caller
		doc.UploadedAt = c.now
		if err := c.repo.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("failed to add document: %w", err)
		}
		return c.emit(models.DocumentAdded, utils.Ptr(doc.CompanyID), models.DocumentAddedPayload{
			CompanyID: doc.CompanyID,
			Employee:  doc.Employee,
			PieceCID:  doc.PieceCID,
			FileName:  doc.FileName,
			FileSize:  doc.FileSize,
			Uploader:  caller,
		})
	})
}

func (s *EmployeeService) GetEmployeeDocuments(ctx context.Context, companyID uint64, employee common.Address) ([]*models.EmployeeDocument, error) {
	return s.listDocuments(ctx, companyID, &employee)
}

func (s *EmployeeService) GetCompanyDocuments(ctx context.Context, companyID uint64) ([]*models.EmployeeDocument, error) {
	return s.listDocuments(ctx, companyID, nil)
}

func (s *EmployeeService) listDocuments(ctx context.Context, companyID uint64, employee *common.Address) ([]*models.EmployeeDocument, error) {
	var docs []*models.EmployeeDocument
	err := s.x.view(ctx, func(c *call) error {
		var err error
		docs, err = c.repo.ListDocuments(ctx, companyID, employee)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func lookupEmployee(c *call, companyID uint64, wallet common.Address, lock bool) (*models.Employee, error) {
	emp, err := c.repo.GetEmployee(c.ctx, companyID, wallet, lock)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return &models.Employee{}, nil
		}
		return nil, err
	}
	return emp, nil
}
