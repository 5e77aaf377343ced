package controller

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/OBuskas/ananaPayroll/internal/payroll/db"
	e "github.com/OBuskas/ananaPayroll/internal/payroll/errors"
	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/OBuskas/ananaPayroll/internal/payroll/token"
	"github.com/OBuskas/ananaPayroll/internal/pkg/utils"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// MaxLockPeriod bounds how long a payment may stay locked: a hundred years.
const MaxLockPeriod uint64 = 100 * 365 * 24 * 60 * 60

// releaseTime is now plus lockPeriod seconds.
func releaseTime(now time.Time, lockPeriod uint64) (time.Time, error) {
	if lockPeriod > MaxLockPeriod {
		return time.Time{}, fmt.Errorf("%w: lock period %d exceeds %d", e.ErrInvalidInput, lockPeriod, MaxLockPeriod)
	}
	sec := now.Unix()
	if sec > math.MaxInt64-int64(lockPeriod) {
		return time.Time{}, fmt.Errorf("%w: release time overflows", e.ErrInvalidInput)
	}
	return time.Unix(sec+int64(lockPeriod), 0).UTC(), nil
}

// PayrollService is the payroll manager. It turns a list of wallets into
// scheduled vault payments, acting towards the vault under its own address.
type PayrollService struct {
	x       *executor
	vault   *VaultService
	address common.Address
	// requireAcceptance skips employees who have not accepted their job.
	requireAcceptance bool
	logger            *zap.Logger
}

// Address is the address the manager acts under when calling the vault.
func (s *PayrollService) Address() common.Address {
	return s.address
}

// CreatePayrollRun schedules one payment per eligible wallet of the company.
// Wallets without an active record are skipped and consume no payment id.
// The run is rejected as a whole when the company balance cannot cover it.
func (s *PayrollService) CreatePayrollRun(ctx context.Context, caller common.Address, companyID uint64, wallets []common.Address) (*models.PayrollRun, error) {
	var run *models.PayrollRun
	err := s.x.run(ctx, func(c *call) error {
		company, err := requireAdmin(c, companyID, caller)
		if err != nil {
			return err
		}
		if err := s.vault.requireManager(c, s.address); err != nil {
			return err
		}

		var (
			eligible []*models.Employee
			total    uint64
		)
		for _, wallet := range utils.Unique(wallets) {
			emp, err := lookupEmployee(c, companyID, wallet, false)
			if err != nil {
				return fmt.Errorf("failed to get employee: %w", err)
			}
			if !emp.Exists || !emp.Active {
				continue
			}
			if s.requireAcceptance && !emp.Accepted {
				continue
			}
			if total > token.MaxAmount-emp.Amount {
				return fmt.Errorf("%w: run total overflows", e.ErrInvalidInput)
			}
			total += emp.Amount
			eligible = append(eligible, emp)
		}

		balance, err := c.repo.CompanyBalance(ctx, company.Admin, true)
		if err != nil {
			return fmt.Errorf("failed to get company balance: %w", err)
		}
		if total > balance {
			return fmt.Errorf("%w: run needs %d, company balance is %d", e.ErrInsufficientFunds, total, balance)
		}

		ids := make([]uint64, 0, len(eligible))
		for _, emp := range eligible {
			releaseAt, err := releaseTime(c.now, emp.LockPeriod)
			if err != nil {
				return err
			}
			id, err := s.vault.createPayment(c, PaymentRequest{
				CompanyID: companyID,
				Company:   company.Admin,
				Employee:  emp.Wallet,
				Amount:    emp.Amount,
				ReleaseAt: releaseAt,
			})
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		runID, err := c.repo.NextSequence(ctx, db.PayrollRunSequence)
		if err != nil {
			return fmt.Errorf("failed to allocate run id: %w", err)
		}
		run = &models.PayrollRun{
			ID:            runID,
			CompanyID:     companyID,
			CreatedBy:     caller,
			Timestamp:     c.now,
			PaymentsCount: uint64(len(ids)),
			TotalAmount:   total,
			PaymentIDs:    ids,
		}
		if err := c.repo.CreatePayrollRun(ctx, run); err != nil {
			return fmt.Errorf("failed to record payroll run: %w", err)
		}
		return c.emit(models.PayrollRunCreated, utils.Ptr(companyID), models.PayrollRunCreatedPayload{
			CompanyID:     companyID,
			Timestamp:     c.now.Unix(),
			PaymentsCount: run.PaymentsCount,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payroll run created",
		zap.Uint64("company_id", companyID),
		zap.Uint64("run_id", run.ID),
		zap.Uint64("payments", run.PaymentsCount),
		zap.Uint64("total", run.TotalAmount),
	)
	return run, nil
}

// RelayClaim claims paymentID for employee through the vault's relayed path,
// with the manager as relayer. Any caller may submit a relay; the funds only
// ever reach the payment's employee.
func (s *PayrollService) RelayClaim(ctx context.Context, caller common.Address, paymentID uint64, employee common.Address) error {
	var payment *models.Payment
	err := s.x.run(ctx, func(c *call) error {
		if err := s.vault.requireManager(c, s.address); err != nil {
			return err
		}
		var err error
		payment, err = s.vault.claim(c, paymentID, employee, s.address)
		return err
	})
	if err != nil {
		return err
	}
	s.vault.logClaimed(payment)
	s.logger.Debug("Claim relayed",
		zap.Uint64("payment_id", paymentID),
		zap.String("submitter", caller.Hex()),
	)
	return nil
}

// ListPayrollRuns returns a company's payroll runs, newest first.
func (s *PayrollService) ListPayrollRuns(ctx context.Context, companyID uint64, limit int) ([]*models.PayrollRun, error) {
	var runs []*models.PayrollRun
	err := s.x.view(ctx, func(c *call) error {
		var err error
		runs, err = c.repo.ListPayrollRuns(ctx, companyID, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	return runs, nil
}
