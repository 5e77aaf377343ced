package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OBuskas/ananaPayroll/internal/payroll/db"
	e "github.com/OBuskas/ananaPayroll/internal/payroll/errors"
	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/OBuskas/ananaPayroll/internal/payroll/token"
	"github.com/OBuskas/ananaPayroll/internal/pkg/utils"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// VaultService is the payment vault. It custodies deposited tokens in its own
// token account, keeps a balance per company admin address, and pays out
// scheduled payments once they unlock.
type VaultService struct {
	x       *executor
	owner   common.Address
	address common.Address
	logger  *zap.Logger
}

// Init records the vault's owner and token account, and installs manager as
// payroll manager when none is set yet. It is safe to call on every start.
func (s *VaultService) Init(ctx context.Context, manager common.Address) error {
	return s.x.run(ctx, func(c *call) error {
		settings, err := c.repo.VaultSettings(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to load vault settings: %w", err)
		}
		settings.Owner = s.owner
		settings.Address = s.address
		changed := settings.PayrollManager == (common.Address{}) && manager != (common.Address{})
		if changed {
			settings.PayrollManager = manager
		}
		if err := c.repo.SaveVaultSettings(ctx, settings); err != nil {
			return fmt.Errorf("failed to save vault settings: %w", err)
		}
		if !changed {
			return nil
		}
		return c.emit(models.PayrollManagerChanged, nil, models.PayrollManagerChangedPayload{
			Current: manager,
		})
	})
}

// Address is the vault's token account.
func (s *VaultService) Address() common.Address {
	return s.address
}

func (s *VaultService) Settings(ctx context.Context) (*models.VaultSettings, error) {
	var settings *models.VaultSettings
	err := s.x.view(ctx, func(c *call) error {
		var err error
		settings, err = c.repo.VaultSettings(ctx, false)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load vault settings: %w", err)
	}
	return settings, nil
}

// SetPayrollManager replaces the address allowed to create payments and relay
// claims. Only the vault owner may call it.
func (s *VaultService) SetPayrollManager(ctx context.Context, caller, manager common.Address) error {
	if manager == (common.Address{}) {
		return fmt.Errorf("%w: zero manager", e.ErrInvalidInput)
	}
	err := s.x.run(ctx, func(c *call) error {
		settings, err := c.repo.VaultSettings(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to load vault settings: %w", err)
		}
		if caller != s.owner {
			return fmt.Errorf("%w: not vault owner", e.ErrUnauthorized)
		}
		previous := settings.PayrollManager
		settings.Owner = s.owner
		settings.Address = s.address
		settings.PayrollManager = manager
		if err := c.repo.SaveVaultSettings(ctx, settings); err != nil {
			return fmt.Errorf("failed to save vault settings: %w", err)
		}
		return c.emit(models.PayrollManagerChanged, nil, models.PayrollManagerChangedPayload{
			Previous: previous,
			Current:  manager,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Payroll manager changed", zap.String("manager", manager.Hex()))
	return nil
}

// Deposit pulls amount tokens from caller into the vault and credits them to
// caller's company balance. The caller must have approved the vault first.
func (s *VaultService) Deposit(ctx context.Context, caller common.Address, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("%w: zero amount", e.ErrInvalidInput)
	}
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	err := s.x.run(ctx, func(c *call) error {
		balance, err := c.repo.CompanyBalance(ctx, caller, true)
		if err != nil {
			return fmt.Errorf("failed to get company balance: %w", err)
		}
		if balance > token.MaxAmount-amount {
			return fmt.Errorf("%w: balance overflow", e.ErrInvalidInput)
		}
		if err := c.token.TransferFrom(ctx, s.address, caller, s.address, amount); err != nil {
			return fmt.Errorf("token transfer failed: %w", err)
		}
		if err := c.repo.SetCompanyBalance(ctx, caller, balance+amount); err != nil {
			return fmt.Errorf("failed to credit company balance: %w", err)
		}
		return c.emit(models.FundsDeposited, nil, models.FundsDepositedPayload{
			Company: caller,
			Amount:  amount,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Funds deposited",
		zap.String("company", caller.Hex()),
		zap.Uint64("amount", amount),
	)
	return nil
}

// PaymentRequest describes a payment to schedule.
type PaymentRequest struct {
	CompanyID uint64
	// Company is the admin address whose balance funds the payment.
	Company   common.Address
	Employee  common.Address
	Amount    uint64
	ReleaseAt time.Time
}

// CreatePayment schedules a payment and returns its id. Only the payroll
// manager may call it. The amount is debited from the company balance now,
// so scheduled payments are always covered.
func (s *VaultService) CreatePayment(ctx context.Context, caller common.Address, req PaymentRequest) (uint64, error) {
	var id uint64
	err := s.x.run(ctx, func(c *call) error {
		if err := s.requireManager(c, caller); err != nil {
			return err
		}
		var err error
		id, err = s.createPayment(c, req)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Payment created",
		zap.Uint64("payment_id", id),
		zap.String("employee", req.Employee.Hex()),
		zap.Uint64("amount", req.Amount),
	)
	return id, nil
}

// Claim pays out a payment to its employee, who must be the caller.
func (s *VaultService) Claim(ctx context.Context, caller common.Address, paymentID uint64) error {
	var payment *models.Payment
	err := s.x.run(ctx, func(c *call) error {
		var err error
		payment, err = s.claim(c, paymentID, caller, caller)
		return err
	})
	if err != nil {
		return err
	}
	s.logClaimed(payment)
	return nil
}

// ClaimFor is the relayed form of Claim. Only the payroll manager may call it
// and the funds still go to employee, who must own the payment.
func (s *VaultService) ClaimFor(ctx context.Context, caller common.Address, paymentID uint64, employee common.Address) error {
	var payment *models.Payment
	err := s.x.run(ctx, func(c *call) error {
		if err := s.requireManager(c, caller); err != nil {
			return err
		}
		var err error
		payment, err = s.claim(c, paymentID, employee, caller)
		return err
	})
	if err != nil {
		return err
	}
	s.logClaimed(payment)
	return nil
}

func (s *VaultService) GetCompanyBalance(ctx context.Context, company common.Address) (uint64, error) {
	var balance uint64
	err := s.x.view(ctx, func(c *call) error {
		var err error
		balance, err = c.repo.CompanyBalance(ctx, company, false)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get company balance: %w", err)
	}
	return balance, nil
}

// GetPayment returns the payment with the given id, zero-valued when the id
// was never allocated.
func (s *VaultService) GetPayment(ctx context.Context, id uint64) (*models.Payment, error) {
	var payment *models.Payment
	err := s.x.view(ctx, func(c *call) error {
		p, err := c.repo.GetPayment(ctx, id, false)
		if err != nil {
			if errors.Is(err, e.ErrNotFound) {
				payment = &models.Payment{}
				return nil
			}
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// NextPaymentID returns the id the next payment will get.
func (s *VaultService) NextPaymentID(ctx context.Context) (uint64, error) {
	var next uint64
	err := s.x.view(ctx, func(c *call) error {
		var err error
		next, err = c.repo.PeekSequence(ctx, db.PaymentSequence)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read payment sequence: %w", err)
	}
	return next, nil
}

func (s *VaultService) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := s.x.view(ctx, func(c *call) error {
		var err error
		payments, err = c.repo.ListPayments(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *VaultService) requireManager(c *call, caller common.Address) error {
	settings, err := c.repo.VaultSettings(c.ctx, false)
	if err != nil {
		return fmt.Errorf("failed to load vault settings: %w", err)
	}
	if settings.PayrollManager == (common.Address{}) || caller != settings.PayrollManager {
		return e.ErrNotPayrollManager
	}
	return nil
}

// createPayment schedules a payment inside an existing call. The caller has
// already been checked.
func (s *VaultService) createPayment(c *call, req PaymentRequest) (uint64, error) {
	if req.Employee == (common.Address{}) {
		return 0, fmt.Errorf("%w: zero employee", e.ErrInvalidInput)
	}
	if req.Amount == 0 {
		return 0, fmt.Errorf("%w: zero amount", e.ErrInvalidInput)
	}
	if err := token.CheckAmount(req.Amount); err != nil {
		return 0, err
	}

	balance, err := c.repo.CompanyBalance(c.ctx, req.Company, true)
	if err != nil {
		return 0, fmt.Errorf("failed to get company balance: %w", err)
	}
	if balance < req.Amount {
		return 0, fmt.Errorf("%w: company balance %d below %d", e.ErrInsufficientFunds, balance, req.Amount)
	}

	id, err := c.repo.NextSequence(c.ctx, db.PaymentSequence)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate payment id: %w", err)
	}
	payment := &models.Payment{
		ID:        id,
		CompanyID: req.CompanyID,
		Company:   req.Company,
		Employee:  req.Employee,
		Amount:    req.Amount,
		ReleaseAt: req.ReleaseAt.UTC().Truncate(time.Second),
	}
	if err := c.repo.CreatePayment(c.ctx, payment); err != nil {
		return 0, fmt.Errorf("failed to create payment: %w", err)
	}
	if err := c.repo.SetCompanyBalance(c.ctx, req.Company, balance-req.Amount); err != nil {
		return 0, fmt.Errorf("failed to debit company balance: %w", err)
	}
	return id, c.emit(models.PaymentCreated, utils.Ptr(req.CompanyID), models.PaymentCreatedPayload{
		PaymentID: id,
		CompanyID: req.CompanyID,
		Company:   req.Company,
		Employee:  req.Employee,
		Amount:    req.Amount,
		ReleaseAt: payment.ReleaseAt.Unix(),
	})
}

// claim pays paymentID to employee. relayer is whoever submitted the call.
func (s *VaultService) claim(c *call, paymentID uint64, employee, relayer common.Address) (*models.Payment, error) {
	payment, err := c.repo.GetPayment(c.ctx, paymentID, true)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("%w: payment %d", e.ErrNotFound, paymentID)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment.Employee != employee {
		return nil, fmt.Errorf("%w: not the payment's employee", e.ErrUnauthorized)
	}
	if payment.Claimed {
		return nil, e.ErrAlreadyClaimed
	}
	if c.now.Before(payment.ReleaseAt) {
		return nil, fmt.Errorf("%w: until %s", e.ErrLocked, payment.ReleaseAt.Format(time.RFC3339))
	}

	if err := c.repo.MarkPaymentClaimed(c.ctx, paymentID, c.now.Unix()); err != nil {
		return nil, fmt.Errorf("failed to mark payment claimed: %w", err)
	}
	if err := c.token.Transfer(c.ctx, s.address, employee, payment.Amount); err != nil {
		return nil, fmt.Errorf("payout failed: %w", err)
	}

	return payment, c.emit(models.PaymentClaimed, utils.Ptr(payment.CompanyID), models.PaymentClaimedPayload{
		PaymentID: paymentID,
		Employee:  employee,
		Amount:    payment.Amount,
		Relayer:   relayer,
	})
}

func (s *VaultService) logClaimed(p *models.Payment) {
	s.logger.Info("Payment claimed",
		zap.Uint64("payment_id", p.ID),
		zap.String("employee", p.Employee.Hex()),
		zap.Uint64("amount", p.Amount),
	)
}
