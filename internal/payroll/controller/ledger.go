package controller

import (
	"context"
	"fmt"

	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/OBuskas/ananaPayroll/internal/payroll/token"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Options configures a Ledger.
type Options struct {
	// Clock defaults to the system clock.
	Clock Clock
	// TokenDecimals defaults to token.DefaultDecimals.
	TokenDecimals uint8
	VaultOwner    common.Address
	VaultAddress  common.Address
	// ManagerAddress is the payroll manager's own address.
	ManagerAddress common.Address
	TokenMinter    common.Address
	// RequireAcceptance excludes employees who have not accepted their job
	// from payroll runs.
	RequireAcceptance bool
}

// Ledger bundles the services sharing one store.
type Ledger struct {
	Companies *CompanyService
	Employees *EmployeeService
	Vault     *VaultService
	Payroll   *PayrollService
	Tokens    *TokenService
	Events    *EventService
}

// NewLedger constructs all services over repo. Committed events are handed to
// producer, which may be nil.
func NewLedger(repo Repository, producer EventProducer, opts Options, logger *zap.Logger) *Ledger {
	decimals := opts.TokenDecimals
	if decimals == 0 {
		decimals = token.DefaultDecimals
	}
	x := newExecutor(repo, producer, opts.Clock, decimals, logger.Named("executor"))

	vault := &VaultService{
		x:       x,
		owner:   opts.VaultOwner,
		address: opts.VaultAddress,
		logger:  logger.Named("vault_service"),
	}
	return &Ledger{
		Companies: &CompanyService{x: x, logger: logger.Named("company_service")},
		Employees: &EmployeeService{x: x, logger: logger.Named("employee_service")},
		Vault:     vault,
		Payroll: &PayrollService{
			x:                 x,
			vault:             vault,
			address:           opts.ManagerAddress,
			requireAcceptance: opts.RequireAcceptance,
			logger:            logger.Named("payroll_service"),
		},
		Tokens: &TokenService{x: x, minter: opts.TokenMinter, logger: logger.Named("token_service")},
		Events: &EventService{x: x},
	}
}

// Init prepares the vault settings. It registers the payroll manager when the
// vault has none yet.
func (l *Ledger) Init(ctx context.Context) error {
	if err := l.Vault.Init(ctx, l.Payroll.Address()); err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}
	return nil
}

// EventService reads the committed event log.
type EventService struct {
	x *executor
}

func (s *EventService) ListEvents(ctx context.Context, filter models.EventFilter) ([]*models.Event, error) {
	var events []*models.Event
	err := s.x.view(ctx, func(c *call) error {
		var err error
		events, err = c.repo.ListEvents(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}
