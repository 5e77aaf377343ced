package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/OBuskas/ananaPayroll/internal/payroll/auth"
	"github.com/OBuskas/ananaPayroll/internal/payroll/controller"
	e "github.com/OBuskas/ananaPayroll/internal/payroll/errors"
	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	admin    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	employee = common.HexToAddress("0x00000000000000000000000000000000000000e1")
)

// Stubs embed the controller interface and override what a test needs.
// Calling anything else panics on the nil embedded value.
type (
	stubCompanies struct {
		CompanyController
		registerFunc func(ctx context.Context, caller common.Address, name string) (uint64, error)
		getFunc      func(ctx context.Context, id uint64) (*models.Company, error)
	}
	stubEmployees struct {
		EmployeeController
		addFunc func(ctx context.Context, caller common.Address, companyID uint64, wallet common.Address, terms controller.EmployeeTerms) error
	}
	stubVault struct {
		VaultController
		claimFunc   func(ctx context.Context, caller common.Address, paymentID uint64) error
		balanceFunc func(ctx context.Context, company common.Address) (uint64, error)
		listFunc    func(ctx context.Context, filter models.PaymentFilter) ([]*models.Payment, error)
		nextID      uint64
	}
	stubPayroll struct {
		PayrollController
		runFunc func(ctx context.Context, caller common.Address, companyID uint64, wallets []common.Address) (*models.PayrollRun, error)
	}
	stubTokens struct {
		TokenController
	}
	stubEvents struct {
		listFunc func(ctx context.Context, filter models.EventFilter) ([]*models.Event, error)
	}
)

func (s *stubCompanies) RegisterCompany(ctx context.Context, caller common.Address, name string) (uint64, error) {
	return s.registerFunc(ctx, caller, name)
}

func (s *stubCompanies) GetCompany(ctx context.Context, id uint64) (*models.Company, error) {
	return s.getFunc(ctx, id)
}

func (s *stubEmployees) AddEmployee(ctx context.Context, caller common.Address, companyID uint64, wallet common.Address, terms controller.EmployeeTerms) error {
	return s.addFunc(ctx, caller, companyID, wallet, terms)
}

func (s *stubVault) Claim(ctx context.Context, caller common.Address, paymentID uint64) error {
	return s.claimFunc(ctx, caller, paymentID)
}

func (s *stubVault) GetCompanyBalance(ctx context.Context, company common.Address) (uint64, error) {
	return s.balanceFunc(ctx, company)
}

func (s *stubVault) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]*models.Payment, error) {
	return s.listFunc(ctx, filter)
}

func (s *stubVault) NextPaymentID(context.Context) (uint64, error) {
	return s.nextID, nil
}

func (s *stubPayroll) CreatePayrollRun(ctx context.Context, caller common.Address, companyID uint64, wallets []common.Address) (*models.PayrollRun, error) {
	return s.runFunc(ctx, caller, companyID, wallets)
}

func (stubTokens) Decimals() uint8 { return 6 }

func (s *stubEvents) ListEvents(ctx context.Context, filter models.EventFilter) ([]*models.Event, error) {
	return s.listFunc(ctx, filter)
}

func authed(caller common.Address) context.Context {
	return auth.WithClaims(context.Background(), jwt.MapClaims{"sub": caller.Hex()})
}

func TestPayrollHandler_RegisterCompany(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("Unauthenticated", func(t *testing.T) {
		h := NewPayrollHandler(Services{Companies: &stubCompanies{}}, logger)
		_, err := h.RegisterCompany(context.Background(), &RegisterCompanyRequest{Name: "Acme"})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Success", func(t *testing.T) {
		var gotCaller common.Address
		companies := &stubCompanies{
			registerFunc: func(_ context.Context, caller common.Address, name string) (uint64, error) {
				gotCaller = caller
				assert.Equal(t, "Acme", name)
				return 7, nil
			},
		}
		h := NewPayrollHandler(Services{Companies: companies}, logger)
		resp, err := h.RegisterCompany(authed(admin), &RegisterCompanyRequest{Name: "Acme"})
		require.NoError(t, err)
		assert.Equal(t, uint64(7), resp.CompanyID)
		assert.Equal(t, admin, gotCaller)
	})

	t.Run("InvalidName", func(t *testing.T) {
		companies := &stubCompanies{
			registerFunc: func(context.Context, common.Address, string) (uint64, error) {
				return 0, fmt.Errorf("%w: name is empty", e.ErrInvalidInput)
			},
		}
		h := NewPayrollHandler(Services{Companies: companies}, logger)
		_, err := h.RegisterCompany(authed(admin), &RegisterCompanyRequest{})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Equal(t, "INVALID_INPUT", ErrorReason(err))
	})
}

func TestPayrollHandler_GetCompany(t *testing.T) {
	companies := &stubCompanies{
		getFunc: func(_ context.Context, id uint64) (*models.Company, error) {
			if id == 0 {
				return &models.Company{ID: 0, Admin: admin, Name: "Acme", Exists: true}, nil
			}
			return &models.Company{}, nil
		},
	}
	h := NewPayrollHandler(Services{Companies: companies}, zaptest.NewLogger(t))

	resp, err := h.GetCompany(context.Background(), &GetCompanyRequest{CompanyID: 0})
	require.NoError(t, err)
	assert.True(t, resp.Company.Exists)
	assert.Equal(t, admin, resp.Company.Admin)

	resp, err = h.GetCompany(context.Background(), &GetCompanyRequest{CompanyID: 9})
	require.NoError(t, err)
	assert.False(t, resp.Company.Exists)
}

func TestPayrollHandler_AddEmployee(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("InvalidWallet", func(t *testing.T) {
		h := NewPayrollHandler(Services{Employees: &stubEmployees{}}, logger)
		_, err := h.AddEmployee(authed(admin), &AddEmployeeRequest{CompanyID: 0, Wallet: "not-a-wallet"})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("Success", func(t *testing.T) {
		employees := &stubEmployees{
			addFunc: func(_ context.Context, caller common.Address, companyID uint64, wallet common.Address, terms controller.EmployeeTerms) error {
				assert.Equal(t, admin, caller)
				assert.Equal(t, uint64(3), companyID)
				assert.Equal(t, employee, wallet)
				assert.Equal(t, controller.EmployeeTerms{Amount: 500000, Frequency: 2592000, LockPeriod: 60}, terms)
				return nil
			},
		}
		h := NewPayrollHandler(Services{Employees: employees}, logger)
		_, err := h.AddEmployee(authed(admin), &AddEmployeeRequest{
			CompanyID:  3,
			Wallet:     employee.Hex(),
			Amount:     500000,
			Frequency:  2592000,
			LockPeriod: 60,
		})
		require.NoError(t, err)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		employees := &stubEmployees{
			addFunc: func(context.Context, common.Address, uint64, common.Address, controller.EmployeeTerms) error {
				return fmt.Errorf("%w: not company admin", e.ErrUnauthorized)
			},
		}
		h := NewPayrollHandler(Services{Employees: employees}, logger)
		_, err := h.AddEmployee(authed(employee), &AddEmployeeRequest{Wallet: employee.Hex()})
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})
}

func TestPayrollHandler_Claim(t *testing.T) {
	vault := &stubVault{
		claimFunc: func(_ context.Context, caller common.Address, paymentID uint64) error {
			if paymentID == 1 {
				return fmt.Errorf("failed to claim payment: %w", e.ErrLocked)
			}
			return nil
		},
	}
	h := NewPayrollHandler(Services{Vault: vault}, zaptest.NewLogger(t))

	_, err := h.Claim(authed(employee), &ClaimRequest{PaymentID: 0})
	require.NoError(t, err)

	_, err = h.Claim(authed(employee), &ClaimRequest{PaymentID: 1})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, "LOCKED", ErrorReason(err))
}

func TestPayrollHandler_GetCompanyBalance(t *testing.T) {
	vault := &stubVault{
		balanceFunc: func(_ context.Context, company common.Address) (uint64, error) {
			assert.Equal(t, admin, company)
			return 1500000, nil
		},
	}
	h := NewPayrollHandler(Services{Vault: vault, Tokens: stubTokens{}}, zaptest.NewLogger(t))

	resp, err := h.GetCompanyBalance(context.Background(), &GetCompanyBalanceRequest{Company: admin.Hex()})
	require.NoError(t, err)
	assert.Equal(t, Amount{Value: 1500000, Formatted: "1.5"}, resp.Balance)

	_, err = h.GetCompanyBalance(context.Background(), &GetCompanyBalanceRequest{Company: "0x12"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestPayrollHandler_ListPayments(t *testing.T) {
	release := time.Unix(1700000000, 0).UTC()
	vault := &stubVault{
		nextID: 2,
		listFunc: func(_ context.Context, filter models.PaymentFilter) ([]*models.Payment, error) {
			require.NotNil(t, filter.Employee)
			assert.Equal(t, employee, *filter.Employee)
			assert.Nil(t, filter.Company)
			assert.Equal(t, 10, filter.Limit)
			return []*models.Payment{
				{ID: 1, Company: admin, Employee: employee, Amount: 500000, ReleaseAt: release, Exists: true},
			}, nil
		},
	}
	h := NewPayrollHandler(Services{Vault: vault}, zaptest.NewLogger(t))

	resp, err := h.ListPayments(context.Background(), &ListPaymentsRequest{Employee: employee.Hex(), Limit: 10})
	require.NoError(t, err)
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, release.Unix(), resp.Payments[0].ReleaseAt)
	assert.Equal(t, uint64(2), resp.NextPaymentID)
}

func TestPayrollHandler_CreatePayrollRun(t *testing.T) {
	logger := zaptest.NewLogger(t)
	other := common.HexToAddress("0x00000000000000000000000000000000000000e2")

	payroll := &stubPayroll{
		runFunc: func(_ context.Context, caller common.Address, companyID uint64, wallets []common.Address) (*models.PayrollRun, error) {
			assert.Equal(t, admin, caller)
			assert.Equal(t, []common.Address{employee, other}, wallets)
			return &models.PayrollRun{
				ID:            0,
				CompanyID:     companyID,
				CreatedBy:     caller,
				Timestamp:     time.Unix(1700000000, 0),
				PaymentsCount: 2,
				TotalAmount:   1200000,
				PaymentIDs:    []uint64{0, 1},
			}, nil
		},
	}
	h := NewPayrollHandler(Services{Payroll: payroll}, logger)

	resp, err := h.CreatePayrollRun(authed(admin), &CreatePayrollRunRequest{
		CompanyID: 0,
		Wallets:   []string{employee.Hex(), other.Hex()},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), resp.Run.PaymentsCount)
	assert.Equal(t, []uint64{0, 1}, resp.Run.PaymentIDs)

	_, err = h.CreatePayrollRun(authed(admin), &CreatePayrollRunRequest{Wallets: []string{"bogus"}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestPayrollHandler_ListEvents(t *testing.T) {
	id := uuid.New()
	events := &stubEvents{
		listFunc: func(_ context.Context, filter models.EventFilter) ([]*models.Event, error) {
			require.NotNil(t, filter.Type)
			assert.Equal(t, models.PaymentClaimed, *filter.Type)
			assert.Equal(t, uint64(4), filter.AfterSeq)
			return []*models.Event{{ID: id, Seq: 5, Type: models.PaymentClaimed, Payload: []byte(`{}`), CreatedAt: time.Unix(10, 0)}}, nil
		},
	}
	h := NewPayrollHandler(Services{Events: events}, zaptest.NewLogger(t))

	resp, err := h.ListEvents(context.Background(), &ListEventsRequest{Type: "PaymentClaimed", AfterSeq: 4})
	require.NoError(t, err)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, id.String(), resp.Events[0].ID)
	assert.Equal(t, int64(10), resp.Events[0].CreatedAt)
}

func TestPayrollHandler_InternalError(t *testing.T) {
	companies := &stubCompanies{
		getFunc: func(context.Context, uint64) (*models.Company, error) {
			return nil, errors.New("connection reset")
		},
	}
	h := NewPayrollHandler(Services{Companies: companies}, zaptest.NewLogger(t))
	_, err := h.GetCompany(context.Background(), &GetCompanyRequest{})
	assert.Equal(t, codes.Internal, status.Code(err))
}
