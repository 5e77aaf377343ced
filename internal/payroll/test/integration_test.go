package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/OBuskas/ananaPayroll/internal/payroll/auth"
	"github.com/OBuskas/ananaPayroll/internal/payroll/controller"
	"github.com/OBuskas/ananaPayroll/internal/payroll/db"
	"github.com/OBuskas/ananaPayroll/internal/payroll/handlers"
	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"gorm.io/driver/sqlite"
)

const jwtSecret = "integration-secret"

var (
	vaultAddr   = common.HexToAddress("0x000000000000000000000000000000000000a11e")
	vaultOwner  = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	managerAddr = common.HexToAddress("0x000000000000000000000000000000000000ba7c")
	faucet      = common.HexToAddress("0x00000000000000000000000000000000000000fa")

	admin    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	emp1     = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	emp2     = common.HexToAddress("0x00000000000000000000000000000000000000e2")
	emp3     = common.HexToAddress("0x00000000000000000000000000000000000000e3")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func path(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// apiError is the google.rpc.Status document the gateway writes on failure.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details []struct {
		Reason string `json:"reason"`
	} `json:"details"`
}

func (e apiError) reason() string {
	for _, d := range e.Details {
		if d.Reason != "" {
			return d.Reason
		}
	}
	return ""
}

type PayrollScenarioSuite struct {
	suite.Suite
	logger *zap.Logger
	clock  *testClock
	repo   *db.Repository
	ledger *controller.Ledger
	http   *httptest.Server
	grpc   *handlers.Client
	gsrv   *grpc.Server
}

func TestPayrollScenarioSuite(t *testing.T) {
	suite.Run(t, new(PayrollScenarioSuite))
}

func (s *PayrollScenarioSuite) SetupTest() {
	s.logger = zaptest.NewLogger(s.T())
	s.clock = &testClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}

	repo, err := db.Open(sqlite.Open(":memory:"))
	s.Require().NoError(err)
	s.repo = repo

	s.ledger = controller.NewLedger(repo, nil, controller.Options{
		Clock:          s.clock,
		VaultOwner:     vaultOwner,
		VaultAddress:   vaultAddr,
		ManagerAddress: managerAddr,
		TokenMinter:    faucet,
	}, s.logger)
	s.Require().NoError(s.ledger.Init(context.Background()))

	handler := handlers.NewPayrollHandler(handlers.ServicesFromLedger(s.ledger), s.logger)

	mux, err := handlers.NewGatewayMux(handler, s.logger)
	s.Require().NoError(err)
	s.http = httptest.NewServer(auth.HTTPMiddleware(mux, jwtSecret))

	interceptor := auth.NewAuthInterceptor(jwtSecret, handlers.ProtectedMethods()...)
	s.gsrv = grpc.NewServer(grpc.ForceServerCodec(handlers.JSONCodec{}), grpc.UnaryInterceptor(interceptor.Unary()))
	s.gsrv.RegisterService(&handlers.ServiceDesc, handler)
	lis := bufconn.Listen(1 << 20)
	go func() {
		_ = s.gsrv.Serve(lis)
	}()
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	s.grpc = handlers.NewClient(conn)
}

func (s *PayrollScenarioSuite) TearDownTest() {
	s.http.Close()
	s.gsrv.Stop()
	s.Require().NoError(s.repo.Close())
}

func (s *PayrollScenarioSuite) token(wallet common.Address) string {
	tok, err := auth.GenerateToken(wallet, jwtSecret, time.Hour)
	s.Require().NoError(err)
	return tok
}

// do sends a request as wallet (zero for anonymous) and decodes a 200 reply
// into out or a failure into the returned apiError.
func (s *PayrollScenarioSuite) do(method, path string, wallet common.Address, body, out interface{}) (int, apiError) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.http.URL+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if wallet != (common.Address{}) {
		req.Header.Set("Authorization", "Bearer "+s.token(wallet))
	}

	resp, err := s.http.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var apiErr apiError
	if resp.StatusCode == http.StatusOK {
		if out != nil {
			s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
		}
	} else {
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	}
	return resp.StatusCode, apiErr
}

func (s *PayrollScenarioSuite) ok(method, path string, wallet common.Address, body, out interface{}) {
	code, apiErr := s.do(method, path, wallet, body, out)
	s.Require().Equal(http.StatusOK, code, "%s %s: %s", method, path, apiErr.Message)
}

func (s *PayrollScenarioSuite) registerCompany(name string) uint64 {
	var resp handlers.RegisterCompanyResponse
	s.ok(http.MethodPost, "/v1/companies", admin, map[string]interface{}{"name": name}, &resp)
	return resp.CompanyID
}

func (s *PayrollScenarioSuite) addEmployee(companyID uint64, wallet common.Address, amount uint64) {
	s.ok(http.MethodPost, path("/v1/companies/%d/employees", companyID), admin, map[string]interface{}{
		"wallet":      wallet.Hex(),
		"amount":      amount,
		"frequency":   2592000,
		"lock_period": 10,
	}, nil)
}

func (s *PayrollScenarioSuite) fund(amount uint64) {
	s.ok(http.MethodPost, "/v1/token/mint", faucet, map[string]interface{}{"to": admin.Hex(), "amount": amount}, nil)
	s.ok(http.MethodPost, "/v1/token/approvals", admin, map[string]interface{}{"spender": vaultAddr.Hex(), "amount": amount}, nil)
	s.ok(http.MethodPost, "/v1/vault/deposits", admin, map[string]interface{}{"amount": amount}, nil)
}

func (s *PayrollScenarioSuite) companyBalance() handlers.Amount {
	var resp handlers.BalanceResponse
	s.ok(http.MethodGet, "/v1/vault/balances/"+admin.Hex(), common.Address{}, nil, &resp)
	return resp.Balance
}

func (s *PayrollScenarioSuite) tokenBalance(owner common.Address) uint64 {
	var resp handlers.BalanceResponse
	s.ok(http.MethodGet, "/v1/token/balances/"+owner.Hex(), common.Address{}, nil, &resp)
	return resp.Balance.Value
}

func (s *PayrollScenarioSuite) TestPayrollLifecycle() {
	companyID := s.registerCompany("Acme")
	s.Equal(uint64(0), companyID)

	s.addEmployee(companyID, emp1, 500000)
	s.addEmployee(companyID, emp2, 700000)
	s.ok(http.MethodPost, path("/v1/companies/%d/accept", companyID), emp1, nil, nil)
	s.ok(http.MethodPost, path("/v1/companies/%d/accept", companyID), emp2, nil, nil)

	var emp handlers.GetEmployeeResponse
	s.ok(http.MethodGet, path("/v1/companies/%d/employees/%s", companyID, emp1.Hex()), common.Address{}, nil, &emp)
	s.Equal(string(models.StatusAccepted), emp.Employee.Status)

	s.fund(1500000)
	s.Equal(handlers.Amount{Value: 1500000, Formatted: "1.5"}, s.companyBalance())

	var run handlers.CreatePayrollRunResponse
	s.ok(http.MethodPost, path("/v1/companies/%d/payroll_runs", companyID), admin, map[string]interface{}{
		"wallets": []string{emp1.Hex(), emp2.Hex()},
	}, &run)
	s.Equal(uint64(2), run.Run.PaymentsCount)
	s.Equal(uint64(1200000), run.Run.TotalAmount)
	s.Equal([]uint64{0, 1}, run.Run.PaymentIDs)
	s.Equal(uint64(300000), s.companyBalance().Value)

	var payment handlers.GetPaymentResponse
	s.ok(http.MethodGet, "/v1/vault/payments/0", common.Address{}, nil, &payment)
	s.Equal(s.clock.Now().Add(10*time.Second).Unix(), payment.Payment.ReleaseAt)
	s.False(payment.Payment.Claimed)

	// Time lock: claim before release fails and changes nothing.
	code, apiErr := s.do(http.MethodPost, "/v1/vault/payments/0/claim", emp1, nil, nil)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("LOCKED", apiErr.reason())
	s.Zero(s.tokenBalance(emp1))

	s.clock.Advance(10 * time.Second)

	// Only the payment's employee may claim it.
	code, apiErr = s.do(http.MethodPost, "/v1/vault/payments/0/claim", emp2, nil, nil)
	s.Equal(http.StatusForbidden, code)
	s.Equal("UNAUTHORIZED", apiErr.reason())

	s.ok(http.MethodPost, "/v1/vault/payments/0/claim", emp1, nil, nil)
	s.Equal(uint64(500000), s.tokenBalance(emp1))

	// A payment pays out at most once.
	code, apiErr = s.do(http.MethodPost, "/v1/vault/payments/0/claim", emp1, nil, nil)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("ALREADY_CLAIMED", apiErr.reason())
	s.Equal(uint64(500000), s.tokenBalance(emp1))

	// A relayed claim still pays the employee, not the submitter.
	s.ok(http.MethodPost, "/v1/payroll/payments/1/relay", stranger, map[string]interface{}{"employee": emp2.Hex()}, nil)
	s.Equal(uint64(700000), s.tokenBalance(emp2))
	s.Zero(s.tokenBalance(stranger))
	s.Equal(uint64(300000), s.tokenBalance(vaultAddr))

	var evs handlers.ListEventsResponse
	s.ok(http.MethodGet, path("/v1/events?company_id=%d&type=PaymentClaimed", companyID), common.Address{}, nil, &evs)
	s.Require().Len(evs.Events, 2)
	var relayed models.PaymentClaimedPayload
	s.Require().NoError(json.Unmarshal(evs.Events[1].Payload, &relayed))
	s.Equal(managerAddr, relayed.Relayer)
	s.Equal(emp2, relayed.Employee)

	var runs handlers.ListPayrollRunsResponse
	s.ok(http.MethodGet, path("/v1/companies/%d/payroll_runs", companyID), common.Address{}, nil, &runs)
	s.Require().Len(runs.Runs, 1)
	s.Equal(admin, runs.Runs[0].CreatedBy)
}

func (s *PayrollScenarioSuite) TestTerminatedEmployeesAreSkipped() {
	companyID := s.registerCompany("Acme")
	s.addEmployee(companyID, emp1, 100)
	s.addEmployee(companyID, emp2, 200)
	s.addEmployee(companyID, emp3, 300)
	s.ok(http.MethodPost, path("/v1/companies/%d/employees/%s/terminate", companyID, emp2.Hex()), admin, nil, nil)
	s.fund(1000)

	var run handlers.CreatePayrollRunResponse
	s.ok(http.MethodPost, path("/v1/companies/%d/payroll_runs", companyID), admin, map[string]interface{}{
		"wallets": []string{emp1.Hex(), emp2.Hex(), emp3.Hex(), stranger.Hex()},
	}, &run)
	s.Equal(uint64(2), run.Run.PaymentsCount)
	s.Equal([]uint64{0, 1}, run.Run.PaymentIDs)
	s.Equal(uint64(400), run.Run.TotalAmount)

	var list handlers.ListPaymentsResponse
	s.ok(http.MethodGet, "/v1/vault/payments?employee="+emp3.Hex(), common.Address{}, nil, &list)
	s.Require().Len(list.Payments, 1)
	s.Equal(uint64(1), list.Payments[0].ID)
	s.Equal(uint64(2), list.NextPaymentID)
}

func (s *PayrollScenarioSuite) TestPayrollRunRejections() {
	companyID := s.registerCompany("Acme")
	s.addEmployee(companyID, emp1, 600)
	s.addEmployee(companyID, emp2, 600)
	s.fund(1000)
	body := map[string]interface{}{"wallets": []string{emp1.Hex(), emp2.Hex()}}

	code, apiErr := s.do(http.MethodPost, path("/v1/companies/%d/payroll_runs", companyID), stranger, body, nil)
	s.Equal(http.StatusForbidden, code)
	s.Equal("UNAUTHORIZED", apiErr.reason())

	code, apiErr = s.do(http.MethodPost, path("/v1/companies/%d/payroll_runs", companyID), admin, body, nil)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("INSUFFICIENT_FUNDS", apiErr.reason())

	code, _ = s.do(http.MethodPost, "/v1/companies/9/payroll_runs", admin, body, nil)
	s.Equal(http.StatusNotFound, code)

	// Rejected runs consume no payment ids and keep the balance.
	var list handlers.ListPaymentsResponse
	s.ok(http.MethodGet, "/v1/vault/payments", common.Address{}, nil, &list)
	s.Empty(list.Payments)
	s.Equal(uint64(0), list.NextPaymentID)
	s.Equal(uint64(1000), s.companyBalance().Value)

	// Direct payment creation is reserved to the payroll manager.
	code, apiErr = s.do(http.MethodPost, "/v1/vault/payments", admin, map[string]interface{}{
		"company_id": companyID,
		"company":    admin.Hex(),
		"employee":   emp1.Hex(),
		"amount":     1,
		"release_at": s.clock.Now().Unix(),
	}, nil)
	s.Equal(http.StatusForbidden, code)
	s.Equal("NOT_PAYROLL_MANAGER", apiErr.reason())
}

func (s *PayrollScenarioSuite) TestOutOfRangeTermsAreRejected() {
	companyID := s.registerCompany("Acme")
	employees := path("/v1/companies/%d/employees", companyID)

	code, apiErr := s.do(http.MethodPost, employees, admin, map[string]interface{}{
		"wallet":      emp1.Hex(),
		"amount":      100,
		"lock_period": uint64(10_000_000_000),
	}, nil)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("INVALID_INPUT", apiErr.reason())

	code, apiErr = s.do(http.MethodPost, employees, admin, map[string]interface{}{
		"wallet": emp1.Hex(),
		"amount": uint64(1 << 63),
	}, nil)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("INVALID_INPUT", apiErr.reason())

	code, apiErr = s.do(http.MethodPost, "/v1/token/mint", faucet, map[string]interface{}{
		"to":     admin.Hex(),
		"amount": uint64(1 << 63),
	}, nil)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("INVALID_INPUT", apiErr.reason())

	var roster handlers.ListEmployeesResponse
	s.ok(http.MethodGet, employees, common.Address{}, nil, &roster)
	s.Empty(roster.Employees)
	s.Zero(s.tokenBalance(admin))
}

func (s *PayrollScenarioSuite) TestProtectedRoutesNeedToken() {
	code, _ := s.do(http.MethodPost, "/v1/companies", common.Address{}, map[string]interface{}{"name": "Acme"}, nil)
	s.Equal(http.StatusUnauthorized, code)

	var company handlers.GetCompanyResponse
	s.ok(http.MethodGet, "/v1/companies/0", common.Address{}, nil, &company)
	s.False(company.Company.Exists)
}

func (s *PayrollScenarioSuite) TestGRPCPath() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var reg handlers.RegisterCompanyResponse
	err := s.grpc.Call(ctx, "RegisterCompany", &handlers.RegisterCompanyRequest{Name: "Acme"}, &reg)
	s.Equal(codes.Unauthenticated, status.Code(err))

	authCtx := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+s.token(admin))
	s.Require().NoError(s.grpc.Call(authCtx, "RegisterCompany", &handlers.RegisterCompanyRequest{Name: "Acme"}, &reg))
	s.Equal(uint64(0), reg.CompanyID)

	var isAdmin handlers.BoolResponse
	s.Require().NoError(s.grpc.Call(ctx, "IsCompanyAdmin", &handlers.IsCompanyAdminRequest{CompanyID: 0, Address: admin.Hex()}, &isAdmin))
	s.True(isAdmin.Value)

	err = s.grpc.Call(authCtx, "AddEmployee", &handlers.AddEmployeeRequest{CompanyID: 0, Wallet: emp1.Hex(), Amount: 0}, &handlers.Empty{})
	s.Equal(codes.InvalidArgument, status.Code(err))
	s.Equal("INVALID_INPUT", handlers.ErrorReason(err))

	err = s.grpc.Call(authCtx, "AddEmployee", &handlers.AddEmployeeRequest{CompanyID: 0, Wallet: emp1.Hex(), Amount: 10}, &handlers.Empty{})
	s.Require().NoError(err)
	err = s.grpc.Call(authCtx, "AddEmployee", &handlers.AddEmployeeRequest{CompanyID: 0, Wallet: emp1.Hex(), Amount: 10}, &handlers.Empty{})
	s.Equal(codes.AlreadyExists, status.Code(err))

	var roster handlers.ListEmployeesResponse
	s.Require().NoError(s.grpc.Call(ctx, "ListEmployees", &handlers.ListEmployeesRequest{CompanyID: 0}, &roster))
	s.Require().Len(roster.Employees, 1)
	s.Equal(string(models.StatusAdded), roster.Employees[0].Status)
}
