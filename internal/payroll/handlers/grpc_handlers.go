package handlers

import (
	"context"
	"time"

	"github.com/OBuskas/ananaPayroll/internal/payroll/auth"
	"github.com/OBuskas/ananaPayroll/internal/payroll/controller"
	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// The business logic the handlers invoke.
type (
	CompanyController interface {
		RegisterCompany(ctx context.Context, caller common.Address, name string) (uint64, error)
		GetCompany(ctx context.Context, id uint64) (*models.Company, error)
		IsCompanyAdmin(ctx context.Context, id uint64, addr common.Address) (bool, error)
		ListCompaniesByAdmin(ctx context.Context, admin common.Address) ([]*models.Company, error)
	}

	EmployeeController interface {
		AddEmployee(ctx context.Context, caller common.Address, companyID uint64, wallet common.Address, terms controller.EmployeeTerms) error
		AcceptJob(ctx context.Context, caller common.Address, companyID uint64) error
		TerminateEmployee(ctx context.Context, caller common.Address, companyID uint64, wallet common.Address) error
		GetEmployee(ctx context.Context, companyID uint64, wallet common.Address) (*models.Employee, error)
		IsEmployee(ctx context.Context, companyID uint64, wallet common.Address) (bool, error)
		ListEmployees(ctx context.Context, companyID uint64) ([]*models.Employee, error)
		AddEmployeeDocument(ctx context.Context, caller common.Address, doc *models.EmployeeDocument) error
		GetEmployeeDocuments(ctx context.Context, companyID uint64, employee common.Address) ([]*models.EmployeeDocument, error)
		GetCompanyDocuments(ctx context.Context, companyID uint64) ([]*models.EmployeeDocument, error)
	}

	VaultController interface {
		SetPayrollManager(ctx context.Context, caller, manager common.Address) error
		Deposit(ctx context.Context, caller common.Address, amount uint64) error
		CreatePayment(ctx context.Context, caller common.Address, req controller.PaymentRequest) (uint64, error)
		Claim(ctx context.Context, caller common.Address, paymentID uint64) error
		ClaimFor(ctx context.Context, caller common.Address, paymentID uint64, employee common.Address) error
		GetCompanyBalance(ctx context.Context, company common.Address) (uint64, error)
		GetPayment(ctx context.Context, id uint64) (*models.Payment, error)
		NextPaymentID(ctx context.Context) (uint64, error)
		ListPayments(ctx context.Context, filter models.PaymentFilter) ([]*models.Payment, error)
	}

	PayrollController interface {
		CreatePayrollRun(ctx context.Context, caller common.Address, companyID uint64, wallets []common.Address) (*models.PayrollRun, error)
		RelayClaim(ctx context.Context, caller common.Address, paymentID uint64, employee common.Address) error
		ListPayrollRuns(ctx context.Context, companyID uint64, limit int) ([]*models.PayrollRun, error)
	}

	TokenController interface {
		Decimals() uint8
		Approve(ctx context.Context, caller, spender common.Address, amount uint64) error
		Transfer(ctx context.Context, caller, to common.Address, amount uint64) error
		Mint(ctx context.Context, caller, to common.Address, amount uint64) error
		BalanceOf(ctx context.Context, owner common.Address) (uint64, error)
	}

	EventController interface {
		ListEvents(ctx context.Context, filter models.EventFilter) ([]*models.Event, error)
	}
)

// Services groups the controllers behind PayrollHandler.
type Services struct {
	Companies CompanyController
	Employees EmployeeController
	Vault     VaultController
	Payroll   PayrollController
	Tokens    TokenController
	Events    EventController
}

// ServicesFromLedger exposes every service of a ledger.
func ServicesFromLedger(l *controller.Ledger) Services {
	return Services{
		Companies: l.Companies,
		Employees: l.Employees,
		Vault:     l.Vault,
		Payroll:   l.Payroll,
		Tokens:    l.Tokens,
		Events:    l.Events,
	}
}

// PayrollHandler implements PayrollServiceServer on top of the controllers.
type PayrollHandler struct {
	svc    Services
	logger *zap.Logger
}

func NewPayrollHandler(svc Services, logger *zap.Logger) *PayrollHandler {
	return &PayrollHandler{
		svc:    svc,
		logger: logger.Named("grpc_handler"),
	}
}

func (h *PayrollHandler) RegisterCompany(ctx context.Context, req *RegisterCompanyRequest) (*RegisterCompanyResponse, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := h.svc.Companies.RegisterCompany(ctx, caller, req.Name)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &RegisterCompanyResponse{CompanyID: id}, nil
}

func (h *PayrollHandler) GetCompany(ctx context.Context, req *GetCompanyRequest) (*GetCompanyResponse, error) {
	company, err := h.svc.Companies.GetCompany(ctx, req.CompanyID)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &GetCompanyResponse{Company: companyToView(company)}, nil
}

func (h *PayrollHandler) IsCompanyAdmin(ctx context.Context, req *IsCompanyAdminRequest) (*BoolResponse, error) {
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}
	ok, err := h.svc.Companies.IsCompanyAdmin(ctx, req.CompanyID, addr)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &BoolResponse{Value: ok}, nil
}

func (h *PayrollHandler) ListCompanies(ctx context.Context, req *ListCompaniesRequest) (*ListCompaniesResponse, error) {
	admin, err := parseAddress("admin", req.Admin)
	if err != nil {
		return nil, err
	}
	companies, err := h.svc.Companies.ListCompaniesByAdmin(ctx, admin)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	resp := &ListCompaniesResponse{Companies: make([]*Company, 0, len(companies))}
	for _, c := range companies {
		resp.Companies = append(resp.Companies, companyToView(c))
	}
	return resp, nil
}

func (h *PayrollHandler) AddEmployee(ctx context.Context, req *AddEmployeeRequest) (*Empty, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	wallet, err := parseAddress("wallet", req.Wallet)
	if err != nil {
		return nil, err
	}
	terms := controller.EmployeeTerms{
		Amount:     req.Amount,
		Frequency:  req.Frequency,
		LockPeriod: req.LockPeriod,
	}
	if err := h.svc.Employees.AddEmployee(ctx, caller, req.CompanyID, wallet, terms); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &Empty{}, nil
}

func (h *PayrollHandler) AcceptJob(ctx context.Context, req *AcceptJobRequest) (*Empty, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Employees.AcceptJob(ctx, caller, req.CompanyID); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &Empty{}, nil
}

func (h *PayrollHandler) TerminateEmployee(ctx context.Context, req *EmployeeRequest) (*Empty, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	wallet, err := parseAddress("wallet", req.Wallet)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Employees.TerminateEmployee(ctx, caller, req.CompanyID, wallet); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &Empty{}, nil
}

func (h *PayrollHandler) GetEmployee(ctx context.Context, req *EmployeeRequest) (*GetEmployeeResponse, error) {
	wallet, err := parseAddress("wallet", req.Wallet)
	if err != nil {
		return nil, err
	}
	emp, err := h.svc.Employees.GetEmployee(ctx, req.CompanyID, wallet)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &GetEmployeeResponse{Employee: employeeToView(emp)}, nil
}

func (h *PayrollHandler) IsEmployee(ctx context.Context, req *EmployeeRequest) (*BoolResponse, error) {
	wallet, err := parseAddress("wallet", req.Wallet)
	if err != nil {
		return nil, err
	}
	ok, err := h.svc.Employees.IsEmployee(ctx, req.CompanyID, wallet)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &BoolResponse{Value: ok}, nil
}

func (h *PayrollHandler) ListEmployees(ctx context.Context, req *ListEmployeesRequest) (*ListEmployeesResponse, error) {
	roster, err := h.svc.Employees.ListEmployees(ctx, req.CompanyID)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	resp := &ListEmployeesResponse{Employees: make([]*Employee, 0, len(roster))}
	for _, emp := range roster {
		resp.Employees = append(resp.Employees, employeeToView(emp))
	}
	return resp, nil
}

func (h *PayrollHandler) AddEmployeeDocument(ctx context.Context, req *AddEmployeeDocumentRequest) (*Empty, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	employee, err := parseAddress("employee", req.Employee)
	if err != nil {
		return nil, err
	}
	doc := &models.EmployeeDocument{
		CompanyID: req.CompanyID,
		Employee:  employee,
		PieceCID:  req.PieceCID,
		FileName:  req.FileName,
		FileSize:  req.FileSize,
	}
	if err := h.svc.Employees.AddEmployeeDocument(ctx, caller, doc); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &Empty{}, nil
}

func (h *PayrollHandler) GetEmployeeDocuments(ctx context.Context, req *GetEmployeeDocumentsRequest) (*DocumentsResponse, error) {
	employee, err := parseAddress("employee", req.Employee)
	if err != nil {
		return nil, err
	}
	docs, err := h.svc.Employees.GetEmployeeDocuments(ctx, req.CompanyID, employee)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return documentsToView(docs), nil
}

func (h *PayrollHandler) GetCompanyDocuments(ctx context.Context, req *GetCompanyDocumentsRequest) (*DocumentsResponse, error) {
	docs, err := h.svc.Employees.GetCompanyDocuments(ctx, req.CompanyID)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return documentsToView(docs), nil
}

func (h *PayrollHandler) SetPayrollManager(ctx context.Context, req *SetPayrollManagerRequest) (*Empty, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	manager, err := parseAddress("manager", req.Manager)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Vault.SetPayrollManager(ctx, caller, manager); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &Empty{}, nil
}

func (h *PayrollHandler) Deposit(ctx context.Context, req *DepositRequest) (*Empty, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Vault.Deposit(ctx, caller, req.Amount); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &Empty{}, nil
}

func (h *PayrollHandler) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	company, err := parseAddress("company", req.Company)
	if err != nil {
		return nil, err
	}
	employee, err := parseAddress("employee", req.Employee)
	if err != nil {
		return nil, err
	}
	id, err := h.svc.Vault.CreatePayment(ctx, caller, controller.PaymentRequest{
		CompanyID: req.CompanyID,
		Company:   company,
		Employee:  employee,
		Amount:    req.Amount,
		ReleaseAt: time.Unix(req.ReleaseAt, 0).UTC(),
	})
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &CreatePaymentResponse{PaymentID: id}, nil
}

func (h *PayrollHandler) Claim(ctx context.Context, req *ClaimRequest) (*Empty, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Vault.Claim(ctx, caller, req.PaymentID); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &Empty{}, nil
}

func (h *PayrollHandler) ClaimFor(ctx context.Context, req *ClaimForRequest) (*Empty, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	employee, err := parseAddress("employee", req.Employee)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Vault.ClaimFor(ctx, caller, req.PaymentID, employee); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &Empty{}, nil
}

func (h *PayrollHandler) GetCompanyBalance(ctx context.Context, req *GetCompanyBalanceRequest) (*BalanceResponse, error) {
	company, err := parseAddress("company", req.Company)
	if err != nil {
		return nil, err
	}
	balance, err := h.svc.Vault.GetCompanyBalance(ctx, company)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &BalanceResponse{Balance: h.amount(balance)}, nil
}

func (h *PayrollHandler) GetPayment(ctx context.Context, req *GetPaymentRequest) (*GetPaymentResponse, error) {
	payment, err := h.svc.Vault.GetPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &GetPaymentResponse{Payment: paymentToView(payment)}, nil
}

func (h *PayrollHandler) ListPayments(ctx context.Context, req *ListPaymentsRequest) (*ListPaymentsResponse, error) {
	filter := models.PaymentFilter{
		CompanyID: req.CompanyID,
		Claimed:   req.Claimed,
		Limit:     req.Limit,
	}
	var err error
	if filter.Company, err = parseOptionalAddress("company", req.Company); err != nil {
		return nil, err
	}
	if filter.Employee, err = parseOptionalAddress("employee", req.Employee); err != nil {
		return nil, err
	}

	payments, err := h.svc.Vault.ListPayments(ctx, filter)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	next, err := h.svc.Vault.NextPaymentID(ctx)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	resp := &ListPaymentsResponse{
		Payments:      make([]*Payment, 0, len(payments)),
		NextPaymentID: next,
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, paymentToView(p))
	}
	return resp, nil
}

func (h *PayrollHandler) CreatePayrollRun(ctx context.Context, req *CreatePayrollRunRequest) (*CreatePayrollRunResponse, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	wallets := make([]common.Address, 0, len(req.Wallets))
	for _, w := range req.Wallets {
		addr, err := parseAddress("wallets", w)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, addr)
	}
	run, err := h.svc.Payroll.CreatePayrollRun(ctx, caller, req.CompanyID, wallets)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &CreatePayrollRunResponse{Run: runToView(run)}, nil
}

func (h *PayrollHandler) RelayClaim(ctx context.Context, req *RelayClaimRequest) (*Empty, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	employee, err := parseAddress("employee", req.Employee)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Payroll.RelayClaim(ctx, caller, req.PaymentID, employee); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &Empty{}, nil
}

func (h *PayrollHandler) ListPayrollRuns(ctx context.Context, req *ListPayrollRunsRequest) (*ListPayrollRunsResponse, error) {
	runs, err := h.svc.Payroll.ListPayrollRuns(ctx, req.CompanyID, req.Limit)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	resp := &ListPayrollRunsResponse{Runs: make([]*PayrollRun, 0, len(runs))}
	for _, r := range runs {
		resp.Runs = append(resp.Runs, runToView(r))
	}
	return resp, nil
}

func (h *PayrollHandler) ListEvents(ctx context.Context, req *ListEventsRequest) (*ListEventsResponse, error) {
	filter := models.EventFilter{
		CompanyID: req.CompanyID,
		AfterSeq:  req.AfterSeq,
		Limit:     req.Limit,
	}
	if req.Type != "" {
		t := models.EventType(req.Type)
		filter.Type = &t
	}
	events, err := h.svc.Events.ListEvents(ctx, filter)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	resp := &ListEventsResponse{Events: make([]*Event, 0, len(events))}
	for _, ev := range events {
		resp.Events = append(resp.Events, eventToView(ev))
	}
	return resp, nil
}

func (h *PayrollHandler) Approve(ctx context.Context, req *ApproveRequest) (*Empty, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	spender, err := parseAddress("spender", req.Spender)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Tokens.Approve(ctx, caller, spender, req.Amount); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &Empty{}, nil
}

func (h *PayrollHandler) Transfer(ctx context.Context, req *TransferRequest) (*Empty, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	to, err := parseAddress("to", req.To)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Tokens.Transfer(ctx, caller, to, req.Amount); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &Empty{}, nil
}

func (h *PayrollHandler) Mint(ctx context.Context, req *MintRequest) (*Empty, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	to, err := parseAddress("to", req.To)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Tokens.Mint(ctx, caller, to, req.Amount); err != nil {
		return nil, h.mapServiceError(err)
	}
	return &Empty{}, nil
}

func (h *PayrollHandler) GetTokenBalance(ctx context.Context, req *GetTokenBalanceRequest) (*BalanceResponse, error) {
	owner, err := parseAddress("owner", req.Owner)
	if err != nil {
		return nil, err
	}
	balance, err := h.svc.Tokens.BalanceOf(ctx, owner)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return &BalanceResponse{Balance: h.amount(balance)}, nil
}
