package handlers

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
)

// Request and response messages of payroll.v1.PayrollService. Addresses are
// 0x-prefixed hex strings, amounts are token base units and times are unix
// seconds.

type (
	Company struct {
		ID     uint64         `json:"id"`
		Admin  common.Address `json:"admin"`
		Name   string         `json:"name"`
		Exists bool           `json:"exists"`
	}

	Employee struct {
		CompanyID  uint64         `json:"company_id"`
		Wallet     common.Address `json:"wallet"`
		Amount     uint64         `json:"amount"`
		Frequency  uint64         `json:"frequency"`
		LockPeriod uint64         `json:"lock_period"`
		Accepted   bool           `json:"accepted"`
		Exists     bool           `json:"exists"`
		Active     bool           `json:"active"`
		Status     string         `json:"status"`
	}

	EmployeeDocument struct {
		Employee   common.Address `json:"employee"`
		PieceCID   string         `json:"piece_cid"`
		FileName   string         `json:"file_name"`
		FileSize   uint64         `json:"file_size"`
		Uploader   common.Address `json:"uploader"`
		UploadedAt int64          `json:"uploaded_at"`
	}

	Payment struct {
		ID        uint64         `json:"id"`
		CompanyID uint64         `json:"company_id"`
		Company   common.Address `json:"company"`
		Employee  common.Address `json:"employee"`
		Amount    uint64         `json:"amount"`
		ReleaseAt int64          `json:"release_at"`
		Claimed   bool           `json:"claimed"`
		ClaimedAt *int64         `json:"claimed_at,omitempty"`
		Exists    bool           `json:"exists"`
	}

	PayrollRun struct {
		ID            uint64         `json:"id"`
		CompanyID     uint64         `json:"company_id"`
		CreatedBy     common.Address `json:"created_by"`
		Timestamp     int64          `json:"timestamp"`
		PaymentsCount uint64         `json:"payments_count"`
		TotalAmount   uint64         `json:"total_amount"`
		PaymentIDs    []uint64       `json:"payment_ids"`
	}

	Event struct {
		ID        string          `json:"id"`
		Seq       uint64          `json:"seq"`
		Type      string          `json:"type"`
		CompanyID *uint64         `json:"company_id,omitempty"`
		Payload   json.RawMessage `json:"payload"`
		CreatedAt int64           `json:"created_at"`
	}

	// Amount pairs base units with their decimal rendering.
	Amount struct {
		Value     uint64 `json:"value"`
		Formatted string `json:"formatted"`
	}

	Empty struct{}

	BoolResponse struct {
		Value bool `json:"value"`
	}
)

// CompanyRegistry.
type (
	RegisterCompanyRequest struct {
		Name string `json:"name"`
	}
	RegisterCompanyResponse struct {
		CompanyID uint64 `json:"company_id"`
	}

	GetCompanyRequest struct {
		CompanyID uint64 `json:"company_id"`
	}
	GetCompanyResponse struct {
		Company *Company `json:"company"`
	}

	IsCompanyAdminRequest struct {
		CompanyID uint64 `json:"company_id"`
		Address   string `json:"address"`
	}

	ListCompaniesRequest struct {
		Admin string `json:"admin"`
	}
	ListCompaniesResponse struct {
		Companies []*Company `json:"companies"`
	}
)

// EmployeeRegistry.
type (
	AddEmployeeRequest struct {
		CompanyID  uint64 `json:"company_id"`
		Wallet     string `json:"wallet"`
		Amount     uint64 `json:"amount"`
		Frequency  uint64 `json:"frequency"`
		LockPeriod uint64 `json:"lock_period"`
	}

	AcceptJobRequest struct {
		CompanyID uint64 `json:"company_id"`
	}

	EmployeeRequest struct {
		CompanyID uint64 `json:"company_id"`
		Wallet    string `json:"wallet"`
	}
	GetEmployeeResponse struct {
		Employee *Employee `json:"employee"`
	}

	ListEmployeesRequest struct {
		CompanyID uint64 `json:"company_id"`
	}
	ListEmployeesResponse struct {
		Employees []*Employee `json:"employees"`
	}

	AddEmployeeDocumentRequest struct {
		CompanyID uint64 `json:"company_id"`
		Employee  string `json:"employee"`
		PieceCID  string `json:"piece_cid"`
		FileName  string `json:"file_name"`
		FileSize  uint64 `json:"file_size"`
	}

	GetEmployeeDocumentsRequest struct {
		CompanyID uint64 `json:"company_id"`
		Employee  string `json:"employee"`
	}
	GetCompanyDocumentsRequest struct {
		CompanyID uint64 `json:"company_id"`
	}
	DocumentsResponse struct {
		Documents []*EmployeeDocument `json:"documents"`
	}
)

// PaymentVault.
type (
	SetPayrollManagerRequest struct {
		Manager string `json:"manager"`
	}

	DepositRequest struct {
		Amount uint64 `json:"amount"`
	}

	CreatePaymentRequest struct {
		CompanyID uint64 `json:"company_id"`
		Company   string `json:"company"`
		Employee  string `json:"employee"`
		Amount    uint64 `json:"amount"`
		ReleaseAt int64  `json:"release_at"`
	}
	CreatePaymentResponse struct {
		PaymentID uint64 `json:"payment_id"`
	}

	ClaimRequest struct {
		PaymentID uint64 `json:"payment_id"`
	}
	ClaimForRequest struct {
		PaymentID uint64 `json:"payment_id"`
		Employee  string `json:"employee"`
	}

	GetCompanyBalanceRequest struct {
		Company string `json:"company"`
	}
	BalanceResponse struct {
		Balance Amount `json:"balance"`
	}

	GetPaymentRequest struct {
		PaymentID uint64 `json:"payment_id"`
	}
	GetPaymentResponse struct {
		Payment *Payment `json:"payment"`
	}

	ListPaymentsRequest struct {
		CompanyID *uint64 `json:"company_id,omitempty"`
		Company   string  `json:"company,omitempty"`
		Employee  string  `json:"employee,omitempty"`
		Claimed   *bool   `json:"claimed,omitempty"`
		Limit     int     `json:"limit,omitempty"`
	}
	ListPaymentsResponse struct {
		Payments      []*Payment `json:"payments"`
		NextPaymentID uint64     `json:"next_payment_id"`
	}
)

// PayrollManager.
type (
	CreatePayrollRunRequest struct {
		CompanyID uint64   `json:"company_id"`
		Wallets   []string `json:"wallets"`
	}
	CreatePayrollRunResponse struct {
		Run *PayrollRun `json:"run"`
	}

	RelayClaimRequest struct {
		PaymentID uint64 `json:"payment_id"`
		Employee  string `json:"employee"`
	}

	ListPayrollRunsRequest struct {
		CompanyID uint64 `json:"company_id"`
		Limit     int    `json:"limit,omitempty"`
	}
	ListPayrollRunsResponse struct {
		Runs []*PayrollRun `json:"runs"`
	}
)

// Event log and token.
type (
	ListEventsRequest struct {
		CompanyID *uint64 `json:"company_id,omitempty"`
		Type      string  `json:"type,omitempty"`
		AfterSeq  uint64  `json:"after_seq,omitempty"`
		Limit     int     `json:"limit,omitempty"`
	}
	ListEventsResponse struct {
		Events []*Event `json:"events"`
	}

	ApproveRequest struct {
		Spender string `json:"spender"`
		Amount  uint64 `json:"amount"`
	}
	TransferRequest struct {
		To     string `json:"to"`
		Amount uint64 `json:"amount"`
	}
	MintRequest struct {
		To     string `json:"to"`
		Amount uint64 `json:"amount"`
	}
	GetTokenBalanceRequest struct {
		Owner string `json:"owner"`
	}
)
