package handlers

import (
	"errors"
	"fmt"

	e "github.com/OBuskas/ananaPayroll/internal/payroll/errors"
	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/OBuskas/ananaPayroll/internal/payroll/token"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain is the ErrorInfo domain attached to ledger failures.
const ErrorDomain = "payroll.anana"

// errorMappings pairs every ledger sentinel with its status code and the
// machine-readable reason clients switch on.
var errorMappings = []struct {
	err    error
	code   codes.Code
	reason string
}{
	{e.ErrCompanyNotFound, codes.NotFound, "COMPANY_NOT_FOUND"},
	{e.ErrNotFound, codes.NotFound, "NOT_FOUND"},
	{e.ErrNotPayrollManager, codes.PermissionDenied, "NOT_PAYROLL_MANAGER"},
	{e.ErrUnauthorized, codes.PermissionDenied, "UNAUTHORIZED"},
	{e.ErrAlreadyExists, codes.AlreadyExists, "ALREADY_EXISTS"},
	{e.ErrAlreadyAccepted, codes.FailedPrecondition, "ALREADY_ACCEPTED"},
	{e.ErrAlreadyClaimed, codes.FailedPrecondition, "ALREADY_CLAIMED"},
	{e.ErrNotActive, codes.FailedPrecondition, "NOT_ACTIVE"},
	{e.ErrLocked, codes.FailedPrecondition, "LOCKED"},
	{e.ErrInsufficientFunds, codes.FailedPrecondition, "INSUFFICIENT_FUNDS"},
	{e.ErrInvalidInput, codes.InvalidArgument, "INVALID_INPUT"},
}

// mapServiceError maps ledger errors to gRPC status codes carrying an ErrorInfo detail.
func (h *PayrollHandler) mapServiceError(err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return statusWithReason(m.code, m.reason, err.Error())
		}
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	h.logger.Error("Internal server error", zap.Error(err))
	return status.Error(codes.Internal, fmt.Sprintf("internal server error: %v", err))
}

func statusWithReason(code codes.Code, reason, msg string) error {
	st := status.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason: reason,
		Domain: ErrorDomain,
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// ErrorReason extracts the ErrorInfo reason from a status error, or "".
func ErrorReason(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}

func parseAddress(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, statusWithReason(codes.InvalidArgument, "INVALID_INPUT",
			fmt.Sprintf("%s: %q is not a hex address", field, s))
	}
	return common.HexToAddress(s), nil
}

func parseOptionalAddress(field, s string) (*common.Address, error) {
	if s == "" {
		return nil, nil
	}
	addr, err := parseAddress(field, s)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (h *PayrollHandler) amount(v uint64) Amount {
	decimals := uint8(token.DefaultDecimals)
	if h.svc.Tokens != nil {
		decimals = h.svc.Tokens.Decimals()
	}
	return Amount{Value: v, Formatted: token.FormatUnits(v, decimals)}
}

func companyToView(c *models.Company) *Company {
	return &Company{
		ID:     c.ID,
		Admin:  c.Admin,
		Name:   c.Name,
		Exists: c.Exists,
	}
}

func employeeToView(emp *models.Employee) *Employee {
	return &Employee{
		CompanyID:  emp.CompanyID,
		Wallet:     emp.Wallet,
		Amount:     emp.Amount,
		Frequency:  emp.Frequency,
		LockPeriod: emp.LockPeriod,
		Accepted:   emp.Accepted,
		Exists:     emp.Exists,
		Active:     emp.Active,
		Status:     string(emp.Status()),
	}
}

func documentsToView(docs []*models.EmployeeDocument) *DocumentsResponse {
	resp := &DocumentsResponse{Documents: make([]*EmployeeDocument, 0, len(docs))}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, &EmployeeDocument{
			Employee:   d.Employee,
			PieceCID:   d.PieceCID,
			FileName:   d.FileName,
			FileSize:   d.FileSize,
			Uploader:   d.Uploader,
			UploadedAt: d.UploadedAt.Unix(),
		})
	}
	return resp
}

func paymentToView(p *models.Payment) *Payment {
	view := &Payment{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		Company:   p.Company,
		Employee:  p.Employee,
		Amount:    p.Amount,
		Claimed:   p.Claimed,
		Exists:    p.Exists,
	}
	if p.Exists {
		view.ReleaseAt = p.ReleaseAt.Unix()
	}
	if p.ClaimedAt != nil {
		ts := p.ClaimedAt.Unix()
		view.ClaimedAt = &ts
	}
	return view
}

func runToView(r *models.PayrollRun) *PayrollRun {
	ids := r.PaymentIDs
	if ids == nil {
		ids = []uint64{}
	}
	return &PayrollRun{
		ID:            r.ID,
		CompanyID:     r.CompanyID,
		CreatedBy:     r.CreatedBy,
		Timestamp:     r.Timestamp.Unix(),
		PaymentsCount: r.PaymentsCount,
		TotalAmount:   r.TotalAmount,
		PaymentIDs:    ids,
	}
}

func eventToView(ev *models.Event) *Event {
	return &Event{
		ID:        ev.ID.String(),
		Seq:       ev.Seq,
		Type:      string(ev.Type),
		CompanyID: ev.CompanyID,
		Payload:   ev.Payload,
		CreatedAt: ev.CreatedAt.Unix(),
	}
}
