package handlers

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "payroll.v1.PayrollService"

// PayrollServiceServer is the server API of payroll.v1.PayrollService.
type PayrollServiceServer interface {
	RegisterCompany(context.Context, *RegisterCompanyRequest) (*RegisterCompanyResponse, error)
	GetCompany(context.Context, *GetCompanyRequest) (*GetCompanyResponse, error)
	IsCompanyAdmin(context.Context, *IsCompanyAdminRequest) (*BoolResponse, error)
	ListCompanies(context.Context, *ListCompaniesRequest) (*ListCompaniesResponse, error)

	AddEmployee(context.Context, *AddEmployeeRequest) (*Empty, error)
	AcceptJob(context.Context, *AcceptJobRequest) (*Empty, error)
	TerminateEmployee(context.Context, *EmployeeRequest) (*Empty, error)
	GetEmployee(context.Context, *EmployeeRequest) (*GetEmployeeResponse, error)
	IsEmployee(context.Context, *EmployeeRequest) (*BoolResponse, error)
	ListEmployees(context.Context, *ListEmployeesRequest) (*ListEmployeesResponse, error)
	AddEmployeeDocument(context.Context, *AddEmployeeDocumentRequest) (*Empty, error)
	GetEmployeeDocuments(context.Context, *GetEmployeeDocumentsRequest) (*DocumentsResponse, error)
	GetCompanyDocuments(context.Context, *GetCompanyDocumentsRequest) (*DocumentsResponse, error)

	SetPayrollManager(context.Context, *SetPayrollManagerRequest) (*Empty, error)
	Deposit(context.Context, *DepositRequest) (*Empty, error)
	CreatePayment(context.Context, *CreatePaymentRequest) (*CreatePaymentResponse, error)
	Claim(context.Context, *ClaimRequest) (*Empty, error)
	ClaimFor(context.Context, *ClaimForRequest) (*Empty, error)
	GetCompanyBalance(context.Context, *GetCompanyBalanceRequest) (*BalanceResponse, error)
	GetPayment(context.Context, *GetPaymentRequest) (*GetPaymentResponse, error)
	ListPayments(context.Context, *ListPaymentsRequest) (*ListPaymentsResponse, error)

	CreatePayrollRun(context.Context, *CreatePayrollRunRequest) (*CreatePayrollRunResponse, error)
	RelayClaim(context.Context, *RelayClaimRequest) (*Empty, error)
	ListPayrollRuns(context.Context, *ListPayrollRunsRequest) (*ListPayrollRunsResponse, error)

	ListEvents(context.Context, *ListEventsRequest) (*ListEventsResponse, error)

	Approve(context.Context, *ApproveRequest) (*Empty, error)
	Transfer(context.Context, *TransferRequest) (*Empty, error)
	Mint(context.Context, *MintRequest) (*Empty, error)
	GetTokenBalance(context.Context, *GetTokenBalanceRequest) (*BalanceResponse, error)
}

// FullMethod returns the gRPC full method name of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// ProtectedMethods lists the methods that act on behalf of a caller and so
// need an authenticated wallet.
func ProtectedMethods() []string {
	names := []string{
		"RegisterCompany",
		"AddEmployee",
		"AcceptJob",
		"TerminateEmployee",
		"AddEmployeeDocument",
		"SetPayrollManager",
		"Deposit",
		"CreatePayment",
		"Claim",
		"ClaimFor",
		"CreatePayrollRun",
		"RelayClaim",
		"Approve",
		"Transfer",
		"Mint",
	}
	methods := make([]string, 0, len(names))
	for _, n := range names {
		methods = append(methods, FullMethod(n))
	}
	return methods
}

func unary[Req, Resp any](name string, call func(PayrollServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PayrollServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(PayrollServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes payroll.v1.PayrollService. Register it on a server
// that uses JSONCodec.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PayrollServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("RegisterCompany", PayrollServiceServer.RegisterCompany),
		unary("GetCompany", PayrollServiceServer.GetCompany),
		unary("IsCompanyAdmin", PayrollServiceServer.IsCompanyAdmin),
		unary("ListCompanies", PayrollServiceServer.ListCompanies),
		unary("AddEmployee", PayrollServiceServer.AddEmployee),
		unary("AcceptJob", PayrollServiceServer.AcceptJob),
		unary("TerminateEmployee", PayrollServiceServer.TerminateEmployee),
		unary("GetEmployee", PayrollServiceServer.GetEmployee),
		unary("IsEmployee", PayrollServiceServer.IsEmployee),
		unary("ListEmployees", PayrollServiceServer.ListEmployees),
		unary("AddEmployeeDocument", PayrollServiceServer.AddEmployeeDocument),
		unary("GetEmployeeDocuments", PayrollServiceServer.GetEmployeeDocuments),
		unary("GetCompanyDocuments", PayrollServiceServer.GetCompanyDocuments),
		unary("SetPayrollManager", PayrollServiceServer.SetPayrollManager),
		unary("Deposit", PayrollServiceServer.Deposit),
		unary("CreatePayment", PayrollServiceServer.CreatePayment),
		unary("Claim", PayrollServiceServer.Claim),
		unary("ClaimFor", PayrollServiceServer.ClaimFor),
		unary("GetCompanyBalance", PayrollServiceServer.GetCompanyBalance),
		unary("GetPayment", PayrollServiceServer.GetPayment),
		unary("ListPayments", PayrollServiceServer.ListPayments),
		unary("CreatePayrollRun", PayrollServiceServer.CreatePayrollRun),
		unary("RelayClaim", PayrollServiceServer.RelayClaim),
		unary("ListPayrollRuns", PayrollServiceServer.ListPayrollRuns),
		unary("ListEvents", PayrollServiceServer.ListEvents),
		unary("Approve", PayrollServiceServer.Approve),
		unary("Transfer", PayrollServiceServer.Transfer),
		unary("Mint", PayrollServiceServer.Mint),
		unary("GetTokenBalance", PayrollServiceServer.GetTokenBalance),
	},
	Streams: []grpc.StreamDesc{},
}

// Client calls payroll.v1.PayrollService over a connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req and decodes the reply into resp.
func (c *Client) Call(ctx context.Context, method string, req, resp interface{}, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.ForceCodec(JSONCodec{})}, opts...)
	return c.cc.Invoke(ctx, FullMethod(method), req, resp, opts...)
}
