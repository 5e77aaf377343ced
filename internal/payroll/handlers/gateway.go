package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const maxBodyBytes = 1 << 20

type gatewayRoute struct {
	method  string
	pattern string
	handle  runtime.HandlerFunc
}

// gateway serves the REST mapping of PayrollService straight onto a handler.
type gateway struct {
	mux       *runtime.ServeMux
	marshaler runtime.Marshaler
	logger    *zap.Logger
}

// NewGatewayMux builds the HTTP mux for h. Request fields come from the JSON
// body, the query string and path parameters, later sources winning.
func NewGatewayMux(h PayrollServiceServer, logger *zap.Logger) (*runtime.ServeMux, error) {
	g := &gateway{
		mux:       runtime.NewServeMux(),
		marshaler: &runtime.JSONPb{},
		logger:    logger.Named("gateway"),
	}

	routes := []gatewayRoute{
		route(g, http.MethodPost, "/v1/companies", h.RegisterCompany),
		route(g, http.MethodGet, "/v1/companies/{company_id}", h.GetCompany),
		route(g, http.MethodGet, "/v1/companies/{company_id}/admins/{address}", h.IsCompanyAdmin),
		route(g, http.MethodGet, "/v1/admins/{admin}/companies", h.ListCompanies),

		route(g, http.MethodPost, "/v1/companies/{company_id}/employees", h.AddEmployee),
		route(g, http.MethodGet, "/v1/companies/{company_id}/employees", h.ListEmployees),
		route(g, http.MethodPost, "/v1/companies/{company_id}/accept", h.AcceptJob),
		route(g, http.MethodGet, "/v1/companies/{company_id}/employees/{wallet}", h.GetEmployee),
		route(g, http.MethodGet, "/v1/companies/{company_id}/employees/{wallet}/active", h.IsEmployee),
		route(g, http.MethodPost, "/v1/companies/{company_id}/employees/{wallet}/terminate", h.TerminateEmployee),
		route(g, http.MethodPost, "/v1/companies/{company_id}/employees/{employee}/documents", h.AddEmployeeDocument),
		route(g, http.MethodGet, "/v1/companies/{company_id}/employees/{employee}/documents", h.GetEmployeeDocuments),
		route(g, http.MethodGet, "/v1/companies/{company_id}/documents", h.GetCompanyDocuments),

		route(g, http.MethodPut, "/v1/vault/manager", h.SetPayrollManager),
		route(g, http.MethodPost, "/v1/vault/deposits", h.Deposit),
		route(g, http.MethodGet, "/v1/vault/balances/{company}", h.GetCompanyBalance),
		route(g, http.MethodPost, "/v1/vault/payments", h.CreatePayment),
		route(g, http.MethodGet, "/v1/vault/payments", h.ListPayments),
		route(g, http.MethodGet, "/v1/vault/payments/{payment_id}", h.GetPayment),
		route(g, http.MethodPost, "/v1/vault/payments/{payment_id}/claim", h.Claim),
		route(g, http.MethodPost, "/v1/vault/payments/{payment_id}/claim_for", h.ClaimFor),

		route(g, http.MethodPost, "/v1/companies/{company_id}/payroll_runs", h.CreatePayrollRun),
		route(g, http.MethodGet, "/v1/companies/{company_id}/payroll_runs", h.ListPayrollRuns),
		route(g, http.MethodPost, "/v1/payroll/payments/{payment_id}/relay", h.RelayClaim),

		route(g, http.MethodGet, "/v1/events", h.ListEvents),

		route(g, http.MethodPost, "/v1/token/approvals", h.Approve),
		route(g, http.MethodPost, "/v1/token/transfers", h.Transfer),
		route(g, http.MethodPost, "/v1/token/mint", h.Mint),
		route(g, http.MethodGet, "/v1/token/balances/{owner}", h.GetTokenBalance),
	}

	for _, r := range routes {
		if err := g.mux.HandlePath(r.method, r.pattern, r.handle); err != nil {
			return nil, fmt.Errorf("failed to register %s %s: %w", r.method, r.pattern, err)
		}
	}
	err := g.mux.HandlePath(http.MethodGet, "/healthz", func(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if err != nil {
		return nil, err
	}
	return g.mux, nil
}

func route[Req, Resp any](g *gateway, method, pattern string, call func(context.Context, *Req) (*Resp, error)) gatewayRoute {
	return gatewayRoute{
		method:  method,
		pattern: pattern,
		handle: func(w http.ResponseWriter, r *http.Request, params map[string]string) {
			req := new(Req)
			if err := decodeRequest(r, params, req); err != nil {
				g.writeError(w, r, status.Errorf(codes.InvalidArgument, "malformed request: %v", err))
				return
			}
			resp, err := call(r.Context(), req)
			if err != nil {
				g.writeError(w, r, err)
				return
			}
			g.writeJSON(w, resp)
		},
	}
}

// decodeRequest merges the body, the query string and path params into dst.
func decodeRequest(r *http.Request, params map[string]string, dst interface{}) error {
	fields := map[string]interface{}{}

	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return err
		}
		if len(bytes.TrimSpace(body)) > 0 {
			dec := json.NewDecoder(bytes.NewReader(body))
			dec.UseNumber()
			if err := dec.Decode(&fields); err != nil {
				return err
			}
		}
	}

	for key, values := range r.URL.Query() {
		if len(values) == 1 {
			fields[key] = scalar(values[0])
			continue
		}
		list := make([]interface{}, 0, len(values))
		for _, v := range values {
			list = append(list, scalar(v))
		}
		fields[key] = list
	}
	for key, v := range params {
		fields[key] = scalar(v)
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, dst)
}

// scalar types a textual value so it decodes into numeric and bool fields.
func scalar(v string) interface{} {
	if _, err := strconv.ParseUint(v, 10, 64); err == nil {
		return json.Number(v)
	}
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return json.Number(v)
	}
	if v == "true" || v == "false" {
		return v == "true"
	}
	return v
}

func (g *gateway) writeJSON(w http.ResponseWriter, v interface{}) {
	body, err := JSONCodec{}.Marshal(v)
	if err != nil {
		g.logger.Error("Failed to encode response", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		g.logger.Warn("Failed to write response", zap.Error(err))
	}
}

// writeError renders err as a google.rpc.Status document with the HTTP code
// matching its gRPC code.
func (g *gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	runtime.HTTPError(r.Context(), g.mux, g.marshaler, w, r, err)
}
