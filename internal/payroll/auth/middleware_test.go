package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddleware(t *testing.T) {
	const secret = "test-secret"
	valid, err := GenerateToken(wallet, secret, time.Hour)
	require.NoError(t, err)
	forged, err := GenerateToken(wallet, "other-secret", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
		wantCaller bool
	}{
		{name: "read without token", method: http.MethodGet, path: "/v1/companies/0", wantStatus: http.StatusOK},
		{name: "read with token", method: http.MethodGet, path: "/v1/companies/0", header: "Bearer " + valid, wantStatus: http.StatusOK, wantCaller: true},
		{name: "read with bad token", method: http.MethodGet, path: "/v1/companies/0", header: "Bearer " + forged, wantStatus: http.StatusOK},
		{name: "write without token", method: http.MethodPost, path: "/v1/companies", wantStatus: http.StatusUnauthorized},
		{name: "write with bad token", method: http.MethodPost, path: "/v1/companies", header: "Bearer " + forged, wantStatus: http.StatusUnauthorized},
		{name: "write without bearer prefix", method: http.MethodPost, path: "/v1/vault/deposit", header: valid, wantStatus: http.StatusUnauthorized},
		{name: "write with token", method: http.MethodPost, path: "/v1/vault/deposit", header: "Bearer " + valid, wantStatus: http.StatusOK, wantCaller: true},
		{name: "outside api", method: http.MethodPost, path: "/healthz", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCaller bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				caller, err := CallerFromContext(r.Context())
				gotCaller = err == nil && caller == wallet
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			HTTPMiddleware(next, secret).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCaller, gotCaller)
		})
	}
}
