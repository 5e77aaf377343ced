// This is a **mock authentication service** standing in for wallet login. It
// issues JWTs whose subject is the wallet passed in ?wallet=.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/OBuskas/ananaPayroll/internal/payroll/auth"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const (
	defaultPort   = "8081"       // Default port for the authentication service
	defaultSecret = "jwt_secret" // Secret for signing JWT
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token     string `json:"token"`
	Wallet    string `json:"wallet"`
	ExpiresAt int64  `json:"expires_at"`
}

func tokenHandler(secret string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wallet := r.URL.Query().Get("wallet")
		if !common.IsHexAddress(wallet) {
			http.Error(w, "wallet must be a hex address", http.StatusBadRequest)
			return
		}
		addr := common.HexToAddress(wallet)

		token, err := auth.GenerateToken(addr, secret, auth.DefaultTokenTTL)
		if err != nil {
			logger.Error("Failed to generate token", zap.Error(err))
			http.Error(w, "Failed to generate token", http.StatusInternalServerError)
			return
		}

		resp := TokenResponse{
			Token:     token,
			Wallet:    addr.Hex(),
			ExpiresAt: time.Now().Add(auth.DefaultTokenTTL).Unix(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("Failed to encode token", zap.Error(err))
		}
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = defaultSecret
	}
	port := os.Getenv("AUTH_PORT")
	if port == "" {
		port = defaultPort
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler(secret, logger))

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("Authentication service running", zap.String("port", port))
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("Authentication service stopped", zap.Error(err))
	}
}
