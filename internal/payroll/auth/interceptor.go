// Package auth provides a gRPC unary interceptor, an HTTP middleware and JWT
// validation to secure the ledger's mutating methods. The authenticated
// wallet travels in the token's "sub" claim and becomes the caller of the
// operation.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Interceptor holds the JWT secret and a map of protected methods.
type Interceptor struct {
	jwtSecret        string
	protectedMethods map[string]bool
}

type contextKey string

const (
	userContextKey contextKey = "user"
)

// NewAuthInterceptor creates an Interceptor that demands a valid token on
// every method in protected (full gRPC method names).
func NewAuthInterceptor(jwtSecret string, protected ...string) *Interceptor {
	methods := make(map[string]bool, len(protected))
	for _, m := range protected {
		methods[m] = true
	}

	return &Interceptor{
		jwtSecret:        jwtSecret,
		protectedMethods: methods,
	}
}

// Unary returns a gRPC unary interceptor for token validation on protected methods.
func (i *Interceptor) Unary() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if i.protectedMethods[info.FullMethod] {
			md, ok := metadata.FromIncomingContext(ctx)
			if !ok {
				return nil, status.Error(codes.Unauthenticated, "metadata missing")
			}

			tokenString, err := extractTokenFromMetadata(md)
			if err != nil {
				return nil, err
			}

			claims, err := validateToken(tokenString, i.jwtSecret)
			if err != nil {
				return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
			}

			ctx = WithClaims(ctx, claims)
		}

		return handler(ctx, req)
	}
}

// WithClaims stores validated claims in ctx.
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

// CallerFromContext returns the wallet the request was authenticated as.
func CallerFromContext(ctx context.Context) (common.Address, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return common.Address{}, status.Error(codes.Unauthenticated, "request is not authenticated")
	}
	sub, err := claims.GetSubject()
	if err != nil || !common.IsHexAddress(sub) {
		return common.Address{}, status.Error(codes.Unauthenticated, "token subject is not a wallet address")
	}
	return common.HexToAddress(sub), nil
}

// extractTokenFromMetadata retrieves a Bearer token from gRPC metadata.
func extractTokenFromMetadata(md metadata.MD) (string, error) {
	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization header missing")
	}

	headerValue := authHeaders[0]
	if !strings.HasPrefix(headerValue, "Bearer ") {
		return "", status.Error(codes.Unauthenticated, "invalid authorization format: missing Bearer prefix")
	}

	tokenString := strings.TrimPrefix(headerValue, "Bearer ")
	if tokenString == "" {
		return "", status.Error(codes.Unauthenticated, "invalid authorization format: empty token")
	}

	return tokenString, nil
}

// validateToken checks the token signature and returns parsed claims if valid.
func validateToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token claims")
}
