package grpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type subjectKey struct{}

// SubjectFromContext returns the authenticated token subject
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey{}).(string)
	return subject, ok
}

// IssueToken signs an HS256 bearer token for subject
func IssueToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the bearer JWT from the authorization metadata.
// If the token is missing or invalid, it returns status.Unauthenticated.
// If valid, it calls the handler with the token subject in the context.
func AuthInterceptor(secret []byte, logger *logrus.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		raw, found := strings.CutPrefix(authHeaders[0], "Bearer ")
		if !found {
			return nil, status.Error(codes.Unauthenticated, "authorization must be a bearer token")
		}

		var claims jwt.RegisteredClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
			return secret, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		)
		if err != nil {
			logger.WithField("method", info.FullMethod).WithError(err).Warn("rejected token")
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		if claims.Subject == "" {
			return nil, status.Error(codes.Unauthenticated, "token has no subject")
		}

		return handler(context.WithValue(ctx, subjectKey{}, claims.Subject), req)
	}
}
