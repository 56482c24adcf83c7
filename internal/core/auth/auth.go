// Package auth authenticates gRPC callers by HMAC-hashed API keys.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/solatis/formkeeper/internal/log"
)

// MetadataKey carries the API key in request metadata.
const MetadataKey = "x-api-key"

type contextKey struct{}

// Queries runs the named api key statements; implemented by *db.Queries.
type Queries interface {
	Get(ctx context.Context, name string, dest any, args ...any) error
	Exec(ctx context.Context, name string, args ...any) (sql.Result, error)
}

// Client identifies an authenticated caller.
type Client struct {
	APIKeyID string `db:"api_key_id"`
	Name     string `db:"client_name"`
}

// Authenticator checks API keys against stored HMAC hashes. secrets maps
// secret_id to HMAC secret; several ids allow rotation.
type Authenticator struct {
	secrets map[string][]byte
	queries Queries
	now     func() time.Time
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(secrets map[string][]byte, queries Queries) *Authenticator {
	return &Authenticator{secrets: secrets, queries: queries, now: time.Now}
}

// Authenticate resolves apiKey to its client.
func (a *Authenticator) Authenticate(ctx context.Context, apiKey string) (Client, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return Client{}, err
	}
	secret, ok := a.secrets[secretID]
	if !ok {
		return Client{}, ErrUnknownKey
	}

	var row struct {
		Client
		LastUsedAt sql.NullTime `db:"last_used_at"`
		RevokedAt  sql.NullTime `db:"revoked_at"`
	}
	err = a.queries.Get(ctx, "get-api-key-by-hash", &row, ComputeHMAC(secret, apiKey))
	if errors.Is(err, sql.ErrNoRows) {
		return Client{}, ErrInvalidKey
	}
	if err != nil {
		return Client{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if row.RevokedAt.Valid {
		return Client{}, ErrKeyRevoked
	}

	// last_used_at is written at most once a minute per key.
	now := a.now().UTC()
	if !row.LastUsedAt.Valid || now.Sub(row.LastUsedAt.Time) > time.Minute {
		if _, err := a.queries.Exec(ctx, "update-last-used", now, row.APIKeyID); err != nil {
			log.WithContext(ctx).Warn("update api key last_used_at", "api_key_id", row.APIKeyID, "error", err)
		}
	}

	return row.Client, nil
}

// Issue creates and stores a new key for clientName under secretID.
// The plaintext key is returned once and never stored.
func (a *Authenticator) Issue(ctx context.Context, secretID, apiKeyID, clientName string) (string, error) {
	secret, ok := a.secrets[secretID]
	if !ok {
		return "", ErrUnknownKey
	}
	key, err := GenerateAPIKey(secretID)
	if err != nil {
		return "", err
	}
	_, err = a.queries.Exec(ctx, "insert-api-key", apiKeyID, clientName, ComputeHMAC(secret, key), a.now().UTC())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return key, nil
}

// Revoke marks a key revoked. Revoking twice reports ErrInvalidKey.
func (a *Authenticator) Revoke(ctx context.Context, apiKeyID string) error {
	res, err := a.queries.Exec(ctx, "revoke-api-key", a.now().UTC(), apiKeyID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrInvalidKey
	}
	return nil
}

// StatusError maps an authentication failure to a gRPC status.
func StatusError(err error) error {
	switch {
	case errors.Is(err, ErrKeyRevoked):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, ErrStorage):
		return status.Error(codes.Unavailable, ErrStorage.Error())
	default:
		return status.Error(codes.Unauthenticated, err.Error())
	}
}

// UnaryInterceptor authenticates every call except the gRPC health service.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, "/grpc.health.v1.Health/") {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		keys := md.Get(MetadataKey)
		if len(keys) == 0 {
			return nil, status.Error(codes.Unauthenticated, ErrMissingKey.Error())
		}

		client, err := a.Authenticate(ctx, keys[0])
		if err != nil {
			log.WithContext(ctx).Info("authentication failed", "method", info.FullMethod, "error", err)
			return nil, StatusError(err)
		}

		log.WithContext(ctx).Debug("authenticated", "client", client.Name, "api_key_id", client.APIKeyID)
		return handler(WithClient(ctx, client), req)
	}
}

// WithClient stores an authenticated client in ctx.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ClientFromContext returns the authenticated client, if any.
func ClientFromContext(ctx context.Context) (Client, bool) {
	c, ok := ctx.Value(contextKey{}).(Client)
	return c, ok
}
