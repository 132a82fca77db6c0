package auth

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	sdkauth "github.com/modelcontextprotocol/go-sdk/auth"
)

// TokenVerifier verifies a raw bearer token.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, rawToken string) (*Principal, time.Time, error)
}

// NewMCPTokenVerifier adapts a TokenVerifier to the SDK's auth.TokenVerifier
// function type. Tokens without the read scope are rejected. The Principal
// is kept in TokenInfo.Extra under "principal".
func NewMCPTokenVerifier(v TokenVerifier) sdkauth.TokenVerifier {
	return func(ctx context.Context, token string, _ *http.Request) (*sdkauth.TokenInfo, error) {
		principal, expiry, err := v.VerifyToken(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", sdkauth.ErrInvalidToken, err)
		}
		if !principal.IsAdmin() && !principal.HasScope(ScopeRead) {
			return nil, fmt.Errorf("%w: missing scope %s", sdkauth.ErrInvalidToken, ScopeRead)
		}

		scopes := make([]string, 0, len(principal.Scopes))
		for s := range principal.Scopes {
			scopes = append(scopes, s)
		}
		sort.Strings(scopes)

		return &sdkauth.TokenInfo{
			UserID:     principal.Sub,
			Scopes:     scopes,
			Expiration: expiry,
			Extra:      map[string]any{"principal": principal},
		}, nil
	}
}
