package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/maraichr/gdcgraph/internal/config"
)

// Verifier validates JWTs using OIDC discovery and JWKS.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier creates a Verifier using OIDC discovery from the issuer URL.
// PublicIssuer optionally names the iss claim when it differs from the
// discovery URL, as when discovery runs over an internal hostname.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (*Verifier, error) {
	if cfg.PublicIssuer != "" && cfg.PublicIssuer != cfg.IssuerURL {
		ctx = oidc.InsecureIssuerURLContext(ctx, cfg.PublicIssuer)
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: cfg.Audience})}, nil
}

type claims struct {
	Sub            string      `json:"sub"`
	Email          string      `json:"email"`
	Scope          string      `json:"scope"`
	GDCGraphScopes string      `json:"gdcgraph_scopes"`
	Azp            string      `json:"azp"`
	RealmAccess    realmAccess `json:"realm_access"`
}

type realmAccess struct {
	Roles []string `json:"roles"`
}

// VerifyToken verifies a raw Bearer token string and returns the Principal
// and the token's expiry time.
func (v *Verifier) VerifyToken(ctx context.Context, rawToken string) (*Principal, time.Time, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("token verification failed: %w", err)
	}

	var c claims
	if err := token.Claims(&c); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to parse claims: %w", err)
	}
	p := principalFromClaims(c)
	p.Issuer = token.Issuer
	return p, token.Expiry, nil
}

func principalFromClaims(c claims) *Principal {
	scopes := make(map[string]bool)
	for _, s := range strings.Fields(c.Scope + " " + c.GDCGraphScopes) {
		scopes[s] = true
	}
	roles := make(map[string]bool)
	for _, r := range c.RealmAccess.Roles {
		roles[r] = true
	}
	return &Principal{
		Sub:      c.Sub,
		Scopes:   scopes,
		Roles:    roles,
		ClientID: c.Azp,
		Email:    c.Email,
	}
}

// VerifyRequest extracts and verifies the Bearer token from the request.
func (v *Verifier) VerifyRequest(r *http.Request) (*Principal, error) {
	raw, err := bearerToken(r)
	if err != nil {
		return nil, err
	}
	p, _, err := v.VerifyToken(r.Context(), raw)
	return p, err
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	return parts[1], nil
}
