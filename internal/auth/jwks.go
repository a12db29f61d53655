// Package auth implements OIDC JWKS token verification, claim-based
// gating, username resolution, and pre-signed URL HMAC mint/verify
// (spec §4.5). JWKS handling follows the ecosystem pattern grounded via the
// evalgo-org-eve manifest (lestrrat-go/jwx/v2); Bearer-token parsing and
// the echo middleware shape follow the teacher's
// middleware/jwt_middleware.go.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// OIDCDiscovery is the subset of the `.well-known/openid-configuration`
// document this service needs.
type OIDCDiscovery struct {
	JWKSURI               string `json:"jwks_uri"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	EndSessionEndpoint    string `json:"end_session_endpoint"`
	DeviceAuthEndpoint    string `json:"device_authorization_endpoint"`
	Issuer                string `json:"issuer"`
}

// JWKSVerifier fetches and caches the OIDC provider's JWKS, used to verify
// RS256-signed bearer tokens.
type JWKSVerifier struct {
	discoveryURL     string
	discoveryTimeout time.Duration
	jwksTimeout      time.Duration
	cacheTTL         time.Duration
	httpClient       *http.Client

	cache    jwk.Set
	cachedAt time.Time
	disco    *OIDCDiscovery
}

// NewJWKSVerifier builds a verifier against the OIDC discovery URL (the
// issuer base, with `/.well-known/openid-configuration` appended by the
// caller if not already present).
func NewJWKSVerifier(discoveryURL string, discoveryTimeout, jwksTimeout, cacheTTL time.Duration) *JWKSVerifier {
	return &JWKSVerifier{
		discoveryURL:     discoveryURL,
		discoveryTimeout: discoveryTimeout,
		jwksTimeout:      jwksTimeout,
		cacheTTL:         cacheTTL,
		httpClient:       &http.Client{},
	}
}

// Discover fetches and caches the OIDC discovery document.
func (v *JWKSVerifier) Discover(ctx context.Context) (*OIDCDiscovery, error) {
	if v.disco != nil {
		return v.disco, nil
	}
	ctx, cancel := context.WithTimeout(ctx, v.discoveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.discoveryURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oidc discovery returned status %d", resp.StatusCode)
	}

	var disco OIDCDiscovery
	if err := json.NewDecoder(resp.Body).Decode(&disco); err != nil {
		return nil, fmt.Errorf("failed to decode oidc discovery document: %w", err)
	}
	v.disco = &disco
	return &disco, nil
}

// KeySet returns the cached JWKS, refreshing it from jwks_uri if the cache
// is empty or older than cacheTTL.
func (v *JWKSVerifier) KeySet(ctx context.Context) (jwk.Set, error) {
	if v.cache != nil && time.Since(v.cachedAt) < v.cacheTTL {
		return v.cache, nil
	}

	disco, err := v.Discover(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, v.jwksTimeout)
	defer cancel()

	set, err := jwk.Fetch(ctx, disco.JWKSURI)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jwks: %w", err)
	}
	v.cache = set
	v.cachedAt = time.Now()
	return set, nil
}
