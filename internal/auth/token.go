package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// Claims is the set of JWT claims this service reads; anything else is
// carried through in Raw for claim-path gating.
type Claims struct {
	Subject           string                 `json:"sub"`
	PreferredUsername string                 `json:"preferred_username"`
	Username          string                 `json:"username"`
	UserName          string                 `json:"user_name"`
	Raw               map[string]interface{} `json:"-"`
	jwt.RegisteredClaims
}

// VerifyBearerToken verifies tokenStr against the verifier's JWKS: RS256
// signature, `exp`, and `aud == expectedAudience` per spec §4.5.
func VerifyBearerToken(ctx context.Context, v *JWKSVerifier, tokenStr, expectedAudience string) (*Claims, error) {
	set, err := v.KeySet(ctx)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodRS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		key, err := lookupKey(set, kid)
		if err != nil {
			return nil, err
		}
		var raw interface{}
		if err := key.Raw(&raw); err != nil {
			return nil, fmt.Errorf("failed to extract public key: %w", err)
		}
		return raw, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	if !claims.hasAudience(expectedAudience) {
		return nil, fmt.Errorf("token audience does not include %q", expectedAudience)
	}

	rawClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, rawClaims); err == nil {
		claims.Raw = rawClaims
	}

	return claims, nil
}

func (c *Claims) hasAudience(expected string) bool {
	for _, a := range c.Audience {
		if a == expected {
			return true
		}
	}
	return false
}

func lookupKey(set jwk.Set, kid string) (jwk.Key, error) {
	if kid != "" {
		if key, ok := set.LookupKeyID(kid); ok {
			return key, nil
		}
	}
	if set.Len() == 1 {
		key, _ := set.Key(0)
		return key, nil
	}
	return nil, fmt.Errorf("no matching jwks key for kid %q", kid)
}

// ResolveUsername implements spec §4.5's resolution order:
// preferred_username -> username -> user_name -> userinfo endpoint -> sub.
func ResolveUsername(ctx context.Context, claims *Claims, fetchUserinfo func(ctx context.Context) (string, error)) (string, error) {
	if claims.PreferredUsername != "" {
		return claims.PreferredUsername, nil
	}
	if claims.Username != "" {
		return claims.Username, nil
	}
	if claims.UserName != "" {
		return claims.UserName, nil
	}
	if fetchUserinfo != nil {
		if name, err := fetchUserinfo(ctx); err == nil && name != "" {
			return name, nil
		}
	}
	return claims.Subject, nil
}
