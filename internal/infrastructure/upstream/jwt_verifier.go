// Package upstream verifies the signed assertions identity providers hand
// over after completing their own login flow.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/ports"
)

// AuthorityOAuth2User is granted to every upstream principal.
const AuthorityOAuth2User = "OAUTH2_USER"

// JWTVerifier checks HS256 assertions signed with the per-registration client secret.
type JWTVerifier struct {
	secrets map[string][]byte
	issuer  string
}

var _ ports.UpstreamVerifier = (*JWTVerifier)(nil)

// NewJWTVerifier builds a verifier for the given registrations. When issuer
// is non-empty the iss claim must match it.
func NewJWTVerifier(secrets map[string]string, issuer string) *JWTVerifier {
	v := &JWTVerifier{secrets: make(map[string][]byte, len(secrets)), issuer: issuer}
	for reg, secret := range secrets {
		if secret != "" {
			v.secrets[reg] = []byte(secret)
		}
	}
	return v
}

type assertionClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Scope         string `json:"scope"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) Verify(_ context.Context, registrationID, assertion string) (*ports.UpstreamLogin, error) {
	secret, ok := v.secrets[registrationID]
	if !ok {
		return nil, domain.ErrUnknownRegistration
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims assertionClaims
	tkn, err := jwt.ParseWithClaims(assertion, &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamToken, errOrInvalid(err))
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub", domain.ErrInvalidUpstreamToken)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", domain.ErrInvalidUpstreamToken)
	}

	attrs := map[string]any{"sub": claims.Subject}
	if claims.Email != "" {
		attrs["email"] = claims.Email
		attrs["email_verified"] = claims.EmailVerified
	}
	if claims.Name != "" {
		attrs["name"] = claims.Name
	}

	user, err := domain.NewOAuth2User(claims.Subject, attrs, scopeAuthorities(claims.Scope))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamToken, err)
	}

	login := &ports.UpstreamLogin{User: user, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		login.ExpiresAt = claims.ExpiresAt.Time
	}
	return login, nil
}

// scopeAuthorities maps a space separated scope claim to SCOPE_ authorities.
func scopeAuthorities(scope string) []string {
	out := []string{AuthorityOAuth2User}
	for _, s := range strings.Fields(scope) {
		out = append(out, "SCOPE_"+s)
	}
	return out
}

func errOrInvalid(err error) error {
	if err == nil {
		return errors.New("token invalid")
	}
	return err
}
