package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultTokenExpiration bounds cookie session tokens.
const DefaultTokenExpiration = 24 * time.Hour

// TokenService mints and verifies the signed tokens carried by cookie
// sessions. Tokens hold only the user id; credential state stays in the
// store.
type TokenService struct {
	signingKey []byte
	expiration time.Duration
	issuer     string
}

// NewTokenService returns a TokenService signing with HS256.
func NewTokenService(signingKey []byte, expiration time.Duration, issuer string) *TokenService {
	if expiration <= 0 {
		expiration = DefaultTokenExpiration
	}
	return &TokenService{
		signingKey: signingKey,
		expiration: expiration,
		issuer:     issuer,
	}
}

// Expiration reports the lifetime minted tokens carry.
func (t *TokenService) Expiration() time.Duration {
	return t.expiration
}

// Mint generates a signed session token for the given user id.
func (t *TokenService) Mint(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.expiration)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}
	return token, nil
}

// UserFromToken verifies a session token and returns the bound user id.
func (t *TokenService) UserFromToken(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(t.issuer))
	}

	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return t.signingKey, nil
	}, parserOpts...)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryAuth, "invalid session token")
	}

	if claims.Subject == "" {
		return "", goerrors.New("session token has no subject", goerrors.CategoryAuth)
	}
	return claims.Subject, nil
}
