package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried by both access and refresh tokens.
// Tokens carry the user id only; everything else lives in storage.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenPair is an access/refresh token pair issued together.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// JWTAuthenticator signs and validates HS256 tokens with a fixed
// issuer/audience.
type JWTAuthenticator struct {
	audience string
	issuer   string
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(audience, issuer string) JWTAuthenticator {
	return JWTAuthenticator{
		audience: audience,
		issuer:   issuer,
	}
}

// GenerateToken generates a JWT token with the given claims and secret.
func (a *JWTAuthenticator) GenerateToken(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

// ValidateTokenWithClaims validates a JWT token and parses it into the
// provided claims value, which should be a pointer implementing jwt.Claims.
func (a *JWTAuthenticator) ValidateTokenWithClaims(tokenString, secret string, claims jwt.Claims) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return token, nil
}

// TokenIssuer issues access/refresh token pairs from a user id. The two
// tokens share the same payload but are signed with independent secrets
// and expirations. It never touches storage.
type TokenIssuer struct {
	jwtAuth          JWTAuthenticator
	issuer           string
	accessSecret     string
	refreshSecret    string
	accessExpiresIn  time.Duration
	refreshExpiresIn time.Duration
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(
	jwtAuth JWTAuthenticator,
	issuer string,
	accessSecret, refreshSecret string,
	accessExpiresIn, refreshExpiresIn time.Duration,
) *TokenIssuer {
	return &TokenIssuer{
		jwtAuth:          jwtAuth,
		issuer:           issuer,
		accessSecret:     accessSecret,
		refreshSecret:    refreshSecret,
		accessExpiresIn:  accessExpiresIn,
		refreshExpiresIn: refreshExpiresIn,
	}
}

// Issue signs a new access/refresh pair for the given user id.
func (i *TokenIssuer) Issue(userID string) (*TokenPair, error) {
	accessToken, err := i.generate(userID, i.accessSecret, i.accessExpiresIn)
	if err != nil {
		return nil, err
	}

	refreshToken, err := i.generate(userID, i.refreshSecret, i.refreshExpiresIn)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ParseAccess validates an access token and returns its claims.
func (i *TokenIssuer) ParseAccess(token string) (*Claims, error) {
	return i.parse(token, i.accessSecret)
}

// ParseRefresh validates a refresh token and returns its claims.
func (i *TokenIssuer) ParseRefresh(token string) (*Claims, error) {
	return i.parse(token, i.refreshSecret)
}

func (i *TokenIssuer) generate(userID, secret string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.issuer},
		},
	}

	return i.jwtAuth.GenerateToken(claims, secret)
}

func (i *TokenIssuer) parse(token, secret string) (*Claims, error) {
	claims := &Claims{}
	if _, err := i.jwtAuth.ValidateTokenWithClaims(token, secret, claims); err != nil {
		return nil, err
	}

	return claims, nil
}
