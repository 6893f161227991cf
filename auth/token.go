package auth

import (
	"campus-market/errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"

	issuer = "campus-market"
)

var validate = validator.New()

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenRequest describes who a token is issued for.
type TokenRequest struct {
	UserID string   `validate:"required,max=128"`
	Roles  []string `validate:"dive,oneof=student admin"`
}

// TokenIssuer signs and validates HS256 tokens with a shared secret.
type TokenIssuer struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret string, duration time.Duration) (*TokenIssuer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("%w: jwt secret must be at least 32 bytes", errors.ErrInvalidArgument)
	}
	return &TokenIssuer{secret: []byte(secret), duration: duration, now: time.Now}, nil
}

// GenerateToken creates a signed JWT for a specific user.
func (i *TokenIssuer) GenerateToken(request TokenRequest) (string, error) {
	if err := validate.Struct(request); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err)
	}
	roles := request.Roles
	if len(roles) == 0 {
		roles = []string{RoleStudent}
	}

	now := i.now()
	claims := &CustomClaims{
		UserID: request.UserID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   request.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
func (i *TokenIssuer) ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
