package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "blackhole"

// Service token scopes
const (
	ScopeVerify  = "verify"
	ScopeCatalog = "catalog"
)

// ServiceClaims represents claims of a service-to-service token
type ServiceClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// StorageClaims carries a browser's key-value storage
type StorageClaims struct {
	Values map[string]string `json:"kv"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token operations
type JWTManager struct {
	secret []byte
	expiry time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// GenerateServiceToken creates a token for an external integration
func (j *JWTManager) GenerateServiceToken(subject, scope string) (string, error) {
	now := time.Now()
	claims := &ServiceClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ValidateServiceToken parses and validates a service token
func (j *JWTManager) ValidateServiceToken(tokenString string) (*ServiceClaims, error) {
	claims := &ServiceClaims{}
	if err := j.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil {
		return nil, errors.New("token has no expiry")
	}
	return claims, nil
}

// SignStorage encodes a storage map into a signed token. Storage tokens do
// not expire; the values carry their own timestamps.
func (j *JWTManager) SignStorage(values map[string]string) (string, error) {
	if values == nil {
		values = map[string]string{}
	}
	claims := &StorageClaims{
		Values: values,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ParseStorage verifies a storage token and returns its values
func (j *JWTManager) ParseStorage(tokenString string) (map[string]string, error) {
	claims := &StorageClaims{}
	if err := j.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Values == nil {
		return map[string]string{}, nil
	}
	return claims.Values, nil
}

func (j *JWTManager) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}
