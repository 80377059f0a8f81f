package jwt

import (
	"time"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Claims is the subset of token claims the payroll API reads.
type Claims struct {
	UserID  string
	IsAdmin bool
}

type Service interface {
	GenerateAccessToken(userID string, isAdmin bool) (token string, expiresAt int64, err error)
	ParseClaims(claims map[string]interface{}) (Claims, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateAccessToken issues the token the payroll API expects. Tokens are
// normally issued by the salon's identity service; this is used by tooling
// and tests.
func (j *JWTService) GenerateAccessToken(userID string, isAdmin bool) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":  userID,
		"is_admin": isAdmin,
		"type":     "access",
		"exp":      expiresAt,
	})
	return tokenString, expiresAt, err
}

// ParseClaims reads the payroll claims out of a verified token's claim map.
func (j *JWTService) ParseClaims(claims map[string]interface{}) (Claims, error) {
	if tokenType, ok := claims["type"].(string); ok && tokenType != "access" {
		return Claims{}, auth.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Claims{}, auth.ErrInvalidToken
	}

	isAdmin, _ := claims["is_admin"].(bool)
	return Claims{UserID: userID, IsAdmin: isAdmin}, nil
}
