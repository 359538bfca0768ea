package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrInvalidClaims = errors.New("invalid token claims")

type Service interface {
	GenerateAccessToken(profile employee.Profile) (token string, expiresAt int64, err error)
	// ActorFromClaims rebuilds the caller from a verified access token.
	ActorFromClaims(claims map[string]interface{}) (employee.Actor, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
	now                   func() time.Time
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	exp, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration %q: %w", accessTokenExpirationTime, err)
	}
	return &JWTService{
		accessTokenExpiration: exp,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                   time.Now,
	}, nil
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(profile employee.Profile) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"sub":          profile.ID,
		"employee_id":  profile.ID,
		"username":     profile.Username,
		"access_level": int(profile.AccessLevel),
		"active":       profile.Active,
		"type":         "access",
		"exp":          expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) ActorFromClaims(claims map[string]interface{}) (employee.Actor, error) {
	if t, _ := claims["type"].(string); t != "access" {
		return employee.Actor{}, ErrInvalidClaims
	}

	id, ok := claims["employee_id"].(string)
	if !ok || id == "" {
		return employee.Actor{}, ErrInvalidClaims
	}

	// JSON numbers decode as float64
	var level employee.AccessLevel
	switch v := claims["access_level"].(type) {
	case float64:
		level = employee.AccessLevel(v)
	case int:
		level = employee.AccessLevel(v)
	case int64:
		level = employee.AccessLevel(v)
	default:
		return employee.Actor{}, ErrInvalidClaims
	}
	if !level.Valid() {
		return employee.Actor{}, ErrInvalidClaims
	}

	active, _ := claims["active"].(bool)
	return employee.Actor{EmployeeID: id, Level: level, Active: active}, nil
}
