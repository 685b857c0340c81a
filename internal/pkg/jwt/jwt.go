package jwt

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeStream = "stream"

	streamTokenTTL = 5 * time.Minute
)

// Service issues and checks the tokens the API accepts. Logins happen in the
// identity service; this service only needs to mint tokens for tooling and
// tests and to hand out short-lived stream tokens.
type Service interface {
	GenerateAccessToken(userID string, employeeID *string, role user.Role) (token string, expiresAt int64, err error)
	GenerateStreamToken(actor user.Actor) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (user.Actor, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	expiration, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("parse access token expiration: %w", err)
	}
	return &JWTService{
		accessTokenExpiration: expiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}, nil
}

func (j *JWTService) GenerateAccessToken(userID string, employeeID *string, role user.Role) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"user_id":     userID,
		"employee_id": valueOrNil(employeeID),
		"role":        string(role),
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// GenerateStreamToken issues a short-lived token for the notification stream.
// EventSource clients cannot set headers, so it travels in the query string.
func (j *JWTService) GenerateStreamToken(actor user.Actor) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(streamTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":     actor.UserID,
		"employee_id": actor.EmployeeID,
		"role":        string(actor.Role),
		"type":        TokenTypeStream,
		"exp":         expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(streamTokenTTL.Seconds()), nil
}

// ValidateStreamToken checks a stream token and returns the actor it was issued to.
func (j *JWTService) ValidateStreamToken(tokenString string) (user.Actor, error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return user.Actor{}, err
	}

	claims := token.PrivateClaims()
	if claims["type"] != TokenTypeStream {
		return user.Actor{}, jwt.ErrInvalidJWT()
	}

	return ActorFromClaims(claims)
}

// ActorFromClaims builds the request actor from verified token claims.
func ActorFromClaims(claims map[string]interface{}) (user.Actor, error) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Actor{}, fmt.Errorf("missing user_id claim")
	}

	roleStr, _ := claims["role"].(string)
	role, err := user.ParseRole(roleStr)
	if err != nil {
		return user.Actor{}, err
	}

	employeeID, _ := claims["employee_id"].(string)

	return user.Actor{UserID: userID, EmployeeID: employeeID, Role: role}, nil
}

func valueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
