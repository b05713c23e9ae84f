package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/ahmedtelkodsh/geniussmart/core"
)

// Roles
const (
	RoleManager = "manager"
	RoleTeacher = "teacher"
)

const (
	tokenContextKey = "userToken"
	tokenAudience   = "Genius Smart"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

func (c Claims) Session() core.Session {
	return core.Session{ID: c.Subject, Name: c.Name, Role: c.Role}
}

func IsRole(role string) bool {
	return role == RoleManager || role == RoleTeacher
}

// NewClaims returns the claims of a token valid for conf.Server.JWTExpirationDelta.
func NewClaims(conf *core.Config, subject, name, email, role string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   subject,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:  name,
		Email: email,
		Role:  role,
	}
}

func jwtConfig(secretKey string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	if !IsRole(claims.Role) {
		return "", core.NewArgumentError("invalid role: " + claims.Role)
	}
	conf := jwtConfig(secretKey)
	token := jwt.NewWithClaims(jwt.GetSigningMethod(conf.SigningMethod), claims)

	ss, err := token.SignedString(conf.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
