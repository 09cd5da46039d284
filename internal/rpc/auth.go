package rpc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/service"
)

// Claims is the bearer token payload. The subject is the caller's OpenID.
type Claims struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	LoginMethod string `json:"login_method,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies bearer tokens and resolves them to users.
type Authenticator struct {
	svc     *service.Service
	secret  []byte
	issuer  string
	metrics *Metrics
}

// NewAuthenticator creates an Authenticator for HMAC tokens signed with
// secret. An empty issuer disables the issuer check.
func NewAuthenticator(svc *service.Service, secret, issuer string) *Authenticator {
	return &Authenticator{svc: svc, secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates a raw token.
func (a *Authenticator) Verify(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// caller's user ID in the request context.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			a.observe(false)
			abort(c, http.StatusUnauthorized, CodeUnauthenticated, "missing or invalid token")
			return
		}

		claims, err := a.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			a.observe(false)
			abort(c, http.StatusUnauthorized, CodeUnauthenticated, "invalid token")
			return
		}

		user, err := a.svc.EnsureUser(c.Request.Context(), model.User{
			OpenID:      claims.Subject,
			Name:        claims.Name,
			Email:       claims.Email,
			LoginMethod: claims.LoginMethod,
		})
		if err != nil {
			a.observe(false)
			failure(c, err)
			c.Abort()
			return
		}

		a.observe(true)
		c.Set("user_id", user.ID)
		c.Request = c.Request.WithContext(service.WithUser(c.Request.Context(), user.ID))
		c.Next()
	}
}

func (a *Authenticator) observe(ok bool) {
	if a.metrics != nil {
		a.metrics.observeAuth(ok)
	}
}

// IssueToken signs a token for openID valid for ttl.
func IssueToken(secret, issuer, openID, name, email string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret must not be empty")
	}
	if openID == "" {
		return "", errors.New("open id must not be empty")
	}

	now := time.Now()
	claims := Claims{
		Name:        name,
		Email:       email,
		LoginMethod: "token",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   openID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
