package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Tomlord1122/portfolio-backend/internal/domain"
)

const issuer = "portfolio-backend"

// Claims defines the session token payload.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for id that expires after ttl.
func IssueToken(id domain.Identity, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(ttl)
	claims := Claims{
		UserID: id.UserID,
		Role:   string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseToken validates token and extracts its claims.
func ParseToken(token string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.UserID == "" {
		return nil, errors.New("identity: token without user id")
	}
	return claims, nil
}

// Identity converts claims to the caller identity. Unknown roles fall back to user.
func (c *Claims) Identity() domain.Identity {
	role := domain.RoleUser
	if domain.Role(c.Role) == domain.RoleAdmin {
		role = domain.RoleAdmin
	}
	return domain.Identity{UserID: c.UserID, Role: role}
}
