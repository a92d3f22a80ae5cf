package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/hitoshi/attendman/internal/model"
)

// ErrInvalidToken はトークンの署名・形式・有効期限のいずれかが不正な場合に返る。
var ErrInvalidToken = errors.New("invalid token")

// Claims はアクセストークンのペイロード。
type Claims struct {
	EmployeeID string     `json:"employeeId,omitempty"`
	Role       model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager はHS256署名のアクセストークンを発行・検証する。
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager はTokenManagerを生成する。
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// Issue は主体のトークンを発行し、トークン文字列と有効期限を返す。
func (m *TokenManager) Issue(identity model.Identity, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		EmployeeID: identity.EmployeeID,
		Role:       identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify はトークンを検証して主体を返す。
// HS256以外の署名方式は拒否する。
func (m *TokenManager) Verify(tokenString string) (model.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return model.Identity{}, ErrInvalidToken
	}

	switch claims.Role {
	case model.RoleEmployee:
		if claims.EmployeeID == "" {
			return model.Identity{}, ErrInvalidToken
		}
	case model.RoleAdmin:
	default:
		return model.Identity{}, ErrInvalidToken
	}

	return model.Identity{
		Subject:    claims.Subject,
		EmployeeID: claims.EmployeeID,
		Role:       claims.Role,
	}, nil
}
