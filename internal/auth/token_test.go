package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/hitoshi/attendman/internal/model"
)

func TestTokenManager_IssueAndVerify_Employee(t *testing.T) {
	m := NewTokenManager("test-secret")
	identity := model.Identity{Subject: "uuid-1", EmployeeID: "EMP001", Role: model.RoleEmployee}

	token, expiresAt, err := m.Issue(identity, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("expiresAt = %v, want future", expiresAt)
	}

	got, err := m.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != identity {
		t.Errorf("identity = %+v, want %+v", got, identity)
	}
}

func TestTokenManager_IssueAndVerify_Admin(t *testing.T) {
	m := NewTokenManager("test-secret")

	token, _, err := m.Issue(model.Identity{Subject: "admin", Role: model.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := m.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsAdmin() || got.EmployeeID != "" {
		t.Errorf("identity = %+v, want admin without employee ID", got)
	}
}

// 期限切れトークンは拒否されることを検証する
func TestTokenManager_Verify_Expired(t *testing.T) {
	m := NewTokenManager("test-secret")
	m.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	token, _, err := m.Issue(model.Identity{Subject: "uuid-1", EmployeeID: "EMP001", Role: model.RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

// 別の秘密鍵で署名されたトークンは拒否されることを検証する
func TestTokenManager_Verify_WrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a").Issue(model.Identity{Subject: "admin", Role: model.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := NewTokenManager("secret-b").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

// alg=none のトークンは拒否されることを検証する
func TestTokenManager_Verify_NoneAlgorithm(t *testing.T) {
	claims := Claims{Role: model.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := NewTokenManager("test-secret").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenManager_Verify_RejectsMalformedClaims(t *testing.T) {
	m := NewTokenManager("test-secret")

	tests := []struct {
		name     string
		identity model.Identity
	}{
		{"従業員IDのない従業員トークン", model.Identity{Subject: "uuid-1", Role: model.RoleEmployee}},
		{"未知のロール", model.Identity{Subject: "uuid-1", EmployeeID: "EMP001", Role: model.Role("root")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _, err := m.Issue(tt.identity, time.Hour)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokenManager_Verify_Garbage(t *testing.T) {
	m := NewTokenManager("test-secret")
	for _, token := range []string{"", "abc", strings.Repeat("x.", 3)} {
		if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) err = %v, want ErrInvalidToken", token, err)
		}
	}
}
