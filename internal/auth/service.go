// Package auth は従業員登録、ログイン、アクセストークンの発行と検証を提供する。
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/attendman/internal/model"
	"github.com/hitoshi/attendman/internal/repository"
	"github.com/hitoshi/attendman/internal/security"
)

// ログイン方式のメトリクスラベル
const (
	methodID    = "id"
	methodFace  = "face"
	methodAdmin = "admin"
)

// Config は認証サービスの設定。
// 起動時にconfig.Configから構築し、以降は変更しない。
type Config struct {
	TokenTTL      time.Duration
	AdminTokenTTL time.Duration
	AdminUsername string
	AdminPassword string
	BcryptCost    int
}

// LoginRecorder はログイン試行を記録するインターフェース。
type LoginRecorder interface {
	RecordLogin(method, result string)
}

// RegisterInput は従業員登録の入力。
type RegisterInput struct {
	Name        string
	Email       string
	EmployeeID  string
	LoginMethod model.LoginMethod
	Password    string
	FaceData    string
}

// LoginResult はログイン成功時に返すトークンと主体。
// 管理者ログインの場合Employeeはnil。
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  model.Identity
	Employee  *model.Employee
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	employees repository.EmployeeRepository
	tokens    *TokenManager
	faces     FaceMatcher
	sanitizer security.TextSanitizer
	recorder  LoginRecorder
	config    Config
	now       func() time.Time
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(
	employees repository.EmployeeRepository,
	tokens *TokenManager,
	faces FaceMatcher,
	sanitizer security.TextSanitizer,
	recorder LoginRecorder,
	config Config,
) *Service {
	return &Service{
		employees: employees,
		tokens:    tokens,
		faces:     faces,
		sanitizer: sanitizer,
		recorder:  recorder,
		config:    config,
		now:       time.Now,
	}
}

// Register は従業員を登録し、ログイン済みのトークンを返す。
// ID方式ではパスワードをbcryptでハッシュ化し、顔方式では画像とそのダイジェストを保存する。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*LoginResult, error) {
	name := s.sanitizer.Sanitize(in.Name)
	if name == "" {
		return nil, model.NewInvalidRequestError("name is required")
	}

	now := s.now().UTC()
	e := &model.Employee{
		ID:           uuid.New().String(),
		EmployeeID:   strings.TrimSpace(in.EmployeeID),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		LoginMethod:  in.LoginMethod,
		Role:         model.RoleEmployee,
		IsActive:     true,
		RegisteredAt: now,
		UpdatedAt:    now,
	}

	switch in.LoginMethod {
	case model.LoginMethodID:
		if in.Password == "" {
			return nil, model.NewInvalidRequestError("password is required for id login")
		}
		hash, err := HashPassword(in.Password, s.config.BcryptCost)
		if err != nil {
			return nil, err
		}
		e.PasswordHash = hash
	case model.LoginMethodFace:
		if err := security.ValidateFaceImage(in.FaceData); err != nil {
			return nil, model.NewInvalidRequestError(err.Error())
		}
		e.FaceData = in.FaceData
		e.FaceDigest = FaceDigest(in.FaceData)
	default:
		return nil, model.NewInvalidRequestError(fmt.Sprintf("unknown login method: %s", in.LoginMethod))
	}

	if err := s.employees.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmployee) {
			return nil, model.NewEmployeeExistsError()
		}
		return nil, model.NewStorageUnavailableError(err)
	}

	slog.Info("employee registered",
		slog.String("employee_id", e.EmployeeID),
		slog.String("login_method", string(e.LoginMethod)),
	)

	return s.issueForEmployee(e)
}

// LoginWithPassword は従業員IDとパスワードで認証する。
// 未登録・無効化済み・パスワード不一致はすべて同じエラーを返す。
func (s *Service) LoginWithPassword(ctx context.Context, employeeID, password string) (*LoginResult, error) {
	e, err := s.employees.FindByEmployeeID(ctx, strings.TrimSpace(employeeID))
	if err != nil {
		return nil, model.NewStorageUnavailableError(err)
	}
	if e == nil || !e.IsActive {
		s.recordLogin(methodID, "failure")
		slog.Warn("login failed", slog.String("method", methodID), slog.String("reason", "unknown or inactive"))
		return nil, model.NewInvalidCredentialsError()
	}
	if e.LoginMethod != model.LoginMethodID || e.PasswordHash == "" {
		s.recordLogin(methodID, "failure")
		return nil, model.NewWrongLoginMethodError(e.LoginMethod)
	}
	if !ComparePassword(e.PasswordHash, password) {
		s.recordLogin(methodID, "failure")
		slog.Warn("login failed",
			slog.String("method", methodID),
			slog.String("employee_id", e.EmployeeID),
			slog.String("reason", "password mismatch"),
		)
		return nil, model.NewInvalidCredentialsError()
	}

	s.recordLogin(methodID, "success")
	return s.issueForEmployee(e)
}

// LoginWithFace は顔画像で認証する。
func (s *Service) LoginWithFace(ctx context.Context, faceData string) (*LoginResult, error) {
	employeeID, err := s.faces.Match(ctx, faceData)
	if err != nil {
		return nil, model.NewStorageUnavailableError(err)
	}
	if employeeID == "" {
		s.recordLogin(methodFace, "failure")
		slog.Warn("login failed", slog.String("method", methodFace), slog.String("reason", "no match"))
		return nil, model.NewFaceNotRecognizedError()
	}

	e, err := s.employees.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, model.NewStorageUnavailableError(err)
	}
	if e == nil || !e.IsActive || e.LoginMethod != model.LoginMethodFace {
		s.recordLogin(methodFace, "failure")
		return nil, model.NewFaceNotRecognizedError()
	}

	s.recordLogin(methodFace, "success")
	return s.issueForEmployee(e)
}

// AdminLogin は設定された管理者資格情報で認証する。
// 比較は定数時間で行う。
func (s *Service) AdminLogin(_ context.Context, username, password string) (*LoginResult, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.config.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.config.AdminPassword)) == 1
	if !userOK || !passOK || s.config.AdminPassword == "" {
		s.recordLogin(methodAdmin, "failure")
		slog.Warn("admin login failed", slog.String("username", username))
		return nil, model.NewInvalidCredentialsError()
	}

	identity := model.Identity{Subject: s.config.AdminUsername, Role: model.RoleAdmin}
	token, expiresAt, err := s.tokens.Issue(identity, s.config.AdminTokenTTL)
	if err != nil {
		return nil, err
	}

	s.recordLogin(methodAdmin, "success")
	slog.Info("admin logged in", slog.String("username", username))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Identity: identity}, nil
}

// Authenticate はアクセストークンを検証して主体を返す。
func (s *Service) Authenticate(token string) (model.Identity, error) {
	return s.tokens.Verify(token)
}

func (s *Service) issueForEmployee(e *model.Employee) (*LoginResult, error) {
	identity := model.Identity{Subject: e.ID, EmployeeID: e.EmployeeID, Role: e.Role}
	token, expiresAt, err := s.tokens.Issue(identity, s.config.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Identity: identity, Employee: e}, nil
}

func (s *Service) recordLogin(method, result string) {
	if s.recorder != nil {
		s.recorder.RecordLogin(method, result)
	}
}
