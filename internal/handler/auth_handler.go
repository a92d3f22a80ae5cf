package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/attendman/internal/auth"
	"github.com/hitoshi/attendman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.LoginResult, error)
	LoginWithPassword(ctx context.Context, employeeID, password string) (*auth.LoginResult, error)
	LoginWithFace(ctx context.Context, faceData string) (*auth.LoginResult, error)
	AdminLogin(ctx context.Context, username, password string) (*auth.LoginResult, error)
}

// AuthHandler は登録とログインのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// registerRequest は従業員登録リクエストのボディ。
type registerRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=254"`
	EmployeeID  string `json:"employeeId" validate:"required,max=64"`
	LoginMethod string `json:"loginMethod" validate:"required,oneof=id face"`
	Password    string `json:"password" validate:"required_if=LoginMethod id,max=72"`
	FaceData    string `json:"faceData" validate:"required_if=LoginMethod face"`
}

type idLoginRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type faceLoginRequest struct {
	FaceData string `json:"faceData" validate:"required"`
}

type adminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// employeeResponse は従業員情報のAPIレスポンス。パスワードハッシュと顔データは含めない。
type employeeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	EmployeeID  string `json:"employeeId"`
	LoginMethod string `json:"loginMethod"`
	Role        string `json:"role"`
}

type adminUserResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      any       `json:"user"`
}

// Register は従業員登録を処理する。
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		handleServiceError(w, apiErr)
		return
	}

	result, err := h.service.Register(r.Context(), auth.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		EmployeeID:  req.EmployeeID,
		LoginMethod: model.LoginMethod(req.LoginMethod),
		Password:    req.Password,
		FaceData:    req.FaceData,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLoginResponse("登録が完了しました。", result))
}

// LoginWithID は従業員IDとパスワードによるログインを処理する。
// POST /api/auth/login/id
func (h *AuthHandler) LoginWithID(w http.ResponseWriter, r *http.Request) {
	var req idLoginRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		handleServiceError(w, apiErr)
		return
	}

	result, err := h.service.LoginWithPassword(r.Context(), req.EmployeeID, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLoginResponse("ログインしました。", result))
}

// LoginWithFace は顔画像によるログインを処理する。
// POST /api/auth/login/face
func (h *AuthHandler) LoginWithFace(w http.ResponseWriter, r *http.Request) {
	var req faceLoginRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		handleServiceError(w, apiErr)
		return
	}

	result, err := h.service.LoginWithFace(r.Context(), req.FaceData)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLoginResponse("ログインしました。", result))
}

// AdminLogin は管理者ログインを処理する。
// POST /api/auth/admin/login
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		handleServiceError(w, apiErr)
		return
	}

	result, err := h.service.AdminLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLoginResponse("管理者としてログインしました。", result))
}

func toLoginResponse(message string, result *auth.LoginResult) loginResponse {
	resp := loginResponse{
		Message:   message,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}
	if result.Employee != nil {
		resp.User = toEmployeeResponse(result.Employee)
	} else {
		resp.User = adminUserResponse{Username: result.Identity.Subject, Role: string(result.Identity.Role)}
	}
	return resp
}

func toEmployeeResponse(e *model.Employee) employeeResponse {
	return employeeResponse{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		EmployeeID:  e.EmployeeID,
		LoginMethod: string(e.LoginMethod),
		Role:        string(e.Role),
	}
}
