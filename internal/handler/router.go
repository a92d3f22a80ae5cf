package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/attendman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Authenticator     middleware.TokenAuthenticator
	StatusRecorder    middleware.StatusRecorder
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string
	MaxBodyBytes      int64

	// サービス
	AuthService       AuthServiceInterface
	AttendanceService AttendanceServiceInterface
	EmployeeDirectory EmployeeDirectoryInterface
	ReportService     ReportServiceInterface
	BackupExporter    BackupExporterInterface
	HealthChecker     HealthChecker

	// MetricsHandler は/metricsで公開するハンドラー。nilの場合はルートを登録しない。
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS → BodyLimit
//
// 認証が必要なルートはさらに Auth → RateLimit(General) を通り、
// 管理者ルートは RequireAdmin を追加する。ログイン系ルートはIP単位のレート制限を通る。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewBodyLimitMiddleware(deps.MaxBodyBytes))

	authHandler := NewAuthHandler(deps.AuthService)
	attendanceHandler := NewAttendanceHandler(deps.AttendanceService)
	adminHandler := NewAdminHandler(deps.EmployeeDirectory, deps.ReportService, deps.BackupExporter)

	// --- 認証不要のルート ---

	r.Get("/api/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(deps.RateLimiter.LoginMiddleware())

		r.Post("/register", authHandler.Register)
		r.Post("/login/id", authHandler.LoginWithID)
		r.Post("/login/face", authHandler.LoginWithFace)
		r.Post("/admin/login", authHandler.AdminLogin)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Authenticator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 従業員本人の打刻
		r.Route("/api/attendance", func(r chi.Router) {
			r.Post("/mark", attendanceHandler.Mark)
			r.Get("/history", attendanceHandler.History)
			r.Get("/today", attendanceHandler.Today)
		})

		// 管理者
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/users", adminHandler.ListUsers)
			r.Get("/attendance/daily", adminHandler.DailyReport)
			r.Get("/attendance/monthly", adminHandler.MonthlyReport)
			r.Get("/stats", adminHandler.Stats)
			r.Get("/backup", adminHandler.Backup)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Route not found"})
	})

	return r
}
