package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/attendman/internal/attendance"
	"github.com/hitoshi/attendman/internal/auth"
	"github.com/hitoshi/attendman/internal/backup"
	"github.com/hitoshi/attendman/internal/config"
	"github.com/hitoshi/attendman/internal/database"
	"github.com/hitoshi/attendman/internal/employee"
	"github.com/hitoshi/attendman/internal/handler"
	"github.com/hitoshi/attendman/internal/logger"
	"github.com/hitoshi/attendman/internal/metrics"
	"github.com/hitoshi/attendman/internal/middleware"
	"github.com/hitoshi/attendman/internal/report"
	"github.com/hitoshi/attendman/internal/repository"
	"github.com/hitoshi/attendman/internal/security"
)

const (
	defaultHealthcheckPort = "5000"
	dbPingTimeout          = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
)

// Init はアプリケーションの初期化を行う。
// .envと環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. .envファイルと環境変数から設定を読み込む
	if err := config.LoadEnvFile(os.Getenv("ENV_FILE")); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. LOG_LEVELを反映する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = defaultHealthcheckPort
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	switch cmd {
	case CommandMigrate:
		action, ok := ParseMigrateAction(args)
		if !ok {
			return fmt.Errorf("unknown migrate action %q (want up, down or version)", args[1])
		}
		return runMigrate(w, cfg, action)
	default:
		return runServe(cfg)
	}
}

// storage はバックエンドごとのリポジトリと疎通確認をまとめたもの。
type storage struct {
	employees  repository.EmployeeRepository
	attendance repository.AttendanceRepository
	health     handler.HealthChecker
	close      func() error
}

// openStorage はSTORAGE_BACKENDに応じてリポジトリを構築する。
// postgresの場合は接続を確認し、未適用のマイグレーションを適用する。
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.StorageBackend == config.StorageBackendMemory {
		slog.Warn("using in-memory storage; data is lost on restart")
		return &storage{
			employees:  repository.NewMemoryEmployeeRepo(),
			attendance: repository.NewMemoryAttendanceRepo(),
			close:      func() error { return nil },
		}, nil
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.PingWithRetry(ctx, db, database.DefaultRetryConfig()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("database connection established",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &storage{
		employees:  repository.NewPostgresEmployeeRepo(db),
		attendance: repository.NewPostgresAttendanceRepo(db),
		health:     dbHealthChecker(db),
		close:      db.Close,
	}, nil
}

func dbHealthChecker(db *sql.DB) handler.HealthChecker {
	return handler.HealthCheckerFunc(func(ctx context.Context) error {
		return database.Ping(ctx, db, dbPingTimeout)
	})
}

// newServer はストレージ上に全サービスをワイヤリングし、HTTPハンドラーを構築する。
// 返されるRateLimiterはシャットダウン時にStopすること。
func newServer(cfg *config.Config, store *storage, reg *prometheus.Registry) (http.Handler, *middleware.RateLimiter) {
	collector := metrics.NewCollector(reg)

	// ドメインサービスの初期化
	authService := auth.NewService(
		store.employees,
		auth.NewTokenManager(cfg.JWTSecret),
		auth.NewDigestFaceMatcher(store.employees),
		security.NewTextSanitizer(),
		collector,
		auth.Config{
			TokenTTL:      cfg.TokenTTL,
			AdminTokenTTL: cfg.AdminTokenTTL,
			AdminUsername: cfg.AdminUsername,
			AdminPassword: cfg.AdminPassword,
			BcryptCost:    cfg.BcryptCost,
		},
	)
	attendanceService := attendance.NewService(store.attendance, collector, attendance.Config{
		HistoryDefaultLimit: cfg.HistoryDefaultLimit,
		HistoryMaxLimit:     cfg.HistoryMaxLimit,
	})
	employeeService := employee.NewService(store.employees)
	reportService := report.NewService(employeeService, attendanceService, collector)
	exporter := backup.NewExporter(employeeService, attendanceService)

	limiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitLogin),
	)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		Authenticator:     authService,
		StatusRecorder:    collector,
		RateLimiter:       limiter,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		MaxBodyBytes:      cfg.MaxBodyBytes,

		AuthService:       authService,
		AttendanceService: attendanceService,
		EmployeeDirectory: employeeService,
		ReportService:     reportService,
		BackupExporter:    exporter,
		HealthChecker:     store.health,
		MetricsHandler:    metrics.Handler(reg),
	})

	return router, limiter
}

// runServe はAPIサーバーモードで起動する。
// ストレージを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	store, err := openStorage(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer store.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router, limiter := newServer(cfg, store, reg)
	defer limiter.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-stop:
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// upは未適用のマイグレーションを順番に適用し、downは直近の1つを戻す。
func runMigrate(w io.Writer, cfg *config.Config, action MigrateAction) error {
	if cfg.StorageBackend != config.StorageBackendPostgres {
		return fmt.Errorf("migrate requires STORAGE_BACKEND=%s", config.StorageBackendPostgres)
	}

	slog.Info("running database migrations",
		slog.String("action", string(action)),
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	switch action {
	case MigrateDown:
		if err := database.RollbackMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
	case MigrateVersion:
		version, dirty, err := database.MigrationVersion(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to read migration version: %w", err)
		}
		if w == nil {
			w = os.Stdout
		}
		fmt.Fprintf(w, "version=%d dirty=%t\n", version, dirty)
		return nil
	default:
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /api/health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	return checkHealth(fmt.Sprintf("http://localhost:%s/api/health", port))
}

func checkHealth(url string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
