package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker はデータストアの疎通確認インターフェース。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheckerFunc は関数をHealthCheckerとして扱うアダプター。
type HealthCheckerFunc func(ctx context.Context) error

// Ping はf(ctx)を呼び出す。
func (f HealthCheckerFunc) Ping(ctx context.Context) error { return f(ctx) }

type healthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHealthHandler はヘルスチェックのハンドラーを返す。
// checkerがnilの場合は常にOKを返す。データストアに到達できない場合は503。
func NewHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := checker.Ping(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{
					Status:    "UNAVAILABLE",
					Message:   "データストアに接続できません",
					Timestamp: now,
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{
			Status:    "OK",
			Message:   "Attendance System API is running",
			Timestamp: now,
		})
	}
}
