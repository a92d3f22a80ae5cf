package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// RetryConfig は起動時の接続確認のリトライ設定。
type RetryConfig struct {
	Attempts       int           // 最大試行回数（1以上）
	InitialBackoff time.Duration // 初回の待機時間
	MaxBackoff     time.Duration // 待機時間の上限
	PingTimeout    time.Duration // 1回あたりのPingタイムアウト
}

// DefaultRetryConfig はコンテナ起動順のずれを吸収する程度のリトライ設定を返す。
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:       5,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
		PingTimeout:    5 * time.Second,
	}
}

// CalculateBackoff は失敗回数に基づいて指数バックオフの待機時間を計算する。
// initialから2倍ずつ増加し、maxで頭打ちになる。
func CalculateBackoff(failures int, initial, max time.Duration) time.Duration {
	delay := initial
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay > max {
			return max
		}
	}
	return delay
}

// PingWithRetry は接続確認が成功するまで指数バックオフでリトライする。
// ctxがキャンセルされた場合は直ちに最後のエラーを返す。
func PingWithRetry(ctx context.Context, db *sql.DB, cfg RetryConfig) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if lastErr = Ping(ctx, db, cfg.PingTimeout); lastErr == nil {
			return nil
		}
		if attempt == cfg.Attempts-1 {
			break
		}

		delay := CalculateBackoff(attempt, cfg.InitialBackoff, cfg.MaxBackoff)
		slog.Warn("database not ready, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", delay),
			slog.String("error", lastErr.Error()),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("database ping canceled: %w", lastErr)
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("database not reachable after %d attempts: %w", cfg.Attempts, lastErr)
}
