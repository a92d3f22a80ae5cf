// Command attendman は従業員の勤怠打刻APIサーバー。
//
// 使い方:
//
//	attendman [serve]              APIサーバーを起動する
//	attendman migrate [up|down|version]
//	attendman healthcheck          Dockerヘルスチェック用
package main

import (
	"log/slog"
	"os"

	"github.com/hitoshi/attendman/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
