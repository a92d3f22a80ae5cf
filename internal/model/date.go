package model

import (
	"fmt"
	"time"
)

// DateLayout は日付キーの正規形式。ゼロ埋めされ、辞書順比較が時系列順と一致する。
const DateLayout = "2006-01-02"

// FormatDate は時刻をUTCの日付キーに変換する。
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate は日付キーを検証してUTCの0時に変換する。
// ゼロ埋めされていない入力（例: 2024-2-1）は拒否する。
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if t.Format(DateLayout) != s {
		return time.Time{}, fmt.Errorf("invalid date %q: not in canonical form", s)
	}
	return t, nil
}

// IsValidDate は文字列が正規形の日付キーかを返す。
func IsValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// DaysInMonth は指定年月の日数を返す。閏年を考慮する。
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthRange は指定年月の初日と末日の日付キーを返す。
func MonthRange(year int, month time.Month) (start, end string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, month, DaysInMonth(year, month), 0, 0, 0, 0, time.UTC)
	return first.Format(DateLayout), last.Format(DateLayout)
}

// DateOf は年月日から日付キーを生成する。
func DateOf(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}
