package model

import (
	"testing"
	"time"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestMonthRange_ZeroPadded(t *testing.T) {
	start, end := MonthRange(2024, time.February)
	if start != "2024-02-01" {
		t.Errorf("start = %q, want %q", start, "2024-02-01")
	}
	if end != "2024-02-29" {
		t.Errorf("end = %q, want %q", end, "2024-02-29")
	}
}

func TestParseDate(t *testing.T) {
	valid := []string{"2024-01-01", "2024-02-29", "1999-12-31"}
	for _, s := range valid {
		if !IsValidDate(s) {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "2024-1-01", "2024-01-1", "2023-02-29", "2024/01/01", "2024-13-01", "2024-01-01T00:00:00Z"}
	for _, s := range invalid {
		if IsValidDate(s) {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestFormatDate_UsesUTC(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	// JSTの1月2日 05:00 はUTCでは1月1日
	tm := time.Date(2024, 1, 2, 5, 0, 0, 0, loc)
	if got := FormatDate(tm); got != "2024-01-01" {
		t.Errorf("FormatDate() = %q, want %q", got, "2024-01-01")
	}
}

func TestDateOf(t *testing.T) {
	if got := DateOf(2024, time.March, 5); got != "2024-03-05" {
		t.Errorf("DateOf() = %q, want %q", got, "2024-03-05")
	}
}
