// Package report は勤怠記録の日次・月次レポートとダッシュボード統計を集計する。
//
// Build* 関数は従業員のスナップショットと勤怠記録のみから結果を導出する純粋関数で、
// ストアへのアクセスは Service が担う。
package report

import (
	"fmt"
	"time"

	"github.com/hitoshi/attendman/internal/model"
)

// DailyEntry は日次レポートの従業員1人分の行。
type DailyEntry struct {
	EmployeeID   string
	Name         string
	Email        string
	Sessions     model.Sessions
	SessionCount int
	Status       model.DayStatus
}

// DailyReport は1日分の出勤状況。
type DailyReport struct {
	Date    string
	Entries []DailyEntry
}

// MonthlyEntry は月次レポートの従業員1人分の行。
// PresentDaysはフル出勤の日数のみを数え、部分出勤は出勤率に含めない。
type MonthlyEntry struct {
	EmployeeID           string
	Name                 string
	Email                string
	TotalDays            int
	PresentDays          int
	PartialDays          int
	AbsentDays           int
	AttendancePercentage string // 小数点以下2桁（例: "66.67"）
}

// MonthlyReport は1か月分の出勤集計。
type MonthlyReport struct {
	Year    int
	Month   time.Month
	Entries []MonthlyEntry
}

// DashboardStats は管理画面のサマリー。
type DashboardStats struct {
	TotalEmployees int
	PresentToday   int
	MonthAverage   string // 例: "45.16%"
	ComplianceRate string
}

// BuildDailyReport は従業員ごとに1行の日次レポートを生成する。
// 記録のない従業員は空の打刻と欠勤として含める。
func BuildDailyReport(date string, employees []*model.Employee, records []*model.AttendanceRecord) DailyReport {
	byEmployee := make(map[string]*model.AttendanceRecord, len(records))
	for _, r := range records {
		if r.Date == date {
			byEmployee[r.EmployeeID] = r
		}
	}

	entries := make([]DailyEntry, 0, len(employees))
	for _, e := range employees {
		r := byEmployee[e.EmployeeID]
		sessions := model.Sessions{}
		if r != nil {
			sessions = r.Clone().Sessions
		}
		entries = append(entries, DailyEntry{
			EmployeeID:   e.EmployeeID,
			Name:         e.Name,
			Email:        e.Email,
			Sessions:     sessions,
			SessionCount: r.SessionCount(),
			Status:       r.Status(),
		})
	}
	return DailyReport{Date: date, Entries: entries}
}

// BuildMonthlyReport は指定年月の従業員ごとの出勤日数を集計する。
// 月の日数は閏年を考慮して算出する。
func BuildMonthlyReport(year int, month time.Month, employees []*model.Employee, records []*model.AttendanceRecord) MonthlyReport {
	totalDays := model.DaysInMonth(year, month)

	// employeeID -> date -> record
	index := make(map[string]map[string]*model.AttendanceRecord)
	for _, r := range records {
		days, ok := index[r.EmployeeID]
		if !ok {
			days = make(map[string]*model.AttendanceRecord)
			index[r.EmployeeID] = days
		}
		days[r.Date] = r
	}

	entries := make([]MonthlyEntry, 0, len(employees))
	for _, e := range employees {
		entry := MonthlyEntry{
			EmployeeID: e.EmployeeID,
			Name:       e.Name,
			Email:      e.Email,
			TotalDays:  totalDays,
		}
		days := index[e.EmployeeID]
		for day := 1; day <= totalDays; day++ {
			switch days[model.DateOf(year, month, day)].Status() {
			case model.DayStatusFull:
				entry.PresentDays++
			case model.DayStatusPartial:
				entry.PartialDays++
			default:
				entry.AbsentDays++
			}
		}
		entry.AttendancePercentage = formatPercent(entry.PresentDays, totalDays)
		entries = append(entries, entry)
	}
	return MonthlyReport{Year: year, Month: month, Entries: entries}
}

// BuildDashboardStats は当日と当月の記録から管理画面のサマリーを算出する。
// totalEmployeesが0の場合、比率はいずれも "0%" とする。
func BuildDashboardStats(now time.Time, totalEmployees int, todayRecords, monthRecords []*model.AttendanceRecord) DashboardStats {
	now = now.UTC()
	today := model.FormatDate(now)
	monthStart, monthEnd := model.MonthRange(now.Year(), now.Month())
	month := model.DateRange{Start: monthStart, End: monthEnd}

	presentToday := 0
	for _, r := range todayRecords {
		if r.Date == today && r.Status() == model.DayStatusFull {
			presentToday++
		}
	}

	fullDays := 0
	for _, r := range monthRecords {
		if month.Contains(r.Date) && r.Status() == model.DayStatusFull {
			fullDays++
		}
	}

	stats := DashboardStats{
		TotalEmployees: totalEmployees,
		PresentToday:   presentToday,
		MonthAverage:   "0%",
		ComplianceRate: "0%",
	}
	if totalEmployees > 0 {
		daysInMonth := model.DaysInMonth(now.Year(), now.Month())
		stats.MonthAverage = formatPercent(fullDays, totalEmployees*daysInMonth) + "%"
		stats.ComplianceRate = formatPercent(presentToday, totalEmployees) + "%"
	}
	return stats
}

// formatPercent は n/d を百分率にして小数点以下2桁の文字列で返す。dが0以下なら "0.00"。
func formatPercent(n, d int) string {
	if d <= 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(n)/float64(d)*100)
}
