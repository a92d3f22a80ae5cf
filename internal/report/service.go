package report

import (
	"context"
	"strconv"
	"time"

	"github.com/hitoshi/attendman/internal/model"
)

// EmployeeLister は集計対象の従業員を取得するインターフェース。
type EmployeeLister interface {
	ListActive(ctx context.Context, role model.Role) ([]*model.Employee, error)
}

// RecordReader は勤怠記録を読み取るインターフェース。
type RecordReader interface {
	QueryByDate(ctx context.Context, date string) ([]*model.AttendanceRecord, error)
	QueryByDateRange(ctx context.Context, startDate, endDate string) ([]*model.AttendanceRecord, error)
}

// DurationRecorder は集計の所要時間を記録するインターフェース。
type DurationRecorder interface {
	RecordReportDuration(report string, duration time.Duration)
}

// Service はレポート集計のサービス層。
type Service struct {
	employees EmployeeLister
	records   RecordReader
	recorder  DurationRecorder
	now       func() time.Time
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(employees EmployeeLister, records RecordReader, recorder DurationRecorder) *Service {
	return &Service{
		employees: employees,
		records:   records,
		recorder:  recorder,
		now:       time.Now,
	}
}

// Daily は指定日の日次レポートを返す。dateが空の場合は当日（UTC）。
func (s *Service) Daily(ctx context.Context, date string) (DailyReport, error) {
	defer s.observe("daily", s.now())

	if date == "" {
		date = model.FormatDate(s.now())
	}
	if !model.IsValidDate(date) {
		return DailyReport{}, model.NewInvalidDateError(date)
	}

	employees, err := s.employees.ListActive(ctx, model.RoleEmployee)
	if err != nil {
		return DailyReport{}, err
	}
	records, err := s.records.QueryByDate(ctx, date)
	if err != nil {
		return DailyReport{}, err
	}
	return BuildDailyReport(date, employees, records), nil
}

// Monthly は指定年月の月次レポートを返す。
// year、monthが空の場合は当月（UTC）を対象とする。
func (s *Service) Monthly(ctx context.Context, year, month string) (MonthlyReport, error) {
	defer s.observe("monthly", s.now())

	y, m, err := parseYearMonth(year, month, s.now().UTC())
	if err != nil {
		return MonthlyReport{}, err
	}

	employees, err := s.employees.ListActive(ctx, model.RoleEmployee)
	if err != nil {
		return MonthlyReport{}, err
	}
	start, end := model.MonthRange(y, m)
	records, err := s.records.QueryByDateRange(ctx, start, end)
	if err != nil {
		return MonthlyReport{}, err
	}
	return BuildMonthlyReport(y, m, employees, records), nil
}

// Stats はダッシュボード統計を返す。
func (s *Service) Stats(ctx context.Context) (DashboardStats, error) {
	now := s.now().UTC()
	defer s.observe("stats", now)

	employees, err := s.employees.ListActive(ctx, model.RoleEmployee)
	if err != nil {
		return DashboardStats{}, err
	}
	todayRecords, err := s.records.QueryByDate(ctx, model.FormatDate(now))
	if err != nil {
		return DashboardStats{}, err
	}
	start, end := model.MonthRange(now.Year(), now.Month())
	monthRecords, err := s.records.QueryByDateRange(ctx, start, end)
	if err != nil {
		return DashboardStats{}, err
	}
	return BuildDashboardStats(now, len(employees), todayRecords, monthRecords), nil
}

func (s *Service) observe(report string, start time.Time) {
	if s.recorder != nil {
		s.recorder.RecordReportDuration(report, s.now().Sub(start))
	}
}

// parseYearMonth は年と月の文字列を検証する。空の場合はnowの年月を使う。
func parseYearMonth(year, month string, now time.Time) (int, time.Month, error) {
	y, m := now.Year(), int(now.Month())
	if year != "" {
		v, err := strconv.Atoi(year)
		if err != nil || v < 1 || v > 9999 {
			return 0, 0, model.NewInvalidMonthError(year, month)
		}
		y = v
	}
	if month != "" {
		v, err := strconv.Atoi(month)
		if err != nil || v < 1 || v > 12 {
			return 0, 0, model.NewInvalidMonthError(year, month)
		}
		m = v
	}
	return y, time.Month(m), nil
}
