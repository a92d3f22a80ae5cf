// Package backup は従業員と勤怠記録のスナップショットを生成する。
package backup

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/attendman/internal/model"
)

// FormatVersion はスナップショット形式のバージョン。
const FormatVersion = "1.0"

// EmployeeSource は全従業員を取得するインターフェース。
type EmployeeSource interface {
	ListAll(ctx context.Context) ([]*model.Employee, error)
}

// RecordSource は全勤怠記録を取得するインターフェース。
type RecordSource interface {
	ListAll(ctx context.Context) ([]*model.AttendanceRecord, error)
}

// Snapshot はバックアップの内容。
type Snapshot struct {
	Timestamp  time.Time
	Version    string
	Employees  []*model.Employee
	Attendance []*model.AttendanceRecord
}

// Exporter はスナップショットを生成する。
type Exporter struct {
	employees EmployeeSource
	records   RecordSource
	now       func() time.Time
}

// NewExporter はExporterを生成する。
func NewExporter(employees EmployeeSource, records RecordSource) *Exporter {
	return &Exporter{employees: employees, records: records, now: time.Now}
}

// Export は全従業員と全勤怠記録のスナップショットを返す。
// パスワードハッシュは含めない。
func (e *Exporter) Export(ctx context.Context) (*Snapshot, error) {
	employees, err := e.employees.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	records, err := e.records.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	redacted := make([]*model.Employee, 0, len(employees))
	for _, emp := range employees {
		c := *emp
		c.PasswordHash = ""
		redacted = append(redacted, &c)
	}

	snapshot := &Snapshot{
		Timestamp:  e.now().UTC(),
		Version:    FormatVersion,
		Employees:  redacted,
		Attendance: records,
	}
	slog.Info("backup exported",
		slog.Int("employees", len(snapshot.Employees)),
		slog.Int("records", len(snapshot.Attendance)),
	)
	return snapshot, nil
}
