// Package repository はデータ永続化のインターフェースと実装を提供する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/attendman/internal/model"
)

var (
	// ErrDuplicateEmployee は従業員IDまたはメールアドレスが登録済みの場合に返る。
	ErrDuplicateEmployee = errors.New("employee already exists")

	// ErrSessionAlreadyMarked は指定枠が既に打刻済みの場合に返る。
	ErrSessionAlreadyMarked = errors.New("session already marked")
)

// EmployeeRepository は従業員データの永続化インターフェース。
type EmployeeRepository interface {
	// Create は従業員を作成する。
	// 従業員IDまたはメールアドレスが重複する場合はErrDuplicateEmployeeを返す。
	Create(ctx context.Context, employee *model.Employee) error

	// FindByEmployeeID は社員番号で従業員を取得する。見つからない場合はnilを返す。
	FindByEmployeeID(ctx context.Context, employeeID string) (*model.Employee, error)

	// FindByFaceDigest は顔データのダイジェストで従業員を取得する。見つからない場合はnilを返す。
	FindByFaceDigest(ctx context.Context, digest string) (*model.Employee, error)

	// List は条件に一致する従業員を登録日時の降順で返す。
	List(ctx context.Context, filter model.EmployeeFilter) ([]*model.Employee, error)
}

// AttendanceRepository は勤怠記録の永続化インターフェース。
// (employeeID, date) ごとに記録は最大1件。
type AttendanceRepository interface {
	// MarkSession は指定枠に打刻する。記録がなければ作成する。
	// 枠が打刻済みの場合は既存の時刻を変更せずErrSessionAlreadyMarkedを返す。
	// 同時に呼び出されても同じ枠への打刻が成功するのは1回だけ。
	MarkSession(ctx context.Context, employeeID, date string, slot model.SessionSlot, at time.Time) (*model.AttendanceRecord, error)

	// FindByEmployeeAndDate は1日分の記録を取得する。見つからない場合はnilを返す。
	FindByEmployeeAndDate(ctx context.Context, employeeID, date string) (*model.AttendanceRecord, error)

	// ListByEmployee は従業員の記録を日付の降順で返す。limitが0以下の場合は件数制限なし。
	ListByEmployee(ctx context.Context, employeeID string, dateRange model.DateRange, limit int) ([]*model.AttendanceRecord, error)

	// ListByDate は指定日の全従業員の記録を返す。
	ListByDate(ctx context.Context, date string) ([]*model.AttendanceRecord, error)

	// ListByDateRange は期間内（両端を含む）の全記録を日付の昇順で返す。
	ListByDateRange(ctx context.Context, dateRange model.DateRange) ([]*model.AttendanceRecord, error)

	// ListAll は全記録を日付の降順で返す。バックアップ用。
	ListAll(ctx context.Context) ([]*model.AttendanceRecord, error)
}
