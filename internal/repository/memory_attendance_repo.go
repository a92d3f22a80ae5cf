package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/attendman/internal/model"
)

type attendanceKey struct {
	employeeID string
	date       string
}

// MemoryAttendanceRepo はプロセス内メモリを使用した勤怠記録リポジトリ。
// 打刻の存在確認と書き込みは単一のロック区間で行う。返す値はすべてコピー。
type MemoryAttendanceRepo struct {
	mu      sync.RWMutex
	records map[attendanceKey]*model.AttendanceRecord
}

// NewMemoryAttendanceRepo はMemoryAttendanceRepoを生成する。
func NewMemoryAttendanceRepo() *MemoryAttendanceRepo {
	return &MemoryAttendanceRepo{records: make(map[attendanceKey]*model.AttendanceRecord)}
}

// MarkSession は指定枠に打刻する。
func (r *MemoryAttendanceRepo) MarkSession(
	_ context.Context,
	employeeID, date string,
	slot model.SessionSlot,
	at time.Time,
) (*model.AttendanceRecord, error) {
	if _, ok := slotColumns[slot]; !ok {
		return nil, fmt.Errorf("unknown session slot: %q", slot)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := attendanceKey{employeeID: employeeID, date: date}
	record, ok := r.records[key]
	if !ok {
		record = &model.AttendanceRecord{
			ID:         uuid.New().String(),
			EmployeeID: employeeID,
			Date:       date,
			Sessions:   make(model.Sessions, model.SlotsPerDay),
			CreatedAt:  at,
			UpdatedAt:  at,
		}
		r.records[key] = record
	}

	if record.HasSession(slot) {
		return nil, ErrSessionAlreadyMarked
	}
	record.Sessions[slot] = at
	record.UpdatedAt = at

	return record.Clone(), nil
}

// FindByEmployeeAndDate は1日分の記録を取得する。見つからない場合はnilを返す。
func (r *MemoryAttendanceRepo) FindByEmployeeAndDate(_ context.Context, employeeID, date string) (*model.AttendanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.records[attendanceKey{employeeID: employeeID, date: date}].Clone(), nil
}

// ListByEmployee は従業員の記録を日付の降順で返す。
func (r *MemoryAttendanceRepo) ListByEmployee(
	_ context.Context,
	employeeID string,
	dateRange model.DateRange,
	limit int,
) ([]*model.AttendanceRecord, error) {
	records := r.filter(func(rec *model.AttendanceRecord) bool {
		return rec.EmployeeID == employeeID && dateRange.Contains(rec.Date)
	})
	sort.Slice(records, func(i, j int) bool { return records[i].Date > records[j].Date })

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// ListByDate は指定日の全従業員の記録を返す。
func (r *MemoryAttendanceRepo) ListByDate(_ context.Context, date string) ([]*model.AttendanceRecord, error) {
	records := r.filter(func(rec *model.AttendanceRecord) bool { return rec.Date == date })
	sort.Slice(records, func(i, j int) bool { return records[i].EmployeeID < records[j].EmployeeID })
	return records, nil
}

// ListByDateRange は期間内の全記録を日付の昇順で返す。
func (r *MemoryAttendanceRepo) ListByDateRange(_ context.Context, dateRange model.DateRange) ([]*model.AttendanceRecord, error) {
	records := r.filter(func(rec *model.AttendanceRecord) bool { return dateRange.Contains(rec.Date) })
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].EmployeeID < records[j].EmployeeID
	})
	return records, nil
}

// ListAll は全記録を日付の降順で返す。
func (r *MemoryAttendanceRepo) ListAll(_ context.Context) ([]*model.AttendanceRecord, error) {
	records := r.filter(func(*model.AttendanceRecord) bool { return true })
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].EmployeeID < records[j].EmployeeID
	})
	return records, nil
}

func (r *MemoryAttendanceRepo) filter(keep func(*model.AttendanceRecord) bool) []*model.AttendanceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*model.AttendanceRecord
	for _, rec := range r.records {
		if keep(rec) {
			records = append(records, rec.Clone())
		}
	}
	return records
}

// compile-time interface check
var _ AttendanceRepository = (*MemoryAttendanceRepo)(nil)
