package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/attendman/internal/model"
)

// repoFactory はテスト対象のリポジトリ一式を生成する。
type repoFactory func(t *testing.T) (EmployeeRepository, AttendanceRepository)

func newTestEmployee(employeeID string, registeredAt time.Time) *model.Employee {
	return &model.Employee{
		ID:           uuid.New().String(),
		EmployeeID:   employeeID,
		Name:         "Employee " + employeeID,
		Email:        employeeID + "@example.com",
		PasswordHash: "hash",
		LoginMethod:  model.LoginMethodID,
		Role:         model.RoleEmployee,
		IsActive:     true,
		RegisteredAt: registeredAt,
		UpdatedAt:    registeredAt,
	}
}

func mustCreateEmployee(t *testing.T, repo EmployeeRepository, e *model.Employee) {
	t.Helper()
	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("従業員の作成に失敗: %v", err)
	}
}

func runEmployeeRepoContract(t *testing.T, factory repoFactory) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("作成と取得", func(t *testing.T) {
		employees, _ := factory(t)
		mustCreateEmployee(t, employees, newTestEmployee("EMP001", base))

		got, err := employees.FindByEmployeeID(ctx, "EMP001")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil {
			t.Fatal("expected employee, got nil")
		}
		if got.Email != "EMP001@example.com" || got.LoginMethod != model.LoginMethodID || !got.IsActive {
			t.Errorf("unexpected employee: %+v", got)
		}
	})

	t.Run("存在しない従業員はnil", func(t *testing.T) {
		employees, _ := factory(t)
		got, err := employees.FindByEmployeeID(ctx, "NOPE")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("社員番号の重複", func(t *testing.T) {
		employees, _ := factory(t)
		mustCreateEmployee(t, employees, newTestEmployee("EMP001", base))

		dup := newTestEmployee("EMP001", base)
		dup.Email = "other@example.com"
		if err := employees.Create(ctx, dup); !errors.Is(err, ErrDuplicateEmployee) {
			t.Errorf("err = %v, want ErrDuplicateEmployee", err)
		}
	})

	t.Run("メールアドレスの重複", func(t *testing.T) {
		employees, _ := factory(t)
		mustCreateEmployee(t, employees, newTestEmployee("EMP001", base))

		dup := newTestEmployee("EMP002", base)
		dup.Email = "EMP001@example.com"
		if err := employees.Create(ctx, dup); !errors.Is(err, ErrDuplicateEmployee) {
			t.Errorf("err = %v, want ErrDuplicateEmployee", err)
		}
	})

	t.Run("顔ダイジェストで検索", func(t *testing.T) {
		employees, _ := factory(t)
		face := newTestEmployee("EMP010", base)
		face.LoginMethod = model.LoginMethodFace
		face.PasswordHash = ""
		face.FaceData = "data:image/png;base64,AAAA"
		face.FaceDigest = fmt.Sprintf("%064x", 1)
		mustCreateEmployee(t, employees, face)

		got, err := employees.FindByFaceDigest(ctx, face.FaceDigest)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || got.EmployeeID != "EMP010" {
			t.Fatalf("expected EMP010, got %+v", got)
		}
		if got.PasswordHash != "" {
			t.Errorf("PasswordHash = %q, want empty", got.PasswordHash)
		}

		miss, err := employees.FindByFaceDigest(ctx, fmt.Sprintf("%064x", 2))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if miss != nil {
			t.Errorf("expected nil, got %+v", miss)
		}
	})

	t.Run("一覧は登録日時の降順でフィルタが効く", func(t *testing.T) {
		employees, _ := factory(t)
		mustCreateEmployee(t, employees, newTestEmployee("EMP001", base))
		mustCreateEmployee(t, employees, newTestEmployee("EMP002", base.Add(time.Hour)))
		inactive := newTestEmployee("EMP003", base.Add(2*time.Hour))
		inactive.IsActive = false
		mustCreateEmployee(t, employees, inactive)
		admin := newTestEmployee("ADM001", base.Add(3*time.Hour))
		admin.Role = model.RoleAdmin
		mustCreateEmployee(t, employees, admin)

		all, err := employees.List(ctx, model.EmployeeFilter{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(all) != 4 || all[0].EmployeeID != "ADM001" || all[3].EmployeeID != "EMP001" {
			t.Errorf("unexpected order: %v", employeeIDs(all))
		}

		active, err := employees.List(ctx, model.EmployeeFilter{Role: model.RoleEmployee, ActiveOnly: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := employeeIDs(active); len(got) != 2 || got[0] != "EMP002" || got[1] != "EMP001" {
			t.Errorf("active employees = %v, want [EMP002 EMP001]", got)
		}
	})
}

func runAttendanceRepoContract(t *testing.T, factory repoFactory) {
	ctx := context.Background()
	at := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	setup := func(t *testing.T, ids ...string) AttendanceRepository {
		t.Helper()
		employees, attendance := factory(t)
		for _, id := range ids {
			mustCreateEmployee(t, employees, newTestEmployee(id, at))
		}
		return attendance
	}

	t.Run("初回打刻で記録が作成される", func(t *testing.T) {
		repo := setup(t, "EMP001")

		record, err := repo.MarkSession(ctx, "EMP001", "2024-03-15", model.SessionMorning, at)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.SessionCount() != 1 || !record.Sessions[model.SessionMorning].Equal(at) {
			t.Errorf("unexpected record: %+v", record)
		}

		got, err := repo.FindByEmployeeAndDate(ctx, "EMP001", "2024-03-15")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || !got.HasSession(model.SessionMorning) {
			t.Fatalf("expected stored record with morning, got %+v", got)
		}
	})

	t.Run("打刻済みの枠は変更されない", func(t *testing.T) {
		repo := setup(t, "EMP001")

		if _, err := repo.MarkSession(ctx, "EMP001", "2024-03-15", model.SessionMorning, at); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := repo.MarkSession(ctx, "EMP001", "2024-03-15", model.SessionMorning, at.Add(time.Hour))
		if !errors.Is(err, ErrSessionAlreadyMarked) {
			t.Fatalf("err = %v, want ErrSessionAlreadyMarked", err)
		}

		got, _ := repo.FindByEmployeeAndDate(ctx, "EMP001", "2024-03-15")
		if !got.Sessions[model.SessionMorning].Equal(at) {
			t.Errorf("morning = %v, want %v", got.Sessions[model.SessionMorning], at)
		}
	})

	t.Run("別の枠は同じ記録に追加される", func(t *testing.T) {
		repo := setup(t, "EMP001")

		first, _ := repo.MarkSession(ctx, "EMP001", "2024-03-15", model.SessionEvening, at)
		second, err := repo.MarkSession(ctx, "EMP001", "2024-03-15", model.SessionMorning, at.Add(time.Minute))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("record ID changed: %q -> %q", first.ID, second.ID)
		}
		if second.SessionCount() != 2 {
			t.Errorf("SessionCount() = %d, want 2", second.SessionCount())
		}
		if !second.UpdatedAt.Equal(at.Add(time.Minute)) {
			t.Errorf("UpdatedAt = %v, want %v", second.UpdatedAt, at.Add(time.Minute))
		}
	})

	t.Run("存在しない記録はnil", func(t *testing.T) {
		repo := setup(t)
		got, err := repo.FindByEmployeeAndDate(ctx, "EMP001", "2024-03-15")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("同時打刻で成功するのは1回だけ", func(t *testing.T) {
		repo := setup(t, "EMP001")

		const workers = 16
		var (
			wg        sync.WaitGroup
			succeeded atomic.Int32
			duplicate atomic.Int32
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := repo.MarkSession(ctx, "EMP001", "2024-03-15", model.SessionLunch, at.Add(time.Duration(i)*time.Second))
				switch {
				case err == nil:
					succeeded.Add(1)
				case errors.Is(err, ErrSessionAlreadyMarked):
					duplicate.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		if succeeded.Load() != 1 {
			t.Errorf("succeeded = %d, want 1", succeeded.Load())
		}
		if duplicate.Load() != workers-1 {
			t.Errorf("duplicate = %d, want %d", duplicate.Load(), workers-1)
		}

		records, _ := repo.ListByDate(ctx, "2024-03-15")
		if len(records) != 1 {
			t.Errorf("records = %d, want 1", len(records))
		}
	})

	t.Run("同時に別の枠を打刻しても記録は1件", func(t *testing.T) {
		repo := setup(t, "EMP001")

		var wg sync.WaitGroup
		for _, slot := range model.SessionSlots {
			wg.Add(1)
			go func(slot model.SessionSlot) {
				defer wg.Done()
				if _, err := repo.MarkSession(ctx, "EMP001", "2024-03-15", slot, at); err != nil {
					t.Errorf("MarkSession(%s): %v", slot, err)
				}
			}(slot)
		}
		wg.Wait()

		got, _ := repo.FindByEmployeeAndDate(ctx, "EMP001", "2024-03-15")
		if got.Status() != model.DayStatusFull {
			t.Errorf("Status() = %q, want full", got.Status())
		}
		records, _ := repo.ListByDate(ctx, "2024-03-15")
		if len(records) != 1 {
			t.Errorf("records = %d, want 1", len(records))
		}
	})

	t.Run("履歴は日付の降順で範囲と件数が効く", func(t *testing.T) {
		repo := setup(t, "EMP001", "EMP002")
		for _, d := range []string{"2024-03-01", "2024-03-10", "2024-03-05", "2024-02-28", "2024-03-20"} {
			if _, err := repo.MarkSession(ctx, "EMP001", d, model.SessionMorning, at); err != nil {
				t.Fatalf("MarkSession(%s): %v", d, err)
			}
		}
		repo.MarkSession(ctx, "EMP002", "2024-03-05", model.SessionMorning, at)

		all, err := repo.ListByEmployee(ctx, "EMP001", model.DateRange{}, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := recordDates(all); fmt.Sprint(got) != "[2024-03-20 2024-03-10 2024-03-05 2024-03-01 2024-02-28]" {
			t.Errorf("dates = %v", got)
		}

		ranged, _ := repo.ListByEmployee(ctx, "EMP001", model.DateRange{Start: "2024-03-01", End: "2024-03-10"}, 0)
		if got := recordDates(ranged); fmt.Sprint(got) != "[2024-03-10 2024-03-05 2024-03-01]" {
			t.Errorf("ranged dates = %v", got)
		}

		startOnly, _ := repo.ListByEmployee(ctx, "EMP001", model.DateRange{Start: "2024-03-06"}, 0)
		if got := recordDates(startOnly); fmt.Sprint(got) != "[2024-03-20 2024-03-10]" {
			t.Errorf("start-only dates = %v", got)
		}

		limited, _ := repo.ListByEmployee(ctx, "EMP001", model.DateRange{}, 2)
		if got := recordDates(limited); fmt.Sprint(got) != "[2024-03-20 2024-03-10]" {
			t.Errorf("limited dates = %v", got)
		}
	})

	t.Run("日付と期間で全従業員の記録を取得", func(t *testing.T) {
		repo := setup(t, "EMP001", "EMP002")
		repo.MarkSession(ctx, "EMP002", "2024-03-05", model.SessionMorning, at)
		repo.MarkSession(ctx, "EMP001", "2024-03-05", model.SessionMorning, at)
		repo.MarkSession(ctx, "EMP001", "2024-03-31", model.SessionMorning, at)
		repo.MarkSession(ctx, "EMP001", "2024-04-01", model.SessionMorning, at)

		byDate, err := repo.ListByDate(ctx, "2024-03-05")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(byDate) != 2 || byDate[0].EmployeeID != "EMP001" || byDate[1].EmployeeID != "EMP002" {
			t.Errorf("unexpected records by date: %+v", byDate)
		}

		march, err := repo.ListByDateRange(ctx, model.DateRange{Start: "2024-03-01", End: "2024-03-31"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := recordDates(march); fmt.Sprint(got) != "[2024-03-05 2024-03-05 2024-03-31]" {
			t.Errorf("march dates = %v", got)
		}

		all, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(all) != 4 || all[0].Date != "2024-04-01" {
			t.Errorf("unexpected ListAll: %v", recordDates(all))
		}
	})
}

func employeeIDs(employees []*model.Employee) []string {
	ids := make([]string, len(employees))
	for i, e := range employees {
		ids[i] = e.EmployeeID
	}
	return ids
}

func recordDates(records []*model.AttendanceRecord) []string {
	dates := make([]string, len(records))
	for i, r := range records {
		dates[i] = r.Date
	}
	return dates
}
