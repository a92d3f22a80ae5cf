package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hitoshi/attendman/internal/model"
)

// MemoryEmployeeRepo はプロセス内メモリを使用した従業員リポジトリ。
// 開発環境とテストで使用する。返す値はすべてコピー。
type MemoryEmployeeRepo struct {
	mu        sync.RWMutex
	employees map[string]*model.Employee // key: EmployeeID
}

// NewMemoryEmployeeRepo はMemoryEmployeeRepoを生成する。
func NewMemoryEmployeeRepo() *MemoryEmployeeRepo {
	return &MemoryEmployeeRepo{employees: make(map[string]*model.Employee)}
}

// Create は従業員を作成する。
func (r *MemoryEmployeeRepo) Create(_ context.Context, e *model.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[e.EmployeeID]; ok {
		return ErrDuplicateEmployee
	}
	for _, existing := range r.employees {
		if existing.Email == e.Email {
			return ErrDuplicateEmployee
		}
	}

	c := *e
	r.employees[e.EmployeeID] = &c
	return nil
}

// FindByEmployeeID は社員番号で従業員を取得する。見つからない場合はnilを返す。
func (r *MemoryEmployeeRepo) FindByEmployeeID(_ context.Context, employeeID string) (*model.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[employeeID]
	if !ok {
		return nil, nil
	}
	c := *e
	return &c, nil
}

// FindByFaceDigest は顔データのダイジェストで従業員を取得する。見つからない場合はnilを返す。
// 複数一致した場合は最も早く登録された従業員を返す。
func (r *MemoryEmployeeRepo) FindByFaceDigest(_ context.Context, digest string) (*model.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *model.Employee
	for _, e := range r.employees {
		if e.LoginMethod != model.LoginMethodFace || e.FaceDigest != digest {
			continue
		}
		if found == nil || e.RegisteredAt.Before(found.RegisteredAt) {
			found = e
		}
	}
	if found == nil {
		return nil, nil
	}
	c := *found
	return &c, nil
}

// List は条件に一致する従業員を登録日時の降順で返す。
func (r *MemoryEmployeeRepo) List(_ context.Context, filter model.EmployeeFilter) ([]*model.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var employees []*model.Employee
	for _, e := range r.employees {
		if filter.Role != "" && e.Role != filter.Role {
			continue
		}
		if filter.ActiveOnly && !e.IsActive {
			continue
		}
		c := *e
		employees = append(employees, &c)
	}

	sort.Slice(employees, func(i, j int) bool {
		if !employees[i].RegisteredAt.Equal(employees[j].RegisteredAt) {
			return employees[i].RegisteredAt.After(employees[j].RegisteredAt)
		}
		return employees[i].EmployeeID < employees[j].EmployeeID
	})
	return employees, nil
}

// compile-time interface check
var _ EmployeeRepository = (*MemoryEmployeeRepo)(nil)
