// Package employee は従業員ディレクトリの参照機能を提供する。
package employee

import (
	"context"
	"log/slog"

	"github.com/hitoshi/attendman/internal/model"
	"github.com/hitoshi/attendman/internal/repository"
)

// Service は従業員ディレクトリのサービス層。
// 読み取り専用で、登録は auth.Service が行う。
type Service struct {
	repo repository.EmployeeRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.EmployeeRepository) *Service {
	return &Service{repo: repo}
}

// ListEmployees は一般従業員を登録日時の降順で返す。無効化された従業員も含む。
func (s *Service) ListEmployees(ctx context.Context) ([]*model.Employee, error) {
	return s.list(ctx, model.EmployeeFilter{Role: model.RoleEmployee})
}

// ListActive は指定ロールの有効な従業員を返す。
func (s *Service) ListActive(ctx context.Context, role model.Role) ([]*model.Employee, error) {
	return s.list(ctx, model.EmployeeFilter{Role: role, ActiveOnly: true})
}

// ListAll はロールを問わず全従業員を返す。
func (s *Service) ListAll(ctx context.Context) ([]*model.Employee, error) {
	return s.list(ctx, model.EmployeeFilter{})
}

func (s *Service) list(ctx context.Context, filter model.EmployeeFilter) ([]*model.Employee, error) {
	employees, err := s.repo.List(ctx, filter)
	if err != nil {
		slog.Error("従業員一覧の取得に失敗しました",
			slog.String("role", string(filter.Role)),
			slog.Bool("active_only", filter.ActiveOnly),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStorageUnavailableError(err)
	}
	if employees == nil {
		employees = []*model.Employee{}
	}
	return employees, nil
}
