// Package attendance は勤怠記録の打刻と照会のドメインロジックを提供する。
package attendance

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/hitoshi/attendman/internal/model"
	"github.com/hitoshi/attendman/internal/repository"
)

// CheckInRecorder は打刻結果を記録するインターフェース。
type CheckInRecorder interface {
	RecordCheckIn(slot string)
	RecordDuplicateCheckIn(slot string)
}

// Config は照会の件数上限などの設定。
type Config struct {
	HistoryDefaultLimit int
	HistoryMaxLimit     int
}

// HistoryQuery は打刻履歴の照会条件。
// StartDateとEndDateはそれぞれ省略可能で、両端を含む。
// Limitが空の場合はデフォルト件数を使う。
type HistoryQuery struct {
	StartDate string
	EndDate   string
	Limit     string
}

// Service は勤怠記録のサービス層。
type Service struct {
	repo     repository.AttendanceRepository
	recorder CheckInRecorder
	config   Config
	now      func() time.Time
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(repo repository.AttendanceRepository, recorder CheckInRecorder, config Config) *Service {
	if config.HistoryDefaultLimit <= 0 {
		config.HistoryDefaultLimit = 30
	}
	if config.HistoryMaxLimit < config.HistoryDefaultLimit {
		config.HistoryMaxLimit = config.HistoryDefaultLimit
	}
	return &Service{
		repo:     repo,
		recorder: recorder,
		config:   config,
		now:      time.Now,
	}
}

// Today は現在のUTC日付キーを返す。
func (s *Service) Today() string {
	return model.FormatDate(s.now())
}

// MarkSession は従業員の指定枠に現在時刻で打刻する。
// dateが空の場合は当日（UTC）とする。
func (s *Service) MarkSession(ctx context.Context, employeeID, date, session string) (*model.AttendanceRecord, error) {
	slot, ok := model.ParseSessionSlot(session)
	if !ok {
		return nil, model.NewInvalidSessionError(session)
	}

	now := s.now().UTC()
	if date == "" {
		date = model.FormatDate(now)
	} else if !model.IsValidDate(date) {
		return nil, model.NewInvalidDateError(date)
	}

	record, err := s.repo.MarkSession(ctx, employeeID, date, slot, now)
	if errors.Is(err, repository.ErrSessionAlreadyMarked) {
		if s.recorder != nil {
			s.recorder.RecordDuplicateCheckIn(string(slot))
		}
		slog.Info("duplicate check-in rejected",
			slog.String("employee_id", employeeID),
			slog.String("date", date),
			slog.String("slot", string(slot)),
		)
		return nil, model.NewDuplicateCheckInError(slot)
	}
	if err != nil {
		return nil, s.storageError("mark session", err)
	}

	if s.recorder != nil {
		s.recorder.RecordCheckIn(string(slot))
	}
	slog.Info("attendance marked",
		slog.String("employee_id", employeeID),
		slog.String("date", date),
		slog.String("slot", string(slot)),
		slog.Int("session_count", record.SessionCount()),
	)
	return record, nil
}

// GetRecord は1日分の記録を返す。記録がない場合はnilを返し、エラーにはしない。
func (s *Service) GetRecord(ctx context.Context, employeeID, date string) (*model.AttendanceRecord, error) {
	if !model.IsValidDate(date) {
		return nil, model.NewInvalidDateError(date)
	}
	record, err := s.repo.FindByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return nil, s.storageError("get record", err)
	}
	return record, nil
}

// QueryHistory は従業員の打刻履歴を日付の降順で返す。
// 件数はデフォルトHistoryDefaultLimit件、上限HistoryMaxLimit件。
func (s *Service) QueryHistory(ctx context.Context, employeeID string, q HistoryQuery) ([]*model.AttendanceRecord, error) {
	for _, d := range []string{q.StartDate, q.EndDate} {
		if d != "" && !model.IsValidDate(d) {
			return nil, model.NewInvalidDateError(d)
		}
	}

	limit := s.config.HistoryDefaultLimit
	if q.Limit != "" {
		n, err := strconv.Atoi(q.Limit)
		if err != nil || n <= 0 {
			return nil, model.NewInvalidLimitError(q.Limit)
		}
		limit = min(n, s.config.HistoryMaxLimit)
	}

	records, err := s.repo.ListByEmployee(ctx, employeeID, model.DateRange{Start: q.StartDate, End: q.EndDate}, limit)
	if err != nil {
		return nil, s.storageError("query history", err)
	}
	return nonNil(records), nil
}

// QueryByDate は指定日の全従業員の記録を返す。
func (s *Service) QueryByDate(ctx context.Context, date string) ([]*model.AttendanceRecord, error) {
	if !model.IsValidDate(date) {
		return nil, model.NewInvalidDateError(date)
	}
	records, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, s.storageError("query by date", err)
	}
	return nonNil(records), nil
}

// QueryByDateRange は期間内（両端を含む）の全記録を返す。
func (s *Service) QueryByDateRange(ctx context.Context, startDate, endDate string) ([]*model.AttendanceRecord, error) {
	for _, d := range []string{startDate, endDate} {
		if !model.IsValidDate(d) {
			return nil, model.NewInvalidDateError(d)
		}
	}
	records, err := s.repo.ListByDateRange(ctx, model.DateRange{Start: startDate, End: endDate})
	if err != nil {
		return nil, s.storageError("query by date range", err)
	}
	return nonNil(records), nil
}

// ListAll は全記録を返す。バックアップ用。
func (s *Service) ListAll(ctx context.Context) ([]*model.AttendanceRecord, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, s.storageError("list all", err)
	}
	return nonNil(records), nil
}

func (s *Service) storageError(op string, err error) error {
	slog.Error("attendance store failure",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return model.NewStorageUnavailableError(err)
}

func nonNil(records []*model.AttendanceRecord) []*model.AttendanceRecord {
	if records == nil {
		return []*model.AttendanceRecord{}
	}
	return records
}
