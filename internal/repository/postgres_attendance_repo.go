package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/attendman/internal/model"
)

const attendanceColumns = `id, employee_id, date, morning_at, lunch_at, post_at, evening_at, created_at, updated_at`

// slotColumns は打刻枠と列名の対応。SQLに埋め込む列名はこの表からのみ取得する。
var slotColumns = map[model.SessionSlot]string{
	model.SessionMorning: "morning_at",
	model.SessionLunch:   "lunch_at",
	model.SessionPost:    "post_at",
	model.SessionEvening: "evening_at",
}

// PostgresAttendanceRepo はPostgreSQLを使用した勤怠記録リポジトリ。
type PostgresAttendanceRepo struct {
	db *sql.DB
}

// NewPostgresAttendanceRepo はPostgresAttendanceRepoを生成する。
func NewPostgresAttendanceRepo(db *sql.DB) *PostgresAttendanceRepo {
	return &PostgresAttendanceRepo{db: db}
}

// MarkSession は指定枠に打刻する。
// 同一トランザクション内で INSERT ON CONFLICT DO NOTHING により記録の存在を保証し、
// 枠がNULLの場合のみ更新する条件付きUPDATEで打刻する。
// 同時実行された場合、後続のUPDATEは行ロック解放後にWHERE句を再評価するため0行となる。
func (r *PostgresAttendanceRepo) MarkSession(
	ctx context.Context,
	employeeID, date string,
	slot model.SessionSlot,
	at time.Time,
) (*model.AttendanceRecord, error) {
	col, ok := slotColumns[slot]
	if !ok {
		return nil, fmt.Errorf("unknown session slot: %q", slot)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO attendance_records (id, employee_id, date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (employee_id, date) DO NOTHING`,
		uuid.New().String(), employeeID, date, at,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure attendance record: %w", err)
	}

	record, err := scanAttendanceRecord(tx.QueryRowContext(ctx,
		fmt.Sprintf(
			`UPDATE attendance_records SET %[1]s = $3, updated_at = $3
			 WHERE employee_id = $1 AND date = $2 AND %[1]s IS NULL
			 RETURNING %[2]s`,
			col, attendanceColumns,
		),
		employeeID, date, at,
	))
	if err == sql.ErrNoRows {
		return nil, ErrSessionAlreadyMarked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record, nil
}

// FindByEmployeeAndDate は1日分の記録を取得する。見つからない場合はnilを返す。
func (r *PostgresAttendanceRepo) FindByEmployeeAndDate(ctx context.Context, employeeID, date string) (*model.AttendanceRecord, error) {
	record, err := scanAttendanceRecord(r.db.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records WHERE employee_id = $1 AND date = $2`,
		employeeID, date,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find attendance record: %w", err)
	}
	return record, nil
}

// ListByEmployee は従業員の記録を日付の降順で返す。
func (r *PostgresAttendanceRepo) ListByEmployee(
	ctx context.Context,
	employeeID string,
	dateRange model.DateRange,
	limit int,
) ([]*model.AttendanceRecord, error) {
	conds := []string{"employee_id = $1"}
	args := []any{employeeID}
	conds, args = appendDateRange(conds, args, dateRange)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY date DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return r.query(ctx, "list attendance by employee", query, args...)
}

// ListByDate は指定日の全従業員の記録を返す。
func (r *PostgresAttendanceRepo) ListByDate(ctx context.Context, date string) ([]*model.AttendanceRecord, error) {
	return r.query(ctx, "list attendance by date",
		`SELECT `+attendanceColumns+` FROM attendance_records WHERE date = $1 ORDER BY employee_id`,
		date,
	)
}

// ListByDateRange は期間内の全記録を日付の昇順で返す。
// 日付キーはゼロ埋めされているため文字列比較で期間判定できる。
func (r *PostgresAttendanceRepo) ListByDateRange(ctx context.Context, dateRange model.DateRange) ([]*model.AttendanceRecord, error) {
	conds, args := appendDateRange(nil, nil, dateRange)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY date, employee_id`

	return r.query(ctx, "list attendance by date range", query, args...)
}

// ListAll は全記録を日付の降順で返す。
func (r *PostgresAttendanceRepo) ListAll(ctx context.Context) ([]*model.AttendanceRecord, error) {
	return r.query(ctx, "list all attendance",
		`SELECT `+attendanceColumns+` FROM attendance_records ORDER BY date DESC, employee_id`,
	)
}

func (r *PostgresAttendanceRepo) query(ctx context.Context, op, query string, args ...any) ([]*model.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	var records []*model.AttendanceRecord
	for rows.Next() {
		record, err := scanAttendanceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}
	return records, nil
}

func appendDateRange(conds []string, args []any, dateRange model.DateRange) ([]string, []any) {
	if dateRange.Start != "" {
		args = append(args, dateRange.Start)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if dateRange.End != "" {
		args = append(args, dateRange.End)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}
	return conds, args
}

func scanAttendanceRecord(s rowScanner) (*model.AttendanceRecord, error) {
	record := &model.AttendanceRecord{}
	var morning, lunch, post, evening sql.NullTime

	err := s.Scan(
		&record.ID, &record.EmployeeID, &record.Date,
		&morning, &lunch, &post, &evening,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Sessions = make(model.Sessions, model.SlotsPerDay)
	for slot, t := range map[model.SessionSlot]sql.NullTime{
		model.SessionMorning: morning,
		model.SessionLunch:   lunch,
		model.SessionPost:    post,
		model.SessionEvening: evening,
	} {
		if t.Valid {
			record.Sessions[slot] = t.Time.UTC()
		}
	}
	return record, nil
}

// compile-time interface check
var _ AttendanceRepository = (*PostgresAttendanceRepo)(nil)
