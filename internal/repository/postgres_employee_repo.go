package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/attendman/internal/model"
)

// pqUniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const pqUniqueViolation = "23505"

const employeeColumns = `id, employee_id, name, email, password_hash, face_data, face_digest,
	login_method, role, is_active, registered_at, updated_at`

// PostgresEmployeeRepo はPostgreSQLを使用した従業員リポジトリ。
type PostgresEmployeeRepo struct {
	db *sql.DB
}

// NewPostgresEmployeeRepo はPostgresEmployeeRepoを生成する。
func NewPostgresEmployeeRepo(db *sql.DB) *PostgresEmployeeRepo {
	return &PostgresEmployeeRepo{db: db}
}

// Create は従業員を作成する。
func (r *PostgresEmployeeRepo) Create(ctx context.Context, e *model.Employee) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (`+employeeColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.EmployeeID, e.Name, e.Email,
		nullString(e.PasswordHash), nullString(e.FaceData), nullString(e.FaceDigest),
		string(e.LoginMethod), string(e.Role), e.IsActive, e.RegisteredAt, e.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrDuplicateEmployee
		}
		return fmt.Errorf("failed to insert employee: %w", err)
	}
	return nil
}

// FindByEmployeeID は社員番号で従業員を取得する。見つからない場合はnilを返す。
func (r *PostgresEmployeeRepo) FindByEmployeeID(ctx context.Context, employeeID string) (*model.Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE employee_id = $1`,
		employeeID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find employee by employee ID: %w", err)
	}
	return e, nil
}

// FindByFaceDigest は顔データのダイジェストで従業員を取得する。見つからない場合はnilを返す。
func (r *PostgresEmployeeRepo) FindByFaceDigest(ctx context.Context, digest string) (*model.Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees
		 WHERE face_digest = $1 AND login_method = 'face'
		 ORDER BY registered_at LIMIT 1`,
		digest,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find employee by face digest: %w", err)
	}
	return e, nil
}

// List は条件に一致する従業員を登録日時の降順で返す。
func (r *PostgresEmployeeRepo) List(ctx context.Context, filter model.EmployeeFilter) ([]*model.Employee, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.ActiveOnly {
		conds = append(conds, "is_active")
	}

	query := `SELECT ` + employeeColumns + ` FROM employees`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY registered_at DESC, employee_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(s rowScanner) (*model.Employee, error) {
	e := &model.Employee{}
	var (
		passwordHash, faceData, faceDigest sql.NullString
		loginMethod, role                  string
	)
	err := s.Scan(
		&e.ID, &e.EmployeeID, &e.Name, &e.Email,
		&passwordHash, &faceData, &faceDigest,
		&loginMethod, &role, &e.IsActive, &e.RegisteredAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.PasswordHash = passwordHash.String
	e.FaceData = faceData.String
	e.FaceDigest = faceDigest.String
	e.LoginMethod = model.LoginMethod(loginMethod)
	e.Role = model.Role(role)
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ EmployeeRepository = (*PostgresEmployeeRepo)(nil)
