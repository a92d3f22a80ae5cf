// Package model はドメインモデルを定義する。
package model

import "time"

// Role は従業員ディレクトリ上の権限ロールを表す。
type Role string

const (
	// RoleEmployee は一般従業員。
	RoleEmployee Role = "employee"
	// RoleAdmin は管理者。レポート閲覧とバックアップ取得が可能。
	RoleAdmin Role = "admin"
)

// LoginMethod は従業員の登録時に選択したログイン方式を表す。
type LoginMethod string

const (
	// LoginMethodID は従業員ID＋パスワードによるログイン。
	LoginMethodID LoginMethod = "id"
	// LoginMethodFace は顔画像によるログイン。
	LoginMethodFace LoginMethod = "face"
)

// Employee は勤怠を記録する従業員を表す。
// EmployeeIDは人が入力する社員番号で、勤怠記録の外部キーとして使う。
type Employee struct {
	ID           string
	EmployeeID   string
	Name         string
	Email        string
	PasswordHash string // LoginMethodIDのときのみ設定
	FaceData     string // LoginMethodFaceのときのみ設定（Base64画像）
	FaceDigest   string // FaceDataのSHA-256（16進）。照合用インデックス
	LoginMethod  LoginMethod
	Role         Role
	IsActive     bool
	RegisteredAt time.Time
	UpdatedAt    time.Time
}

// EmployeeFilter は従業員一覧取得の絞り込み条件。
// ゼロ値は全件を意味する。
type EmployeeFilter struct {
	Role       Role
	ActiveOnly bool
}

// Identity は認証済みリクエストの主体を表す。
// 管理者ログインの場合、EmployeeIDは空でSubjectに管理者ユーザー名が入る。
type Identity struct {
	Subject    string
	EmployeeID string
	Role       Role
}

// IsAdmin は管理者権限を持つかを返す。
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
