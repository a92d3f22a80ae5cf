// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, attendance, system
	Action   string // ユーザー向け対処方法

	cause error
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は原因となったエラーを返す。
func (e *APIError) Unwrap() error {
	return e.cause
}

// 定義済みエラーコード
const (
	ErrCodeInvalidSession     = "INVALID_SESSION"
	ErrCodeInvalidDate        = "INVALID_DATE"
	ErrCodeInvalidMonth       = "INVALID_MONTH"
	ErrCodeInvalidLimit       = "INVALID_LIMIT"
	ErrCodeDuplicateCheckIn   = "DUPLICATE_CHECK_IN"
	ErrCodeRecordNotFound     = "RECORD_NOT_FOUND"
	ErrCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeEmployeeExists     = "EMPLOYEE_EXISTS"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeWrongLoginMethod   = "WRONG_LOGIN_METHOD"
	ErrCodeFaceNotRecognized  = "FACE_NOT_RECOGNIZED"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeForbidden          = "FORBIDDEN"
)

// NewInvalidSessionError は認識できない打刻枠のエラーを生成する。
func NewInvalidSessionError(session string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSession,
		Message:  fmt.Sprintf("無効な打刻枠です: %s", session),
		Category: "validation",
		Action:   "打刻枠には morning、lunch、post、evening のいずれかを指定してください。",
	}
}

// NewInvalidDateError は日付形式のエラーを生成する。
func NewInvalidDateError(date string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("無効な日付です: %s", date),
		Category: "validation",
		Action:   "日付は YYYY-MM-DD 形式（ゼロ埋め）で指定してください。",
	}
}

// NewInvalidMonthError は年月指定のエラーを生成する。
func NewInvalidMonthError(year, month string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMonth,
		Message:  fmt.Sprintf("無効な年月です: %s-%s", year, month),
		Category: "validation",
		Action:   "yearには西暦、monthには1から12を指定してください。",
	}
}

// NewInvalidLimitError は取得件数指定のエラーを生成する。
func NewInvalidLimitError(limit string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidLimit,
		Message:  fmt.Sprintf("無効な取得件数です: %s", limit),
		Category: "validation",
		Action:   "limitには1以上の整数を指定してください。",
	}
}

// NewDuplicateCheckInError は打刻済みの枠に再度打刻しようとした場合のエラーを生成する。
func NewDuplicateCheckInError(slot SessionSlot) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateCheckIn,
		Message:  fmt.Sprintf("この打刻枠は既に打刻済みです: %s", slot),
		Category: "attendance",
		Action:   "次の打刻枠で打刻してください。打刻の修正はできません。",
	}
}

// NewRecordNotFoundError は勤怠記録が見つからない場合のエラーを生成する。
func NewRecordNotFoundError(employeeID, date string) *APIError {
	return &APIError{
		Code:     ErrCodeRecordNotFound,
		Message:  fmt.Sprintf("勤怠記録が見つかりません: %s %s", employeeID, date),
		Category: "attendance",
		Action:   "従業員IDと日付を確認してください。",
	}
}

// NewStorageUnavailableError はストレージ障害のエラーを生成する。
// 原因はUnwrapで取得でき、ログにのみ記録する。
func NewStorageUnavailableError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeStorageUnavailable,
		Message:  "データストアにアクセスできません。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
		cause:    cause,
	}
}

// NewInvalidRequestError はリクエスト形式のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewEmployeeExistsError はメールアドレスまたは従業員IDが登録済みの場合のエラーを生成する。
func NewEmployeeExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeEmployeeExists,
		Message:  "このメールアドレスまたは従業員IDは既に登録されています。",
		Category: "auth",
		Action:   "別のメールアドレスまたは従業員IDで登録するか、ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致のエラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "認証情報が正しくありません。",
		Category: "auth",
		Action:   "IDとパスワードを確認してください。",
	}
}

// NewWrongLoginMethodError は登録方式と異なる方式でログインしようとした場合のエラーを生成する。
func NewWrongLoginMethodError(registered LoginMethod) *APIError {
	return &APIError{
		Code:     ErrCodeWrongLoginMethod,
		Message:  fmt.Sprintf("このアカウントは %s 方式でログインします。", registered),
		Category: "auth",
		Action:   "登録時のログイン方式を使用してください。",
	}
}

// NewFaceNotRecognizedError は顔照合に失敗した場合のエラーを生成する。
func NewFaceNotRecognizedError() *APIError {
	return &APIError{
		Code:     ErrCodeFaceNotRecognized,
		Message:  "顔を認識できませんでした。",
		Category: "auth",
		Action:   "もう一度撮影するか、IDでログインしてください。",
	}
}

// NewUnauthorizedError は認証トークンがない場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidTokenError はトークンが無効または期限切れの場合のエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "トークンが無効か期限切れです。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewForbiddenError は管理者権限が必要な操作のエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "管理者権限が必要です。",
		Category: "auth",
		Action:   "管理者アカウントでログインしてください。",
	}
}

// NewEmployeeOnlyError は従業員専用の操作を管理者トークンで呼び出した場合のエラーを生成する。
func NewEmployeeOnlyError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "従業員アカウントでのみ利用できます。",
		Category: "auth",
		Action:   "従業員としてログインしてください。",
	}
}
