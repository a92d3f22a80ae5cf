package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/attendman/internal/attendance"
	"github.com/hitoshi/attendman/internal/middleware"
	"github.com/hitoshi/attendman/internal/model"
)

// AttendanceServiceInterface は打刻ハンドラーが必要とするサービスインターフェース。
type AttendanceServiceInterface interface {
	Today() string
	MarkSession(ctx context.Context, employeeID, date, session string) (*model.AttendanceRecord, error)
	GetRecord(ctx context.Context, employeeID, date string) (*model.AttendanceRecord, error)
	QueryHistory(ctx context.Context, employeeID string, q attendance.HistoryQuery) ([]*model.AttendanceRecord, error)
}

// AttendanceHandler は従業員本人の打刻と履歴参照のHTTPハンドラー。
type AttendanceHandler struct {
	service AttendanceServiceInterface
}

// NewAttendanceHandler はAttendanceHandlerを生成する。
func NewAttendanceHandler(service AttendanceServiceInterface) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

type markRequest struct {
	Date    string `json:"date"`
	Session string `json:"session"`
}

// attendanceResponse は勤怠記録のAPIレスポンス。
type attendanceResponse struct {
	ID           string         `json:"id,omitempty"`
	EmployeeID   string         `json:"employeeId"`
	Date         string         `json:"date"`
	Sessions     model.Sessions `json:"sessions"`
	SessionCount int            `json:"sessionCount"`
	Status       string         `json:"status"`
	UpdatedAt    *time.Time     `json:"updatedAt,omitempty"`
}

type markResponse struct {
	Message    string             `json:"message"`
	Attendance attendanceResponse `json:"attendance"`
}

type historyResponse struct {
	Attendance []attendanceResponse `json:"attendance"`
}

type todayResponse struct {
	Date           string         `json:"date"`
	Sessions       model.Sessions `json:"sessions"`
	CompletedCount int            `json:"completedCount"`
}

// Mark は打刻を処理する。
// POST /api/attendance/mark
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDFromRequest(w, r)
	if !ok {
		return
	}

	var req markRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		handleServiceError(w, apiErr)
		return
	}

	record, err := h.service.MarkSession(r.Context(), employeeID, req.Date, req.Session)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, markResponse{
		Message:    "打刻しました。",
		Attendance: toAttendanceResponse(record),
	})
}

// History は本人の打刻履歴を日付の降順で返す。
// GET /api/attendance/history?startDate=&endDate=&limit=
func (h *AttendanceHandler) History(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDFromRequest(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	records, err := h.service.QueryHistory(r.Context(), employeeID, attendance.HistoryQuery{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Limit:     q.Get("limit"),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := historyResponse{Attendance: make([]attendanceResponse, 0, len(records))}
	for _, rec := range records {
		resp.Attendance = append(resp.Attendance, toAttendanceResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Today は本日の打刻状況を返す。記録がない場合も空の打刻で200を返す。
// GET /api/attendance/today
func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDFromRequest(w, r)
	if !ok {
		return
	}

	today := h.service.Today()
	record, err := h.service.GetRecord(r.Context(), employeeID, today)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := todayResponse{Date: today, Sessions: model.Sessions{}}
	if record != nil {
		resp.Sessions = record.Sessions
		resp.CompletedCount = record.SessionCount()
	}
	writeJSON(w, http.StatusOK, resp)
}

// employeeIDFromRequest は認証済みの従業員IDを取得する。
// 管理者トークンなど従業員IDを持たない場合は403を書き込みfalseを返す。
func employeeIDFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		handleServiceError(w, model.NewUnauthorizedError())
		return "", false
	}
	if identity.EmployeeID == "" {
		handleServiceError(w, model.NewEmployeeOnlyError())
		return "", false
	}
	return identity.EmployeeID, true
}

func toAttendanceResponse(r *model.AttendanceRecord) attendanceResponse {
	resp := attendanceResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		Date:         r.Date,
		Sessions:     r.Sessions,
		SessionCount: r.SessionCount(),
		Status:       string(r.Status()),
	}
	if !r.UpdatedAt.IsZero() {
		updatedAt := r.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
