package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/attendman/internal/backup"
	"github.com/hitoshi/attendman/internal/model"
	"github.com/hitoshi/attendman/internal/report"
)

// EmployeeDirectoryInterface は従業員一覧の取得インターフェース。
type EmployeeDirectoryInterface interface {
	ListEmployees(ctx context.Context) ([]*model.Employee, error)
}

// ReportServiceInterface はレポート集計のインターフェース。
type ReportServiceInterface interface {
	Daily(ctx context.Context, date string) (report.DailyReport, error)
	Monthly(ctx context.Context, year, month string) (report.MonthlyReport, error)
	Stats(ctx context.Context) (report.DashboardStats, error)
}

// BackupExporterInterface はバックアップ生成のインターフェース。
type BackupExporterInterface interface {
	Export(ctx context.Context) (*backup.Snapshot, error)
}

// AdminHandler は管理者向けのHTTPハンドラー。
type AdminHandler struct {
	employees EmployeeDirectoryInterface
	reports   ReportServiceInterface
	backups   BackupExporterInterface
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(employees EmployeeDirectoryInterface, reports ReportServiceInterface, backups BackupExporterInterface) *AdminHandler {
	return &AdminHandler{employees: employees, reports: reports, backups: backups}
}

type adminEmployeeResponse struct {
	employeeResponse
	IsActive     bool      `json:"isActive"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type usersResponse struct {
	Users []adminEmployeeResponse `json:"users"`
}

type dailyEntryResponse struct {
	EmployeeID   string         `json:"employeeId"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Sessions     model.Sessions `json:"sessions"`
	SessionCount int            `json:"sessionCount"`
	Status       string         `json:"status"`
}

type dailyReportResponse struct {
	Date   string               `json:"date"`
	Report []dailyEntryResponse `json:"report"`
}

type monthlyEntryResponse struct {
	EmployeeID           string `json:"employeeId"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	TotalDays            int    `json:"totalDays"`
	PresentDays          int    `json:"presentDays"`
	PartialDays          int    `json:"partialDays"`
	AbsentDays           int    `json:"absentDays"`
	AttendancePercentage string `json:"attendancePercentage"`
}

type monthlyReportResponse struct {
	Year   int                    `json:"year"`
	Month  int                    `json:"month"`
	Report []monthlyEntryResponse `json:"report"`
}

type statsResponse struct {
	TotalEmployees int    `json:"totalEmployees"`
	PresentToday   int    `json:"presentToday"`
	MonthAverage   string `json:"monthAverage"`
	ComplianceRate string `json:"complianceRate"`
}

// backupEmployeeResponse はバックアップ用の従業員情報。顔データを含む。
type backupEmployeeResponse struct {
	adminEmployeeResponse
	FaceData string `json:"faceData,omitempty"`
}

type backupDataResponse struct {
	Users      []backupEmployeeResponse `json:"users"`
	Attendance []attendanceResponse     `json:"attendance"`
}

type backupResponse struct {
	Timestamp time.Time          `json:"timestamp"`
	Version   string             `json:"version"`
	Data      backupDataResponse `json:"data"`
}

// ListUsers は一般従業員を登録日時の降順で返す。
// GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employees.ListEmployees(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := usersResponse{Users: make([]adminEmployeeResponse, 0, len(employees))}
	for _, e := range employees {
		resp.Users = append(resp.Users, toAdminEmployeeResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// DailyReport は日次レポートを返す。dateを省略した場合は当日。
// GET /api/admin/attendance/daily?date=
func (h *AdminHandler) DailyReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Daily(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := dailyReportResponse{Date: rep.Date, Report: make([]dailyEntryResponse, 0, len(rep.Entries))}
	for _, e := range rep.Entries {
		resp.Report = append(resp.Report, dailyEntryResponse{
			EmployeeID:   e.EmployeeID,
			Name:         e.Name,
			Email:        e.Email,
			Sessions:     e.Sessions,
			SessionCount: e.SessionCount,
			Status:       string(e.Status),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// MonthlyReport は月次レポートを返す。year、monthを省略した場合は当月。
// GET /api/admin/attendance/monthly?year=&month=
func (h *AdminHandler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rep, err := h.reports.Monthly(r.Context(), q.Get("year"), q.Get("month"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := monthlyReportResponse{
		Year:   rep.Year,
		Month:  int(rep.Month),
		Report: make([]monthlyEntryResponse, 0, len(rep.Entries)),
	}
	for _, e := range rep.Entries {
		resp.Report = append(resp.Report, monthlyEntryResponse{
			EmployeeID:           e.EmployeeID,
			Name:                 e.Name,
			Email:                e.Email,
			TotalDays:            e.TotalDays,
			PresentDays:          e.PresentDays,
			PartialDays:          e.PartialDays,
			AbsentDays:           e.AbsentDays,
			AttendancePercentage: e.AttendancePercentage,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stats はダッシュボード統計を返す。
// GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.Stats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalEmployees: stats.TotalEmployees,
		PresentToday:   stats.PresentToday,
		MonthAverage:   stats.MonthAverage,
		ComplianceRate: stats.ComplianceRate,
	})
}

// Backup は全従業員と全勤怠記録のスナップショットを返す。
// GET /api/admin/backup
func (h *AdminHandler) Backup(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.backups.Export(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data := backupDataResponse{
		Users:      make([]backupEmployeeResponse, 0, len(snapshot.Employees)),
		Attendance: make([]attendanceResponse, 0, len(snapshot.Attendance)),
	}
	for _, e := range snapshot.Employees {
		data.Users = append(data.Users, backupEmployeeResponse{
			adminEmployeeResponse: toAdminEmployeeResponse(e),
			FaceData:              e.FaceData,
		})
	}
	for _, rec := range snapshot.Attendance {
		data.Attendance = append(data.Attendance, toAttendanceResponse(rec))
	}

	w.Header().Set("Content-Disposition", `attachment; filename="attendance-backup-`+snapshot.Timestamp.Format("20060102T150405Z")+`.json"`)
	writeJSON(w, http.StatusOK, backupResponse{
		Timestamp: snapshot.Timestamp,
		Version:   snapshot.Version,
		Data:      data,
	})
}

func toAdminEmployeeResponse(e *model.Employee) adminEmployeeResponse {
	return adminEmployeeResponse{
		employeeResponse: toEmployeeResponse(e),
		IsActive:         e.IsActive,
		RegisteredAt:     e.RegisteredAt,
	}
}
