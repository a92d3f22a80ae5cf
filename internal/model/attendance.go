package model

import (
	"encoding/json"
	"time"
)

// SessionSlot は1日4回の打刻枠を表す。
type SessionSlot string

const (
	// SessionMorning は朝の打刻枠。
	SessionMorning SessionSlot = "morning"
	// SessionLunch は昼休憩前の打刻枠。
	SessionLunch SessionSlot = "lunch"
	// SessionPost は昼休憩後の打刻枠。
	SessionPost SessionSlot = "post"
	// SessionEvening は終業時の打刻枠。
	SessionEvening SessionSlot = "evening"
)

// SessionSlots は打刻枠を1日の順序で並べたもの。
var SessionSlots = []SessionSlot{SessionMorning, SessionLunch, SessionPost, SessionEvening}

// SlotsPerDay はフル出勤とみなす打刻枠の数。
const SlotsPerDay = 4

// ParseSessionSlot は文字列を打刻枠に変換する。認識できない場合はfalseを返す。
func ParseSessionSlot(s string) (SessionSlot, bool) {
	for _, slot := range SessionSlots {
		if string(slot) == s {
			return slot, true
		}
	}
	return "", false
}

// DayStatus は1日分の出勤区分を表す。
type DayStatus string

const (
	// DayStatusFull は4枠すべて打刻済み。
	DayStatusFull DayStatus = "full"
	// DayStatusPartial は1〜3枠打刻済み。
	DayStatusPartial DayStatus = "partial"
	// DayStatusAbsent は打刻なし。
	DayStatusAbsent DayStatus = "absent"
)

// ClassifyDay は打刻数から出勤区分を判定する。
func ClassifyDay(sessionCount int) DayStatus {
	switch {
	case sessionCount == SlotsPerDay:
		return DayStatusFull
	case sessionCount > 0:
		return DayStatusPartial
	default:
		return DayStatusAbsent
	}
}

// Sessions は打刻枠ごとの打刻時刻。打刻済みの枠のみキーが存在する。
type Sessions map[SessionSlot]time.Time

// MarshalJSON は打刻済みの枠のみを含むJSONオブジェクトを出力する。
// nilの場合も空オブジェクトを出力する。
func (s Sessions) MarshalJSON() ([]byte, error) {
	m := make(map[SessionSlot]time.Time, len(s))
	for k, v := range s {
		m[k] = v
	}
	return json.Marshal(m)
}

// AttendanceRecord は従業員1人・1日分の打刻記録。
// (EmployeeID, Date) の組はストア内で一意。
type AttendanceRecord struct {
	ID         string
	EmployeeID string
	Date       string // YYYY-MM-DD
	Sessions   Sessions
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SessionCount は打刻済みの枠数を返す。
func (r *AttendanceRecord) SessionCount() int {
	if r == nil {
		return 0
	}
	return len(r.Sessions)
}

// Status は記録の出勤区分を返す。nilの記録は欠勤とみなす。
func (r *AttendanceRecord) Status() DayStatus {
	return ClassifyDay(r.SessionCount())
}

// HasSession は指定枠が打刻済みかを返す。
func (r *AttendanceRecord) HasSession(slot SessionSlot) bool {
	if r == nil {
		return false
	}
	_, ok := r.Sessions[slot]
	return ok
}

// Clone は記録のディープコピーを返す。
func (r *AttendanceRecord) Clone() *AttendanceRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Sessions = make(Sessions, len(r.Sessions))
	for k, v := range r.Sessions {
		c.Sessions[k] = v
	}
	return &c
}

// DateRange は日付の範囲指定。StartとEndはそれぞれ独立に省略可能（空文字）で、両端を含む。
type DateRange struct {
	Start string
	End   string
}

// Contains は日付が範囲内かを返す。正規形の日付は辞書順と時系列順が一致する。
func (d DateRange) Contains(date string) bool {
	if d.Start != "" && date < d.Start {
		return false
	}
	if d.End != "" && date > d.End {
		return false
	}
	return true
}
