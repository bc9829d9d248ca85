package kpi

import "time"

// Ranges
const (
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeAll   = "all"
)

const dateLayout = "2006-01-02"

// KPI is a daily snapshot of the school's aggregate metrics.
type KPI struct {
	Date             string  `json:"date"`
	AttendanceRate   float64 `json:"attendanceRate"`
	LeaveRate        float64 `json:"leaveRate"`
	EnrollCount      int     `json:"enrollCount"`
	DAU              int     `json:"dau"`
	WAU              int     `json:"wau"`
	AvgApprovalHours float64 `json:"avgApprovalHours"`
	ErrorRate        float64 `json:"errorRate"`
}

func (k KPI) Day() (time.Time, error) {
	return time.Parse(dateLayout, k.Date)
}

type QueryFilter struct {
	Range string `query:"range"`
}

// window returns how far back the range reaches; zero means no limit.
func (qf QueryFilter) window() time.Duration {
	switch qf.Range {
	case RangeWeek:
		return 7 * 24 * time.Hour
	case RangeMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}
