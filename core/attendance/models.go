package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campus/core"
)

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

// Person types
const (
	PersonStudent = "Student"
	PersonTeacher = "Teacher"
)

// Record is an immutable attendance mark for one person on one date.
type Record struct {
	ID         string     `json:"id"`
	Date       string     `json:"date"`
	PersonType string     `json:"personType"`
	PersonID   string     `json:"personId"`
	Status     string     `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	LessonID   string     `json:"lessonId,omitempty"`
	LessonName string     `json:"lessonName,omitempty"`
	MarkedBy   string     `json:"markedBy,omitempty"`
	MarkedAt   *time.Time `json:"markedAt,omitempty"`
}

type QueryFilter struct {
	Role     string `query:"role"`
	Date     string `query:"date"`
	PersonID string `query:"person"`
}

func (qf *QueryFilter) Clean() {
	qf.Role = core.CleanString(qf.Role)
	qf.Date = core.CleanString(qf.Date)
	qf.PersonID = core.CleanString(qf.PersonID)
}

// Mark is a single entry of a MarkRequest.
type Mark struct {
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	PersonID   string `json:"personId" validate:"required,notblank"`
	PersonType string `json:"personType" validate:"omitempty,oneof=Student Teacher"`
	Status     string `json:"status" validate:"required,notblank"`
	Reason     string `json:"reason"`
	LessonID   string `json:"lessonId"`
	LessonName string `json:"lessonName"`
}

// MarkRequest is a batch of marks, accepted or rejected as a whole.
type MarkRequest struct {
	Records []Mark `json:"records" validate:"required,min=1,dive"`
}

func (mr *MarkRequest) Validate(validate *validator.Validate) error {
	for i := range mr.Records {
		m := &mr.Records[i]
		m.Date = core.CleanString(m.Date)
		m.PersonID = core.CleanString(m.PersonID)
		m.PersonType = core.CleanString(m.PersonType)
		if m.PersonType == "" {
			m.PersonType = PersonStudent
		}
		m.Status = core.CleanString(m.Status, true /* lower */)
		m.Reason = core.CleanString(m.Reason)
		m.LessonID = core.CleanString(m.LessonID)
		m.LessonName = core.CleanString(m.LessonName)
	}
	return validate.Struct(mr)
}
