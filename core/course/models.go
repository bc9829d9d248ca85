package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campus/core"
)

// Enrollment statuses
const (
	StatusEnrolled = "enrolled"
	StatusWaitlist = "waitlist"
)

type (
	Resource struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Type  string `json:"type"`
		URL   string `json:"url"`
	}

	Chapter struct {
		ID        string     `json:"id"`
		Title     string     `json:"title"`
		Resources []Resource `json:"resources"`
	}

	Course struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Grade       string    `json:"grade"`
		Credit      int       `json:"credit"`
		TeacherID   string    `json:"teacherId"`
		Capacity    int       `json:"capacity"`
		Enrolled    int       `json:"enrolled"` // derived from the enrollments on every read
		Description string    `json:"description,omitempty"`
		Chapters    []Chapter `json:"chapters,omitempty"`
	}

	Enrollment struct {
		ID         string    `json:"id"`
		StudentID  string    `json:"studentId"`
		CourseID   string    `json:"courseId"`
		Status     string    `json:"status"`
		EnrolledAt time.Time `json:"enrolledAt"`
	}
)

// HasSeat reports whether one more student fits, given `enrolled` students.
func (c Course) HasSeat(enrolled int) bool {
	return enrolled < c.Capacity
}

type QueryFilter struct {
	Grade string `query:"grade"`
}

// EnrollmentFilter matches the Enrollments whose set fields are all equal.
type EnrollmentFilter struct {
	StudentID string
	CourseID  string
	Status    string
}

type EnrollRequest struct {
	CourseID string `json:"courseId" validate:"required,notblank"`
}

func (er *EnrollRequest) Validate(validate *validator.Validate) error {
	er.CourseID = core.CleanString(er.CourseID)
	return validate.Struct(er)
}
