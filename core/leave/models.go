package leave

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campus/core"
)

// Statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Decisions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

var acceptedLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type LeaveRequest struct {
	ID              string       `json:"id"`
	ApplicantID     string       `json:"applicantId"`
	ApplicantRole   string       `json:"applicantRole"`
	Type            string       `json:"type"`
	Start           time.Time    `json:"start"`
	End             time.Time    `json:"end"`
	Reason          string       `json:"reason"`
	Status          string       `json:"status"`
	ApproverID      string       `json:"approverId,omitempty"`
	DecidedAt       *time.Time   `json:"decidedAt,omitempty"`
	ApproverComment string       `json:"approverComment,omitempty"`
	Attachments     []Attachment `json:"attachments"`
}

// IsDecided reports whether the leave reached a terminal status.
func (lr LeaveRequest) IsDecided() bool {
	return lr.Status == StatusApproved || lr.Status == StatusRejected
}

// Days is the span of the leave rounded up to whole days.
func (lr LeaveRequest) Days() int {
	return int(math.Ceil(lr.End.Sub(lr.Start).Hours() / 24))
}

type QueryFilter struct {
	Status string `query:"status"`
}

type SubmitRequest struct {
	Type        string       `json:"type" validate:"required,notblank"`
	Start       string       `json:"start" validate:"required,leavetime"`
	End         string       `json:"end" validate:"required,leavetime"`
	Reason      string       `json:"reason" validate:"required,notblank"`
	Attachments []Attachment `json:"attachments" validate:"omitempty,dive"`
}

func (sr *SubmitRequest) Validate(validate *validator.Validate) error {
	sr.Type = core.CleanString(sr.Type, true /* lower */)
	sr.Start = core.CleanString(sr.Start)
	sr.End = core.CleanString(sr.End)
	sr.Reason = core.CleanString(sr.Reason)
	return validate.Struct(sr)
}

func (sr SubmitRequest) period() (start, end time.Time) {
	start, _ = parseTime(sr.Start)
	end, _ = parseTime(sr.End)
	return start, end
}

type DecideRequest struct {
	Action  string `json:"-" param:"action"`
	Comment string `json:"comment"`
}

func (dr *DecideRequest) Clean() {
	dr.Action = core.CleanString(dr.Action, true /* lower */)
	dr.Comment = core.CleanString(dr.Comment)
}

func parseTime(s string) (t time.Time, err error) {
	for _, layout := range acceptedLayouts {
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return t, err
}
