package leave

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/user"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("leave not found")
	ErrActionNotFound = core.NewNotFoundError("unknown leave action")
	ErrAlreadyDecided = core.NewConflictError("leave already decided")
)

const displayedDayLayout = "2 Jan 2006"

type (
	Repository interface {
		// QueryLeaves returns every leave, newest first.
		QueryLeaves(ctx context.Context) ([]LeaveRequest, error)
		GetLeaveByID(ctx context.Context, id string) (LeaveRequest, error)
		// CreateLeave adds lr as the newest leave.
		CreateLeave(ctx context.Context, lr LeaveRequest) error
		UpdateLeave(ctx context.Context, lr LeaveRequest) error
	}

	Service struct {
		db     core.Transactor
		repo   Repository
		users  user.Repository
		audits *audit.Service
		emails core.EmailService
		now    func() time.Time
	}
)

func NewService(
	db core.Transactor,
	repo Repository,
	users user.Repository,
	audits *audit.Service,
	emails core.EmailService,
) *Service {
	return &Service{
		db:     db,
		repo:   repo,
		users:  users,
		audits: audits,
		emails: emails,
		now:    time.Now,
	}
}

// Query lists the leaves visible to caller, narrowed by filter:
// students see their own leaves; teachers and HODs see their own, the pending ones
// and the ones they decided; everyone else sees all of them.
func (svc *Service) Query(ctx context.Context, caller user.User, filter QueryFilter) ([]LeaveRequest, error) {
	all, err := svc.repo.QueryLeaves(ctx)
	if err != nil {
		return nil, err
	}
	status := core.CleanString(filter.Status, true /* lower */)

	leaves := make([]LeaveRequest, 0)
	for _, lr := range all {
		switch {
		case caller.IsStudent():
			if lr.ApplicantID != caller.ID {
				continue
			}
		case caller.IsTeacher() || caller.IsHOD():
			if lr.ApplicantID != caller.ID && lr.ApproverID != caller.ID && lr.Status != StatusPending {
				continue
			}
		}
		if status != "" && lr.Status != status {
			continue
		}
		leaves = append(leaves, lr)
	}
	return leaves, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (LeaveRequest, error) {
	return svc.repo.GetLeaveByID(ctx, core.CleanString(id))
}

// Submit files a new pending leave for applicant.
func (svc *Service) Submit(ctx context.Context, applicant user.User, sr SubmitRequest) (LeaveRequest, error) {
	start, end := sr.period()
	if end.Before(start) {
		return LeaveRequest{}, core.NewValidationError(nil, core.FieldError{Field: "end", Error: periodText})
	}

	role := user.RoleTeacher
	if applicant.IsStudent() {
		role = user.RoleStudent
	}
	attachments := sr.Attachments
	if attachments == nil {
		attachments = make([]Attachment, 0)
	}

	lr := LeaveRequest{
		ID:            "leave-" + uuid.NewString(),
		ApplicantID:   applicant.ID,
		ApplicantRole: role,
		Type:          sr.Type,
		Start:         start,
		End:           end,
		Reason:        sr.Reason,
		Status:        StatusPending,
		Attachments:   attachments,
	}

	err := svc.db.Atomic(ctx, func(ctx context.Context) error {
		if err := svc.repo.CreateLeave(ctx, lr); err != nil {
			return errors.Wrap(err, "creating leave")
		}
		_, err := svc.audits.Record(ctx, audit.Entry{
			ActorID:   applicant.ID,
			ActorName: applicant.Name,
			Action:    "submit_leave",
			Resource:  "/api/leaves",
			Details: map[string]interface{}{
				"leaveType": lr.Type,
				"duration":  fmt.Sprintf("%d days", lr.Days()),
			},
		})
		return err
	})
	if err != nil {
		return LeaveRequest{}, err
	}
	return lr, nil
}

// Decide approves or rejects a pending leave. A decided leave never changes again.
func (svc *Service) Decide(ctx context.Context, approver user.User, id string, dr DecideRequest) (LeaveRequest, error) {
	dr.Clean()
	var status string
	switch dr.Action {
	case ActionApprove:
		status = StatusApproved
	case ActionReject:
		status = StatusRejected
	default:
		return LeaveRequest{}, ErrActionNotFound
	}
	id = core.CleanString(id)

	var lr LeaveRequest
	err := svc.db.Atomic(ctx, func(ctx context.Context) error {
		var err error
		if lr, err = svc.repo.GetLeaveByID(ctx, id); err != nil {
			return err
		}
		if lr.IsDecided() {
			return ErrAlreadyDecided
		}

		decidedAt := svc.now().UTC()
		lr.Status = status
		lr.ApproverID = approver.ID
		lr.DecidedAt = &decidedAt
		lr.ApproverComment = dr.Comment
		if err = svc.repo.UpdateLeave(ctx, lr); err != nil {
			return errors.Wrap(err, "updating leave")
		}

		_, err = svc.audits.Record(ctx, audit.Entry{
			ActorID:   approver.ID,
			ActorName: approver.Name,
			Action:    dr.Action + "_leave",
			Resource:  fmt.Sprintf("/api/leaves/%s/%s", lr.ID, dr.Action),
			Details: map[string]interface{}{
				"leaveId":     lr.ID,
				"applicantId": lr.ApplicantID,
			},
		})
		return err
	})
	if err != nil {
		return LeaveRequest{}, err
	}

	svc.notify(ctx, approver, lr)
	return lr, nil
}

func (svc *Service) notify(ctx context.Context, approver user.User, lr LeaveRequest) {
	applicant, err := svc.users.GetUserByID(ctx, lr.ApplicantID)
	if err != nil || applicant.Email == "" {
		return
	}
	svc.emails.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: applicant.Name, Address: applicant.Email}},
		Subject:      "Your leave request was " + lr.Status,
		TemplateName: "leave_decided",
		TemplateData: map[string]interface{}{
			"ApplicantName": applicant.Name,
			"Type":          lr.Type,
			"Start":         lr.Start.Format(displayedDayLayout),
			"End":           lr.End.Format(displayedDayLayout),
			"Status":        lr.Status,
			"ApproverName":  approver.Name,
			"Comment":       lr.ApproverComment,
		},
	})
}
