package course

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/user"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("course not found")
	ErrAlreadyEnrolled = core.NewConflictError("already enrolled")
)

type (
	Repository interface {
		QueryCourses(ctx context.Context, filter QueryFilter) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryEnrollments(ctx context.Context, filter EnrollmentFilter) ([]Enrollment, error)
		CreateEnrollment(ctx context.Context, enr Enrollment) error
	}

	Service struct {
		db     core.Transactor
		repo   Repository
		audits *audit.Service
		now    func() time.Time
	}
)

func NewService(db core.Transactor, repo Repository, audits *audit.Service) *Service {
	return &Service{
		db:     db,
		repo:   repo,
		audits: audits,
		now:    time.Now,
	}
}

func (svc *Service) countEnrolled(ctx context.Context, courseID string) (int, error) {
	enrs, err := svc.repo.QueryEnrollments(ctx, EnrollmentFilter{CourseID: courseID, Status: StatusEnrolled})
	if err != nil {
		return 0, errors.Wrap(err, "counting enrollments")
	}
	return len(enrs), nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Course, error) {
	filter.Grade = core.CleanString(filter.Grade)
	courses, err := svc.repo.QueryCourses(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		if courses[i].Enrolled, err = svc.countEnrolled(ctx, courses[i].ID); err != nil {
			return nil, err
		}
	}
	return courses, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, core.CleanString(id))
	if err != nil {
		return Course{}, err
	}
	crs.Enrolled, err = svc.countEnrolled(ctx, crs.ID)
	return crs, err
}

// Enroll adds student to the course, or to its waitlist when the course is full.
// A student already holding an Enrollment for the course, of any status, gets ErrAlreadyEnrolled.
func (svc *Service) Enroll(ctx context.Context, student user.User, er EnrollRequest) (Enrollment, error) {
	var enr Enrollment
	err := svc.db.Atomic(ctx, func(ctx context.Context) error {
		crs, err := svc.repo.GetCourseByID(ctx, er.CourseID)
		if err != nil {
			return err
		}

		existing, err := svc.repo.QueryEnrollments(ctx, EnrollmentFilter{StudentID: student.ID, CourseID: crs.ID})
		if err != nil {
			return errors.Wrap(err, "querying enrollments")
		}
		if len(existing) > 0 {
			return ErrAlreadyEnrolled
		}

		enrolled, err := svc.countEnrolled(ctx, crs.ID)
		if err != nil {
			return err
		}
		status := StatusWaitlist
		if crs.HasSeat(enrolled) {
			status = StatusEnrolled
		}

		enr = Enrollment{
			ID:         "enr-" + uuid.NewString(),
			StudentID:  student.ID,
			CourseID:   crs.ID,
			Status:     status,
			EnrolledAt: svc.now().UTC(),
		}
		if err = svc.repo.CreateEnrollment(ctx, enr); err != nil {
			return errors.Wrap(err, "creating enrollment")
		}

		_, err = svc.audits.Record(ctx, audit.Entry{
			ActorID:   student.ID,
			ActorName: student.Name,
			Action:    "course_enrollment",
			Resource:  "/api/enroll",
			Details: map[string]interface{}{
				"courseId":         crs.ID,
				"courseName":       crs.Name,
				"enrollmentStatus": status,
			},
		})
		return err
	})
	if err != nil {
		return Enrollment{}, err
	}
	return enr, nil
}

// Enrollments lists the caller's own Enrollments. Holders of the admin wildcard see all of them.
func (svc *Service) Enrollments(ctx context.Context, caller user.User) ([]Enrollment, error) {
	var filter EnrollmentFilter
	if !caller.HasPermission(user.PermAdminAll) {
		filter.StudentID = caller.ID
	}
	return svc.repo.QueryEnrollments(ctx, filter)
}
