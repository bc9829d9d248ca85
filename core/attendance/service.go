package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/user"
)

type (
	Repository interface {
		// QueryRecords returns the records matching every set field of filter, in insertion order.
		QueryRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
		CreateRecords(ctx context.Context, recs ...Record) error
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

// Query lists attendance records. Students only ever see their own records,
// whatever the filter asks for.
func (svc *Service) Query(ctx context.Context, caller user.User, filter QueryFilter) ([]Record, error) {
	filter.Clean()
	if caller.IsStudent() || filter.Role == user.RoleStudent {
		filter.PersonID = caller.ID
	}
	return svc.repo.QueryRecords(ctx, filter)
}

// Mark stores every mark of mr as a new Record signed by marker.
func (svc *Service) Mark(ctx context.Context, marker user.User, mr MarkRequest) ([]Record, error) {
	if len(mr.Records) == 0 {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "records", Error: "this field is required"})
	}

	now := svc.now().UTC()
	recs := make([]Record, 0, len(mr.Records))
	for _, m := range mr.Records {
		markedAt := now
		recs = append(recs, Record{
			ID:         "att-" + uuid.NewString(),
			Date:       m.Date,
			PersonType: m.PersonType,
			PersonID:   m.PersonID,
			Status:     m.Status,
			Reason:     m.Reason,
			LessonID:   m.LessonID,
			LessonName: m.LessonName,
			MarkedBy:   marker.ID,
			MarkedAt:   &markedAt,
		})
	}

	err := svc.db.Atomic(ctx, func(ctx context.Context) error {
		if err := svc.repo.CreateRecords(ctx, recs...); err != nil {
			return errors.Wrap(err, "creating attendance records")
		}
		_, err := svc.audits.Record(ctx, audit.Entry{
			ActorID:   marker.ID,
			ActorName: marker.Name,
			Action:    "mark_attendance",
			Resource:  "/api/attendance/mark",
			Details: map[string]interface{}{
				"studentsMarked": len(recs),
				"lessonId":       recs[0].LessonID,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}
