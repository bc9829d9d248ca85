package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type (
	Repository interface {
		// AppendLog adds log as the newest entry.
		AppendLog(ctx context.Context, log AuditLog) error
		// QueryLogs returns logs newest first. QueryFilter.Search does a case-insensitive
		// match on one of AuditLog.ActorName, AuditLog.Action or AuditLog.Resource.
		QueryLogs(ctx context.Context, filter QueryFilter) ([]AuditLog, error)
	}

	// Observer is notified of every recorded AuditLog.
	Observer func(log AuditLog)

	Service struct {
		repo      Repository
		observers []Observer
		now       func() time.Time
	}
)

func NewService(repo Repository, observers ...Observer) *Service {
	return &Service{
		repo:      repo,
		observers: observers,
		now:       time.Now,
	}
}

// Record appends a new AuditLog built from e, stamped with the request origin held by ctx.
// Callers mutating state run Record inside the same core.Transactor unit as the mutation.
func (svc *Service) Record(ctx context.Context, e Entry) (AuditLog, error) {
	name := e.ActorName
	if name == "" {
		name = unknownActor
	}
	log := AuditLog{
		ID:        "audit-" + uuid.NewString(),
		ActorID:   e.ActorID,
		ActorName: name,
		Action:    e.Action,
		Resource:  e.Resource,
		IP:        OriginFrom(ctx),
		Timestamp: svc.now().UTC(),
		Details:   e.Details,
	}
	if err := svc.repo.AppendLog(ctx, log); err != nil {
		return AuditLog{}, err
	}
	for _, obs := range svc.observers {
		obs(log)
	}
	return log, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]AuditLog, error) {
	filter.Clean()
	return svc.repo.QueryLogs(ctx, filter)
}
