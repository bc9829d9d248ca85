package kpi

import (
	"context"
	"time"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/user"
)

type (
	Repository interface {
		QueryKPIs(ctx context.Context) ([]KPI, error)
	}

	Service struct {
		repo   Repository
		audits *audit.Service
		now    func() time.Time
	}
)

func NewService(repo Repository, audits *audit.Service) *Service {
	return &Service{
		repo:   repo,
		audits: audits,
		now:    time.Now,
	}
}

// SetClock replaces the clock ranges are measured from.
func (svc *Service) SetClock(now func() time.Time) {
	svc.now = now
}

// Query returns the snapshots within the requested range and records a `view_reports` audit entry.
// An empty range means the last week; an unknown range means everything.
func (svc *Service) Query(ctx context.Context, viewer user.User, filter QueryFilter) ([]KPI, error) {
	filter.Range = core.CleanString(filter.Range, true /* lower */)
	if filter.Range == "" {
		filter.Range = RangeWeek
	}

	all, err := svc.repo.QueryKPIs(ctx)
	if err != nil {
		return nil, err
	}

	kpis := all
	if window := filter.window(); window > 0 {
		since := svc.now().UTC().Add(-window)
		kpis = make([]KPI, 0)
		for _, k := range all {
			day, err := k.Day()
			if err != nil || day.Before(since) {
				continue
			}
			kpis = append(kpis, k)
		}
	}

	_, err = svc.audits.Record(ctx, audit.Entry{
		ActorID:   viewer.ID,
		ActorName: viewer.Name,
		Action:    "view_reports",
		Resource:  "/api/kpi",
		Details:   map[string]interface{}{"range": filter.Range},
	})
	if err != nil {
		return nil, err
	}
	return kpis, nil
}
