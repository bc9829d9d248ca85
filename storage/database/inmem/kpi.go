package inmemdb

import (
	"context"

	"github.com/trezcool/campus/core/kpi"
)

type kpiRepository struct {
	db *DB
}

func NewKPIRepository(db *DB) kpi.Repository {
	return &kpiRepository{db: db}
}

func (repo *kpiRepository) QueryKPIs(ctx context.Context) ([]kpi.KPI, error) {
	defer repo.db.rlock(ctx)()
	return append(make([]kpi.KPI, 0, len(repo.db.t.kpis)), repo.db.t.kpis...), nil
}
