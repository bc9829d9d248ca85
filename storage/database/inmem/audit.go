package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/campus/core/audit"
)

type auditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) audit.Repository {
	return &auditRepository{db: db}
}

func (repo *auditRepository) AppendLog(ctx context.Context, log audit.AuditLog) error {
	defer repo.db.lock(ctx)()
	repo.db.t.audits = prepend(repo.db.t.audits, log)
	return nil
}

func (repo *auditRepository) QueryLogs(ctx context.Context, filter audit.QueryFilter) ([]audit.AuditLog, error) {
	defer repo.db.rlock(ctx)()

	logs := make([]audit.AuditLog, 0)
	for _, log := range repo.db.t.audits {
		if len(logs) >= filter.Limit {
			break
		}
		if filter.Search == "" ||
			strings.Contains(strings.ToLower(log.ActorName), filter.Search) ||
			strings.Contains(strings.ToLower(log.Action), filter.Search) ||
			strings.Contains(strings.ToLower(log.Resource), filter.Search) {
			logs = append(logs, log)
		}
	}
	return logs, nil
}
