package inmemdb

import (
	"context"

	"github.com/trezcool/campus/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	defer repo.db.rlock(ctx)()

	recs := make([]attendance.Record, 0)
	for _, rec := range repo.db.t.attendance {
		if (filter.PersonID == "" || rec.PersonID == filter.PersonID) &&
			(filter.Date == "" || rec.Date == filter.Date) {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (repo *attendanceRepository) CreateRecords(ctx context.Context, recs ...attendance.Record) error {
	defer repo.db.lock(ctx)()
	repo.db.t.attendance = append(repo.db.t.attendance, recs...)
	return nil
}
