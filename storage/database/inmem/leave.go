package inmemdb

import (
	"context"

	"github.com/trezcool/campus/core/leave"
)

type leaveRepository struct {
	db *DB
}

func NewLeaveRepository(db *DB) leave.Repository {
	return &leaveRepository{db: db}
}

func (repo *leaveRepository) QueryLeaves(ctx context.Context) ([]leave.LeaveRequest, error) {
	defer repo.db.rlock(ctx)()
	return append(make([]leave.LeaveRequest, 0, len(repo.db.t.leaves)), repo.db.t.leaves...), nil
}

func (repo *leaveRepository) GetLeaveByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	defer repo.db.rlock(ctx)()

	for _, lr := range repo.db.t.leaves {
		if lr.ID == id {
			return lr, nil
		}
	}
	return leave.LeaveRequest{}, leave.ErrNotFound
}

func (repo *leaveRepository) CreateLeave(ctx context.Context, lr leave.LeaveRequest) error {
	defer repo.db.lock(ctx)()
	repo.db.t.leaves = prepend(repo.db.t.leaves, lr)
	return nil
}

func (repo *leaveRepository) UpdateLeave(ctx context.Context, lr leave.LeaveRequest) error {
	defer repo.db.lock(ctx)()

	for i := range repo.db.t.leaves {
		if repo.db.t.leaves[i].ID == lr.ID {
			repo.db.t.leaves[i] = lr
			return nil
		}
	}
	return leave.ErrNotFound
}
