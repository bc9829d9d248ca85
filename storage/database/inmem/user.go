package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/campus/core/user"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	defer repo.db.rlock(ctx)()
	return append(make([]user.User, 0, len(repo.db.t.users)), repo.db.t.users...), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	defer repo.db.rlock(ctx)()

	for _, usr := range repo.db.t.users {
		if usr.ID == id {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) FindUser(ctx context.Context, filter user.FindFilter) (user.User, error) {
	defer repo.db.rlock(ctx)()

	for _, usr := range repo.db.t.users {
		if matchUser(usr, filter) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func matchUser(usr user.User, filter user.FindFilter) bool {
	if filter.Role != "" && !usr.HasRole(filter.Role) {
		return false
	}
	if filter.Provider != "" && !usr.HasIdentity(filter.Provider, filter.Subject) {
		return false
	}
	if filter.Login != "" {
		login := strings.ToLower(filter.Login)
		if strings.ToLower(usr.ID) != login && (usr.Email == "" || strings.ToLower(usr.Email) != login) {
			return false
		}
	}
	return true
}
