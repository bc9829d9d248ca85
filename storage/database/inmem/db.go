// Package inmemdb is the mutable in-memory copy of the seed collections.
package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/attendance"
	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/course"
	"github.com/trezcool/campus/core/kpi"
	"github.com/trezcool/campus/core/leave"
	"github.com/trezcool/campus/core/message"
	"github.com/trezcool/campus/core/user"
	"github.com/trezcool/campus/storage/fixtures"
)

type (
	tables struct {
		users       []user.User
		courses     []course.Course
		enrollments []course.Enrollment
		messages    []message.Message // newest first
		attendance  []attendance.Record
		leaves      []leave.LeaveRequest // newest first
		kpis        []kpi.KPI
		audits      []audit.AuditLog // newest first
	}

	// DB guards every table with a single lock, so a unit of work run by DB.Atomic
	// sees and changes all of them consistently.
	DB struct {
		mutex sync.RWMutex
		t     tables
	}

	txKey struct{}
)

var _ core.Transactor = (*DB)(nil)

// Open copies seed into a new DB. seed is not retained.
func Open(seed *fixtures.Seed) *DB {
	return &DB{
		t: tables{
			users:       append([]user.User(nil), seed.Users...),
			courses:     append([]course.Course(nil), seed.Courses...),
			enrollments: append([]course.Enrollment(nil), seed.Enrollments...),
			messages:    append([]message.Message(nil), seed.Messages...),
			attendance:  append([]attendance.Record(nil), seed.Attendance...),
			leaves:      append([]leave.LeaveRequest(nil), seed.Leaves...),
			kpis:        append([]kpi.KPI(nil), seed.KPIs...),
			audits:      append([]audit.AuditLog(nil), seed.Audits...),
		},
	}
}

func (t tables) clone() tables {
	return tables{
		users:       append([]user.User(nil), t.users...),
		courses:     append([]course.Course(nil), t.courses...),
		enrollments: append([]course.Enrollment(nil), t.enrollments...),
		messages:    append([]message.Message(nil), t.messages...),
		attendance:  append([]attendance.Record(nil), t.attendance...),
		leaves:      append([]leave.LeaveRequest(nil), t.leaves...),
		kpis:        append([]kpi.KPI(nil), t.kpis...),
		audits:      append([]audit.AuditLog(nil), t.audits...),
	}
}

// Atomic runs fn holding the write lock. Repository calls made with the ctx passed to fn
// do not lock again. When fn fails, every table is restored to its state before fn.
// Nested calls join the enclosing unit.
func (db *DB) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx, db) {
		return fn(ctx)
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	snapshot := db.t.clone()
	if err := fn(context.WithValue(ctx, txKey{}, db)); err != nil {
		db.t = snapshot
		return err
	}
	return nil
}

func inTx(ctx context.Context, db *DB) bool {
	tx, ok := ctx.Value(txKey{}).(*DB)
	return ok && tx == db
}

func noop() {}

// rlock read-locks the DB unless ctx runs inside DB.Atomic. It returns the matching unlock.
func (db *DB) rlock(ctx context.Context) func() {
	if inTx(ctx, db) {
		return noop
	}
	db.mutex.RLock()
	return db.mutex.RUnlock
}

// lock write-locks the DB unless ctx runs inside DB.Atomic. It returns the matching unlock.
func (db *DB) lock(ctx context.Context) func() {
	if inTx(ctx, db) {
		return noop
	}
	db.mutex.Lock()
	return db.mutex.Unlock
}

// prepend inserts v at the front of s.
func prepend[T any](s []T, v T) []T {
	s = append(s, v)
	copy(s[1:], s)
	s[0] = v
	return s
}
