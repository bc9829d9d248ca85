package core

import "context"

// Transactor runs a unit of work atomically against the store:
// reads, the decision made from them, the mutation and its audit entry
// are all visible together or not at all.
type Transactor interface {
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger is any service that can record application events.
// expected args: error | map[string]interface{} | user.User (the acting user)
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
