package audit

import (
	"context"
	"time"

	"github.com/trezcool/campus/core"
)

const (
	defaultLimit  = 100
	unknownActor  = "Unknown"
	unknownOrigin = "unknown"
)

// AuditLog is one entry of the append-only trail of mutating actions.
type AuditLog struct {
	ID        string                 `json:"id"`
	ActorID   string                 `json:"actorId"`
	ActorName string                 `json:"actorName"`
	Action    string                 `json:"action"`
	Resource  string                 `json:"resource"`
	IP        string                 `json:"ip"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Entry contains information needed to record an AuditLog.
type Entry struct {
	ActorID   string
	ActorName string
	Action    string
	Resource  string
	Details   map[string]interface{}
}

type QueryFilter struct {
	Search string `query:"search"`
	Limit  int    `query:"limit"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
	if qf.Limit <= 0 {
		qf.Limit = defaultLimit
	}
}

type originKey struct{}

// WithOrigin returns a copy of ctx carrying the originating address of the request.
func WithOrigin(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, originKey{}, ip)
}

// OriginFrom returns the originating address stored in ctx.
func OriginFrom(ctx context.Context) string {
	if ip, ok := ctx.Value(originKey{}).(string); ok && ip != "" {
		return ip
	}
	return unknownOrigin
}
