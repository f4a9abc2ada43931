package audit

import "context"

// Entry is one append-only audit record. Old and New are serialized to JSON.
type Entry struct {
	ActorID    int64
	Action     string
	EntityType string
	EntityID   int64
	Old        interface{}
	New        interface{}
}

// Repository is a write-only sink. Callers treat writes as fire-and-forget;
// a failed write must never abort the operation being audited.
type Repository interface {
	Record(ctx context.Context, e Entry) error
}
