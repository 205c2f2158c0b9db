package ports

import "context"

// RecomputeTask asks the stats pipeline to re-derive one user's counts.
type RecomputeTask struct {
	UserID string
	Reason string // e.g. "work_created", "invite_accepted", "verified"
}

// StatsService recomputes the denormalized per-user counts the badge layer
// reads.
type StatsService interface {
	Recompute(ctx context.Context, userID string) error
}

// StatsEnqueuer hands recompute tasks to the async dispatcher.
type StatsEnqueuer interface {
	Enqueue(task RecomputeTask)
}
