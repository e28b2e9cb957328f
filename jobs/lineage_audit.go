package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/synergy-shm/synergy/internal/jobs"
	"github.com/synergy-shm/synergy/internal/rbac"
	"github.com/synergy-shm/synergy/internal/users"
)

// Violation kinds reported by the lineage audit.
const (
	ViolationUnknownParent = "unknown_parent"
	ViolationCycle         = "cycle"
	ViolationInverted      = "inverted"
)

// UserLister lists the user directory.
type UserLister interface {
	ListUsers(ctx context.Context) ([]users.User, error)
}

// LineageAuditJob reports lineage violations in the user directory. It never
// modifies data.
type LineageAuditJob struct {
	Users   UserLister
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLineageAuditJob initialises the lineage audit handler.
func NewLineageAuditJob(users UserLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *LineageAuditJob {
	return &LineageAuditJob{Users: users, Logger: logger, Metrics: metrics}
}

// Handle runs the audit.
func (j *LineageAuditJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Users == nil {
		return errors.New("lineage audit: handler not configured")
	}
	var payload LineageAuditPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("lineage audit payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	_, err = j.Run(ctx, payload.Trigger)
	return err
}

// Run audits the directory and returns the violations found.
func (j *LineageAuditJob) Run(ctx context.Context, trigger string) (violations []rbac.LineageViolation, err error) {
	tracker := j.Metrics.Track(TaskLineageAudit)
	defer func() { err = tracker.End(err) }()

	start := time.Now()
	logger := j.logger().With(slog.String("trigger", trigger))
	list, err := j.Users.ListUsers(ctx)
	if err != nil {
		logger.Error("lineage audit failed", slog.Any("error", err))
		return nil, err
	}

	violations = rbac.ValidateLineage(users.LineageNodes(list))
	counts := make(map[string]int, 3)
	for _, v := range violations {
		kind := violationKind(v.Err)
		counts[kind]++
		logger.Warn("lineage violation", slog.String("user", v.ID), slog.String("kind", kind))
	}
	j.Metrics.SetLineageViolations(counts, ViolationUnknownParent, ViolationCycle, ViolationInverted)
	logger.Info("completed lineage audit",
		slog.Int("users", len(list)),
		slog.Int("violations", len(violations)),
		slog.Duration("duration", time.Since(start)),
	)
	return violations, nil
}

func violationKind(err error) string {
	switch {
	case errors.Is(err, rbac.ErrLineageUnknownParent):
		return ViolationUnknownParent
	case errors.Is(err, rbac.ErrLineageCycle):
		return ViolationCycle
	default:
		return ViolationInverted
	}
}

func (j *LineageAuditJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
