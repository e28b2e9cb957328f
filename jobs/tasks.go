package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInvitationMail delivers the mail of a freshly invited user.
	TaskInvitationMail = "mail:invitation"
	// TaskLineageAudit validates the back-references of the user directory.
	TaskLineageAudit = "users:lineage_audit"
)

// InvitationPayload describes an invitation mail.
type InvitationPayload struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Level     int    `json:"level"`
	InviterID string `json:"inviter_id"`
	Inviter   string `json:"inviter"`
	ProjectID string `json:"project_id,omitempty"`
}

// NewInvitationTask constructs an Asynq task.
func NewInvitationTask(payload InvitationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvitationMail, data, asynq.MaxRetry(5)), nil
}

// LineageAuditPayload configures a lineage audit run.
type LineageAuditPayload struct {
	Trigger string `json:"trigger"`
}

// NewLineageAuditTask constructs an Asynq task.
func NewLineageAuditTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(LineageAuditPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLineageAudit, data), nil
}
