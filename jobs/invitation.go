package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/synergy-shm/synergy/internal/jobs"
	"github.com/synergy-shm/synergy/internal/rbac"
)

var invitationBody = template.Must(template.New("invitation").Parse(`Ciao,

{{if .Inviter}}{{.Inviter}} ti ha invitato{{else}}Sei stato invitato{{end}} su Synergy SHM con il ruolo {{.Role}}.

Completa la registrazione da questo indirizzo:
{{.Link}}
`))

// InvitationJob sends the mail of a pending account.
type InvitationJob struct {
	Mailer  Mailer
	BaseURL string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewInvitationJob initialises the invitation handler.
func NewInvitationJob(mailer Mailer, baseURL string, logger *slog.Logger, metrics *jobmetrics.Metrics) *InvitationJob {
	return &InvitationJob{Mailer: mailer, BaseURL: strings.TrimRight(baseURL, "/"), Logger: logger, Metrics: metrics}
}

// Handle renders and sends the invitation mail.
func (j *InvitationJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Mailer == nil {
		return errors.New("invitation: handler not configured")
	}
	var payload InvitationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invitation payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Email == "" || payload.UserID == "" {
		return fmt.Errorf("invitation payload incomplete: %w", asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskInvitationMail)
	defer func() { err = tracker.End(err) }()

	msg, err := j.render(payload)
	if err != nil {
		return err
	}
	if err := j.Mailer.Send(ctx, msg); err != nil {
		j.Metrics.MailSent("failure")
		j.logger().Warn("invitation mail failed", slog.String("user", payload.UserID), slog.Any("error", err))
		return err
	}
	j.Metrics.MailSent("success")
	j.logger().Info("invitation mail sent", slog.String("user", payload.UserID), slog.String("inviter", payload.InviterID))
	return nil
}

func (j *InvitationJob) render(payload InvitationPayload) (Message, error) {
	var body strings.Builder
	err := invitationBody.Execute(&body, map[string]string{
		"Inviter": payload.Inviter,
		"Role":    rbac.Level(payload.Level).Label(),
		"Link":    j.BaseURL + "/auth/login?invite=" + payload.UserID,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: payload.Email, Subject: "Invito a Synergy SHM", Body: body.String()}, nil
}

func (j *InvitationJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
