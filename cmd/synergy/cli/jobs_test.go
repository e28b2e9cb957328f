package cli

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synergy-shm/synergy/jobs"
)

type stubClient struct {
	tasks  []*asynq.Task
	closed bool
}

func (s *stubClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (s *stubClient) Close() error {
	s.closed = true
	return nil
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s *stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func (s *stubInspector) ListScheduledTasks(string, ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return []*asynq.TaskInfo{{Type: jobs.TaskInvitationMail}}, s.err
}

func (s *stubInspector) Close() error { return errors.New("inspector closed twice") }

func TestTriggerLineageAudit(t *testing.T) {
	client := &stubClient{}
	c := NewJobsCLIWith(client, nil)

	info, err := c.Trigger(context.Background(), jobs.TaskLineageAudit)
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskLineageAudit, info.Type)
	require.Len(t, client.tasks, 1)

	var payload jobs.LineageAuditPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	assert.Equal(t, "manual", payload.Trigger)
}

func TestTriggerRejectsUnknownJob(t *testing.T) {
	c := NewJobsCLIWith(&stubClient{}, nil)
	_, err := c.Trigger(context.Background(), jobs.TaskInvitationMail)
	require.Error(t, err)

	var empty *JobsCLI
	_, err = empty.Trigger(context.Background(), jobs.TaskLineageAudit)
	require.Error(t, err)
}

func TestInspectQueue(t *testing.T) {
	c := NewJobsCLIWith(nil, &stubInspector{info: &asynq.QueueInfo{Pending: 3, Retry: 1, Archived: 2}})
	stats, err := c.InspectQueue()
	require.NoError(t, err)
	assert.Equal(t, QueueStats{Queue: jobs.QueueDefault, Pending: 3, Retry: 1, Archived: 2}, stats)

	scheduled, err := c.ListScheduled(0)
	require.NoError(t, err)
	require.Len(t, scheduled, 1)

	_, err = NewJobsCLIWith(nil, nil).InspectQueue()
	require.Error(t, err)
}

func TestCloseJoinsErrors(t *testing.T) {
	client := &stubClient{}
	c := NewJobsCLIWith(client, &stubInspector{})
	require.Error(t, c.Close())
	assert.True(t, client.closed)
}
