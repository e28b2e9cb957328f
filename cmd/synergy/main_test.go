package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synergy-shm/synergy/cmd/synergy/cli"
	"github.com/synergy-shm/synergy/internal/app"
	_ "github.com/synergy-shm/synergy/internal/testing/guard"
	"github.com/synergy-shm/synergy/jobs"
)

type fakeClient struct{ enqueued []string }

func (f *fakeClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.enqueued = append(f.enqueued, task.Type())
	return &asynq.TaskInfo{ID: "t-1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (f *fakeClient) Close() error { return nil }

type fakeInspector struct{}

func (fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return &asynq.QueueInfo{Pending: 4, Active: 1}, nil
}

func (fakeInspector) ListScheduledTasks(string, ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return []*asynq.TaskInfo{{ID: "t-2", Type: jobs.TaskInvitationMail}}, nil
}

func (fakeInspector) Close() error { return nil }

func TestMainSkipsInTestMode(t *testing.T) {
	require.True(t, app.InTestMode())
	main()
}

func TestRunJobs(t *testing.T) {
	client := &fakeClient{}
	c := cli.NewJobsCLIWith(client, fakeInspector{})
	ctx := context.Background()

	var out bytes.Buffer
	require.Equal(t, 0, runJobs(ctx, c, []string{"trigger", jobs.TaskLineageAudit}, &out))
	assert.Contains(t, out.String(), "enqueued users:lineage_audit id=t-1")
	assert.Equal(t, []string{jobs.TaskLineageAudit}, client.enqueued)

	out.Reset()
	require.Equal(t, 0, runJobs(ctx, c, []string{"stats"}, &out))
	assert.Contains(t, out.String(), "pending=4 active=1")

	out.Reset()
	require.Equal(t, 0, runJobs(ctx, c, []string{"scheduled", "-n", "5"}, &out))
	assert.Contains(t, out.String(), "t-2 mail:invitation")
}

func TestRunJobsUsage(t *testing.T) {
	c := cli.NewJobsCLIWith(&fakeClient{}, fakeInspector{})
	ctx := context.Background()
	var out bytes.Buffer

	assert.Equal(t, 2, runJobs(ctx, c, nil, &out))
	assert.Equal(t, 2, runJobs(ctx, c, []string{"trigger"}, &out))
	assert.Equal(t, 2, runJobs(ctx, c, []string{"purge"}, &out))
	assert.Equal(t, 1, runJobs(ctx, c, []string{"trigger", "unknown"}, &out))
	assert.Contains(t, out.String(), "usage: synergy jobs")
}
