package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/synergy-shm/synergy/cmd/synergy/cli"
)

const jobsUsage = `usage: synergy jobs <command>

commands:
  trigger <type>       enqueue a job (users:lineage_audit)
  stats                show default queue counters
  scheduled [-n size]  list scheduled tasks`

// runJobs executes a jobs subcommand and returns the process exit code.
func runJobs(ctx context.Context, c *cli.JobsCLI, args []string, out io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(out, jobsUsage)
		return 2
	}
	switch args[0] {
	case "trigger":
		if len(args) != 2 {
			fmt.Fprintln(out, jobsUsage)
			return 2
		}
		info, err := c.Trigger(ctx, args[1])
		if err != nil {
			fmt.Fprintf(out, "trigger failed: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	case "stats":
		stats, err := c.InspectQueue()
		if err != nil {
			fmt.Fprintf(out, "inspect failed: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
	case "scheduled":
		fs := flag.NewFlagSet("scheduled", flag.ContinueOnError)
		fs.SetOutput(out)
		size := fs.Int("n", 10, "page size")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		tasks, err := c.ListScheduled(*size)
		if err != nil {
			fmt.Fprintf(out, "list failed: %v\n", err)
			return 1
		}
		for _, task := range tasks {
			fmt.Fprintf(out, "%s %s next=%s\n", task.ID, task.Type, task.NextProcessAt.Format("2006-01-02T15:04:05Z07:00"))
		}
	default:
		fmt.Fprintln(out, jobsUsage)
		return 2
	}
	return 0
}
