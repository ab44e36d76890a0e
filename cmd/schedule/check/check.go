package check

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/darkit/schedule/cmd/schedule/output"
	"github.com/darkit/schedule/cmd/schedule/root"
)

// NewCommand 创建 check 命令
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate a job file and show when each job runs next",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := root.LoadConfig(cmd)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rows := make([][]interface{}, 0, len(cfg.Jobs))
	for _, job := range cfg.Jobs {
		s, err := job.ParseSchedule()
		if err != nil {
			return fmt.Errorf("job %s: %w", job.Name, err)
		}

		next := "never"
		if job.Paused {
			next = "paused"
		} else if t, ok := s.NextAt(now, now); ok {
			next = t.Format(time.RFC3339)
		}

		command := strings.Join(job.Command, " ")
		if command == "" {
			command = "-"
		}
		rows = append(rows, []interface{}{job.Name, s.String(), s.Kind().String(), next, command})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config ok: %d jobs, listen %q, log format %s\n", len(cfg.Jobs), cfg.Listen, cfg.LogFormat)
	if len(rows) > 0 {
		output.RenderTable(out, []string{"Name", "Schedule", "Kind", "Next Run", "Command"}, rows)
	}
	return nil
}
