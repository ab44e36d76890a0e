package next

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/darkit/schedule"
	"github.com/darkit/schedule/cmd/schedule/output"
)

const maxCount = 1000

// NewCommand 创建 next 命令
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next <expr>",
		Short: "Print the upcoming occurrences of a schedule",
		Example: `  schedule next "0 30 9 * * 1-5"
  schedule next @daily -n 3
  schedule next 0 0 1 1 '*' --after 2030-01-01T00:00:00Z`,
		Args: cobra.MinimumNArgs(1),
		RunE: runNext,
	}

	cmd.Flags().IntP("count", "n", 5, "number of occurrences to print")
	cmd.Flags().String("after", "", "RFC3339 reference time (default now)")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	if count < 1 || count > maxCount {
		return fmt.Errorf("count must be between 1 and %d", maxCount)
	}

	now := time.Now().UTC()
	after := now
	if v, _ := cmd.Flags().GetString("after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("invalid --after: %w", err)
		}
		after = t.UTC()
	}

	// 表达式可以不加引号，按空格拼接
	expr := strings.Join(args, " ")
	s, err := schedule.Parse(expr)
	if err != nil {
		return err
	}

	occurrences := s.UpcomingAt(after, now, count)
	out := cmd.OutOrStdout()
	if len(occurrences) == 0 {
		fmt.Fprintf(out, "%s has no occurrence within the lookahead horizon\n", s)
		return nil
	}

	rows := make([][]interface{}, 0, len(occurrences))
	for i, t := range occurrences {
		rows = append(rows, []interface{}{
			i + 1,
			t.Format(time.RFC3339),
			t.Weekday().String(),
			t.Sub(after).Round(time.Second).String(),
		})
	}
	fmt.Fprintf(out, "%s (%s)\n", s, s.Kind())
	output.RenderTable(out, []string{"#", "Time (UTC)", "Weekday", "After Reference"}, rows)
	return nil
}
