package serve

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/darkit/schedule"
)

// maxLoggedOutput 日志中保留的输出长度
const maxLoggedOutput = 4096

// CommandJob 执行外部命令的任务，没有命令时只记录日志
type CommandJob struct {
	name   string
	argv   []string
	logger schedule.Logger
}

// NewCommandJob 创建命令任务
func NewCommandJob(name string, argv []string, logger schedule.Logger) *CommandJob {
	return &CommandJob{name: name, argv: argv, logger: logger}
}

// Run 实现 schedule.Job，ctx 取消时终止子进程
func (j *CommandJob) Run(ctx context.Context) error {
	if len(j.argv) == 0 {
		j.logger.Infof("Job %s fired", j.name)
		return nil
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, j.argv[0], j.argv[1:]...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	output := strings.TrimSpace(out.String())
	if len(output) > maxLoggedOutput {
		output = output[:maxLoggedOutput] + "..."
	}
	if err != nil {
		return fmt.Errorf("command %s: %w: %s", j.argv[0], err, output)
	}

	if output != "" {
		j.logger.Debugf("Job %s output: %s", j.name, output)
	}
	return nil
}
