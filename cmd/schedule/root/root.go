package root

import (
	"github.com/spf13/cobra"

	"github.com/darkit/schedule/internal/config"
)

// RootCmd 根命令
var RootCmd = &cobra.Command{
	Use:           "schedule",
	Short:         "Cron schedule preview and job runner",
	Long:          "Preview cron expressions, validate job files and run an in-process job agenda",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringP("config", "c", "", "config file (default $"+config.EnvConfig+")")
}

// GetRoot 返回根命令
func GetRoot() *cobra.Command {
	return RootCmd
}

// LoadConfig 按 --config 或 SCHEDULE_CONFIG 加载配置
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}
