package serve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/darkit/schedule"
	"github.com/darkit/schedule/cmd/schedule/root"
	"github.com/darkit/schedule/internal/config"
	"github.com/darkit/schedule/internal/httpapi"
)

const shutdownTimeout = 10 * time.Second

// NewCommand 创建 serve 命令
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the jobs of a config file and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := root.LoadConfig(cmd)
	if err != nil {
		return err
	}

	logger, sync := NewLogger(cfg.LogFormat, cmd.ErrOrStderr())
	defer sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	agenda, err := BuildAgenda(cfg, logger, reg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	var srv *http.Server
	if cfg.Listen != "" {
		api := httpapi.New(agenda, httpapi.WithGatherer(reg), httpapi.WithLogger(logger))
		srv = &http.Server{
			Addr:              cfg.Listen,
			Handler:           api.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Infof("HTTP API listening on %s", cfg.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	if err := agenda.Start(ctx); err != nil {
		return err
	}
	logger.Infof("Running %d jobs", agenda.Len())

	select {
	case <-ctx.Done():
		logger.Infof("Shutting down")
	case err = <-errCh:
		logger.Errorf("HTTP API failed: %v", err)
	}

	agenda.Stop()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			logger.Warnf("HTTP API shutdown: %v", serr)
		}
	}
	return err
}

// BuildAgenda 根据配置创建 Agenda 并添加所有任务
func BuildAgenda(cfg *config.Config, logger schedule.Logger, reg prometheus.Registerer) (*schedule.Agenda, error) {
	opts := []schedule.Option{
		schedule.WithLogger(logger),
		schedule.WithPollInterval(cfg.PollInterval),
	}
	if reg != nil {
		opts = append(opts, schedule.WithMetrics(reg))
	}
	agenda := schedule.New(opts...)

	for _, jc := range cfg.Jobs {
		s, err := jc.ParseSchedule()
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", jc.Name, err)
		}

		jobOpts := []schedule.JobOption{schedule.WithName(jc.Name), schedule.WithTimeout(jc.Timeout)}
		if jc.Paused {
			jobOpts = append(jobOpts, schedule.WithPaused())
		}

		if _, err := agenda.Add(NewCommandJob(jc.Name, jc.Command, logger), s, jobOpts...); err != nil {
			return nil, fmt.Errorf("job %s: %w", jc.Name, err)
		}
	}
	return agenda, nil
}

// NewLogger 按格式创建日志实现，返回的函数用于退出前刷新缓冲
func NewLogger(format string, w io.Writer) (schedule.Logger, func()) {
	switch format {
	case "json":
		return schedule.NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil))), func() {}
	case "zap":
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			zapcore.InfoLevel,
		)
		zl := zap.New(core)
		return schedule.NewZapLogger(zl), func() { _ = zl.Sync() }
	}
	return schedule.NewSlogLogger(slog.New(slog.NewTextHandler(w, nil))), func() {}
}
