package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	"github.com/magabrotheeeer/coaching-courses/internal/metrics"
)

const runTimeout = 10 * time.Minute

// Runner выполняет один проход рассылки.
type Runner interface {
	Run(ctx context.Context) (int, error)
}

// Job — задача cron, считающая результаты прохода в метриках.
type Job struct {
	runner  Runner
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewJob создает задачу рассылки.
func NewJob(runner Runner, m *metrics.Metrics, log *slog.Logger) *Job {
	return &Job{runner: runner, metrics: m, log: log}
}

// Execute выполняет один проход в рамках ctx.
func (j *Job) Execute(ctx context.Context) {
	const op = "notifier.Job.Execute"
	log := j.log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	started := time.Now()
	sent, err := j.runner.Run(ctx)
	if sent > 0 {
		j.metrics.NotificationsPublished.Add(float64(sent))
	}
	if err != nil {
		j.metrics.NotifierRuns.WithLabelValues("error").Inc()
		log.Error("notifier run failed", sl.Err(err), slog.Int("published", sent))
		return
	}
	j.metrics.NotifierRuns.WithLabelValues("ok").Inc()
	log.Info("notifier run finished",
		slog.Int("published", sent),
		slog.Duration("took", time.Since(started)))
}

// NewScheduler создает cron с задачей job по расписанию schedule (с секундами).
// Новый проход не начинается, пока не закончился предыдущий.
func NewScheduler(ctx context.Context, schedule string, job *Job, log *slog.Logger) (*cron.Cron, error) {
	const op = "notifier.NewScheduler"
	logger := cronLogger{log: log}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(schedule, func() { job.Execute(ctx) }); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// cronLogger пишет сообщения cron в slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{sl.Err(err)}, keysAndValues...)...)
}
