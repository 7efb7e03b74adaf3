package remind_stale_requests

import (
	"context"
	"time"
)

// Executor один проход напоминаний
type Executor interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// WorkerConfig настройки периодического запуска
type WorkerConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
	BatchSize  int
}

// Worker периодически запускает use case напоминаний
type Worker struct {
	executor Executor
	cfg      WorkerConfig
	logger   Logger
}

// NewWorker создает воркер. Нулевые значения конфигурации заменяются значениями по умолчанию
func NewWorker(executor Executor, cfg WorkerConfig, logger Logger) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 24 * time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Worker{
		executor: executor,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run блокируется до отмены ctx
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("RemindStaleRequests: worker started, interval=%s, stale_after=%s", w.cfg.Interval, w.cfg.StaleAfter)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("RemindStaleRequests: worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	_, err := w.executor.Execute(ctx, &Request{
		StaleAfter: w.cfg.StaleAfter,
		BatchSize:  w.cfg.BatchSize,
	})
	if err != nil && ctx.Err() == nil {
		w.logger.Error("RemindStaleRequests: pass failed: %v", err)
	}
}
