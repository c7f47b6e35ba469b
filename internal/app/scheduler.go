package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Expirer closes pending requests whose response deadline has passed
type Expirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	expirer  Expirer
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler создаёт планировщик. interval <= 0 отключает зачистку.
func NewScheduler(expirer Expirer, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		expirer:  expirer,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Expiry sweep disabled")
		return
	}

	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))
	s.wg.Add(1)
	go s.runExpiryTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

// runExpiryTask периодически переводит просроченные заявки в expired
func (s *Scheduler) runExpiryTask(ctx context.Context) {
	defer s.wg.Done()

	// Первый запуск сразу при старте
	s.expireRequests(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireRequests(ctx)
		case <-s.stopChan:
			s.logger.Info("Expiry task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Expiry task cancelled")
			return
		}
	}
}

func (s *Scheduler) expireRequests(ctx context.Context) {
	n, err := s.expirer.ExpireStale(ctx)
	if err != nil {
		s.logger.Error("Failed to expire stale requests", zap.Error(err))
		return
	}
	s.logger.Debug("Expiry sweep finished", zap.Int64("expired", n))
}
