package worker

import (
	"context"
	"errors"
	"time"

	"github.com/akiranaka1984/affiliate/internal/config"
	"github.com/akiranaka1984/affiliate/internal/logger"
	"github.com/akiranaka1984/affiliate/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultRescanInterval = 5 * time.Minute
	defaultRescanWindow   = 30 * time.Minute
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	tracking config.TrackingConfig
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, tracking config.TrackingConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
		tracking: tracking,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.ClickService != nil {
		go s.runFraudRescanLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runFraudRescanLoop 周期性复查回看窗口内的点击，补标欺诈
func (s *Service) runFraudRescanLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.ClickService == nil {
		return
	}
	interval := defaultRescanInterval
	if s.tracking.RescanIntervalSeconds > 0 {
		interval = time.Duration(s.tracking.RescanIntervalSeconds) * time.Second
	}
	window := defaultRescanWindow
	if s.tracking.RescanWindowMinutes > 0 {
		window = time.Duration(s.tracking.RescanWindowMinutes) * time.Minute
	}

	runOnce := func() {
		flagged, err := s.consumer.ClickService.RescanRecentClicks(window)
		if err != nil {
			logger.Warnw("worker_click_fraud_rescan_failed", "error", err)
			return
		}
		if flagged > 0 {
			logger.Infow("worker_click_fraud_rescan_flagged", "count", flagged)
		}
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
