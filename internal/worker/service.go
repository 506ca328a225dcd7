package worker

import (
	"context"
	"errors"
	"time"

	"github.com/partshub/internal/config"
	"github.com/partshub/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultBacklogScanInterval = 5 * time.Minute

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	interval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
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
		interval: backlogScanInterval(consumer),
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
	if s.consumer != nil && s.consumer.Container != nil && s.consumer.OrderRepo != nil {
		go s.runBacklogLoop(ctx)
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

func (s *Service) runBacklogLoop(ctx context.Context) {
	s.consumer.scanUnassignedBacklog(time.Now())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.consumer.scanUnassignedBacklog(now)
		}
	}
}

func backlogScanInterval(consumer *Consumer) time.Duration {
	if consumer != nil && consumer.Container != nil && consumer.Config != nil && consumer.Config.Order.BacklogScanIntervalSecond > 0 {
		return time.Duration(consumer.Config.Order.BacklogScanIntervalSecond) * time.Second
	}
	return defaultBacklogScanInterval
}
