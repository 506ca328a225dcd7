package app

import (
	"errors"
	"fmt"

	"github.com/partshub/internal/config"
	"github.com/partshub/internal/models"
	"github.com/partshub/internal/provider"
	"github.com/partshub/internal/router"
	"github.com/partshub/internal/validation"
	"github.com/partshub/internal/worker"

	"github.com/gin-gonic/gin"
)

// InitDatabase 打开数据库并迁移表结构
func InitDatabase(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		return fmt.Errorf("init database failed: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database failed: %w", err)
	}
	return nil
}

// BuildEngine 构建 HTTP 路由（供独立服务与 Lambda 共用）
func BuildEngine(cfg *config.Config) (*gin.Engine, *provider.Container, error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validation.RegisterGin(); err != nil {
		return nil, nil, err
	}
	container := provider.NewContainer(cfg)
	return router.SetupRouter(cfg, container), container, nil
}

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	engine, container, err := BuildEngine(cfg)
	if err != nil {
		return nil, err
	}

	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	// 队列未启用时通知与事件在请求内同步投递，不需要 worker
	if (mode == ModeAll || mode == ModeWorker) && cfg.Queue.Enabled {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("no services initialized for mode %q (check mode and queue config)", mode)
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode, "services", runner.Names())
	return RunWithOptions(runner, opts)
}
