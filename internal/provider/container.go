package provider

import (
	"context"
	"strings"

	"github.com/partshub/internal/authz"
	"github.com/partshub/internal/awsx"
	"github.com/partshub/internal/cache"
	"github.com/partshub/internal/config"
	"github.com/partshub/internal/constants"
	"github.com/partshub/internal/events"
	"github.com/partshub/internal/idempotency"
	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/models"
	"github.com/partshub/internal/queue"
	"github.com/partshub/internal/repository"
	"github.com/partshub/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client
	AWS         *awsx.Clients

	// Infrastructure
	Idempotency idempotency.Store
	Publisher   events.Publisher
	Recorder    events.Recorder
	CartStore   *cache.CartSnapshotStore

	// Repositories
	UserRepo         repository.UserRepository
	PartRepo         repository.PartRepository
	OrderRepo        repository.OrderRepository
	PaymentRepo      repository.PaymentRepository
	NotificationRepo repository.NotificationRepository
	LocationRepo     repository.LocationRepository
	CartSnapshotRepo *repository.GormCartSnapshotRepository
	StatsRepo        repository.StatsRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	Dispatcher          *service.Dispatcher
	PartService         *service.PartService
	OrderService        *service.OrderService
	PaymentService      *service.PaymentService
	NotificationService *service.NotificationService
	LocationService     *service.LocationService
	AdminService        *service.AdminService
}

// NewContainer 初始化容器，数据库需先由 models.InitDB 打开
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	awsClients, err := awsx.NewClients(context.Background(), cfg.AWS)
	if err != nil {
		logger.Errorw("provider_init_aws_clients_failed", "error", err)
	}

	c := &Container{
		Config:      cfg,
		DB:          models.DB,
		QueueClient: queueClient,
		AWS:         awsClients,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化基础设施（幂等、事件、指标）
	c.initInfrastructure()

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := c.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.PartRepo = repository.NewPartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.LocationRepo = repository.NewLocationRepository(db)
	c.CartSnapshotRepo = repository.NewCartSnapshotRepository(db)
	c.StatsRepo = repository.NewStatsRepository(db)
}

func (c *Container) initInfrastructure() {
	c.Idempotency = c.buildIdempotencyStore()
	c.CartStore = cache.NewCartSnapshotStore(c.CartSnapshotRepo)

	c.Publisher = events.NopPublisher{}
	c.Recorder = events.NopRecorder{}
	if c.AWS == nil {
		return
	}
	if queueURL := strings.TrimSpace(c.Config.AWS.EventsQueueURL); queueURL != "" {
		c.Publisher = events.NewSQSPublisher(c.AWS.SQS, queueURL)
	}
	if namespace := strings.TrimSpace(c.Config.AWS.MetricsNamespace); namespace != "" {
		c.Recorder = events.NewCloudWatchRecorder(c.AWS.CloudWatch, namespace)
	}
}

// buildIdempotencyStore 按配置选择幂等后端，依赖不可用时降级为 NopStore
func (c *Container) buildIdempotencyStore() idempotency.Store {
	backend := strings.ToLower(strings.TrimSpace(c.Config.Idempotency.Backend))
	ttl := c.Config.Idempotency.TTL()
	switch backend {
	case constants.IdempotencyBackendDynamoDB:
		if c.AWS == nil || strings.TrimSpace(c.Config.AWS.IdempotencyTable) == "" {
			logger.Warnw("provider_idempotency_dynamodb_unavailable", "fallback", constants.IdempotencyBackendNone)
			return idempotency.NopStore{}
		}
		return idempotency.NewDynamoStore(c.AWS.DynamoDB, c.Config.AWS.IdempotencyTable, ttl)
	case constants.IdempotencyBackendRedis:
		if !cache.Enabled() {
			logger.Warnw("provider_idempotency_redis_unavailable", "fallback", constants.IdempotencyBackendNone)
			return idempotency.NopStore{}
		}
		return idempotency.NewRedisStore(cache.Client(), cache.BuildKey(""), ttl)
	default:
		return idempotency.NopStore{}
	}
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	var gateway service.PaymentGateway
	if !c.Config.Paystack.MockMode() {
		gateway = service.NewPaystackGateway(c.Config.Paystack)
	} else {
		logger.Infow("provider_payment_mock_mode")
	}

	currency := strings.TrimSpace(c.Config.App.Currency)
	if currency == "" {
		currency = constants.DefaultCurrency
	}

	c.Dispatcher = service.NewDispatcher(c.QueueClient, c.NotificationRepo, c.Publisher, c.Recorder)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.PartService = service.NewPartService(c.PartRepo, c.UserRepo)
	c.OrderService = service.NewOrderService(c.DB, c.OrderRepo, c.PartRepo, c.UserRepo, c.Idempotency, c.Dispatcher, c.Config.Order.ListLimit)
	c.PaymentService = service.NewPaymentService(c.DB, c.OrderRepo, c.PaymentRepo, c.UserRepo, gateway, c.Dispatcher, currency)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo)
	c.LocationService = service.NewLocationService(c.LocationRepo, c.UserRepo)
	c.AdminService = service.NewAdminService(c.UserRepo, c.StatsRepo)
}
