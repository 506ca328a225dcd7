// Package client 组装客户端运行时：会话、REST 客户端、购物车、结算与轮询任务。
package client

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/partshub/internal/apiclient"
	"github.com/partshub/internal/cart"
	"github.com/partshub/internal/checkout"
	"github.com/partshub/internal/config"
	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/models"
	"github.com/partshub/internal/poller"
	"github.com/partshub/internal/session"
)

const (
	sessionKey = "session"
	cartKey    = "cart"

	TaskNotifications    = "notifications"
	TaskLocations        = "locations"
	TaskLocationReporter = "location_reporter"
)

// Options 运行时依赖，零值可用
type Options struct {
	// Persister 会话与购物车快照存储，为空时使用内存存储
	Persister  cart.Persister
	HTTPClient *http.Client
}

// Runtime 客户端运行时
type Runtime struct {
	poll config.PollConfig

	session *session.Store
	api     *apiclient.Client
	cart    *cart.Store
	pollers *poller.Group

	mu       sync.Mutex
	checkout *checkout.Coordinator
	email    string
}

// New 按配置创建运行时并恢复本地会话
func New(ctx context.Context, cfg *config.Config, opts Options) *Runtime {
	persister := opts.Persister
	if persister == nil {
		persister = cart.NewMemoryPersister()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: durationOr(cfg.Client.TimeoutMS, time.Millisecond, 15*time.Second)}
	}

	sess := session.New(sessionKey, persister)
	sess.Load(ctx)

	r := &Runtime{
		poll:    cfg.Poll,
		session: sess,
		api:     apiclient.New(cfg.Client.BaseURL, sess, apiclient.WithHTTPClient(httpClient)),
		cart:    cart.New(ctx, cartKey, persister),
		pollers: poller.NewGroup(),
	}
	// 401 可能来自轮询任务内部，停止任务需异步进行
	sess.OnTeardown(func() {
		go r.pollers.StopAll()
	})
	sess.OnTeardown(r.dropCheckout)
	return r
}

// Session 当前会话
func (r *Runtime) Session() *session.Store {
	return r.session
}

// API REST 客户端
func (r *Runtime) API() *apiclient.Client {
	return r.api
}

// Cart 购物车
func (r *Runtime) Cart() *cart.Store {
	return r.cart
}

// Pollers 轮询任务组
func (r *Runtime) Pollers() *poller.Group {
	return r.pollers
}

// Checkout 当前用户的结算协调器；切换账号后重新创建
func (r *Runtime) Checkout() *checkout.Coordinator {
	email := ""
	if user := r.session.User(); user != nil {
		email = strings.TrimSpace(user.Email)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.checkout == nil || r.email != email {
		r.checkout = checkout.NewCoordinator(r.api.CheckoutBackend(), r.cart, checkout.Options{Email: email})
		r.email = email
	}
	return r.checkout
}

func (r *Runtime) dropCheckout() {
	r.mu.Lock()
	r.checkout = nil
	r.email = ""
	r.mu.Unlock()
}

// WatchNotifications 按配置间隔拉取通知
func (r *Runtime) WatchNotifications(ctx context.Context, onUpdate func([]models.Notification)) *poller.Task {
	interval := durationOr(r.poll.NotificationIntervalSeconds, time.Second, 30*time.Second)
	return r.pollers.Start(ctx, TaskNotifications, interval, func(ctx context.Context) error {
		notifications, err := r.api.ListNotifications(ctx)
		if err != nil {
			return err
		}
		if ctx.Err() == nil && onUpdate != nil {
			onUpdate(notifications)
		}
		return nil
	})
}

// WatchLocations 按配置间隔拉取配送员位置
func (r *Runtime) WatchLocations(ctx context.Context, onUpdate func([]models.DispatcherLocation)) *poller.Task {
	interval := durationOr(r.poll.LocationIntervalSeconds, time.Second, 10*time.Second)
	return r.pollers.Start(ctx, TaskLocations, interval, func(ctx context.Context) error {
		locations, err := r.api.ListDispatcherLocations(ctx)
		if err != nil {
			return err
		}
		if ctx.Err() == nil && onUpdate != nil {
			onUpdate(locations)
		}
		return nil
	})
}

// ReportLocation 配送员按位置间隔上报坐标；source 返回 ok=false 时跳过本轮
func (r *Runtime) ReportLocation(ctx context.Context, source func() (latitude, longitude float64, ok bool)) *poller.Task {
	interval := durationOr(r.poll.LocationIntervalSeconds, time.Second, 10*time.Second)
	return r.pollers.Start(ctx, TaskLocationReporter, interval, func(ctx context.Context) error {
		latitude, longitude, ok := source()
		if !ok {
			return nil
		}
		return r.api.UpdateLocation(ctx, latitude, longitude)
	})
}

// Logout 注销并停止全部轮询
func (r *Runtime) Logout(ctx context.Context) {
	r.pollers.StopAll()
	r.api.Logout(ctx)
	logger.Infow("client_runtime_logout")
}

// Close 停止全部轮询
func (r *Runtime) Close() {
	r.pollers.StopAll()
}

func durationOr(value int, unit, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return time.Duration(value) * unit
}
