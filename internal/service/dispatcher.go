package service

import (
	"context"
	"fmt"

	"github.com/partshub/internal/events"
	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/models"
	"github.com/partshub/internal/queue"
	"github.com/partshub/internal/repository"
)

// Dispatcher 通知与订单事件的投递入口：队列启用时异步，否则同步执行
type Dispatcher struct {
	queueClient      *queue.Client
	notificationRepo repository.NotificationRepository
	publisher        events.Publisher
	recorder         events.Recorder
}

// NewDispatcher 创建投递器
func NewDispatcher(queueClient *queue.Client, notificationRepo repository.NotificationRepository, publisher events.Publisher, recorder events.Recorder) *Dispatcher {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if recorder == nil {
		recorder = events.NopRecorder{}
	}
	return &Dispatcher{
		queueClient:      queueClient,
		notificationRepo: notificationRepo,
		publisher:        publisher,
		recorder:         recorder,
	}
}

// Notify 投递站内通知，失败只记录日志
func (d *Dispatcher) Notify(ctx context.Context, payload queue.NotificationPayload) {
	if d == nil || len(payload.UserIDs) == 0 {
		return
	}
	if d.queueClient.Enabled() {
		err := d.queueClient.EnqueueNotification(payload)
		if err == nil {
			return
		}
		logger.Warnw("notification_enqueue_failed", "order_id", payload.OrderID, "error", err)
	}
	if err := d.DeliverNotification(ctx, payload); err != nil {
		logger.Warnw("notification_deliver_failed", "order_id", payload.OrderID, "error", err)
	}
}

// Emit 外发订单事件并上报指标，失败只记录日志
func (d *Dispatcher) Emit(ctx context.Context, event events.Event, metric string) {
	if d == nil {
		return
	}
	payload := queue.OrderEventPayload{Event: event, Metric: metric}
	if d.queueClient.Enabled() {
		err := d.queueClient.EnqueueOrderEvent(payload)
		if err == nil {
			return
		}
		logger.Warnw("order_event_enqueue_failed", "order_id", event.OrderID, "event_type", event.Type, "error", err)
	}
	if err := d.DeliverEvent(ctx, payload); err != nil {
		logger.Warnw("order_event_deliver_failed", "order_id", event.OrderID, "event_type", event.Type, "error", err)
	}
}

// DeliverNotification 写入通知（worker 与同步路径共用）
func (d *Dispatcher) DeliverNotification(_ context.Context, payload queue.NotificationPayload) error {
	if d.notificationRepo == nil {
		return fmt.Errorf("notification repository is not configured")
	}
	var orderID *uint
	if payload.OrderID != 0 {
		id := payload.OrderID
		orderID = &id
	}
	notifications := make([]models.Notification, 0, len(payload.UserIDs))
	seen := make(map[uint]struct{}, len(payload.UserIDs))
	for _, userID := range payload.UserIDs {
		if userID == 0 {
			continue
		}
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		notifications = append(notifications, models.Notification{
			UserID:  userID,
			Title:   payload.Title,
			Message: payload.Message,
			Type:    payload.Type,
			OrderID: orderID,
		})
	}
	return d.notificationRepo.CreateBatch(notifications)
}

// DeliverEvent 发布事件并上报指标（worker 与同步路径共用）
func (d *Dispatcher) DeliverEvent(ctx context.Context, payload queue.OrderEventPayload) error {
	if err := d.publisher.Publish(ctx, payload.Event); err != nil {
		return err
	}
	if payload.Metric == "" {
		return nil
	}
	if err := d.recorder.Count(ctx, payload.Metric, 1); err != nil {
		logger.Warnw("metric_record_failed", "metric", payload.Metric, "error", err)
	}
	return nil
}
