package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/provider"
	"github.com/partshub/internal/queue"

	"github.com/hibiken/asynq"
)

const backlogScanLimit = 50

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotificationSend, c.handleNotificationSend)
	mux.HandleFunc(queue.TaskOrderEvent, c.handleOrderEvent)
}

func (c *Consumer) handleNotificationSend(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_send_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_send_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if len(payload.UserIDs) == 0 {
		logger.Debugw("worker_notification_send_skip_no_receiver", "order_id", payload.OrderID)
		return nil
	}
	if c.Dispatcher == nil {
		logger.Warnw("worker_notification_send_skip_dispatcher_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.Dispatcher.DeliverNotification(ctx, payload); err != nil {
		logger.Warnw("worker_notification_send_failed",
			"order_id", payload.OrderID,
			"receivers", len(payload.UserIDs),
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderEvent(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_event_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderEventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_event_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.Event.Type == "" {
		logger.Debugw("worker_order_event_skip_invalid_payload", "event_id", payload.Event.ID)
		return nil
	}
	if c.Dispatcher == nil {
		logger.Warnw("worker_order_event_skip_dispatcher_nil", "event_id", payload.Event.ID)
		return nil
	}
	if err := c.Dispatcher.DeliverEvent(ctx, payload); err != nil {
		logger.Warnw("worker_order_event_publish_failed",
			"event_id", payload.Event.ID,
			"event_type", payload.Event.Type,
			"order_id", payload.Event.OrderID,
			"error", err,
		)
		return err
	}
	return nil
}

// scanUnassignedBacklog 记录已支付却超过阈值仍无人接单的订单，返回命中数量
func (c *Consumer) scanUnassignedBacklog(now time.Time) int {
	if c == nil || c.Container == nil || c.OrderRepo == nil {
		return 0
	}
	threshold := c.backlogThreshold()
	orders, err := c.OrderRepo.ListUnassignedPaidBefore(now.Add(-threshold), backlogScanLimit)
	if err != nil {
		logger.Warnw("worker_backlog_scan_failed", "error", err)
		return 0
	}
	if len(orders) == 0 {
		return 0
	}
	ids := make([]uint, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}
	logger.Warnw("order_unassigned_backlog",
		"count", len(orders),
		"order_ids", ids,
		"threshold_minutes", int(threshold/time.Minute),
	)
	return len(orders)
}

func (c *Consumer) backlogThreshold() time.Duration {
	if c.Config != nil && c.Config.Order.UnassignedBacklogMinutes > 0 {
		return time.Duration(c.Config.Order.UnassignedBacklogMinutes) * time.Minute
	}
	return 30 * time.Minute
}
