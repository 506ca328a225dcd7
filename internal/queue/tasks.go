package queue

import (
	"encoding/json"

	"github.com/partshub/internal/constants"
	"github.com/partshub/internal/events"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationSend 站内通知投递任务
	TaskNotificationSend = constants.TaskNotificationSend
	// TaskOrderEvent 订单事件外发任务
	TaskOrderEvent = constants.TaskOrderEvent
)

// NotificationPayload 站内通知任务载荷，同一内容发给多个用户
type NotificationPayload struct {
	UserIDs []uint `json:"user_ids"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	OrderID uint   `json:"order_id,omitempty"`
}

// OrderEventPayload 订单事件任务载荷
type OrderEventPayload struct {
	Event  events.Event `json:"event"`
	Metric string       `json:"metric,omitempty"`
}

// NewNotificationTask 创建站内通知任务
func NewNotificationTask(payload NotificationPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationSend, body), nil
}

// NewOrderEventTask 创建订单事件任务
func NewOrderEventTask(payload OrderEventPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderEvent, body), nil
}
