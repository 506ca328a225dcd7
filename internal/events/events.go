// Package events 发布订单生命周期事件并上报业务指标。
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
)

// Event 订单事件
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OrderID    uint      `json:"order_id"`
	Status     string    `json:"status,omitempty"`
	FromStatus string    `json:"from_status,omitempty"`
	ActorID    uint      `json:"actor_id,omitempty"`
	ActorRole  string    `json:"actor_role,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent 创建事件并补齐 ID 与时间
func NewEvent(eventType string, orderID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher 事件发布
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// SQSAPI SQSPublisher 用到的 SQS 接口子集
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher 把事件以 JSON 发送到 SQS 队列
type SQSPublisher struct {
	client   SQSAPI
	queueURL string
}

// NewSQSPublisher 创建 SQS 发布器
func NewSQSPublisher(client SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

// Publish 发送事件，事件类型与订单号放入 MessageAttributes 便于订阅方过滤
func (p *SQSPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	attributes := map[string]string{
		"event_type": event.Type,
		"order_id":   strconv.FormatUint(uint64(event.OrderID), 10),
	}
	input := &sqs.SendMessageInput{
		QueueUrl:          awsString(p.queueURL),
		MessageBody:       awsString(string(body)),
		MessageAttributes: make(map[string]sqstypes.MessageAttributeValue, len(attributes)),
	}
	for k, v := range attributes {
		input.MessageAttributes[k] = sqstypes.MessageAttributeValue{
			DataType:    awsString("String"),
			StringValue: awsString(v),
		}
	}
	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// NopPublisher 未配置队列时丢弃事件
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func awsString(s string) *string { return &s }
