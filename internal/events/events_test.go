package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sqs.SendMessageOutput{}, nil
}

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestSQSPublisherSendsJSONWithAttributes(t *testing.T) {
	client := &fakeSQS{}
	publisher := NewSQSPublisher(client, "https://sqs.local/orders")

	event := NewEvent("order.paid", 12)
	event.Status = "paid"
	if err := publisher.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("expected one message, got %d", len(client.inputs))
	}
	input := client.inputs[0]
	if *input.QueueUrl != "https://sqs.local/orders" {
		t.Fatalf("unexpected queue url %s", *input.QueueUrl)
	}
	var decoded Event
	if err := json.Unmarshal([]byte(*input.MessageBody), &decoded); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if decoded.OrderID != 12 || decoded.Type != "order.paid" || decoded.ID == "" {
		t.Fatalf("unexpected event %+v", decoded)
	}
	if attr := input.MessageAttributes["event_type"]; attr.StringValue == nil || *attr.StringValue != "order.paid" {
		t.Fatalf("expected event_type attribute")
	}
	if attr := input.MessageAttributes["order_id"]; attr.StringValue == nil || *attr.StringValue != "12" {
		t.Fatalf("expected order_id attribute")
	}
}

func TestSQSPublisherWrapsErrors(t *testing.T) {
	sendErr := errors.New("access denied")
	publisher := NewSQSPublisher(&fakeSQS{err: sendErr}, "q")
	if err := publisher.Publish(context.Background(), NewEvent("order.created", 1)); !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestCloudWatchRecorderCount(t *testing.T) {
	client := &fakeCloudWatch{}
	recorder := NewCloudWatchRecorder(client, "PartsHub")
	if err := recorder.Count(context.Background(), "OrdersCreated", 1); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("expected one metric call")
	}
	input := client.inputs[0]
	if *input.Namespace != "PartsHub" || len(input.MetricData) != 1 {
		t.Fatalf("unexpected input %+v", input)
	}
	datum := input.MetricData[0]
	if *datum.MetricName != "OrdersCreated" || *datum.Value != 1 {
		t.Fatalf("unexpected datum %+v", datum)
	}
}

func TestNopImplementations(t *testing.T) {
	var publisher Publisher = NopPublisher{}
	var recorder Recorder = NopRecorder{}
	if err := publisher.Publish(context.Background(), NewEvent("order.created", 1)); err != nil {
		t.Fatalf("nop publish failed: %v", err)
	}
	if err := recorder.Count(context.Background(), "x", 1); err != nil {
		t.Fatalf("nop count failed: %v", err)
	}
}
