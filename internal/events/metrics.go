package events

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Recorder 业务计数指标
type Recorder interface {
	Count(ctx context.Context, metric string, n float64) error
}

// CloudWatchAPI CloudWatchRecorder 用到的接口子集
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchRecorder 通过 PutMetricData 上报计数
type CloudWatchRecorder struct {
	client    CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewCloudWatchRecorder 创建指标上报器
func NewCloudWatchRecorder(client CloudWatchAPI, namespace string) *CloudWatchRecorder {
	return &CloudWatchRecorder{client: client, namespace: namespace, nowFunc: time.Now}
}

func (r *CloudWatchRecorder) Count(ctx context.Context, metric string, n float64) error {
	now := r.nowFunc()
	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: awsString(r.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString(metric),
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
				Value:      &n,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

// NopRecorder 未启用指标时使用
type NopRecorder struct{}

func (NopRecorder) Count(context.Context, string, float64) error { return nil }
