// Package awsx 加载 AWS SDK 配置并创建服务客户端。
package awsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/partshub/internal/config"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

const defaultRegion = "us-east-1"

// Clients 业务使用的 AWS 客户端集合
type Clients struct {
	DynamoDB   *dynamodb.Client
	SQS        *sqs.Client
	CloudWatch *cloudwatch.Client
}

// LoadConfig 加载 SDK 配置；endpoint 非空时覆盖所有服务地址（本地 LocalStack 等）
func LoadConfig(ctx context.Context, cfg config.AWSConfig) (sdkaws.Config, error) {
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultRegion
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return awsCfg, fmt.Errorf("load aws config: %w", err)
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		awsCfg.BaseEndpoint = sdkaws.String(endpoint)
	}
	return awsCfg, nil
}

// NewClients 创建客户端集合；未启用时返回 nil
func NewClients(ctx context.Context, cfg config.AWSConfig) (*Clients, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	awsCfg, err := LoadConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Clients{
		DynamoDB:   dynamodb.NewFromConfig(awsCfg),
		SQS:        sqs.NewFromConfig(awsCfg),
		CloudWatch: cloudwatch.NewFromConfig(awsCfg),
	}, nil
}
