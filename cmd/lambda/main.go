package main

import (
	"context"
	"os"

	"github.com/partshub/internal/app"
	"github.com/partshub/internal/config"
	"github.com/partshub/internal/logger"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
)

// Lambda 入口：API Gateway 代理请求转交给 gin 路由
// 队列 worker 不在 Lambda 中运行，通知与事件按同步路径投递
func main() {
	cfg := config.Load()
	cfg.Queue.Enabled = false
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := app.InitDatabase(cfg); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	engine, _, err := app.BuildEngine(cfg)
	if err != nil {
		stdLog.Fatalf("路由初始化失败: %v", err)
	}

	if os.Getenv("RUN_LOCAL") == "true" {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Infow("lambda_local_server", "addr", addr)
		if err := engine.Run(addr); err != nil {
			stdLog.Fatalf("本地服务运行失败: %v", err)
		}
		return
	}

	adapter := ginadapter.New(engine)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
