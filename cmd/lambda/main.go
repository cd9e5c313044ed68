// Command lambda serves the map config endpoint as an AWS Lambda function
// behind an API Gateway proxy integration.
package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FACorreiaa/aid-map/internal/app/domain/mapconfig"
	"github.com/FACorreiaa/aid-map/internal/pkg/env"
	"github.com/FACorreiaa/aid-map/pkg/logger"
)

func main() {
	if err := logger.Init(zapcore.InfoLevel, zap.String("service", "aid-map-lambda")); err != nil {
		log.Fatal(err)
	}

	h := mapconfig.NewHandler(env.OS{}, logger.Log)
	lambda.Start(h.HandleAPIGateway)
}
