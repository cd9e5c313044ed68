package mapconfig

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// HandleAPIGateway serves the config endpoint behind an API Gateway proxy
// integration.
func (h *Handler) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resp := h.Resolve(ctx, req.HTTPMethod)
	body, err := resp.encode()
	if err != nil {
		h.logger.Error("Failed to encode config response", zap.Error(err))
		return events.APIGatewayProxyResponse{}, err
	}

	headers := resp.Headers
	headers["Content-Type"] = "application/json; charset=utf-8"

	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}
