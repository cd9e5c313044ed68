// Package mapconfig serves the client-side map configuration: the Mapbox
// public access token, read from the environment on every request.
package mapconfig

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/aid-map/internal/app/observability/metrics"
	"github.com/FACorreiaa/aid-map/internal/pkg/env"
	"github.com/FACorreiaa/aid-map/pkg/logger"
)

const TokenKey = "MAPBOX_ACCESS_TOKEN"

const (
	HeaderAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAllowMethods = "Access-Control-Allow-Methods"
	HeaderAllowHeaders = "Access-Control-Allow-Headers"
)

// ErrMethodNotAllowed is the only failure the endpoint reports.
var ErrMethodNotAllowed = errors.New("Method not allowed")

// Response is the transport-neutral result of a config request.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       any
}

type Handler struct {
	env    env.Lookup
	logger *zap.Logger
	// requests may be nil, in which case nothing is recorded.
	requests metric.Int64Counter
}

// NewHandler returns a handler reading the token through lookup. A nil lookup
// reads the process environment.
func NewHandler(lookup env.Lookup, l *zap.Logger) *Handler {
	if lookup == nil {
		lookup = env.OS{}
	}
	return &Handler{
		env:      lookup,
		logger:   logger.OrNop(l),
		requests: metrics.Get().ConfigRequestsTotal,
	}
}

// CORSHeaders are set on every response, rejected requests included.
func CORSHeaders() map[string]string {
	return map[string]string{
		HeaderAllowOrigin:  "*",
		HeaderAllowMethods: http.MethodGet,
		HeaderAllowHeaders: "Content-Type",
	}
}

// Resolve computes the response for a request with the given method.
func (h *Handler) Resolve(ctx context.Context, method string) Response {
	resp := Response{Headers: CORSHeaders()}

	if method != http.MethodGet {
		h.logger.Debug("Rejected config request", zap.String("method", method))
		resp.StatusCode = http.StatusMethodNotAllowed
		resp.Body = gin.H{"error": ErrMethodNotAllowed.Error()}
	} else {
		token, _ := h.env.Get(TokenKey)
		resp.StatusCode = http.StatusOK
		resp.Body = gin.H{TokenKey: token}
	}

	if h.requests != nil {
		h.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("status", strconv.Itoa(resp.StatusCode))))
	}
	return resp
}

// HandleConfig serves the config endpoint on a gin router. Mount it for every
// method so non-GET requests receive the 405 body instead of a router 404.
func (h *Handler) HandleConfig(c *gin.Context) {
	resp := h.Resolve(c.Request.Context(), c.Request.Method)
	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	c.JSON(resp.StatusCode, resp.Body)
}

// ServeHTTP serves the config endpoint on a plain net/http mux or a
// serverless platform that speaks http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := h.Resolve(r.Context(), r.Method)
	body, err := resp.encode()
	if err != nil {
		h.logger.Error("Failed to encode config response", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(body)
}

func (r Response) encode() ([]byte, error) {
	b, err := json.Marshal(r.Body)
	if err != nil {
		return nil, errors.Wrap(err, "marshal config response")
	}
	return b, nil
}
