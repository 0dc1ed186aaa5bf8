// internal/pkg/httpclient/client.go
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"verdant/internal/pkg/nacos"
)

// Client 是一个可追踪的服务间 HTTP 客户端。
// 目标地址通过 Nacos 按服务名解析，调用自动携带追踪上下文。
type Client struct {
	tracer     trace.Tracer
	registry   *nacos.Client
	httpClient *http.Client
}

// NewClient 创建一个新的客户端实例。
// 不设置全局 Timeout，超时完全由每次调用传入的 context 控制。
func NewClient(tracer trace.Tracer, registry *nacos.Client) *Client {
	return &Client{
		tracer:   tracer,
		registry: registry,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
	}
}

// CallService 向指定服务的指定路径发起 POST 调用，返回响应体。
func (c *Client) CallService(ctx context.Context, serviceName, path string, params url.Values) ([]byte, error) {
	return c.call(ctx, serviceName, path, params, nil)
}

// CallServiceJSON 同 CallService，但以 JSON 请求体携带参数。
func (c *Client) CallServiceJSON(ctx context.Context, serviceName, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, serviceName, path, nil, body)
}

func (c *Client) call(ctx context.Context, serviceName, path string, params url.Values, jsonBody []byte) ([]byte, error) {
	ip, port, err := c.registry.DiscoverServiceInstance(serviceName)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "call-"+serviceName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	target := url.URL{
		Scheme:   "http",
		Host:     fmt.Sprintf("%s:%d", ip, port),
		Path:     path,
		RawQuery: params.Encode(),
	}

	var reqBody io.Reader
	if jsonBody != nil {
		reqBody = bytes.NewReader(jsonBody)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), reqBody)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if jsonBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	span.SetAttributes(
		attribute.String("http.url", target.String()),
		attribute.String("http.method", http.MethodPost),
		attribute.String("peer.service", serviceName),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("service %s returned status %s: %s", serviceName, resp.Status, string(body))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return body, nil
}
