package adapter

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"verdant/internal/pkg/httpclient"
)

const orderServiceName = "order-service"

// OrderHTTPAdapter 实现了 port.OrderClient 接口。
// 通过 Nacos 发现订单服务实例，调用自动携带追踪上下文。
type OrderHTTPAdapter struct {
	client *httpclient.Client
}

// NewOrderHTTPAdapter 创建一个新的订单服务客户端适配器。
func NewOrderHTTPAdapter(client *httpclient.Client) *OrderHTTPAdapter {
	return &OrderHTTPAdapter{client: client}
}

// OpenNegotiation 调用订单服务开启议价，幂等。
func (a *OrderHTTPAdapter) OpenNegotiation(ctx context.Context, listingID, buyerID string) (string, error) {
	body, err := a.client.CallServiceJSON(ctx, orderServiceName, "/orders/open", map[string]string{
		"listing_id": listingID,
		"buyer_id":   buyerID,
	})
	if err != nil {
		return "", errors.Wrap(err, "call order service")
	}

	var resp struct {
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrap(err, "decode order service response")
	}
	if resp.OrderID == "" {
		return "", errors.New("order service returned no order id")
	}
	return resp.OrderID, nil
}
