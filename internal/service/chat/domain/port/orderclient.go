// internal/service/chat/domain/port/orderclient.go
package port

import "context"

// OrderClient 是指向订单服务的出站端口。
// 买家在挂牌会话里发出报价消息时，通过它开启一次议价。
type OrderClient interface {
	// OpenNegotiation 返回该 (listing, buyer) 对应的订单 ID，幂等。
	OpenNegotiation(ctx context.Context, listingID, buyerID string) (orderID string, err error)
}
