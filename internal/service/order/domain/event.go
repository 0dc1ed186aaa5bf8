// internal/service/order/domain/event.go
package domain

import "time"

// OrderStatusChanged 在一次状态流转成功持久化后发布。
// 下游（通知、站内信、数据分析）只依赖这个事件，不回查订单表。
type OrderStatusChanged struct {
	TraceID       string        `json:"traceId,omitempty"`
	OrderID       string        `json:"orderId"`
	ListingID     string        `json:"listingId"`
	BuyerID       string        `json:"buyerId"`
	SellerID      string        `json:"sellerId"`
	From          OrderStatus   `json:"from"`
	To            OrderStatus   `json:"to"`
	Actor         OrderActor    `json:"actor"`
	ListingStatus ListingStatus `json:"listingStatus"`
	OccurredAt    time.Time     `json:"occurredAt"`
}

// ListingExpiryCheckRequested 是发布挂牌时调度的延迟检查任务。
// 经由延迟主题在到期后投递回 order-service。
type ListingExpiryCheckRequested struct {
	TraceID     string    `json:"traceId,omitempty"`
	ListingID   string    `json:"listingId"`
	PublishedAt time.Time `json:"publishedAt"`
}
