// internal/service/order/application/dto.go
package application

import "verdant/internal/service/order/domain"

// TransitionOrderRequest 是状态流转用例的输入。
// PartyID 是上游网关认证后的请求方身份，本服务只负责
// 把它解析成买家/卖家/非参与方角色。
type TransitionOrderRequest struct {
	OrderID string             `json:"order_id"`
	PartyID string             `json:"party_id"`
	To      domain.OrderStatus `json:"to"`

	// 买家随请求提交的收货地址（仅 address_provided 流转会携带）。
	// 地址内容的存储不在本服务范围内，这里只关心"是否已提供"。
	ShippingAddress string `json:"shipping_address,omitempty"`
}

// TransitionOrderResponse 是状态流转用例的输出。
// 拒绝不是错误：Allowed=false 时 Reason 原样返回给请求方。
type TransitionOrderResponse struct {
	OrderID       string               `json:"orderId"`
	Allowed       bool                 `json:"allowed"`
	Reason        string               `json:"reason,omitempty"`
	OrderStatus   domain.OrderStatus   `json:"orderStatus"`
	ListingStatus domain.ListingStatus `json:"listingStatus,omitempty"`
}

// OpenNegotiationRequest 在买家第一次对挂牌出价时隐式创建交易。
type OpenNegotiationRequest struct {
	ListingID string `json:"listing_id"`
	BuyerID   string `json:"buyer_id"`
}

// OpenNegotiationResponse 返回新建或已存在的交易。
type OpenNegotiationResponse struct {
	OrderID string             `json:"orderId"`
	Status  domain.OrderStatus `json:"status"`
	Created bool               `json:"created"` // false 表示幂等命中了已有交易
}

// PublishListingRequest 发布一个新挂牌。
type PublishListingRequest struct {
	SellerID string `json:"seller_id"`
	Title    string `json:"title"`
}

// PublishListingResponse 返回新挂牌。
type PublishListingResponse struct {
	ListingID string               `json:"listingId"`
	Status    domain.ListingStatus `json:"status"`
}
