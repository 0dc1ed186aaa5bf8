// internal/service/order/domain/status.go
package domain

// OrderStatus 定义了一笔交易（买卖双方围绕一个挂牌的协商过程）的生命周期状态。
type OrderStatus string

const (
	StatusNegotiating     OrderStatus = "negotiating"      // 协商中，尚未达成价格
	StatusPriceAccepted   OrderStatus = "price_accepted"   // 卖家已接受价格
	StatusAddressProvided OrderStatus = "address_provided" // 买家已提供收货地址
	StatusShipped         OrderStatus = "shipped"          // 卖家已发货
	StatusDelivered       OrderStatus = "delivered"        // 买家已确认收货
	StatusCancelled       OrderStatus = "cancelled"        // 已取消（任意一方）
)

// OrderActor 是尝试驱动状态流转的一方在本笔交易中的角色。
// 由编排层比对请求方身份和订单的买卖双方身份后解析得出。
type OrderActor string

const (
	ActorBuyer  OrderActor = "buyer"
	ActorSeller OrderActor = "seller"
	ActorOther  OrderActor = "other" // 非交易参与方，一律拒绝
)

// ListingStatus 定义了挂牌的公开可见性状态。
// 只有 active 状态的挂牌会出现在公开信息流和搜索结果中。
type ListingStatus string

const (
	ListingActive   ListingStatus = "active"
	ListingReserved ListingStatus = "reserved"
	ListingSold     ListingStatus = "sold"
	ListingExpired  ListingStatus = "expired"
	ListingRemoved  ListingStatus = "removed"
)
