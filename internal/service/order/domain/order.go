// internal/service/order/domain/order.go
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Order 是交易聚合的根实体：一个买家和一个卖家围绕一个挂牌的协商过程。
type Order struct {
	ID        string
	ListingID string
	BuyerID   string
	SellerID  string
	Status    OrderStatus

	// 买家是否已在本笔交易中留下收货地址
	HasShippingAddress bool

	// 乐观锁版本号，持久化层用它做 CAS 更新
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder 创建一笔新交易。交易总是从协商态开始，
// 由第一条报价消息隐式触发创建。
func NewOrder(listingID, buyerID, sellerID string) (*Order, error) {
	if listingID == "" || buyerID == "" || sellerID == "" {
		return nil, errors.New("cannot create order with empty required fields")
	}
	if buyerID == sellerID {
		return nil, errors.New("buyer and seller cannot be the same party")
	}

	now := time.Now()
	return &Order{
		ID:        uuid.New().String(),
		ListingID: listingID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		Status:    StatusNegotiating,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ActorFor 解析 partyID 在本笔交易中的角色。
func (o *Order) ActorFor(partyID string) OrderActor {
	switch partyID {
	case o.BuyerID:
		return ActorBuyer
	case o.SellerID:
		return ActorSeller
	}
	return ActorOther
}

// ApplyTransition 应用一次已通过 Authorize 鉴权的状态流转。
// 这个方法只做赋值，不重复校验；鉴权是调用方的职责。
func (o *Order) ApplyTransition(to OrderStatus) {
	o.Status = to
	o.UpdatedAt = time.Now()
}

// ProvideShippingAddress 记录买家已留下收货地址。
func (o *Order) ProvideShippingAddress() {
	o.HasShippingAddress = true
	o.UpdatedAt = time.Now()
}
