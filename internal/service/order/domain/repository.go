// internal/service/order/domain/repository.go
package domain

import (
	"context"
	"errors"
)

// 通用领域错误
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrListingNotFound = errors.New("listing not found")
	// ErrVersionConflict 表示乐观锁冲突：读出后有人先一步更新了聚合
	ErrVersionConflict = errors.New("aggregate was modified concurrently")
)

// OrderRepository 定义了交易聚合的持久化接口。
// 位于领域层，由基础设施层实现。
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	// FindByListingAndBuyer 用于保证同一买家对同一挂牌至多一笔进行中的交易
	FindByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*Order, error)
}

// ListingRepository 定义了挂牌聚合的持久化接口。
type ListingRepository interface {
	Save(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id string) (*Listing, error)
}

// UnitOfWork 在一个数据库事务内执行 fn。
// 订单状态和挂牌状态必须原子落库，这是防止重复售卖的关键。
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, orders OrderRepository, listings ListingRepository) error) error
}
