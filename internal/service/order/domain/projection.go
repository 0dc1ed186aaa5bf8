// internal/service/order/domain/projection.go
package domain

// ProjectListingStatus 根据交易的最新状态推导关联挂牌的可见性状态。
//
// 全函数：任何输入组合都有确定的输出，没有错误分支。
// previous 为订单流转前的状态，订单刚创建时传空串。
//
// 发货后取消是唯一需要 previous 的分支：货可能已在途，
// 挂牌保持 reserved 等待人工核实，而不是直接重新上架。
func ProjectListingStatus(next, previous OrderStatus) ListingStatus {
	switch next {
	case StatusDelivered:
		return ListingSold
	case StatusPriceAccepted, StatusAddressProvided, StatusShipped:
		return ListingReserved
	case StatusCancelled:
		if previous == StatusShipped {
			return ListingReserved
		}
		return ListingActive
	}
	// negotiating 以及任何未知状态：挂牌保持公开可见，允许别人继续出价
	return ListingActive
}
