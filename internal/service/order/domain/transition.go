// internal/service/order/domain/transition.go
package domain

// Decision 是状态流转鉴权的结果。
// 拒绝不是错误：Reason 会原样展示给请求方，必须针对具体原因措辞。
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func reject(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Authorize 判定一次订单状态流转是否合法。
//
// 规则按顺序求值，先命中先生效：参与方校验最先，
// 然后禁止回退到协商态，最后才是各目标状态自己的规则。
// 每个前进方向只允许一种角色驱动，买卖双方严格轮流推进；
// price_accepted / shipped / delivered 允许从自身重入，
// 调用方重试同一请求时表现为幂等空操作。
func Authorize(from, to OrderStatus, actor OrderActor, hasShippingAddress bool) Decision {
	if actor == ActorOther {
		return reject("not a participant")
	}

	if to == StatusNegotiating {
		// 协商态只在订单创建时出现，任何人都不能把订单退回去
		return reject("cannot return to negotiation")
	}

	switch to {
	case StatusPriceAccepted:
		if actor != ActorSeller {
			return reject("only the seller can accept a price")
		}
		switch from {
		case StatusNegotiating, StatusPriceAccepted, StatusCancelled:
			return allow()
		}
		return reject("the price can no longer be accepted at this stage")

	case StatusAddressProvided:
		if actor != ActorBuyer {
			return reject("only the buyer can provide the shipping address")
		}
		switch from {
		case StatusPriceAccepted, StatusAddressProvided:
			// 地址校验放在角色和前置状态之后，错误信息更贴近实际缺陷
			if !hasShippingAddress {
				return reject("a shipping address is required first")
			}
			return allow()
		}
		return reject("a price must be accepted before providing the address")

	case StatusShipped:
		if actor != ActorSeller {
			return reject("only the seller can mark the order as shipped")
		}
		switch from {
		case StatusAddressProvided, StatusShipped:
			return allow()
		}
		return reject("the order is not ready to be shipped")

	case StatusDelivered:
		if actor != ActorBuyer {
			return reject("only the buyer can confirm delivery")
		}
		switch from {
		case StatusShipped, StatusDelivered:
			return allow()
		}
		return reject("the order has not been shipped yet")

	case StatusCancelled:
		// 买卖双方都可以从任意未被前面规则排除的状态取消
		return allow()
	}

	// 未知目标状态一律拒绝，宁可失败也不放行
	return reject("invalid transition")
}
