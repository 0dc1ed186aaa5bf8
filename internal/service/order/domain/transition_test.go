package domain

import "testing"

var allStatuses = []OrderStatus{
	StatusNegotiating,
	StatusPriceAccepted,
	StatusAddressProvided,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func TestAuthorize_Table(t *testing.T) {
	tests := []struct {
		name        string
		from        OrderStatus
		to          OrderStatus
		actor       OrderActor
		hasAddress  bool
		wantAllowed bool
	}{
		// 正向推进
		{"seller accepts price from negotiating", StatusNegotiating, StatusPriceAccepted, ActorSeller, false, true},
		{"seller revives cancelled negotiation", StatusCancelled, StatusPriceAccepted, ActorSeller, false, true},
		{"buyer provides address with address on file", StatusPriceAccepted, StatusAddressProvided, ActorBuyer, true, true},
		{"seller ships after address provided", StatusAddressProvided, StatusShipped, ActorSeller, false, true},
		{"buyer confirms delivery after shipment", StatusShipped, StatusDelivered, ActorBuyer, false, true},

		// 幂等重入
		{"seller re-accepts price", StatusPriceAccepted, StatusPriceAccepted, ActorSeller, false, true},
		{"buyer re-provides address", StatusAddressProvided, StatusAddressProvided, ActorBuyer, true, true},
		{"seller re-marks shipped", StatusShipped, StatusShipped, ActorSeller, false, true},
		{"buyer re-confirms delivery", StatusDelivered, StatusDelivered, ActorBuyer, false, true},

		// 最小权限：角色不对就拒绝
		{"buyer cannot accept own price", StatusNegotiating, StatusPriceAccepted, ActorBuyer, false, false},
		{"seller cannot provide buyer address", StatusPriceAccepted, StatusAddressProvided, ActorSeller, true, false},
		{"buyer cannot mark shipped", StatusAddressProvided, StatusShipped, ActorBuyer, false, false},
		{"seller cannot confirm own delivery", StatusShipped, StatusDelivered, ActorSeller, false, false},

		// 前置状态不满足
		{"cannot accept price after shipment", StatusShipped, StatusPriceAccepted, ActorSeller, false, false},
		{"cannot provide address before price accepted", StatusNegotiating, StatusAddressProvided, ActorBuyer, true, false},
		{"cannot ship before address provided", StatusPriceAccepted, StatusShipped, ActorSeller, false, false},
		{"cannot confirm delivery before shipment", StatusAddressProvided, StatusDelivered, ActorBuyer, false, false},

		// 地址门槛
		{"address gate closed without address", StatusPriceAccepted, StatusAddressProvided, ActorBuyer, false, false},

		// 取消：双方、任意前置状态
		{"buyer cancels during negotiation", StatusNegotiating, StatusCancelled, ActorBuyer, false, true},
		{"seller cancels after price accepted", StatusPriceAccepted, StatusCancelled, ActorSeller, false, true},
		{"buyer cancels after shipment", StatusShipped, StatusCancelled, ActorBuyer, false, true},
		{"seller cancels a delivered order", StatusDelivered, StatusCancelled, ActorSeller, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.from, tt.to, tt.actor, tt.hasAddress)
			if got.Allowed != tt.wantAllowed {
				t.Errorf("Authorize(%s -> %s, %s, addr=%v) = %v (%q), want allowed=%v",
					tt.from, tt.to, tt.actor, tt.hasAddress, got.Allowed, got.Reason, tt.wantAllowed)
			}
			if !got.Allowed && got.Reason == "" {
				t.Error("rejection must carry a reason")
			}
			if got.Allowed && got.Reason != "" {
				t.Errorf("allowed decision should not carry a reason, got %q", got.Reason)
			}
		})
	}
}

// 非参与方在任何组合下都被拒绝。
func TestAuthorize_OtherAlwaysRejected(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			for _, hasAddr := range []bool{false, true} {
				got := Authorize(from, to, ActorOther, hasAddr)
				if got.Allowed {
					t.Errorf("Authorize(%s -> %s, other, addr=%v) allowed, want rejected", from, to, hasAddr)
				}
				if got.Reason != "not a participant" {
					t.Errorf("unexpected reason for non-participant: %q", got.Reason)
				}
			}
		}
	}
}

// 任何人都不能把订单退回协商态。
func TestAuthorize_NoRegressionToNegotiating(t *testing.T) {
	for _, from := range allStatuses {
		for _, actor := range []OrderActor{ActorBuyer, ActorSeller, ActorOther} {
			for _, hasAddr := range []bool{false, true} {
				if got := Authorize(from, StatusNegotiating, actor, hasAddr); got.Allowed {
					t.Errorf("Authorize(%s -> negotiating, %s, addr=%v) allowed, want rejected", from, actor, hasAddr)
				}
			}
		}
	}
}

// 每个拒绝原因都要指向具体的失败原因，不能混用。
func TestAuthorize_ReasonsAreSpecific(t *testing.T) {
	wrongActor := Authorize(StatusNegotiating, StatusPriceAccepted, ActorBuyer, false)
	wrongState := Authorize(StatusDelivered, StatusPriceAccepted, ActorSeller, false)
	if wrongActor.Reason == wrongState.Reason {
		t.Errorf("actor rejection and state rejection share reason %q", wrongActor.Reason)
	}

	noAddress := Authorize(StatusPriceAccepted, StatusAddressProvided, ActorBuyer, false)
	badPrior := Authorize(StatusNegotiating, StatusAddressProvided, ActorBuyer, false)
	if noAddress.Reason == badPrior.Reason {
		t.Errorf("address rejection and prior-state rejection share reason %q", noAddress.Reason)
	}
}

// 未知目标状态兜底拒绝。
func TestAuthorize_UnknownTargetFailsClosed(t *testing.T) {
	got := Authorize(StatusNegotiating, OrderStatus("archived"), ActorSeller, false)
	if got.Allowed {
		t.Fatal("unknown target status must be rejected")
	}
	if got.Reason != "invalid transition" {
		t.Errorf("unexpected fallback reason: %q", got.Reason)
	}
}
