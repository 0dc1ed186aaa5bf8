package domain

import "testing"

func TestProjectListingStatus(t *testing.T) {
	tests := []struct {
		name     string
		next     OrderStatus
		previous OrderStatus
		want     ListingStatus
	}{
		{"delivered is sold regardless of previous", StatusDelivered, StatusShipped, ListingSold},
		{"delivered from re-assertion is still sold", StatusDelivered, StatusDelivered, ListingSold},

		{"price accepted reserves the listing", StatusPriceAccepted, StatusNegotiating, ListingReserved},
		{"address provided keeps it reserved", StatusAddressProvided, StatusPriceAccepted, ListingReserved},
		{"shipped keeps it reserved", StatusShipped, StatusAddressProvided, ListingReserved},

		{"cancel after shipment stays reserved", StatusCancelled, StatusShipped, ListingReserved},
		{"cancel before shipment re-activates", StatusCancelled, StatusAddressProvided, ListingActive},
		{"cancel after price accepted re-activates", StatusCancelled, StatusPriceAccepted, ListingActive},
		{"cancel with no previous state re-activates", StatusCancelled, "", ListingActive},

		{"negotiating keeps the listing public", StatusNegotiating, "", ListingActive},
		{"unknown status falls back to active", OrderStatus("archived"), StatusShipped, ListingActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProjectListingStatus(tt.next, tt.previous); got != tt.want {
				t.Errorf("ProjectListingStatus(%s, %s) = %s, want %s", tt.next, tt.previous, got, tt.want)
			}
		})
	}
}

// 全函数性质：任意输入组合都有定义好的输出。
func TestProjectListingStatus_Total(t *testing.T) {
	inputs := append(allStatuses, OrderStatus("garbage"), OrderStatus(""))
	for _, next := range inputs {
		for _, prev := range inputs {
			got := ProjectListingStatus(next, prev)
			switch got {
			case ListingActive, ListingReserved, ListingSold:
			default:
				t.Errorf("ProjectListingStatus(%s, %s) = %q, not a projectable status", next, prev, got)
			}
		}
	}
}

// 端到端走一遍完整的成交流程：每一步鉴权通过后投影结果都符合预期。
func TestTransitionAndProjection_HappyPath(t *testing.T) {
	steps := []struct {
		to         OrderStatus
		actor      OrderActor
		hasAddress bool
		wantStatus ListingStatus
	}{
		{StatusPriceAccepted, ActorSeller, false, ListingReserved},
		{StatusAddressProvided, ActorBuyer, true, ListingReserved},
		{StatusShipped, ActorSeller, true, ListingReserved},
		{StatusDelivered, ActorBuyer, true, ListingSold},
	}

	from := StatusNegotiating
	for _, step := range steps {
		decision := Authorize(from, step.to, step.actor, step.hasAddress)
		if !decision.Allowed {
			t.Fatalf("Authorize(%s -> %s, %s) rejected: %s", from, step.to, step.actor, decision.Reason)
		}
		if got := ProjectListingStatus(step.to, from); got != step.wantStatus {
			t.Fatalf("ProjectListingStatus(%s, %s) = %s, want %s", step.to, from, got, step.wantStatus)
		}
		from = step.to
	}
}
