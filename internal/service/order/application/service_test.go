package application

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"

	"verdant/internal/service/order/domain"
)

// ---- 端口和仓储的内存假实现 ----

type fakeOrderRepo struct {
	orders map[string]*domain.Order
	saves  int
}

func newFakeOrderRepo(orders ...*domain.Order) *fakeOrderRepo {
	m := make(map[string]*domain.Order)
	for _, o := range orders {
		m[o.ID] = o
	}
	return &fakeOrderRepo{orders: m}
}

func (r *fakeOrderRepo) Save(_ context.Context, order *domain.Order) error {
	r.saves++
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) FindByListingAndBuyer(_ context.Context, listingID, buyerID string) (*domain.Order, error) {
	for _, o := range r.orders {
		if o.ListingID == listingID && o.BuyerID == buyerID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

type fakeListingRepo struct {
	listings map[string]*domain.Listing
	saves    int
}

func newFakeListingRepo(listings ...*domain.Listing) *fakeListingRepo {
	m := make(map[string]*domain.Listing)
	for _, l := range listings {
		m[l.ID] = l
	}
	return &fakeListingRepo{listings: m}
}

func (r *fakeListingRepo) Save(_ context.Context, listing *domain.Listing) error {
	r.saves++
	cp := *listing
	r.listings[listing.ID] = &cp
	return nil
}

func (r *fakeListingRepo) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

type fakeUow struct {
	orders   *fakeOrderRepo
	listings *fakeListingRepo
	calls    int
}

func (u *fakeUow) WithinTx(ctx context.Context, fn func(ctx context.Context, orders domain.OrderRepository, listings domain.ListingRepository) error) error {
	u.calls++
	return fn(ctx, u.orders, u.listings)
}

type fakeLock struct{ acquired int }

func (l *fakeLock) Acquire(_ context.Context, _ string) (func(), error) {
	l.acquired++
	return func() {}, nil
}

type fakeNotifier struct{ events []*domain.OrderStatusChanged }

func (n *fakeNotifier) PublishStatusChanged(_ context.Context, e *domain.OrderStatusChanged) error {
	n.events = append(n.events, e)
	return nil
}
func (n *fakeNotifier) Close() error { return nil }

// ---- 测试装配 ----

type fixture struct {
	svc      *OrderApplicationService
	orders   *fakeOrderRepo
	listings *fakeListingRepo
	uow      *fakeUow
	lock     *fakeLock
	notifier *fakeNotifier
	order    *domain.Order
	listing  *domain.Listing
}

func newFixture(t *testing.T, status domain.OrderStatus, hasAddress bool) *fixture {
	t.Helper()

	listing, err := domain.NewListing("seller-1", "Monstera deliciosa cutting")
	if err != nil {
		t.Fatal(err)
	}
	order, err := domain.NewOrder(listing.ID, "buyer-1", "seller-1")
	if err != nil {
		t.Fatal(err)
	}
	order.Status = status
	order.HasShippingAddress = hasAddress

	orders := newFakeOrderRepo(order)
	listings := newFakeListingRepo(listing)
	uow := &fakeUow{orders: orders, listings: listings}
	lock := &fakeLock{}
	notifier := &fakeNotifier{}

	svc := NewOrderApplicationService(uow, orders, listings, otel.Tracer("test"), lock, notifier)
	return &fixture{svc: svc, orders: orders, listings: listings, uow: uow, lock: lock, notifier: notifier, order: order, listing: listing}
}

func TestTransitionOrder_AllowedPersistsBothAggregates(t *testing.T) {
	f := newFixture(t, domain.StatusNegotiating, false)

	resp, err := f.svc.TransitionOrder(context.Background(), &TransitionOrderRequest{
		OrderID: f.order.ID,
		PartyID: "seller-1",
		To:      domain.StatusPriceAccepted,
	})
	if err != nil {
		t.Fatalf("TransitionOrder() error = %v", err)
	}
	if !resp.Allowed {
		t.Fatalf("transition rejected: %s", resp.Reason)
	}
	if resp.OrderStatus != domain.StatusPriceAccepted {
		t.Errorf("order status = %s, want price_accepted", resp.OrderStatus)
	}
	if resp.ListingStatus != domain.ListingReserved {
		t.Errorf("listing status = %s, want reserved", resp.ListingStatus)
	}

	if f.uow.calls != 1 {
		t.Errorf("unit of work called %d times, want 1", f.uow.calls)
	}
	if f.lock.acquired != 1 {
		t.Errorf("lock acquired %d times, want 1", f.lock.acquired)
	}
	stored, _ := f.orders.FindByID(context.Background(), f.order.ID)
	if stored.Status != domain.StatusPriceAccepted {
		t.Errorf("persisted order status = %s, want price_accepted", stored.Status)
	}
	storedListing, _ := f.listings.FindByID(context.Background(), f.listing.ID)
	if storedListing.Status != domain.ListingReserved {
		t.Errorf("persisted listing status = %s, want reserved", storedListing.Status)
	}

	if len(f.notifier.events) != 1 {
		t.Fatalf("published %d events, want 1", len(f.notifier.events))
	}
	if e := f.notifier.events[0]; e.From != domain.StatusNegotiating || e.To != domain.StatusPriceAccepted {
		t.Errorf("event transition = %s -> %s, want negotiating -> price_accepted", e.From, e.To)
	}
}

func TestTransitionOrder_RejectionPersistsNothing(t *testing.T) {
	f := newFixture(t, domain.StatusNegotiating, false)

	// 买家试图替卖家接受价格
	resp, err := f.svc.TransitionOrder(context.Background(), &TransitionOrderRequest{
		OrderID: f.order.ID,
		PartyID: "buyer-1",
		To:      domain.StatusPriceAccepted,
	})
	if err != nil {
		t.Fatalf("TransitionOrder() error = %v", err)
	}
	if resp.Allowed {
		t.Fatal("transition allowed, want rejected")
	}
	if resp.Reason == "" {
		t.Error("rejection must carry a reason")
	}
	if f.uow.calls != 0 {
		t.Errorf("unit of work called %d times on rejection, want 0", f.uow.calls)
	}
	if len(f.notifier.events) != 0 {
		t.Errorf("published %d events on rejection, want 0", len(f.notifier.events))
	}
	stored, _ := f.orders.FindByID(context.Background(), f.order.ID)
	if stored.Status != domain.StatusNegotiating {
		t.Errorf("order status mutated to %s on rejection", stored.Status)
	}
}

func TestTransitionOrder_NonParticipantRejected(t *testing.T) {
	f := newFixture(t, domain.StatusShipped, true)

	resp, err := f.svc.TransitionOrder(context.Background(), &TransitionOrderRequest{
		OrderID: f.order.ID,
		PartyID: "stranger-9",
		To:      domain.StatusDelivered,
	})
	if err != nil {
		t.Fatalf("TransitionOrder() error = %v", err)
	}
	if resp.Allowed {
		t.Fatal("non-participant transition allowed")
	}
	if resp.Reason != "not a participant" {
		t.Errorf("reason = %q, want %q", resp.Reason, "not a participant")
	}
}

func TestTransitionOrder_AddressRecordedBeforeAuthorize(t *testing.T) {
	f := newFixture(t, domain.StatusPriceAccepted, false)

	// 地址随流转请求一起提交：先记录，再鉴权，应当放行
	resp, err := f.svc.TransitionOrder(context.Background(), &TransitionOrderRequest{
		OrderID:         f.order.ID,
		PartyID:         "buyer-1",
		To:              domain.StatusAddressProvided,
		ShippingAddress: "12 Fern Lane, Leafton",
	})
	if err != nil {
		t.Fatalf("TransitionOrder() error = %v", err)
	}
	if !resp.Allowed {
		t.Fatalf("transition rejected: %s", resp.Reason)
	}

	stored, _ := f.orders.FindByID(context.Background(), f.order.ID)
	if !stored.HasShippingAddress {
		t.Error("shipping address flag not persisted")
	}
}

func TestTransitionOrder_AddressGateWithoutAddress(t *testing.T) {
	f := newFixture(t, domain.StatusPriceAccepted, false)

	resp, err := f.svc.TransitionOrder(context.Background(), &TransitionOrderRequest{
		OrderID: f.order.ID,
		PartyID: "buyer-1",
		To:      domain.StatusAddressProvided,
	})
	if err != nil {
		t.Fatalf("TransitionOrder() error = %v", err)
	}
	if resp.Allowed {
		t.Fatal("transition allowed without shipping address")
	}
}

func TestOpenNegotiation_Idempotent(t *testing.T) {
	f := newFixture(t, domain.StatusNegotiating, false)

	// 已存在 buyer-1 的交易，重复出价应命中旧单
	resp, err := f.svc.OpenNegotiation(context.Background(), &OpenNegotiationRequest{
		ListingID: f.listing.ID,
		BuyerID:   "buyer-1",
	})
	if err != nil {
		t.Fatalf("OpenNegotiation() error = %v", err)
	}
	if resp.Created {
		t.Error("expected existing negotiation, got a new one")
	}
	if resp.OrderID != f.order.ID {
		t.Errorf("order id = %s, want %s", resp.OrderID, f.order.ID)
	}

	// 另一个买家则开新单
	resp2, err := f.svc.OpenNegotiation(context.Background(), &OpenNegotiationRequest{
		ListingID: f.listing.ID,
		BuyerID:   "buyer-2",
	})
	if err != nil {
		t.Fatalf("OpenNegotiation() error = %v", err)
	}
	if !resp2.Created {
		t.Error("expected a new negotiation for a different buyer")
	}
	if resp2.Status != domain.StatusNegotiating {
		t.Errorf("new order status = %s, want negotiating", resp2.Status)
	}
}
