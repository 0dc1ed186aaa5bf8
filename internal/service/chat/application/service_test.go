package application

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"

	"verdant/internal/service/chat/domain"
)

// ---- 端口和仓储的内存假实现 ----

type fakeConversationRepo struct {
	byKey map[string]*domain.Conversation
	byID  map[string]*domain.Conversation

	// 非空时下一次 Create 输掉并发竞争：该会话成为赢家并落库
	conflictWith *domain.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		byKey: make(map[string]*domain.Conversation),
		byID:  make(map[string]*domain.Conversation),
	}
}

func (r *fakeConversationRepo) Create(_ context.Context, c *domain.Conversation) error {
	if w := r.conflictWith; w != nil {
		r.conflictWith = nil
		r.byKey[w.ThreadKey] = w
		r.byID[w.ID] = w
		return domain.ErrThreadKeyTaken
	}
	if _, ok := r.byKey[c.ThreadKey]; ok {
		return domain.ErrThreadKeyTaken
	}
	cp := *c
	r.byKey[c.ThreadKey] = &cp
	r.byID[c.ID] = &cp
	return nil
}

func (r *fakeConversationRepo) FindByThreadKey(_ context.Context, threadKey string) (*domain.Conversation, error) {
	c, ok := r.byKey[threadKey]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConversationRepo) FindByID(_ context.Context, id string) (*domain.Conversation, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConversationRepo) ListByParticipant(_ context.Context, userID string) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	for _, c := range r.byID {
		if c.HasParticipant(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	messages []*domain.Message
}

func (r *fakeMessageRepo) Save(_ context.Context, m *domain.Message) error {
	cp := *m
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, conversationID string, _ int) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeUnread struct {
	counts map[string]int64
	resets []string
}

func newFakeUnread() *fakeUnread { return &fakeUnread{counts: make(map[string]int64)} }

func (u *fakeUnread) key(conversationID, userID string) string { return conversationID + "/" + userID }

func (u *fakeUnread) Increment(_ context.Context, conversationID, userID string) error {
	u.counts[u.key(conversationID, userID)]++
	return nil
}

func (u *fakeUnread) Count(_ context.Context, conversationID, userID string) (int64, error) {
	return u.counts[u.key(conversationID, userID)], nil
}

func (u *fakeUnread) Reset(_ context.Context, conversationID, userID string) error {
	u.resets = append(u.resets, u.key(conversationID, userID))
	u.counts[u.key(conversationID, userID)] = 0
	return nil
}

type fakeOrderClient struct {
	opened [][2]string // (listingID, buyerID)
}

func (c *fakeOrderClient) OpenNegotiation(_ context.Context, listingID, buyerID string) (string, error) {
	c.opened = append(c.opened, [2]string{listingID, buyerID})
	return "order-1", nil
}

// ---- 测试装配 ----

type chatFixture struct {
	svc    *ChatApplicationService
	convos *fakeConversationRepo
	msgs   *fakeMessageRepo
	unread *fakeUnread
	orders *fakeOrderClient
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	convos := newFakeConversationRepo()
	msgs := &fakeMessageRepo{}
	unread := newFakeUnread()
	orders := &fakeOrderClient{}
	svc := NewChatApplicationService(convos, msgs, otel.Tracer("test"), unread, orders)
	return &chatFixture{svc: svc, convos: convos, msgs: msgs, unread: unread, orders: orders}
}

func (f *chatFixture) open(t *testing.T, context_, contextID, initiator, peer string) *OpenConversationResponse {
	t.Helper()
	resp, err := f.svc.OpenConversation(context.Background(), &OpenConversationRequest{
		Context: context_, ContextID: contextID, InitiatorID: initiator, PeerID: peer,
	})
	if err != nil {
		t.Fatalf("OpenConversation() error = %v", err)
	}
	return resp
}

func TestOpenConversation_GetOrCreate(t *testing.T) {
	f := newChatFixture(t)

	first := f.open(t, domain.ContextListing, "listing-1", "buyer-1", "seller-1")
	if !first.Created {
		t.Fatal("first OpenConversation did not create")
	}

	// 对端发起同一会话，应命中同一条
	second := f.open(t, domain.ContextListing, "listing-1", "seller-1", "buyer-1")
	if second.Created {
		t.Error("second OpenConversation created a duplicate")
	}
	if second.ConversationID != first.ConversationID {
		t.Errorf("conversation id = %s, want %s", second.ConversationID, first.ConversationID)
	}

	// 不同上下文则是不同会话
	direct := f.open(t, domain.ContextDirect, "", "buyer-1", "seller-1")
	if direct.ConversationID == first.ConversationID {
		t.Error("direct conversation collided with listing conversation")
	}
}

func TestOpenConversation_LostInsertRaceRefetches(t *testing.T) {
	f := newChatFixture(t)

	// 赢家在首次查找之后、本方插入之前落库
	winner, err := domain.NewConversation("conv-winner", domain.ContextListing, "listing-1", "buyer-1", "seller-1")
	if err != nil {
		t.Fatal(err)
	}
	f.convos.conflictWith = winner

	resp, err := f.svc.OpenConversation(context.Background(), &OpenConversationRequest{
		Context: domain.ContextListing, ContextID: "listing-1", InitiatorID: "buyer-1", PeerID: "seller-1",
	})
	if err != nil {
		t.Fatalf("OpenConversation() after lost race error = %v", err)
	}
	if resp.Created {
		t.Error("lost race but response claims creation")
	}
	if resp.ConversationID != winner.ID {
		t.Errorf("conversation id = %s, want winner %s", resp.ConversationID, winner.ID)
	}
}

func TestSendMessage_BumpsCounterpartyUnread(t *testing.T) {
	f := newChatFixture(t)
	conv := f.open(t, domain.ContextDirect, "", "user-a", "user-b")

	if _, err := f.svc.SendMessage(context.Background(), &SendMessageRequest{
		ConversationID: conv.ConversationID, SenderID: "user-a", Kind: domain.MessageKindText, Body: "hi",
	}); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	if got, _ := f.unread.Count(context.Background(), conv.ConversationID, "user-b"); got != 1 {
		t.Errorf("counterparty unread = %d, want 1", got)
	}
	if got, _ := f.unread.Count(context.Background(), conv.ConversationID, "user-a"); got != 0 {
		t.Errorf("sender unread = %d, want 0", got)
	}
}

func TestSendMessage_RejectsNonParticipant(t *testing.T) {
	f := newChatFixture(t)
	conv := f.open(t, domain.ContextDirect, "", "user-a", "user-b")

	if _, err := f.svc.SendMessage(context.Background(), &SendMessageRequest{
		ConversationID: conv.ConversationID, SenderID: "stranger", Kind: domain.MessageKindText, Body: "hi",
	}); err == nil {
		t.Fatal("SendMessage() from a non-participant succeeded")
	}
	if len(f.msgs.messages) != 0 {
		t.Errorf("persisted %d messages from a non-participant", len(f.msgs.messages))
	}
}

func TestSendMessage_OfferOpensNegotiation(t *testing.T) {
	f := newChatFixture(t)
	conv := f.open(t, domain.ContextListing, "listing-1", "buyer-1", "seller-1")

	resp, err := f.svc.SendMessage(context.Background(), &SendMessageRequest{
		ConversationID: conv.ConversationID, SenderID: "buyer-1", Kind: domain.MessageKindOffer, Body: "25 for the monstera?",
	})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if resp.OrderID != "order-1" {
		t.Errorf("order id = %q, want order-1", resp.OrderID)
	}
	if len(f.orders.opened) != 1 || f.orders.opened[0] != [2]string{"listing-1", "buyer-1"} {
		t.Errorf("negotiations opened = %v", f.orders.opened)
	}
}

func TestSendMessage_TextDoesNotOpenNegotiation(t *testing.T) {
	f := newChatFixture(t)
	conv := f.open(t, domain.ContextListing, "listing-1", "buyer-1", "seller-1")

	if _, err := f.svc.SendMessage(context.Background(), &SendMessageRequest{
		ConversationID: conv.ConversationID, SenderID: "buyer-1", Kind: domain.MessageKindText, Body: "is it still available?",
	}); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if len(f.orders.opened) != 0 {
		t.Errorf("text message opened %d negotiations", len(f.orders.opened))
	}
}

func TestListMessages_ResetsUnread(t *testing.T) {
	f := newChatFixture(t)
	conv := f.open(t, domain.ContextDirect, "", "user-a", "user-b")

	for i := 0; i < 3; i++ {
		if _, err := f.svc.SendMessage(context.Background(), &SendMessageRequest{
			ConversationID: conv.ConversationID, SenderID: "user-a", Kind: domain.MessageKindText, Body: "ping",
		}); err != nil {
			t.Fatal(err)
		}
	}

	views, err := f.svc.ListMessages(context.Background(), conv.ConversationID, "user-b", 50)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(views) != 3 {
		t.Errorf("got %d messages, want 3", len(views))
	}
	if got, _ := f.unread.Count(context.Background(), conv.ConversationID, "user-b"); got != 0 {
		t.Errorf("unread after read = %d, want 0", got)
	}
}
