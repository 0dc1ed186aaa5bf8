// internal/service/chat/application/service.go
package application

import (
	"context"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"verdant/internal/pkg/logger"
	"verdant/internal/service/chat/domain"
	"verdant/internal/service/chat/domain/port"
)

// ChatApplicationService 编排会话的查找创建和消息收发。
// 会话键由领域层纯函数计算；唯一性由存储层的唯一约束兜底，
// 并发插入输掉竞争的一方按键重查拿到已有会话。
type ChatApplicationService struct {
	conversations domain.ConversationRepository
	messages      domain.MessageRepository
	tracer        trace.Tracer

	unread port.UnreadCounter
	orders port.OrderClient
}

func NewChatApplicationService(conversations domain.ConversationRepository, messages domain.MessageRepository, tracer trace.Tracer, unread port.UnreadCounter, orders port.OrderClient) *ChatApplicationService {
	return &ChatApplicationService{
		conversations: conversations, messages: messages,
		tracer: tracer, unread: unread, orders: orders,
	}
}

// OpenConversation 查找或创建一个会话（get-or-create）。
// 先按键查，没有再插入；插入撞上唯一约束说明并发方赢了，重查即可。
func (s *ChatApplicationService) OpenConversation(ctx context.Context, req *OpenConversationRequest) (*OpenConversationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.OpenConversation")
	defer span.End()
	span.SetAttributes(
		attribute.String("chat.context", req.Context),
		attribute.String("chat.context_id", req.ContextID),
	)

	conversation, err := domain.NewConversation(newID(), req.Context, req.ContextID, req.InitiatorID, req.PeerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if existing, err := s.conversations.FindByThreadKey(ctx, conversation.ThreadKey); err == nil {
		span.AddEvent("existing conversation found")
		return &OpenConversationResponse{ConversationID: existing.ID, ThreadKey: existing.ThreadKey, Created: false}, nil
	} else if !errors.Is(err, domain.ErrConversationNotFound) {
		span.RecordError(err)
		return nil, err
	}

	if err := s.conversations.Create(ctx, conversation); err != nil {
		if errors.Is(err, domain.ErrThreadKeyTaken) {
			// 输掉了并发插入竞争，用赢家的那条
			span.AddEvent("lost create race, refetching")
			existing, err := s.conversations.FindByThreadKey(ctx, conversation.ThreadKey)
			if err != nil {
				span.RecordError(err)
				return nil, err
			}
			return &OpenConversationResponse{ConversationID: existing.ID, ThreadKey: existing.ThreadKey, Created: false}, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create conversation")
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("conversation", conversation.ID).
		Str("thread_key", conversation.ThreadKey).
		Msg("conversation created")
	return &OpenConversationResponse{ConversationID: conversation.ID, ThreadKey: conversation.ThreadKey, Created: true}, nil
}

// SendMessage 在会话内发送一条消息并给对端累加未读数。
// 挂牌会话里的报价消息会顺带调用订单服务开启议价。
func (s *ChatApplicationService) SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.SendMessage")
	defer span.End()
	span.SetAttributes(attribute.String("chat.conversation_id", req.ConversationID))

	conversation, err := s.conversations.FindByID(ctx, req.ConversationID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !conversation.HasParticipant(req.SenderID) {
		return nil, errors.Errorf("user %s is not a participant of conversation %s", req.SenderID, conversation.ID)
	}

	message, err := domain.NewMessage(newID(), conversation.ID, req.SenderID, req.Kind, req.Body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.messages.Save(ctx, message); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save message")
		return nil, err
	}

	// 未读数是辅助数据，失败不回滚消息
	counterparty := conversation.Counterparty(req.SenderID)
	if err := s.unread.Increment(ctx, conversation.ID, counterparty); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("conversation", conversation.ID).Msg("WARN: failed to bump unread counter")
		span.RecordError(err)
	}

	resp := &SendMessageResponse{MessageID: message.ID}

	// 报价即出价：在挂牌会话里触发订单服务开启议价，幂等
	if message.Kind == domain.MessageKindOffer && conversation.Context == domain.ContextListing {
		orderID, err := s.orders.OpenNegotiation(ctx, conversation.ContextID, req.SenderID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to open negotiation")
			return nil, err
		}
		span.SetAttributes(attribute.String("order.id", orderID))
		resp.OrderID = orderID
	}

	logger.Ctx(ctx).Info().
		Str("conversation", conversation.ID).
		Str("message", message.ID).
		Str("kind", message.Kind).
		Msg("message sent")
	return resp, nil
}

// ListMessages 返回会话内的消息，并清零请求者的未读数。
func (s *ChatApplicationService) ListMessages(ctx context.Context, conversationID, readerID string, limit int) ([]*MessageView, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListMessages")
	defer span.End()

	conversation, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !conversation.HasParticipant(readerID) {
		return nil, errors.Errorf("user %s is not a participant of conversation %s", readerID, conversationID)
	}

	messages, err := s.messages.ListByConversation(ctx, conversationID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.unread.Reset(ctx, conversationID, readerID); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("conversation", conversationID).Msg("WARN: failed to reset unread counter")
	}

	views := make([]*MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, &MessageView{
			ID: m.ID, SenderID: m.SenderID, Kind: m.Kind, Body: m.Body, CreatedAt: m.CreatedAt,
		})
	}
	return views, nil
}

// ListConversations 返回用户参与的所有会话和各自的未读数。
func (s *ChatApplicationService) ListConversations(ctx context.Context, userID string) ([]*ConversationView, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListConversations")
	defer span.End()

	conversations, err := s.conversations.ListByParticipant(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	views := make([]*ConversationView, 0, len(conversations))
	for _, c := range conversations {
		count, err := s.unread.Count(ctx, c.ID, userID)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("conversation", c.ID).Msg("WARN: failed to read unread counter")
			count = 0
		}
		views = append(views, &ConversationView{
			ConversationID: c.ID,
			Context:        c.Context,
			ContextID:      c.ContextID,
			Counterparty:   c.Counterparty(userID),
			UnreadCount:    count,
		})
	}
	return views, nil
}

// newID 生成按时间有序的 ULID。
func newID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Now(), entropy).String()
}
