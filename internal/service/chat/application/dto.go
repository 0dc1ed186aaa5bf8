// internal/service/chat/application/dto.go
package application

import "time"

// OpenConversationRequest 发起或查找一个会话。
type OpenConversationRequest struct {
	Context     string `json:"context"`      // listing / wanted / direct
	ContextID   string `json:"context_id"`   // direct 会话留空
	InitiatorID string `json:"initiator_id"` // 发起方
	PeerID      string `json:"peer_id"`      // 对端
}

type OpenConversationResponse struct {
	ConversationID string `json:"conversation_id"`
	ThreadKey      string `json:"thread_key"`
	Created        bool   `json:"created"`
}

// SendMessageRequest 在会话内发送一条消息。
type SendMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Kind           string `json:"kind"`
	Body           string `json:"body"`
}

type SendMessageResponse struct {
	MessageID string `json:"message_id"`
	// 报价消息触发议价时回带订单 ID
	OrderID string `json:"order_id,omitempty"`
}

// MessageView 是消息的读模型。
type MessageView struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationView 是会话列表的读模型。
type ConversationView struct {
	ConversationID string `json:"conversation_id"`
	Context        string `json:"context"`
	ContextID      string `json:"context_id,omitempty"`
	Counterparty   string `json:"counterparty"`
	UnreadCount    int64  `json:"unread_count"`
}
