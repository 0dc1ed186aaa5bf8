// internal/service/chat/domain/message.go
package domain

import (
	"time"

	"github.com/pkg/errors"
)

// 消息类型。offer 消息会触发订单服务开启一次议价。
const (
	MessageKindText  = "text"
	MessageKindOffer = "offer"
)

// Message 是会话内的一条消息。ID 使用 ULID，天然按发送时间排序。
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Kind           string
	Body           string
	CreatedAt      time.Time
}

// NewMessage 创建一条消息。
func NewMessage(id, conversationID, senderID, kind, body string) (*Message, error) {
	if body == "" {
		return nil, errors.New("message body must not be empty")
	}
	if kind != MessageKindText && kind != MessageKindOffer {
		return nil, errors.Errorf("unknown message kind %q", kind)
	}
	return &Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       senderID,
		Kind:           kind,
		Body:           body,
		CreatedAt:      time.Now(),
	}, nil
}
