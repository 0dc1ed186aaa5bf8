// internal/service/chat/domain/repository.go
package domain

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrThreadKeyTaken 表示并发的 get-or-create 输掉了插入竞争。
	// 调用方应当按 ThreadKey 重查并使用已存在的会话。
	ErrThreadKeyTaken = errors.New("conversation with this thread key already exists")
)

// ConversationRepository 是会话的持久化端口。
type ConversationRepository interface {
	// Create 插入新会话。ThreadKey 冲突时返回 ErrThreadKeyTaken。
	Create(ctx context.Context, conversation *Conversation) error
	FindByThreadKey(ctx context.Context, threadKey string) (*Conversation, error)
	FindByID(ctx context.Context, id string) (*Conversation, error)
	ListByParticipant(ctx context.Context, userID string) ([]*Conversation, error)
}

// MessageRepository 是消息的持久化端口。
type MessageRepository interface {
	Save(ctx context.Context, message *Message) error
	// ListByConversation 按发送顺序返回会话内的消息。
	ListByConversation(ctx context.Context, conversationID string, limit int) ([]*Message, error)
}
