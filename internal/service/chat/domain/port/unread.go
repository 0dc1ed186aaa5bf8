// internal/service/chat/domain/port/unread.go
package port

import "context"

// UnreadCounter 维护每个用户在每个会话里的未读数，由 Redis 适配器实现。
// 计数是尽力而为的辅助数据，丢失可以从消息表重建。
type UnreadCounter interface {
	Increment(ctx context.Context, conversationID, userID string) error
	Count(ctx context.Context, conversationID, userID string) (int64, error)
	Reset(ctx context.Context, conversationID, userID string) error
}
