package adapter

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// 未读数的保底过期时间。计数可以从消息表重建，过期只是防 key 泄漏。
const unreadTTL = 30 * 24 * time.Hour

// UnreadRedisAdapter 实现了 port.UnreadCounter 接口。
// 每个 (会话, 用户) 一个计数 key，发消息 INCR 对端，读消息 DEL 自己。
type UnreadRedisAdapter struct {
	rdb *goredis.Client
}

// NewUnreadRedisAdapter 创建一个新的未读数适配器。
func NewUnreadRedisAdapter(rdb *goredis.Client) *UnreadRedisAdapter {
	return &UnreadRedisAdapter{rdb: rdb}
}

func unreadKey(conversationID, userID string) string {
	return fmt.Sprintf("chat:unread:{%s}:%s", conversationID, userID)
}

// Increment 给用户在会话里的未读数加一。
func (a *UnreadRedisAdapter) Increment(ctx context.Context, conversationID, userID string) error {
	key := unreadKey(conversationID, userID)
	pipe := a.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, unreadTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Count 读取用户在会话里的未读数。key 不存在视为 0。
func (a *UnreadRedisAdapter) Count(ctx context.Context, conversationID, userID string) (int64, error) {
	count, err := a.rdb.Get(ctx, unreadKey(conversationID, userID)).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	return count, err
}

// Reset 清零用户在会话里的未读数。
func (a *UnreadRedisAdapter) Reset(ctx context.Context, conversationID, userID string) error {
	return a.rdb.Del(ctx, unreadKey(conversationID, userID)).Err()
}
