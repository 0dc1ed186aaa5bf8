package adapter

import (
	"context"

	"github.com/pkg/errors"

	"verdant/internal/pkg/logger"
	"verdant/internal/pkg/zookeeper"
)

// LockZookeeperAdapter 实现了 port.TransitionLock 接口。
// 用 ZooKeeper 临时顺序节点对单笔交易的状态流转做串行化，
// 避免买卖双方并发请求在读-改-写之间交错。
type LockZookeeperAdapter struct {
	conn *zookeeper.Conn
}

// NewLockZookeeperAdapter 创建一个新的分布式锁适配器。
func NewLockZookeeperAdapter(conn *zookeeper.Conn) *LockZookeeperAdapter {
	return &LockZookeeperAdapter{conn: conn}
}

// Acquire 获取 orderID 对应的锁，返回释放函数。
func (a *LockZookeeperAdapter) Acquire(ctx context.Context, orderID string) (func(), error) {
	lock, err := zookeeper.NewDistributedLock(a.conn, "order-"+orderID)
	if err != nil {
		return nil, errors.Wrap(err, "create distributed lock")
	}
	if err := lock.Lock(); err != nil {
		return nil, errors.Wrapf(err, "lock order %s", orderID)
	}

	release := func() {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("🚨 failed to release transition lock")
		}
	}
	return release, nil
}
