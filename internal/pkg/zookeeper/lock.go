// internal/pkg/zookeeper/lock.go
package zookeeper

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const (
	lockRoot = "/verdant_locks" // 所有分布式锁的根节点

	// 等锁的上限。订单状态流转都是毫秒级的 DB 操作，
	// 等不到锁说明持有者已经异常，不应该无限排队。
	lockWaitTimeout = 10 * time.Second
)

// DistributedLock 基于临时顺序节点实现的公平分布式锁。
// 用于串行化同一笔订单上的并发状态流转请求。
type DistributedLock struct {
	conn     *Conn
	path     string // 锁的路径，例如 /verdant_locks/order-123
	lockNode string // 成功排队后自己创建的节点路径
}

// NewDistributedLock 创建一个针对 resourceID 的锁实例。
func NewDistributedLock(conn *Conn, resourceID string) (*DistributedLock, error) {
	lockPath := lockRoot + "/" + resourceID

	// 逐级确保父节点存在；节点已存在不算错误
	for _, p := range []string{lockRoot, lockPath} {
		if exists, _, err := conn.Exists(p); err == nil && !exists {
			if _, err := conn.Create(p, []byte{}, 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
				return nil, fmt.Errorf("failed to create lock path node %s: %w", p, err)
			}
		}
	}

	return &DistributedLock{
		conn: conn,
		path: lockPath,
	}, nil
}

// Lock 尝试获取锁，获取不到则阻塞等待，最多等待 lockWaitTimeout。
func (l *DistributedLock) Lock() error {
	// 1. 在锁路径下创建一个临时顺序节点
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte{}, zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	for {
		// 2. 列出所有排队节点并排序
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			return fmt.Errorf("failed to get children nodes: %w", err)
		}
		sort.Strings(children)

		// 3. 自己是最小节点则获得锁
		myNodeName := strings.TrimPrefix(l.lockNode, l.path+"/")
		myIndex := -1
		for i, child := range children {
			if child == myNodeName {
				myIndex = i
				break
			}
		}
		if myIndex == 0 {
			return nil
		}
		if myIndex < 0 {
			return errors.New("own lock node disappeared while waiting")
		}

		// 4. 只 watch 自己前面的那个节点，避免惊群
		prevNodePath := l.path + "/" + children[myIndex-1]
		exists, _, eventChan, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			if err == zk.ErrNoNode {
				continue
			}
			return fmt.Errorf("failed to watch previous node: %w", err)
		}
		if !exists {
			// 前一个节点在 watch 之前就释放了，重新竞争
			continue
		}

		select {
		case event := <-eventChan:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-time.After(lockWaitTimeout):
			// 超时放弃，清理自己的排队节点
			_ = l.Unlock()
			return errors.New("timeout waiting for lock")
		}
	}
}

// Unlock 释放锁。
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}
