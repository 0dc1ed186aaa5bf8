// internal/service/order/domain/port/lock.go
package port

import "context"

// TransitionLock 串行化同一笔订单上的并发状态流转。
// 鉴权函数本身是纯函数，读-判-写序列的并发控制必须由外部机制提供，
// 这个端口就是那个机制（当前由 ZooKeeper 实现）。
type TransitionLock interface {
	// Acquire 获取 orderID 的互斥锁，返回释放函数。
	Acquire(ctx context.Context, orderID string) (release func(), err error)
}
