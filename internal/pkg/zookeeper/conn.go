// internal/pkg/zookeeper/conn.go
package zookeeper

import (
	"time"

	"github.com/go-zookeeper/zk"

	"verdant/internal/pkg/logger"
)

// Conn 是对 zk.Conn 的轻量封装，统一连接参数和日志。
type Conn struct {
	*zk.Conn
}

// Connect 建立到 ZooKeeper 集群的连接。
func Connect(servers []string) (*Conn, error) {
	conn, _, err := zk.Connect(servers, 10*time.Second, zk.WithLogInfo(false))
	if err != nil {
		return nil, err
	}
	logger.Logger.Info().Strs("servers", servers).Msg("✅ connected to ZooKeeper")
	return &Conn{Conn: conn}, nil
}

// Close 关闭连接，所有临时节点随会话一起消失。
func (c *Conn) Close() {
	c.Conn.Close()
}
