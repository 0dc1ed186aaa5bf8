// internal/service/chat/infrastructure/gorm_model.go
package infrastructure

import (
	"time"
)

// ConversationModel 对应数据库中的 conversation 表。
// thread_key 上的唯一索引是"同一对用户同一上下文至多一条会话"的最终裁判。
type ConversationModel struct {
	ID        string `gorm:"primaryKey;size:26"`
	ThreadKey string `gorm:"size:191;uniqueIndex:idx_thread_key"`
	Context   string `gorm:"size:16"`
	ContextID string `gorm:"size:36"`
	PartyLow  string `gorm:"size:36;index"`
	PartyHigh string `gorm:"size:36;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (ConversationModel) TableName() string {
	return "conversation"
}

// MessageModel 对应数据库中的 chat_message 表。
type MessageModel struct {
	ID             string `gorm:"primaryKey;size:26"`
	ConversationID string `gorm:"size:26;index"`
	SenderID       string `gorm:"size:36"`
	Kind           string `gorm:"size:16"`
	Body           string `gorm:"type:text"`
	CreatedAt      time.Time
}

// TableName 指定 GORM 应该使用的表名
func (MessageModel) TableName() string {
	return "chat_message"
}
