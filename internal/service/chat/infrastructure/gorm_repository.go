// internal/service/chat/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"verdant/internal/service/chat/domain"
)

const mysqlDuplicateEntry = 1062

// GormConversationRepository 是 domain.ConversationRepository 的 GORM 实现。
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository 创建一个新的 GORM 仓储实例
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

// Create 插入新会话。thread_key 唯一索引冲突翻译为 ErrThreadKeyTaken，
// 让应用层按"重查已有会话"处理 get-or-create 竞争。
func (r *GormConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	err := r.db.WithContext(ctx).Create(FromDomainConversation(conversation)).Error
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrThreadKeyTaken
		}
		return err
	}
	return nil
}

// FindByThreadKey 按会话键查找。
func (r *GormConversationRepository) FindByThreadKey(ctx context.Context, threadKey string) (*domain.Conversation, error) {
	var model ConversationModel
	err := r.db.WithContext(ctx).Where("thread_key = ?", threadKey).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return ToDomainConversation(&model), nil
}

// FindByID 根据 ID 查找会话。
func (r *GormConversationRepository) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var model ConversationModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return ToDomainConversation(&model), nil
}

// ListByParticipant 返回用户参与的所有会话，最近更新的在前。
func (r *GormConversationRepository) ListByParticipant(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	var models []ConversationModel
	err := r.db.WithContext(ctx).
		Where("party_low = ? OR party_high = ?", userID, userID).
		Order("updated_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	conversations := make([]*domain.Conversation, 0, len(models))
	for i := range models {
		conversations = append(conversations, ToDomainConversation(&models[i]))
	}
	return conversations, nil
}

// isDuplicateKey 识别 MySQL 的唯一键冲突（错误号 1062）。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// GormMessageRepository 是 domain.MessageRepository 的 GORM 实现。
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository 创建一个新的 GORM 仓储实例
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Save 插入一条消息。消息不可变，只有插入没有更新。
func (r *GormMessageRepository) Save(ctx context.Context, message *domain.Message) error {
	return r.db.WithContext(ctx).Create(FromDomainMessage(message)).Error
}

// ListByConversation 按 ULID 主键升序返回会话内的消息，即发送顺序。
func (r *GormMessageRepository) ListByConversation(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []MessageModel
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	messages := make([]*domain.Message, 0, len(models))
	for i := range models {
		messages = append(messages, ToDomainMessage(&models[i]))
	}
	return messages, nil
}

// AutoMigrate 创建/更新本服务拥有的表结构。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&ConversationModel{}, &MessageModel{})
}
