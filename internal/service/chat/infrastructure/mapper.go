// internal/service/chat/infrastructure/mapper.go
package infrastructure

import (
	"verdant/internal/service/chat/domain"
)

// ToDomainConversation 将数据库模型转换为领域模型
func ToDomainConversation(model *ConversationModel) *domain.Conversation {
	if model == nil {
		return nil
	}
	return &domain.Conversation{
		ID:        model.ID,
		ThreadKey: model.ThreadKey,
		Context:   model.Context,
		ContextID: model.ContextID,
		PartyLow:  model.PartyLow,
		PartyHigh: model.PartyHigh,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// FromDomainConversation 将领域模型转换为数据库模型
func FromDomainConversation(dmn *domain.Conversation) *ConversationModel {
	if dmn == nil {
		return nil
	}
	return &ConversationModel{
		ID:        dmn.ID,
		ThreadKey: dmn.ThreadKey,
		Context:   dmn.Context,
		ContextID: dmn.ContextID,
		PartyLow:  dmn.PartyLow,
		PartyHigh: dmn.PartyHigh,
		CreatedAt: dmn.CreatedAt,
		UpdatedAt: dmn.UpdatedAt,
	}
}

// ToDomainMessage 将数据库模型转换为领域模型
func ToDomainMessage(model *MessageModel) *domain.Message {
	if model == nil {
		return nil
	}
	return &domain.Message{
		ID:             model.ID,
		ConversationID: model.ConversationID,
		SenderID:       model.SenderID,
		Kind:           model.Kind,
		Body:           model.Body,
		CreatedAt:      model.CreatedAt,
	}
}

// FromDomainMessage 将领域模型转换为数据库模型
func FromDomainMessage(dmn *domain.Message) *MessageModel {
	if dmn == nil {
		return nil
	}
	return &MessageModel{
		ID:             dmn.ID,
		ConversationID: dmn.ConversationID,
		SenderID:       dmn.SenderID,
		Kind:           dmn.Kind,
		Body:           dmn.Body,
		CreatedAt:      dmn.CreatedAt,
	}
}
