// internal/service/chat/domain/conversation.go
package domain

import (
	"time"

	"github.com/pkg/errors"
)

// Conversation 是两个用户在某个上下文下的唯一会话。
// ThreadKey 上的存储层唯一约束保证同一对用户同一上下文至多一条。
type Conversation struct {
	ID        string
	ThreadKey string
	Context   string // listing / wanted / direct
	ContextID string // 挂牌或求购请求的 ID，direct 会话为空
	PartyLow  string // 参与者对按字典序规范化后的低位
	PartyHigh string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewConversation 创建一个新会话。参与者按规范顺序落库。
func NewConversation(id, context, contextID, partyA, partyB string) (*Conversation, error) {
	if partyA == partyB {
		return nil, errors.New("a conversation needs two distinct participants")
	}
	var threadKey string
	switch context {
	case ContextListing:
		threadKey = ListingThreadKey(contextID, partyA, partyB)
	case ContextWanted:
		threadKey = WantedThreadKey(contextID, partyA, partyB)
	case ContextDirect:
		threadKey = DirectThreadKey(partyA, partyB)
	default:
		return nil, errors.Errorf("unknown conversation context %q", context)
	}

	lo, hi := sortPair(partyA, partyB)
	now := time.Now()
	return &Conversation{
		ID:        id,
		ThreadKey: threadKey,
		Context:   context,
		ContextID: contextID,
		PartyLow:  lo,
		PartyHigh: hi,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HasParticipant 判断 userID 是否是会话参与者。
func (c *Conversation) HasParticipant(userID string) bool {
	return userID == c.PartyLow || userID == c.PartyHigh
}

// Counterparty 返回 userID 的对端参与者。
func (c *Conversation) Counterparty(userID string) string {
	if userID == c.PartyLow {
		return c.PartyHigh
	}
	return c.PartyLow
}
