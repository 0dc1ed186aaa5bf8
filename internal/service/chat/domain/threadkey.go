// internal/service/chat/domain/threadkey.go
package domain

import "strings"

// 会话上下文判别符。同一对用户在不同上下文下拥有互相独立的会话。
const (
	ContextListing = "listing"
	ContextWanted  = "wanted"
	ContextDirect  = "direct"
)

const keyDelimiter = ":"

// ListingThreadKey 计算围绕某个挂牌的会话键。
// 键对参与者对称：无论谁发起，同一对用户得到同一个键。
func ListingThreadKey(listingID, partyA, partyB string) string {
	lo, hi := sortPair(partyA, partyB)
	return strings.Join([]string{ContextListing, listingID, lo, hi}, keyDelimiter)
}

// WantedThreadKey 计算围绕某个求购请求的会话键。
func WantedThreadKey(wantedRequestID, partyA, partyB string) string {
	lo, hi := sortPair(partyA, partyB)
	return strings.Join([]string{ContextWanted, wantedRequestID, lo, hi}, keyDelimiter)
}

// DirectThreadKey 计算两个用户之间无上下文私聊的会话键。
func DirectThreadKey(partyA, partyB string) string {
	lo, hi := sortPair(partyA, partyB)
	return strings.Join([]string{ContextDirect, lo, hi}, keyDelimiter)
}

// sortPair 按字典序规范化一对参与者。
func sortPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
