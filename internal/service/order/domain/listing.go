// internal/service/order/domain/listing.go
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Listing 是挂牌实体。它的可见性状态独立于交易存在，
// 但会作为交易状态流转的副作用被投影更新，
// 另外还会被审核和过期流程独立修改。
type Listing struct {
	ID       string
	SellerID string
	Title    string
	Status   ListingStatus

	Version     int64
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewListing 创建一个新的挂牌，初始即公开可见。
func NewListing(sellerID, title string) (*Listing, error) {
	if sellerID == "" || title == "" {
		return nil, errors.New("cannot create listing with empty required fields")
	}
	now := time.Now()
	return &Listing{
		ID:          uuid.New().String(),
		SellerID:    sellerID,
		Title:       title,
		Status:      ListingActive,
		PublishedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetStatus 应用投影函数计算出的新状态。
func (l *Listing) SetStatus(status ListingStatus) {
	l.Status = status
	l.UpdatedAt = time.Now()
}

// Expire 将挂牌标记为过期。正在交易中的挂牌不允许过期，
// 否则会和订单投影出的状态互相覆盖。
func (l *Listing) Expire() error {
	if l.Status != ListingActive {
		return errors.New("only active listings can expire")
	}
	l.Status = ListingExpired
	l.UpdatedAt = time.Now()
	return nil
}

// Remove 是审核下架。同样不允许动正在交易中或已售出的挂牌。
func (l *Listing) Remove() error {
	if l.Status == ListingReserved || l.Status == ListingSold {
		return errors.New("cannot remove a listing with an ongoing or completed transaction")
	}
	l.Status = ListingRemoved
	l.UpdatedAt = time.Now()
	return nil
}
