// internal/service/order/infrastructure/gorm_model.go
package infrastructure

import (
	"time"
)

// OrderModel 对应数据库中的 marketplace_order 表。
type OrderModel struct {
	ID                 string `gorm:"primaryKey;size:36"`
	ListingID          string `gorm:"size:36;index:idx_listing_buyer,unique,priority:1"`
	BuyerID            string `gorm:"size:36;index:idx_listing_buyer,unique,priority:2"`
	SellerID           string `gorm:"size:36;index"`
	Status             string `gorm:"size:32"`
	HasShippingAddress bool
	Version            int64 `gorm:"not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName 指定 GORM 应该使用的表名
func (OrderModel) TableName() string {
	return "marketplace_order"
}

// ListingModel 对应数据库中的 listing 表。
type ListingModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	SellerID    string `gorm:"size:36;index"`
	Title       string `gorm:"size:255"`
	Status      string `gorm:"size:32;index"`
	Version     int64  `gorm:"not null;default:0"`
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 指定 GORM 应该使用的表名
func (ListingModel) TableName() string {
	return "listing"
}
