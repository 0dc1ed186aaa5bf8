// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"verdant/internal/service/order/domain"
)

// GormOrderRepository 是 domain.OrderRepository 的 GORM 实现。
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的 GORM 仓储实例
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save 插入或按乐观锁更新一笔交易。
// 更新时以读出的 Version 做 CAS：没有命中任何行说明
// 有并发请求抢先更新过，返回 ErrVersionConflict 让上层放弃。
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	model := FromDomainOrder(order)

	if order.Version == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			model.Version = 1
			if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
				return err
			}
			order.Version = 1
			return nil
		}
	}

	result := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]interface{}{
			"status":               model.Status,
			"has_shipping_address": model.HasShippingAddress,
			"version":              order.Version + 1,
			"updated_at":           model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	order.Version++
	return nil
}

// FindByID 根据 ID 查找一笔交易。
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return ToDomainOrder(&model), nil
}

// FindByListingAndBuyer 查找某买家对某挂牌的交易。
// (listing_id, buyer_id) 上有唯一索引，至多一条。
func (r *GormOrderRepository) FindByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND buyer_id = ?", listingID, buyerID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return ToDomainOrder(&model), nil
}

// GormListingRepository 是 domain.ListingRepository 的 GORM 实现。
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository 创建一个新的 GORM 仓储实例
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// Save 插入或按乐观锁更新一个挂牌。
func (r *GormListingRepository) Save(ctx context.Context, listing *domain.Listing) error {
	model := FromDomainListing(listing)

	if listing.Version == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&ListingModel{}).Where("id = ?", listing.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			model.Version = 1
			if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
				return err
			}
			listing.Version = 1
			return nil
		}
	}

	result := r.db.WithContext(ctx).Model(&ListingModel{}).
		Where("id = ? AND version = ?", listing.ID, listing.Version).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"version":    listing.Version + 1,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	listing.Version++
	return nil
}

// FindByID 根据 ID 查找一个挂牌。
func (r *GormListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	var model ListingModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return ToDomainListing(&model), nil
}

// GormUnitOfWork 基于 gorm 事务实现 domain.UnitOfWork。
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// WithinTx 在一个数据库事务内执行 fn，传入绑定到该事务的仓储。
// fn 返回错误时整个事务回滚。
func (u *GormUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, orders domain.OrderRepository, listings domain.ListingRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewGormOrderRepository(tx), NewGormListingRepository(tx))
	})
}

// AutoMigrate 创建/更新本服务拥有的表结构。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&OrderModel{}, &ListingModel{})
}
