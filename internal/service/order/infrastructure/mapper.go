// internal/service/order/infrastructure/mapper.go
package infrastructure

import (
	"verdant/internal/service/order/domain"
)

// ToDomainOrder 将数据库模型转换为领域模型
func ToDomainOrder(model *OrderModel) *domain.Order {
	if model == nil {
		return nil
	}
	return &domain.Order{
		ID:                 model.ID,
		ListingID:          model.ListingID,
		BuyerID:            model.BuyerID,
		SellerID:           model.SellerID,
		Status:             domain.OrderStatus(model.Status),
		HasShippingAddress: model.HasShippingAddress,
		Version:            model.Version,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// FromDomainOrder 将领域模型转换为数据库模型
func FromDomainOrder(dmn *domain.Order) *OrderModel {
	if dmn == nil {
		return nil
	}
	return &OrderModel{
		ID:                 dmn.ID,
		ListingID:          dmn.ListingID,
		BuyerID:            dmn.BuyerID,
		SellerID:           dmn.SellerID,
		Status:             string(dmn.Status),
		HasShippingAddress: dmn.HasShippingAddress,
		Version:            dmn.Version,
		CreatedAt:          dmn.CreatedAt,
		UpdatedAt:          dmn.UpdatedAt,
	}
}

// ToDomainListing 将数据库模型转换为领域模型
func ToDomainListing(model *ListingModel) *domain.Listing {
	if model == nil {
		return nil
	}
	return &domain.Listing{
		ID:          model.ID,
		SellerID:    model.SellerID,
		Title:       model.Title,
		Status:      domain.ListingStatus(model.Status),
		Version:     model.Version,
		PublishedAt: model.PublishedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// FromDomainListing 将领域模型转换为数据库模型
func FromDomainListing(dmn *domain.Listing) *ListingModel {
	if dmn == nil {
		return nil
	}
	return &ListingModel{
		ID:          dmn.ID,
		SellerID:    dmn.SellerID,
		Title:       dmn.Title,
		Status:      string(dmn.Status),
		Version:     dmn.Version,
		PublishedAt: dmn.PublishedAt,
		CreatedAt:   dmn.CreatedAt,
		UpdatedAt:   dmn.UpdatedAt,
	}
}
