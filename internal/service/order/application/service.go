// internal/service/order/application/service.go
package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"verdant/internal/pkg/logger"
	"verdant/internal/service/order/domain"
	"verdant/internal/service/order/domain/port"
)

// OrderApplicationService 编排订单状态流转。
// 领域层的三个纯函数（角色解析、流转鉴权、挂牌投影）不做任何 I/O，
// 这里负责把它们串起来：取锁、读库、判定、原子落库、发事件。
type OrderApplicationService struct {
	uow      domain.UnitOfWork
	orders   domain.OrderRepository
	listings domain.ListingRepository
	tracer   trace.Tracer

	lock     port.TransitionLock
	notifier port.NotificationProducer
}

func NewOrderApplicationService(uow domain.UnitOfWork, orders domain.OrderRepository, listings domain.ListingRepository, tracer trace.Tracer, lock port.TransitionLock, notifier port.NotificationProducer) *OrderApplicationService {
	return &OrderApplicationService{
		uow: uow, orders: orders, listings: listings,
		tracer: tracer, lock: lock, notifier: notifier,
	}
}

// TransitionOrder 处理一次状态流转请求。
//
// 返回的 error 只代表基础设施故障；业务上的拒绝通过
// Response.Allowed=false 表达，此时什么都没有持久化，
// 调用方必须把 Reason 原样反馈给用户且不得自动重试。
func (s *OrderApplicationService) TransitionOrder(ctx context.Context, req *TransitionOrderRequest) (*TransitionOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.TransitionOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("order.transition.to", string(req.To)),
	)

	// 1. 串行化同一笔订单上的并发流转请求。
	//    鉴权是读-判-写序列，没有这把锁，两个并发请求会互相覆盖。
	release, err := s.lock.Acquire(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to acquire transition lock")
		return nil, err
	}
	defer release()

	// 2. 读出当前状态
	order, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 3. 买家随流转请求提交地址时，先记录到聚合上再做鉴权
	if req.ShippingAddress != "" {
		order.ProvideShippingAddress()
	}

	// 4. 领域判定：角色解析 + 流转鉴权
	actor := order.ActorFor(req.PartyID)
	decision := domain.Authorize(order.Status, req.To, actor, order.HasShippingAddress)
	span.SetAttributes(
		attribute.String("order.actor", string(actor)),
		attribute.Bool("order.transition.allowed", decision.Allowed),
	)
	if !decision.Allowed {
		// 拒绝是终态：不落库、不重试，原因原样返回
		logger.Ctx(ctx).Info().
			Str("order", order.ID).
			Str("from", string(order.Status)).
			Str("to", string(req.To)).
			Str("actor", string(actor)).
			Str("reason", decision.Reason).
			Msg("transition rejected")
		return &TransitionOrderResponse{
			OrderID:     order.ID,
			Allowed:     false,
			Reason:      decision.Reason,
			OrderStatus: order.Status,
		}, nil
	}

	// 5. 投影出挂牌的新状态
	previous := order.Status
	order.ApplyTransition(req.To)
	listingStatus := domain.ProjectListingStatus(req.To, previous)

	// 6. 订单状态和挂牌状态在同一个事务里原子落库
	err = s.uow.WithinTx(ctx, func(txCtx context.Context, orders domain.OrderRepository, listings domain.ListingRepository) error {
		if err := orders.Save(txCtx, order); err != nil {
			return err
		}
		listing, err := listings.FindByID(txCtx, order.ListingID)
		if err != nil {
			return err
		}
		listing.SetStatus(listingStatus)
		return listings.Save(txCtx, listing)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist transition")
		return nil, err
	}
	span.AddEvent("transition persisted")

	// 7. 发布状态变更事件。发不出去不影响主流程，记日志等补偿。
	event := &domain.OrderStatusChanged{
		TraceID:       span.SpanContext().TraceID().String(),
		OrderID:       order.ID,
		ListingID:     order.ListingID,
		BuyerID:       order.BuyerID,
		SellerID:      order.SellerID,
		From:          previous,
		To:            order.Status,
		Actor:         actor,
		ListingStatus: listingStatus,
		OccurredAt:    time.Now(),
	}
	if err := s.notifier.PublishStatusChanged(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order", order.ID).Msg("WARN: failed to publish status change event")
		span.RecordError(err)
	}

	logger.Ctx(ctx).Info().
		Str("order", order.ID).
		Str("from", string(previous)).
		Str("to", string(order.Status)).
		Str("listing_status", string(listingStatus)).
		Msg("transition applied")

	return &TransitionOrderResponse{
		OrderID:       order.ID,
		Allowed:       true,
		OrderStatus:   order.Status,
		ListingStatus: listingStatus,
	}, nil
}

// OpenNegotiation 在买家第一次出价时创建交易，幂等。
// 同一买家对同一挂牌重复出价会命中已有交易而不是开第二笔。
func (s *OrderApplicationService) OpenNegotiation(ctx context.Context, req *OpenNegotiationRequest) (*OpenNegotiationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.OpenNegotiation")
	defer span.End()
	span.SetAttributes(
		attribute.String("listing.id", req.ListingID),
		attribute.String("buyer.id", req.BuyerID),
	)

	if existing, err := s.orders.FindByListingAndBuyer(ctx, req.ListingID, req.BuyerID); err == nil {
		span.AddEvent("existing negotiation found")
		return &OpenNegotiationResponse{OrderID: existing.ID, Status: existing.Status, Created: false}, nil
	} else if err != domain.ErrOrderNotFound {
		span.RecordError(err)
		return nil, err
	}

	listing, err := s.listings.FindByID(ctx, req.ListingID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	order, err := domain.NewOrder(listing.ID, req.BuyerID, listing.SellerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save new order")
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("order", order.ID).
		Str("listing", listing.ID).
		Str("buyer", req.BuyerID).
		Msg("negotiation opened")
	return &OpenNegotiationResponse{OrderID: order.ID, Status: order.Status, Created: true}, nil
}
