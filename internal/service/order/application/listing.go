// internal/service/order/application/listing.go
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

// ListingApplicationService 编排挂牌自身的生命周期：
// 发布、到期下架、审核下架。交易驱动的状态变化不在这里，
// 那是订单流转投影的职责。
type ListingApplicationService struct {
	listings  domain.ListingRepository
	tracer    trace.Tracer
	scheduler port.DelayScheduler
	rules     port.RuleEngine

	expiryRule string // CEL 表达式，来自配置
}

func NewListingApplicationService(listings domain.ListingRepository, tracer trace.Tracer, scheduler port.DelayScheduler, rules port.RuleEngine, expiryRule string) *ListingApplicationService {
	return &ListingApplicationService{
		listings: listings, tracer: tracer,
		scheduler: scheduler, rules: rules, expiryRule: expiryRule,
	}
}

// PublishListing 发布一个新挂牌并调度它的过期检查。
func (s *ListingApplicationService) PublishListing(ctx context.Context, req *PublishListingRequest) (*PublishListingResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.PublishListing")
	defer span.End()

	listing, err := domain.NewListing(req.SellerID, req.Title)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.listings.Save(ctx, listing); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save listing")
		return nil, err
	}

	// 调度失败不阻塞发布：挂牌已经可见，过期检查可以靠补偿任务兜底
	if err := s.scheduler.ScheduleExpiryCheck(ctx, listing.ID, listing.PublishedAt); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("listing", listing.ID).Msg("WARN: failed to schedule expiry check")
		span.RecordError(err)
	}

	logger.Ctx(ctx).Info().Str("listing", listing.ID).Str("seller", req.SellerID).Msg("listing published")
	return &PublishListingResponse{ListingID: listing.ID, Status: listing.Status}, nil
}

// ProcessExpiryCheck 处理到期投递回来的过期检查任务。
// 规则是否命中由 CEL 表达式决定，运营可以在配置里调整有效期策略。
func (s *ListingApplicationService) ProcessExpiryCheck(ctx context.Context, event *domain.ListingExpiryCheckRequested) error {
	ctx, span := s.tracer.Start(ctx, "app.ProcessExpiryCheck", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(attribute.String("listing.id", event.ListingID))

	listing, err := s.listings.FindByID(ctx, event.ListingID)
	if err != nil {
		if err == domain.ErrListingNotFound {
			// 挂牌可能已被删除，任务作废即可
			span.AddEvent("listing no longer exists")
			return nil
		}
		span.RecordError(err)
		return err
	}

	if listing.Status != domain.ListingActive {
		// 交易中、已售出或已下架的挂牌不参与过期
		span.AddEvent("listing not active, expiry check skipped")
		return nil
	}

	fired, err := s.rules.Evaluate(ctx, s.expiryRule, map[string]interface{}{
		"now": time.Now(),
		"listing": map[string]interface{}{
			"published_at": listing.PublishedAt,
			"status":       string(listing.Status),
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "expiry rule evaluation failed")
		return err
	}
	if !fired {
		span.AddEvent("expiry rule not fired")
		return nil
	}

	if err := listing.Expire(); err != nil {
		// 规则评估和状态检查之间挂牌被预定了，放弃本次过期
		logger.Ctx(ctx).Info().Err(err).Str("listing", listing.ID).Msg("expiry skipped")
		return nil
	}
	if err := s.listings.Save(ctx, listing); err != nil {
		span.RecordError(err)
		return err
	}

	logger.Ctx(ctx).Info().Str("listing", listing.ID).Msg("listing expired")
	return nil
}

// RemoveListing 审核下架。交易中或已售出的挂牌不允许动。
func (s *ListingApplicationService) RemoveListing(ctx context.Context, listingID string) error {
	ctx, span := s.tracer.Start(ctx, "app.RemoveListing")
	defer span.End()

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := listing.Remove(); err != nil {
		return err
	}
	if err := s.listings.Save(ctx, listing); err != nil {
		span.RecordError(err)
		return err
	}
	logger.Ctx(ctx).Info().Str("listing", listingID).Msg("listing removed by moderation")
	return nil
}
