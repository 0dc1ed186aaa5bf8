package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"verdant/internal/service/order/application"
	"verdant/internal/service/order/domain"
)

const serviceName = "order-service"

// transitionOutcomes 按目标状态和结果统计状态流转请求。
var transitionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "marketplace_order_transitions_total",
	Help: "Order transition requests by target status and outcome.",
}, []string{"to", "outcome"})

// OrderHandler 封装了 order 服务的 HTTP 处理器
type OrderHandler struct {
	service        *application.OrderApplicationService
	listingService *application.ListingApplicationService
}

// NewOrderHandler 创建一个新的 HTTP 处理器实例
func NewOrderHandler(service *application.OrderApplicationService, listingService *application.ListingApplicationService) *OrderHandler {
	return &OrderHandler{service: service, listingService: listingService}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/orders/transition", h.handleTransition)
	mux.HandleFunc("/orders/open", h.handleOpenNegotiation)
	mux.HandleFunc("/listings/publish", h.handlePublishListing)
	mux.HandleFunc("/listings/remove", h.handleRemoveListing)
}

// handleTransition 处理状态流转请求。
// 被拒绝的流转不是服务端错误：返回 422 和拒绝原因，订单保持原状。
func (h *OrderHandler) handleTransition(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.TransitionOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "order.TransitionHandler")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("order.target_status", string(req.To)),
	)

	resp, err := h.service.TransitionOrder(ctx, &req)
	if err != nil {
		var statusCode int
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, domain.ErrVersionConflict):
			statusCode = http.StatusConflict
		default:
			statusCode = http.StatusInternalServerError
		}
		transitionOutcomes.WithLabelValues(string(req.To), "error").Inc()
		http.Error(w, err.Error(), statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !resp.Allowed {
		transitionOutcomes.WithLabelValues(string(req.To), "rejected").Inc()
		w.WriteHeader(http.StatusUnprocessableEntity)
	} else {
		transitionOutcomes.WithLabelValues(string(req.To), "allowed").Inc()
	}
	json.NewEncoder(w).Encode(resp)
}

func (h *OrderHandler) handleOpenNegotiation(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.OpenNegotiationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.OpenNegotiation(ctx, &req)
	if err != nil {
		var statusCode int
		switch {
		case errors.Is(err, domain.ErrListingNotFound):
			statusCode = http.StatusNotFound
		default:
			statusCode = http.StatusBadRequest
		}
		http.Error(w, err.Error(), statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *OrderHandler) handlePublishListing(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.PublishListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.listingService.PublishListing(ctx, &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *OrderHandler) handleRemoveListing(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	listingID := r.URL.Query().Get("listing_id")
	if listingID == "" {
		http.Error(w, "listing_id is required", http.StatusBadRequest)
		return
	}

	if err := h.listingService.RemoveListing(ctx, listingID); err != nil {
		var statusCode int
		switch {
		case errors.Is(err, domain.ErrListingNotFound):
			statusCode = http.StatusNotFound
		default:
			// 挂牌处于交易中等业务拒绝
			statusCode = http.StatusForbidden
		}
		http.Error(w, err.Error(), statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}
