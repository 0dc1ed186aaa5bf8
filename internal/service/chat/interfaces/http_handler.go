package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"verdant/internal/service/chat/application"
	"verdant/internal/service/chat/domain"
)

// ChatHandler 封装了 chat 服务的 HTTP 处理器
type ChatHandler struct {
	service *application.ChatApplicationService
}

// NewChatHandler 创建一个新的 HTTP 处理器实例
func NewChatHandler(service *application.ChatApplicationService) *ChatHandler {
	return &ChatHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/conversations/open", h.handleOpenConversation)
	mux.HandleFunc("/conversations/list", h.handleListConversations)
	mux.HandleFunc("/messages/send", h.handleSendMessage)
	mux.HandleFunc("/messages/list", h.handleListMessages)
}

func (h *ChatHandler) handleOpenConversation(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.OpenConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.OpenConversation(ctx, &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *ChatHandler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.SendMessage(ctx, &req)
	if err != nil {
		var statusCode int
		switch {
		case errors.Is(err, domain.ErrConversationNotFound):
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

func (h *ChatHandler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	conversationID := r.URL.Query().Get("conversation_id")
	readerID := r.URL.Query().Get("reader_id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if conversationID == "" || readerID == "" {
		http.Error(w, "conversation_id and reader_id are required", http.StatusBadRequest)
		return
	}

	views, err := h.service.ListMessages(ctx, conversationID, readerID, limit)
	if err != nil {
		var statusCode int
		switch {
		case errors.Is(err, domain.ErrConversationNotFound):
			statusCode = http.StatusNotFound
		default:
			statusCode = http.StatusBadRequest
		}
		http.Error(w, err.Error(), statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

func (h *ChatHandler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	views, err := h.service.ListConversations(ctx, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}
