package handlers

import (
	"context"

	"github.com/janhq/relay-api/internal/domain/relay"
	"github.com/janhq/relay-api/internal/infrastructure/metrics"
)

// ChatService is the subset of relay.Service the chat routes need.
type ChatService interface {
	ChatConfigured() bool
	Chat(ctx context.Context, req relay.ChatRequest) (relay.Reply, error)
}

// ChatHandler handles chat turns.
type ChatHandler struct {
	service ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Configured reports whether the chat webhook is set.
func (h *ChatHandler) Configured() bool {
	return h.service.ChatConfigured()
}

// Chat relays one turn and records its outcome.
func (h *ChatHandler) Chat(ctx context.Context, req relay.ChatRequest) (relay.Reply, error) {
	reply, err := h.service.Chat(ctx, req)
	if err != nil {
		return relay.Reply{}, err
	}
	metrics.RecordTurn(string(req.Kind), string(reply.Outcome))
	return reply, nil
}
