package handlers

import (
	"context"

	"github.com/janhq/relay-api/internal/domain/relay"
	"github.com/janhq/relay-api/internal/infrastructure/metrics"
)

// UploadService is the subset of relay.Service the upload route needs.
type UploadService interface {
	UploadConfigured() bool
	Upload(ctx context.Context, req relay.UploadRequest) (relay.UploadResult, error)
}

// UploadHandler handles document uploads.
type UploadHandler struct {
	service UploadService
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(service UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// Configured reports whether the upload webhook is set.
func (h *UploadHandler) Configured() bool {
	return h.service.UploadConfigured()
}

// Upload forwards the file.
func (h *UploadHandler) Upload(ctx context.Context, file relay.Attachment) (relay.UploadResult, error) {
	result, err := h.service.Upload(ctx, relay.UploadRequest{File: file})
	outcome := "success"
	if err != nil {
		outcome = "failed"
	}
	metrics.RecordTurn(string(relay.KindFile), outcome)
	return result, err
}
