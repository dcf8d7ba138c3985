// Package requests contains HTTP request DTOs for the relay-api.
package requests

import "github.com/janhq/relay-api/internal/domain/conversation"

// ChatRequest is the JSON body of a typed chat turn. PreviousHistory must
// not include the message being sent.
type ChatRequest struct {
	Message         string              `json:"message"`
	PreviousHistory []conversation.Turn `json:"previousHistory,omitempty"`
	SessionID       string              `json:"sessionId,omitempty" binding:"omitempty,max=128,printascii"`
}

// Multipart field names accepted by the chat and upload routes.
const (
	FieldAudio     = "audio"
	FieldFile      = "file"
	FieldSessionID = "sessionId"
)
