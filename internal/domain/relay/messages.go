package relay

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf16"
)

// MessageCode identifies one of the fixed user-facing messages.
type MessageCode string

const (
	MsgNotConfigured    MessageCode = "not_configured"
	MsgWorkflowInactive MessageCode = "workflow_inactive"
	MsgWorkflowNotFound MessageCode = "workflow_not_found"
	MsgEmptyResponse    MessageCode = "empty_response"
	MsgTimeout          MessageCode = "timeout"
	MsgServerError      MessageCode = "server_error"
	MsgInvalidRequest   MessageCode = "invalid_request"
	MsgCancelled        MessageCode = "cancelled"

	// MsgUpstream marks a short message surfaced verbatim from the workflow.
	MsgUpstream MessageCode = "upstream_message"
)

var messageText = map[MessageCode]string{
	MsgNotConfigured:    "Backend not configured. Please check your settings.",
	MsgWorkflowInactive: "AI workflow is inactive. Please activate it in n8n.",
	MsgWorkflowNotFound: "AI workflow not found. Check your webhook URL.",
	MsgEmptyResponse:    "No response received. The AI may be processing or encountered an issue.",
	MsgTimeout:          "Request timed out. Please try again.",
	MsgServerError:      "Something went wrong. Please try again.",
	MsgInvalidRequest:   "Invalid request format.",
	MsgCancelled:        "Request was cancelled. Please try again.",
}

// Text returns the user-facing text for the code.
func (c MessageCode) Text() string {
	if text, ok := messageText[c]; ok {
		return text
	}
	return messageText[MsgServerError]
}

// Translation is the outcome of mapping a failed workflow response.
type Translation struct {
	Code MessageCode
	Text string
}

const (
	inactiveHint        = "Execute workflow"
	cancelledMarker     = "cancelled"
	shortMessageMaxUnit = 100
)

// TranslateError maps a non-success status and its body to a user-safe
// message. Structured hints in the body are consulted first, then the
// status code table.
//
// A message field shorter than 100 UTF-16 code units is returned verbatim.
// It is assumed to be written for end users already.
func TranslateError(status int, body string) Translation {
	if t, ok := translateStructured(status, body); ok {
		return t
	}
	return translateStatus(status)
}

func translateStructured(status int, body string) (Translation, bool) {
	var parsed any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return Translation{}, false
	}
	fields, _ := parsed.(map[string]any)

	if raw, present := fields["hint"]; present && raw != nil {
		hint, ok := raw.(string)
		if !ok {
			return Translation{}, false
		}
		if strings.Contains(hint, inactiveHint) {
			return fixed(MsgWorkflowInactive), true
		}
	}

	if status == http.StatusNotFound {
		return fixed(MsgWorkflowNotFound), true
	}

	raw, present := fields["message"]
	if !present || raw == nil {
		return Translation{}, false
	}
	message, ok := raw.(string)
	if !ok {
		return Translation{}, false
	}
	if strings.Contains(message, cancelledMarker) {
		return fixed(MsgCancelled), true
	}
	if message != "" && utf16Len(message) < shortMessageMaxUnit {
		return Translation{Code: MsgUpstream, Text: message}, true
	}
	return Translation{}, false
}

func translateStatus(status int) Translation {
	switch status {
	case http.StatusInternalServerError:
		return fixed(MsgServerError)
	case http.StatusNotFound:
		return fixed(MsgWorkflowNotFound)
	case http.StatusRequestTimeout:
		return fixed(MsgTimeout)
	default:
		return fixed(MsgServerError)
	}
}

func fixed(code MessageCode) Translation {
	return Translation{Code: code, Text: code.Text()}
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}
