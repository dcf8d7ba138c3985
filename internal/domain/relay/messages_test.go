package relay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode MessageCode
		wantText string
	}{
		{
			name:     "inactive hint wins over status",
			status:   500,
			body:     `{"hint":"Click the 'Execute workflow' button on the canvas","message":"The requested webhook is not registered."}`,
			wantCode: MsgWorkflowInactive,
		},
		{
			name:     "inactive hint on 404",
			status:   404,
			body:     `{"hint":"Execute workflow first"}`,
			wantCode: MsgWorkflowInactive,
		},
		{
			name:     "404 with json body",
			status:   404,
			body:     `{"message":"short"}`,
			wantCode: MsgWorkflowNotFound,
		},
		{
			name:     "404 with plain body",
			status:   404,
			body:     "not here",
			wantCode: MsgWorkflowNotFound,
		},
		{
			name:     "cancelled execution",
			status:   500,
			body:     `{"message":"Workflow execution was cancelled by user"}`,
			wantCode: MsgCancelled,
		},
		{
			name:     "short message surfaced verbatim",
			status:   502,
			body:     `{"message":"Quota exceeded"}`,
			wantCode: MsgUpstream,
			wantText: "Quota exceeded",
		},
		{
			name:     "long message on 500",
			status:   500,
			body:     `{"message":"` + strings.Repeat("x", 100) + `"}`,
			wantCode: MsgServerError,
		},
		{
			name:     "408 plain text",
			status:   408,
			body:     "timeout",
			wantCode: MsgTimeout,
		},
		{
			name:     "other status plain text",
			status:   503,
			body:     "",
			wantCode: MsgServerError,
		},
		{
			name:     "non-string hint falls back to table",
			status:   408,
			body:     `{"hint":42,"message":"ignored"}`,
			wantCode: MsgTimeout,
		},
		{
			name:     "json array body",
			status:   500,
			body:     `[1,2,3]`,
			wantCode: MsgServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError(tt.status, tt.body)
			assert.Equal(t, tt.wantCode, got.Code)
			if tt.wantText != "" {
				assert.Equal(t, tt.wantText, got.Text)
			} else {
				assert.Equal(t, tt.wantCode.Text(), got.Text)
			}
		})
	}
}

func TestTranslateError_ShortMessageCountsUTF16Units(t *testing.T) {
	// 50 emoji are 100 UTF-16 code units, which is not "shorter than 100".
	body := `{"message":"` + strings.Repeat("😀", 50) + `"}`
	got := TranslateError(500, body)
	assert.Equal(t, MsgServerError, got.Code)

	body = `{"message":"` + strings.Repeat("😀", 49) + `"}`
	got = TranslateError(500, body)
	assert.Equal(t, MsgUpstream, got.Code)
}

func TestMessageCode_TextFallsBackToServerError(t *testing.T) {
	assert.Equal(t, MsgServerError.Text(), MessageCode("unknown").Text())
	assert.Equal(t, "Backend not configured. Please check your settings.", MsgNotConfigured.Text())
}
