package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/janhq/relay-api/internal/domain/conversation"
)

// SessionHeader lets non-browser clients carry their session id explicitly.
const SessionHeader = "X-Session-ID"

const maxSessionIDLength = 128

// Session resolves the conversation session for the request: the
// X-Session-ID header wins, then the session cookie, then a fresh id. The
// id is stored in the request context and echoed back as a cookie.
func Session(cookieName string, maxAge time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := validSessionID(c.GetHeader(SessionHeader))
		if sessionID == "" {
			if cookie, err := c.Cookie(cookieName); err == nil {
				sessionID = validSessionID(cookie)
			}
		}
		if sessionID == "" {
			sessionID = conversation.NewSessionID()
		}

		http.SetCookie(c.Writer, &http.Cookie{
			Name:     cookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(maxAge.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		c.Header(SessionHeader, sessionID)
		c.Request = c.Request.WithContext(conversation.WithSession(c.Request.Context(), sessionID))

		c.Next()
	}
}

func validSessionID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxSessionIDLength {
		return ""
	}
	for _, r := range value {
		if r <= ' ' || r == ';' || r == ',' || r == '"' || r == '\\' || r > '~' {
			return ""
		}
	}
	return value
}
