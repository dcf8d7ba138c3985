package v1

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/janhq/relay-api/internal/domain/conversation"
	"github.com/janhq/relay-api/internal/domain/relay"
	"github.com/janhq/relay-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/relay-api/internal/interfaces/httpserver/requests"
	"github.com/janhq/relay-api/internal/interfaces/httpserver/responses"
)

// RegisterChatRoutes registers the chat and upload routes.
func RegisterChatRoutes(router gin.IRoutes, provider *handlers.Provider, maxUploadBytes int64) {
	router.POST("/chat", chat(provider.Chat, maxUploadBytes))
	router.POST("/upload", upload(provider.Upload, maxUploadBytes))
}

// chat godoc
// @Summary      Send a chat turn
// @Description  Relays a typed message (JSON) or a recorded voice message (multipart) to the n8n workflow.
// @Description  Every workflow outcome, failures included, is returned as 200 with a renderable response text.
// @Description  With Accept: audio/* a binary audio reply is streamed back as is, with its text in X-N8N-Text.
// @Tags         Chat API
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        request body requests.ChatRequest false "Typed message"
// @Param        audio formData file false "Recorded audio"
// @Param        sessionId formData string false "Session id"
// @Success      200 {object} responses.ChatResponse
// @Failure      400 {object} responses.ChatResponse
// @Failure      500 {object} responses.ChatResponse
// @Router       /chat [post]
func chat(handler *handlers.ChatHandler, maxUploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !handler.Configured() {
			c.JSON(http.StatusOK, responses.ChatResponse{Response: relay.MsgNotConfigured.Text()})
			return
		}

		req, err := bindChatRequest(c, maxUploadBytes)
		if errors.Is(err, errInvalidJSON) {
			c.JSON(http.StatusBadRequest, responses.ChatResponse{Response: relay.MsgInvalidRequest.Text()})
			return
		}
		if err != nil {
			log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("read multipart chat body")
			c.JSON(http.StatusInternalServerError, responses.ChatResponse{Response: relay.MsgServerError.Text()})
			return
		}
		req.PreferAudio = acceptsAudio(c.GetHeader("Accept"))

		reply, err := handler.Chat(c.Request.Context(), req)
		if err != nil {
			log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("chat relay failed")
			c.JSON(http.StatusInternalServerError, responses.ChatResponse{Response: relay.MsgServerError.Text()})
			return
		}

		if reply.Raw != nil {
			if reply.Raw.HeaderText != "" {
				c.Header(relay.HeaderN8NText, reply.Raw.HeaderText)
			}
			c.Data(http.StatusOK, reply.Raw.ContentType, reply.Raw.Data)
			return
		}

		c.JSON(http.StatusOK, responses.ChatResponse{
			Response: reply.Response.Text,
			AudioURL: reply.Response.AudioURL,
		})
	}
}

// upload godoc
// @Summary      Upload a document
// @Description  Forwards a single file to the n8n upload workflow and returns its JSON result.
// @Tags         Chat API
// @Accept       mpfd
// @Produce      json
// @Param        file formData file true "Document"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} responses.UploadErrorResponse
// @Failure      500 {object} responses.UploadErrorResponse
// @Router       /upload [post]
func upload(handler *handlers.UploadHandler, maxUploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

		fileHeader, err := c.FormFile(requests.FieldFile)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, responses.UploadErrorResponse{Error: responses.UploadFailed})
				return
			}
			c.JSON(http.StatusBadRequest, responses.UploadErrorResponse{Error: responses.UploadNoFile})
			return
		}

		if !handler.Configured() {
			c.JSON(http.StatusInternalServerError, responses.UploadErrorResponse{Error: responses.UploadNotConfigured})
			return
		}

		file, err := readAttachment(fileHeader)
		if err != nil {
			log.Error().Err(err).Msg("read uploaded file")
			c.JSON(http.StatusInternalServerError, responses.UploadErrorResponse{Error: responses.UploadFailed})
			return
		}

		result, err := handler.Upload(c.Request.Context(), file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, responses.UploadErrorResponse{Error: responses.UploadFailed})
			return
		}

		c.Data(http.StatusOK, "application/json; charset=utf-8", result.Payload)
	}
}

// errInvalidJSON marks a typed turn whose body failed to bind. Broken
// multipart bodies are server errors instead, like any other failure past
// validation.
var errInvalidJSON = errors.New("invalid chat request body")

func bindChatRequest(c *gin.Context, maxUploadBytes int64) (relay.ChatRequest, error) {
	sessionID := conversation.SessionFromContext(c.Request.Context())

	if strings.Contains(c.GetHeader("Content-Type"), "multipart/form-data") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
		if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
			return relay.ChatRequest{}, fmt.Errorf("parse multipart form: %w", err)
		}

		req := relay.ChatRequest{Kind: relay.KindAudio, SessionID: sessionID}
		if value := strings.TrimSpace(c.Request.FormValue(requests.FieldSessionID)); value != "" {
			req.SessionID = value
		}
		if files := c.Request.MultipartForm.File[requests.FieldAudio]; len(files) > 0 {
			audio, err := readAttachment(files[0])
			if err != nil {
				return relay.ChatRequest{}, fmt.Errorf("read audio part: %w", err)
			}
			req.Audio = audio
		}
		return req, nil
	}

	var body requests.ChatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return relay.ChatRequest{}, fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	if body.SessionID != "" {
		sessionID = body.SessionID
	}
	return relay.ChatRequest{
		Kind:      relay.KindText,
		Message:   body.Message,
		History:   body.PreviousHistory,
		SessionID: sessionID,
	}, nil
}

func readAttachment(header *multipart.FileHeader) (relay.Attachment, error) {
	f, err := header.Open()
	if err != nil {
		return relay.Attachment{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return relay.Attachment{}, err
	}
	return relay.Attachment{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func acceptsAudio(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if strings.HasPrefix(strings.ToLower(mediaType), "audio/") {
			return true
		}
	}
	return false
}
