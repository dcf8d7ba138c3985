package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/relay-api/internal/domain/conversation"
)

func TestClient_Chat(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"response":"Hi!","audioUrl":"/v1/audio/aud_1"}`)
	}))
	defer server.Close()

	c := New(server.URL+"/", 5*time.Second)
	reply, err := c.Chat(context.Background(), "hello", nil, "session-1")
	require.NoError(t, err)

	assert.Equal(t, "Hi!", reply.Response)
	assert.Equal(t, "/v1/audio/aud_1", reply.AudioURL)
	assert.Nil(t, reply.Audio)
	assert.Equal(t, "hello", got.Message)
	assert.NotNil(t, got.PreviousHistory)
	assert.Empty(t, got.PreviousHistory)
	assert.Equal(t, "session-1", got.SessionID)
}

func TestClient_ChatErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"response":"Invalid request format."}`)
	}))
	defer server.Close()

	_, err := New(server.URL, time.Second).Chat(context.Background(), "x", []conversation.Turn{}, "")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestClient_ChatAudio(t *testing.T) {
	t.Run("stored clip", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "session-7", r.FormValue("sessionId"))
			file, header, err := r.FormFile("audio")
			require.NoError(t, err)
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.Equal(t, "webm", string(data))
			assert.Equal(t, "audio/webm", header.Header.Get("Content-Type"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"response":"heard you","audioUrl":"/v1/audio/aud_2"}`)
		}))
		defer server.Close()

		reply, err := New(server.URL, time.Second).ChatAudio(context.Background(),
			Attachment{Filename: "recording.webm", ContentType: "audio/webm", Data: []byte("webm")}, "session-7", false)
		require.NoError(t, err)
		assert.Equal(t, "heard you", reply.Response)
		assert.Equal(t, "/v1/audio/aud_2", reply.AudioURL)
	})

	t.Run("streamed audio", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get("Accept"), "audio/*")
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Header().Set("X-N8N-Text", "Hello%20there")
			_, _ = w.Write([]byte("mp3"))
		}))
		defer server.Close()

		reply, err := New(server.URL, time.Second).ChatAudio(context.Background(),
			Attachment{Filename: "recording.webm", ContentType: "audio/webm", Data: []byte("webm")}, "", true)
		require.NoError(t, err)
		assert.Equal(t, "Hello there", reply.Response)
		require.NotNil(t, reply.Audio)
		assert.Equal(t, "audio/mpeg", reply.Audio.ContentType)
		assert.Equal(t, []byte("mp3"), reply.Audio.Data)
	})

	t.Run("undecodable side channel keeps raw value", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "audio/wav")
			w.Header().Set("X-N8N-Text", "50%off")
			_, _ = w.Write([]byte("RIFF"))
		}))
		defer server.Close()

		reply, err := New(server.URL, time.Second).ChatAudio(context.Background(), Attachment{Data: []byte("x")}, "", true)
		require.NoError(t, err)
		assert.Equal(t, "50%off", reply.Response)
	})
}

func TestClient_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, _, err := r.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"No file provided"}`)
			return
		}
		if r.URL.Query().Get("fail") != "" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":"Failed to process upload"}`)
			return
		}
		_, _ = io.WriteString(w, `{"status":"indexed"}`)
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	result, err := c.Upload(context.Background(), Attachment{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("notes")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"indexed"}`, string(result))

	failing := New(server.URL+"/", time.Second)
	failing.httpClient.SetQueryParam("fail", "1")
	_, err = failing.Upload(context.Background(), Attachment{Filename: "notes.txt", Data: []byte("notes")})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "Failed to process upload", statusErr.Body)
}

func TestClient_FetchAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/aud_1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF-data"))
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	audio, err := c.FetchAudio(context.Background(), "/v1/audio/aud_1")
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", audio.ContentType)
	assert.Equal(t, []byte("RIFF-data"), audio.Data)

	audio, err = c.FetchAudio(context.Background(), server.URL+"/v1/audio/aud_1")
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF-data"), audio.Data)

	_, err = c.FetchAudio(context.Background(), "/v1/audio/missing")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}
