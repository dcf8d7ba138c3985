package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/relay-api/internal/domain/relay"
)

func TestClient_PostStreamsBody(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set(relay.HeaderN8NText, "Hello%20there")
		_, _ = w.Write([]byte{0xff, 0xfb, 0x90, 0x00})
	}))
	defer server.Close()

	client := NewClient(5*time.Second, zerolog.Nop())
	resp, err := client.Post(context.Background(), &relay.Payload{
		Kind:        relay.KindText,
		Endpoint:    server.URL,
		ContentType: "application/json",
		Body:        []byte(`{"chatInput":"hi"}`),
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"chatInput":"hi"}`, string(gotBody))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello%20there", resp.Header.Get(relay.HeaderN8NText))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xfb, 0x90, 0x00}, data)
}

func TestClient_PostErrorStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not registered"}`))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, zerolog.Nop())
	resp, err := client.Post(context.Background(), &relay.Payload{Kind: relay.KindText, Endpoint: server.URL, Body: []byte("{}")})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClient_PostTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(50*time.Millisecond, zerolog.Nop())
	_, err := client.Post(context.Background(), &relay.Payload{Kind: relay.KindText, Endpoint: server.URL, Body: []byte("{}")})
	require.Error(t, err)
}

func TestClient_PostCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(5*time.Second, zerolog.Nop())
	_, err := client.Post(ctx, &relay.Payload{Kind: relay.KindText, Endpoint: server.URL, Body: []byte("{}")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
