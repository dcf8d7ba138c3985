package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipStore struct {
	mu      sync.Mutex
	clips   map[string]*AudioClip
	saveErr error
}

func newFakeClipStore() *fakeClipStore {
	return &fakeClipStore{clips: map[string]*AudioClip{}}
}

func (s *fakeClipStore) Save(ctx context.Context, clip *AudioClip) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips[clip.ID] = clip
	return nil
}

func (s *fakeClipStore) Get(ctx context.Context, id string) (*AudioClip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clip, ok := s.clips[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return clip, nil
}

func newTestClassifier(store AudioStore, maxBytes int64) *Classifier {
	var n int
	return NewClassifier(ClassifierConfig{
		Store: store,
		NewID: func() string {
			n++
			return fmt.Sprintf("aud_%d", n)
		},
		URLFor:   func(id string) string { return "/v1/audio/" + id },
		MaxBytes: maxBytes,
	}, zerolog.Nop())
}

func upstream(status int, contentType, body string) UpstreamResponse {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return UpstreamResponse{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestClassify_ExtractionOrder(t *testing.T) {
	c := newTestClassifier(newFakeClipStore(), 0)
	ctx := context.Background()

	tests := []struct {
		name      string
		body      string
		wantText  string
		wantAudio string
	}{
		{"output first", `{"output":"A","text":"B"}`, "A", ""},
		{"empty output skipped", `{"output":"","text":"B"}`, "B", ""},
		{"zero skipped", `{"output":0,"response":"C"}`, "C", ""},
		{"false skipped", `{"text":false,"message":"D"}`, "D", ""},
		{"null skipped", `{"output":null,"content":"E"}`, "E", ""},
		{"number serialized", `{"output":42}`, "42", ""},
		{"empty object is truthy", `{"output":{},"text":"B"}`, "{}", ""},
		{"nested object serialized", `{"message":{"a":1}}`, `{"a":1}`, ""},
		{"root string", `"just a string"`, "just a string", ""},
		{"no known field", `{"foo":"bar"}`, `{"foo":"bar"}`, ""},
		{"root array", `[1,2]`, `[1,2]`, ""},
		{"root null", `null`, "null", ""},
		{"audioUrl first", `{"output":"hi","audioUrl":"https://cdn/a.mp3","audio":"b"}`, "hi", "https://cdn/a.mp3"},
		{"audio fallback", `{"output":"hi","audio":"https://cdn/b.mp3"}`, "hi", "https://cdn/b.mp3"},
		{"html not escaped", `{"output":{"q":"<b>&"}}`, `{"q":"<b>&"}`, ""},
		{"root key order kept", `{"zeta":1, "alpha":{"y":2,"b":3}}`, `{"zeta":1,"alpha":{"y":2,"b":3}}`, ""},
		{"field key order kept", `{"output":{"z":true,"a":[1, 2]}}`, `{"z":true,"a":[1,2]}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := c.Classify(ctx, upstream(200, "application/json", tt.body), false)
			assert.Equal(t, OutcomeStructured, reply.Outcome)
			assert.Equal(t, tt.wantText, reply.Response.Text)
			assert.Equal(t, tt.wantAudio, reply.Response.AudioURL)
		})
	}
}

func TestClassify_RawTextAndEmpty(t *testing.T) {
	c := newTestClassifier(newFakeClipStore(), 0)
	ctx := context.Background()

	reply := c.Classify(ctx, upstream(200, "text/plain", "plain answer"), false)
	assert.Equal(t, OutcomeRawText, reply.Outcome)
	assert.Equal(t, "plain answer", reply.Response.Text)

	reply = c.Classify(ctx, upstream(200, "application/json", "  \n\t "), false)
	assert.Equal(t, OutcomeEmpty, reply.Outcome)
	assert.Equal(t, MsgEmptyResponse.Text(), reply.Response.Text)
	assert.Empty(t, reply.Response.AudioURL)
}

func TestClassify_UpstreamError(t *testing.T) {
	c := newTestClassifier(newFakeClipStore(), 0)

	reply := c.Classify(context.Background(), upstream(404, "application/json", `{"code":404,"message":"not registered"}`), false)
	assert.Equal(t, OutcomeUpstreamError, reply.Outcome)
	assert.Equal(t, MsgWorkflowNotFound, reply.Code)
	assert.Equal(t, MsgWorkflowNotFound.Text(), reply.Response.Text)
	assert.Empty(t, reply.Response.AudioURL)
}

func TestClassify_AudioStoresClip(t *testing.T) {
	store := newFakeClipStore()
	c := newTestClassifier(store, 0)

	resp := upstream(200, "audio/mpeg", "ID3-bytes")
	resp.Header.Set(HeaderN8NText, "Hello%20there")

	reply := c.Classify(context.Background(), resp, false)
	assert.Equal(t, OutcomeAudio, reply.Outcome)
	assert.Equal(t, "Hello there", reply.Response.Text)
	require.Equal(t, "/v1/audio/aud_1", reply.Response.AudioURL)

	clip, err := store.Get(context.Background(), "aud_1")
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", clip.ContentType)
	assert.Equal(t, []byte("ID3-bytes"), clip.Data)
}

func TestClassify_IdenticalAudioGetsIndependentClips(t *testing.T) {
	store := newFakeClipStore()
	c := newTestClassifier(store, 0)
	ctx := context.Background()

	first := c.Classify(ctx, upstream(200, "audio/wav", "same"), false)
	second := c.Classify(ctx, upstream(200, "audio/wav", "same"), false)

	assert.Equal(t, first.Response.Text, second.Response.Text)
	assert.Equal(t, AudioPlaceholder, first.Response.Text)
	assert.NotEqual(t, first.Response.AudioURL, second.Response.AudioURL)
	assert.Len(t, store.clips, 2)
}

func TestClassify_OctetStreamIsSniffed(t *testing.T) {
	store := newFakeClipStore()
	c := newTestClassifier(store, 0)

	wav := append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 32)...)
	reply := c.Classify(context.Background(), upstream(200, "application/octet-stream", string(wav)), false)
	require.Equal(t, OutcomeAudio, reply.Outcome)

	clip, err := store.Get(context.Background(), "aud_1")
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", clip.ContentType)
}

func TestClassify_AudioPassthrough(t *testing.T) {
	store := newFakeClipStore()
	c := newTestClassifier(store, 0)

	resp := upstream(200, "audio/mpeg", "bytes")
	resp.Header.Set(HeaderN8NText, "Hi%20you")

	reply := c.Classify(context.Background(), resp, true)
	assert.Equal(t, OutcomeAudioRaw, reply.Outcome)
	require.NotNil(t, reply.Raw)
	assert.Equal(t, "Hi%20you", reply.Raw.HeaderText)
	assert.Equal(t, "audio/mpeg", reply.Raw.ContentType)
	assert.Equal(t, []byte("bytes"), reply.Raw.Data)
	assert.Empty(t, store.clips)
}

func TestClassify_StoreFailure(t *testing.T) {
	store := newFakeClipStore()
	store.saveErr = errors.New("bucket gone")
	c := newTestClassifier(store, 0)

	reply := c.Classify(context.Background(), upstream(200, "audio/mpeg", "bytes"), false)
	assert.Equal(t, OutcomeFailed, reply.Outcome)
	assert.Equal(t, MsgServerError.Text(), reply.Response.Text)
}

func TestClassify_BodyLimit(t *testing.T) {
	c := newTestClassifier(newFakeClipStore(), 4)

	reply := c.Classify(context.Background(), upstream(200, "text/plain", "too long"), false)
	assert.Equal(t, OutcomeFailed, reply.Outcome)
	assert.Equal(t, MsgServerError, reply.Code)

	reply = c.Classify(context.Background(), upstream(200, "text/plain", "fits"), false)
	assert.Equal(t, "fits", reply.Response.Text)
}
