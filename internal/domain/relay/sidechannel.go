package relay

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Headers that may carry the text summary of a binary audio response.
const (
	HeaderN8NText      = "X-N8N-Text"
	HeaderResponseText = "X-Response-Text"
)

// AudioPlaceholder is shown when an audio response has no side-channel text.
const AudioPlaceholder = "Playing audio response..."

var errInvalidEncoding = errors.New("side-channel text is not valid UTF-8 after decoding")

// SideChannelText returns the first non-empty side-channel header value.
func SideChannelText(header http.Header) (string, bool) {
	for _, name := range []string{HeaderN8NText, HeaderResponseText} {
		if value := header.Get(name); value != "" {
			return value, true
		}
	}
	return "", false
}

// DecodeSideChannel percent-decodes a header value and turns literal "\n"
// escapes into newlines. "+" stays a literal plus sign.
func DecodeSideChannel(raw string) (string, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(decoded) {
		return "", errInvalidEncoding
	}
	return strings.ReplaceAll(decoded, `\n`, "\n"), nil
}

// EncodeSideChannel is the inverse of DecodeSideChannel.
func EncodeSideChannel(text string) string {
	return url.PathEscape(strings.ReplaceAll(text, "\n", `\n`))
}

// resolveSideChannel never fails: undecodable values are returned raw and a
// missing header yields the placeholder.
func resolveSideChannel(header http.Header) (text string, decodeErr error) {
	raw, ok := SideChannelText(header)
	if !ok {
		return AudioPlaceholder, nil
	}
	decoded, err := DecodeSideChannel(raw)
	if err != nil {
		return raw, err
	}
	return decoded, nil
}
