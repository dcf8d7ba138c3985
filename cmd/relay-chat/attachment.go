package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/janhq/relay-api/internal/client"
)

// readAttachment loads a file and detects its content type from its bytes.
func readAttachment(path string) (client.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return client.Attachment{}, fmt.Errorf("read %s: %w", path, err)
	}
	return client.Attachment{
		Filename:    filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}
