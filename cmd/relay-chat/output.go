package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/janhq/relay-api/internal/domain/presentation"
)

// silentFallback is how long a clip that cannot be measured "plays" without
// a player command.
const silentFallback = 3 * time.Second

// commandOutput pipes each clip into an external player command.
type commandOutput struct {
	name string
	args []string
}

func newOutput(command string) (presentation.Output, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return presentation.SilentOutput{Fallback: silentFallback}, nil
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, fmt.Errorf("player %q not found: %w", fields[0], err)
	}
	return &commandOutput{name: fields[0], args: fields[1:]}, nil
}

func (o *commandOutput) Play(ctx context.Context, clip *presentation.Clip) error {
	cmd := exec.CommandContext(ctx, o.name, o.args...)
	cmd.Stdin = bytes.NewReader(clip.Data)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return fmt.Errorf("%s: %w: %s", o.name, err, strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("%s: %w", o.name, err)
	}
	return nil
}
