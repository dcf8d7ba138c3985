package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/janhq/relay-api/internal/application/chat"
	"github.com/janhq/relay-api/internal/domain/conversation"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat (default)",
	Long: `Start an interactive chat session.

Commands inside the chat:
  /voice <file>   send an audio file as a voice message
  /upload <file>  upload a document
  /play           replay the last audio reply
  /stop           stop playback
  /history        print the conversation
  /quit           leave`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger()
	var status io.Writer
	if opts.verbose {
		status = cmd.ErrOrStderr()
	}
	r := newRenderer(cmd.OutOrStdout(), status)

	controller, err := newController(r, log)
	if err != nil {
		return err
	}
	defer controller.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s (session %s)\n", opts.server, controller.SessionID(ctx))
	r.greeting()

	repl := &chatREPL{controller: controller, renderer: r, out: cmd.OutOrStdout()}
	return repl.run(ctx, cmd.InOrStdin())
}

type chatREPL struct {
	controller *chat.Controller
	renderer   *renderer
	out        io.Writer
}

func (c *chatREPL) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Fprint(c.out, "you> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := c.handle(ctx, strings.TrimSpace(line))
			if err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

func (c *chatREPL) handle(ctx context.Context, line string) (bool, error) {
	if line == "" {
		return false, nil
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/quit", "/exit":
		return true, nil
	case "/stop":
		c.controller.StopPlayback()
		return false, nil
	case "/play":
		return false, c.replay(ctx)
	case "/history":
		for _, turn := range c.controller.History() {
			fmt.Fprintf(c.out, "%-4s %s\n", turn.Role+":", turn.Content)
		}
		return false, nil
	case "/voice":
		if arg == "" {
			return false, errors.New("usage: /voice <file>")
		}
		audio, err := readAttachment(arg)
		if err != nil {
			return false, err
		}
		c.controller.StartRecording()
		c.controller.StopRecording()
		return false, c.await(c.controller.SendAudio(ctx, audio))
	case "/upload":
		if arg == "" {
			return false, errors.New("usage: /upload <file>")
		}
		file, err := readAttachment(arg)
		if err != nil {
			return false, err
		}
		return false, c.await(c.controller.Upload(ctx, file))
	}

	return false, c.await(c.controller.Send(ctx, line))
}

// await waits for the typewriter to finish the reply and ends its line.
func (c *chatREPL) await(turn conversation.Turn, err error) error {
	if err != nil {
		return err
	}
	if done := c.controller.RevealDone(); done != nil {
		<-done
	}
	c.renderer.finish(turn)
	return nil
}

func (c *chatREPL) replay(ctx context.Context) error {
	history := c.controller.History()
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == conversation.RoleBot && history[i].HasAudio() {
			return c.controller.Play(ctx, history[i])
		}
	}
	return errors.New("no audio reply to play")
}
