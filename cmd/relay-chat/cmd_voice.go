package main

import (
	"github.com/spf13/cobra"
)

var voiceCmd = &cobra.Command{
	Use:   "voice <file>",
	Short: "Send an audio file as a voice message",
	Long:  `Send a recorded audio file (wav, webm, ogg, mp3) to the workflow and play the reply.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runVoice,
}

func runVoice(cmd *cobra.Command, args []string) error {
	audio, err := readAttachment(args[0])
	if err != nil {
		return err
	}

	r := newRenderer(cmd.OutOrStdout(), nil)
	controller, err := newController(r, newLogger())
	if err != nil {
		return err
	}
	defer controller.Close()

	turn, err := controller.SendAudio(cmd.Context(), audio)
	if err != nil {
		return err
	}
	<-controller.RevealDone()
	r.finish(turn)

	// Let the reply finish playing before exiting.
	if turn.HasAudio() {
		controller.WaitPlayback()
	}
	return nil
}
