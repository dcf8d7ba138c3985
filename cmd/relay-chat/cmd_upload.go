package main

import (
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document to the upload workflow",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	file, err := readAttachment(args[0])
	if err != nil {
		return err
	}

	r := newRenderer(cmd.OutOrStdout(), nil)
	controller, err := newController(r, newLogger())
	if err != nil {
		return err
	}
	defer controller.Close()

	turn, err := controller.Upload(cmd.Context(), file)
	if err != nil {
		return err
	}
	<-controller.RevealDone()
	r.finish(turn)
	return nil
}
