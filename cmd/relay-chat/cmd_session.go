package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/janhq/relay-api/internal/domain/conversation"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the stored session id",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newSessionStore()
		if err != nil {
			return err
		}
		id, err := conversation.EnsureSession(cmd.Context(), store)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", id, store.Path())
		return nil
	},
}
