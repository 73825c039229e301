package subcmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(ipCmd, startCmd, stopCmd)
}

// These map 1:1 onto the chat intents, so the replies are the same strings a
// chat user would see.

var ipCmd = &cobra.Command{
	Use:   "ip",
	Short: "Show the public IP of the running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHandlers(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h.Address(cmd.Context()))
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:     "start",
	Aliases: []string{"spinup"},
	Short:   "Start the server instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHandlers(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h.Spinup(cmd.Context()))
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:     "stop",
	Aliases: []string{"spindown"},
	Short:   "Stop the server instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHandlers(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h.Spindown(cmd.Context()))
		return nil
	},
}
