package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"blah/internal/relay"
)

func pushCmd() *cobra.Command {
	var relayURL string
	cmd := &cobra.Command{
		Use:   "push [FILE]",
		Short: "Submit an envelope to a relay",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), firstArg(args))
			if err != nil {
				return err
			}
			receipt, err := relay.NewClient(relayURL).Submit(cmd.Context(), data)
			if err != nil {
				return err
			}
			if receipt.Room != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "accepted %s %s: room %s\n", receipt.Typ, receipt.Digest, receipt.Room)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "accepted %s %s\n", receipt.Typ, receipt.Digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&relayURL, "relay", "http://127.0.0.1:8080", "relay base URL")
	return cmd
}
