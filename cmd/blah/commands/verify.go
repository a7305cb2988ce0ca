package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"blah/internal/crypto"
	"blah/internal/envelope"
)

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [FILE]",
		Short: "Check an envelope's timestamp and signature (reads stdin by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), firstArg(args))
			if err != nil {
				return err
			}
			env, err := envelope.Decode(data)
			if err == nil {
				err = envelope.VerifyAt(env, wire.Clock.Now())
			}
			wire.Metrics.ObserveVerify(err)
			if err != nil {
				return err
			}
			user := env.Signee.User
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s signed by %s (%s) at %d\n",
				env.Signee.Payload.Type(), user, crypto.Fingerprint(user), env.Signee.Timestamp)
			return nil
		},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
