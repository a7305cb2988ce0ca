package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"blah/internal/crypto"
	"blah/internal/domain/types"
)

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the local identity and its fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := resolvePassphrase()
			if err != nil {
				return err
			}
			priv, err := wire.Identity.LoadIdentity(pass)
			if err != nil {
				return err
			}
			defer crypto.WipeKey(priv)

			user := types.UserKeyOf(priv)
			fmt.Fprintf(cmd.OutOrStdout(), "User: %s\nFingerprint: %s\n", user, crypto.Fingerprint(user))
			return nil
		},
	}
}
