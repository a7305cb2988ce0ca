package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func keygenCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a signing identity and store it sealed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if wire.Keys.Exists() && !force {
				return fmt.Errorf("%s already exists (use --force to replace it)", wire.Keys.Path())
			}
			pass, err := resolvePassphrase()
			if err != nil {
				return err
			}
			user, fp, err := wire.Identity.GenerateIdentity(pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Identity created.\nUser: %s\nFingerprint: %s\n", user, fp)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing identity")
	return cmd
}
