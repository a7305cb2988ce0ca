package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"blah/internal/domain/types"
)

func grantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant USER PERMISSIONS",
		Short: "Set a user's server permissions, e.g. create_room or all",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := types.ParseUserKey(args[0])
			if err != nil {
				return err
			}
			perm, err := types.ParseServerPermission(args[1])
			if err != nil {
				return err
			}
			if err := wire.OpenRooms(); err != nil {
				return err
			}
			if err := wire.RoomStore.SetServerPermission(cmd.Context(), user, perm); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", user, perm)
			return nil
		},
	}
}
