package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"blah/internal/domain/types"
	roomsvc "blah/internal/services/room"
)

func applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply [FILE]",
		Short: "Verify an envelope and apply it to the room database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), firstArg(args))
			if err != nil {
				return err
			}
			if err := wire.OpenRooms(); err != nil {
				return err
			}
			env, err := wire.Rooms.Accept(cmd.Context(), data)
			if err != nil {
				return err
			}
			typ := env.Signee.Payload.Type()
			if typ == types.PayloadCreateRoom {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s: room %s\n", typ, roomsvc.CreatedRoomID(env.Digest()))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", typ)
			return nil
		},
	}
}
