package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"blah/internal/envelope"
)

func roomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Inspect the room database",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return wire.OpenRooms()
		},
	}
	cmd.AddCommand(roomsListCmd(), roomsMembersCmd(), roomsItemsCmd())
	return cmd
}

func roomsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms, err := wire.RoomStore.Rooms(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RID\tTITLE\tATTRS\tCREATED")
			for _, r := range rooms {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.ID, r.Title, r.Attrs, r.CreatedAt)
			}
			return w.Flush()
		},
	}
}

func roomsMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "members RID",
		Short: "List a room's members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			members, err := wire.RoomStore.Members(cmd.Context(), rid)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tPERMISSION")
			for _, m := range members.Members() {
				fmt.Fprintf(w, "%s\t%s\n", m.User, m.Permission)
			}
			return w.Flush()
		},
	}
}

func roomsItemsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "items RID",
		Short: "Print a room's archived envelopes, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			items, err := wire.RoomStore.Items(cmd.Context(), rid, limit)
			if err != nil {
				return err
			}
			for _, item := range items {
				env, err := envelope.FromItem(item)
				if err != nil {
					return err
				}
				data, err := envelope.Encode(env)
				if err != nil {
					return err
				}
				if err := writeOutput(cmd.OutOrStdout(), "-", data); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "most recent items to print (0 for all)")
	return cmd
}
