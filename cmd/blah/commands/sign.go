package commands

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"blah/internal/crypto"
	"blah/internal/domain/types"
	"blah/internal/envelope"
)

func signCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a payload and print the envelope as canonical JSON",
	}
	cmd.PersistentFlags().StringVarP(&out, "out", "o", "-", "output file")

	cmd.AddCommand(
		signChatCmd(&out),
		signCreateRoomCmd(&out),
		signAddMemberCmd(&out),
		signAuthCmd(&out),
	)
	return cmd
}

// signAndWrite signs the payload built by build with the local key.
// build receives the signer's identity.
func signAndWrite(cmd *cobra.Command, out string, build func(self types.UserKey) (types.Payload, error)) error {
	pass, err := resolvePassphrase()
	if err != nil {
		return err
	}
	priv, err := wire.Identity.LoadIdentity(pass)
	if err != nil {
		return err
	}
	defer crypto.WipeKey(priv)

	payload, err := build(types.UserKeyOf(priv))
	if err != nil {
		return err
	}
	env, err := envelope.Signer{Clock: wire.Clock}.Sign(priv, payload)
	if err != nil {
		return err
	}
	data, err := envelope.Encode(env)
	if err != nil {
		return err
	}
	wire.Logger.Debug("signed envelope", "typ", payload.Type(), "timestamp", env.Signee.Timestamp)
	return writeOutput(cmd.OutOrStdout(), out, data)
}

func signChatCmd(out *string) *cobra.Command {
	var room, text string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Sign a chat message",
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := uuid.Parse(room)
			if err != nil {
				return fmt.Errorf("--room: %w", err)
			}
			return signAndWrite(cmd, *out, func(types.UserKey) (types.Payload, error) {
				return types.ChatPayload{Room: rid, Text: text}, nil
			})
		},
	}
	cmd.Flags().StringVar(&room, "room", "", "room id")
	cmd.Flags().StringVar(&text, "text", "", "message text")
	_ = cmd.MarkFlagRequired("room")
	return cmd
}

func signCreateRoomCmd(out *string) *cobra.Command {
	var title, attrs string
	var members []string
	cmd := &cobra.Command{
		Use:   "create-room",
		Short: "Sign a room creation; you are added with every permission",
		RunE: func(cmd *cobra.Command, args []string) error {
			roomAttrs, err := types.ParseRoomAttrs(attrs)
			if err != nil {
				return fmt.Errorf("--attrs: %w", err)
			}
			return signAndWrite(cmd, *out, func(self types.UserKey) (types.Payload, error) {
				list := []types.RoomMember{{Permission: types.MemberAll, User: self}}
				for _, arg := range members {
					m, err := parseMember(arg)
					if err != nil {
						return nil, err
					}
					list = append(list, m)
				}
				slices.SortFunc(list, func(a, b types.RoomMember) int { return bytes.Compare(a.User[:], b.User[:]) })
				roster, err := types.NewRoomMemberList(list)
				if err != nil {
					return nil, err
				}
				return types.NewCreateRoomPayload(self, roomAttrs, roster, title)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "room title")
	cmd.Flags().StringVar(&attrs, "attrs", "none", "room attributes, e.g. public_readable")
	cmd.Flags().StringArrayVar(&members, "member", nil, "additional member as USER=PERMISSIONS (repeatable)")
	return cmd
}

// parseMember parses "USER=PERMISSIONS". A missing permission part
// means post_chat.
func parseMember(arg string) (types.RoomMember, error) {
	userText, permText, found := strings.Cut(arg, "=")
	user, err := types.ParseUserKey(userText)
	if err != nil {
		return types.RoomMember{}, fmt.Errorf("--member %q: %w", arg, err)
	}
	perm := types.PostChat
	if found {
		if perm, err = types.ParseMemberPermission(permText); err != nil {
			return types.RoomMember{}, fmt.Errorf("--member %q: %w", arg, err)
		}
	}
	return types.RoomMember{Permission: perm, User: user}, nil
}

func signAddMemberCmd(out *string) *cobra.Command {
	var room, user, permission string
	cmd := &cobra.Command{
		Use:   "add-member",
		Short: "Sign the addition of a user to a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := uuid.Parse(room)
			if err != nil {
				return fmt.Errorf("--room: %w", err)
			}
			target, err := types.ParseUserKey(user)
			if err != nil {
				return fmt.Errorf("--user: %w", err)
			}
			perm, err := types.ParseMemberPermission(permission)
			if err != nil {
				return fmt.Errorf("--permission: %w", err)
			}
			return signAndWrite(cmd, *out, func(types.UserKey) (types.Payload, error) {
				return types.AddMemberPayload{Permission: perm, Room: rid, User: target}, nil
			})
		},
	}
	cmd.Flags().StringVar(&room, "room", "", "room id")
	cmd.Flags().StringVar(&user, "user", "", "user key (hex)")
	cmd.Flags().StringVar(&permission, "permission", "post_chat", "permissions to grant")
	_ = cmd.MarkFlagRequired("room")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func signAuthCmd(out *string) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Sign a proof of key possession",
		RunE: func(cmd *cobra.Command, args []string) error {
			return signAndWrite(cmd, *out, func(types.UserKey) (types.Payload, error) {
				return types.AuthPayload{}, nil
			})
		},
	}
}
