package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ServerPermission is the set of server-wide capabilities of a user.
type ServerPermission uint64

const (
	CreateRoom ServerPermission = 1 << 0

	ServerAll ServerPermission = ^ServerPermission(0)
)

// MemberPermission is the set of capabilities of a user inside one room.
type MemberPermission uint64

const (
	PostChat  MemberPermission = 1 << 0
	AddMember MemberPermission = 1 << 1

	MemberAll MemberPermission = ^MemberPermission(0)
)

// RoomAttrs are room-level attributes. Bits without a name are legal
// and are preserved verbatim.
type RoomAttrs uint64

const (
	PublicReadable RoomAttrs = 1 << 0

	RoomAttrsAll RoomAttrs = ^RoomAttrs(0)
)

var (
	serverPermissionNames = []flagName[ServerPermission]{{"create_room", CreateRoom}}
	memberPermissionNames = []flagName[MemberPermission]{{"post_chat", PostChat}, {"add_member", AddMember}}
	roomAttrsNames        = []flagName[RoomAttrs]{{"public_readable", PublicReadable}}
)

func (p ServerPermission) Bits() uint64 { return uint64(p) }
func (p ServerPermission) Union(o ServerPermission) ServerPermission { return p | o }
func (p ServerPermission) Intersect(o ServerPermission) ServerPermission { return p & o }
func (p ServerPermission) Difference(o ServerPermission) ServerPermission { return p &^ o }
func (p ServerPermission) Contains(o ServerPermission) bool { return p&o == o }
func (p ServerPermission) Intersects(o ServerPermission) bool { return p&o != 0 }
func (p ServerPermission) IsSubsetOf(o ServerPermission) bool { return o.Contains(p) }
func (p ServerPermission) String() string { return formatFlags(p, serverPermissionNames) }

func (p ServerPermission) MarshalText() ([]byte, error) { return marshalMask(p), nil }
func (p *ServerPermission) UnmarshalText(text []byte) error {
	return unmarshalMask(p, text)
}

// ParseServerPermission parses a comma-separated list of names, "all",
// "none" or a 16-digit hex mask.
func ParseServerPermission(s string) (ServerPermission, error) {
	return parseFlags(s, serverPermissionNames)
}

func (p MemberPermission) Bits() uint64 { return uint64(p) }
func (p MemberPermission) Union(o MemberPermission) MemberPermission { return p | o }
func (p MemberPermission) Intersect(o MemberPermission) MemberPermission { return p & o }
func (p MemberPermission) Difference(o MemberPermission) MemberPermission { return p &^ o }
func (p MemberPermission) Contains(o MemberPermission) bool { return p&o == o }
func (p MemberPermission) Intersects(o MemberPermission) bool { return p&o != 0 }
func (p MemberPermission) IsSubsetOf(o MemberPermission) bool { return o.Contains(p) }
func (p MemberPermission) String() string { return formatFlags(p, memberPermissionNames) }

func (p MemberPermission) MarshalText() ([]byte, error) { return marshalMask(p), nil }
func (p *MemberPermission) UnmarshalText(text []byte) error {
	return unmarshalMask(p, text)
}

// ParseMemberPermission parses a comma-separated list of names, "all",
// "none" or a 16-digit hex mask.
func ParseMemberPermission(s string) (MemberPermission, error) {
	return parseFlags(s, memberPermissionNames)
}

func (a RoomAttrs) Bits() uint64 { return uint64(a) }
func (a RoomAttrs) Union(o RoomAttrs) RoomAttrs { return a | o }
func (a RoomAttrs) Intersect(o RoomAttrs) RoomAttrs { return a & o }
func (a RoomAttrs) Difference(o RoomAttrs) RoomAttrs { return a &^ o }
func (a RoomAttrs) Contains(o RoomAttrs) bool { return a&o == o }
func (a RoomAttrs) Intersects(o RoomAttrs) bool { return a&o != 0 }
func (a RoomAttrs) IsSubsetOf(o RoomAttrs) bool { return o.Contains(a) }
func (a RoomAttrs) String() string { return formatFlags(a, roomAttrsNames) }

func (a RoomAttrs) MarshalText() ([]byte, error) { return marshalMask(a), nil }
func (a *RoomAttrs) UnmarshalText(text []byte) error {
	return unmarshalMask(a, text)
}

// ParseRoomAttrs parses a comma-separated list of names, "all", "none"
// or a 16-digit hex mask.
func ParseRoomAttrs(s string) (RoomAttrs, error) {
	return parseFlags(s, roomAttrsNames)
}

// Mask is satisfied by the three permission set types.
type Mask interface {
	~uint64
}

type flagName[T Mask] struct {
	name string
	bit  T
}

// maskHexLen is the fixed width of the wire form.
const maskHexLen = 16

func marshalMask[T Mask](v T) []byte {
	return fmt.Appendf(nil, "%016x", uint64(v))
}

func unmarshalMask[T Mask](dst *T, text []byte) error {
	v, err := parseHexMask(string(text))
	if err != nil {
		return err
	}
	*dst = T(v)
	return nil
}

func parseHexMask(s string) (uint64, error) {
	if len(s) != maskHexLen || strings.ToLower(s) != s {
		return 0, fmt.Errorf("%w: want %d lowercase hex digits, got %q", ErrInvalidPermission, maskHexLen, s)
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPermission, err)
	}
	return v, nil
}

// formatFlags renders v as "name|name|0x..". Bits without a name are
// collected into a trailing hex term.
func formatFlags[T Mask](v T, names []flagName[T]) string {
	switch {
	case v == 0:
		return "none"
	case v == ^T(0):
		return "all"
	}
	var parts []string
	rest := v
	for _, n := range names {
		if v&n.bit == n.bit {
			parts = append(parts, n.name)
			rest &^= n.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint64(rest)))
	}
	return strings.Join(parts, "|")
}

func parseFlags[T Mask](s string, names []flagName[T]) (T, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none":
		return 0, nil
	case "all":
		return ^T(0), nil
	}
	if len(s) == maskHexLen && strings.Trim(s, "0123456789abcdef") == "" {
		v, err := parseHexMask(s)
		return T(v), err
	}
	var out T
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		bit, err := lookupFlag(strings.TrimSpace(field), names)
		if err != nil {
			return 0, err
		}
		out |= bit
	}
	return out, nil
}

func lookupFlag[T Mask](field string, names []flagName[T]) (T, error) {
	for _, n := range names {
		if n.name == field {
			return n.bit, nil
		}
	}
	if hexBits, ok := strings.CutPrefix(field, "0x"); ok {
		if v, err := strconv.ParseUint(hexBits, 16, 64); err == nil {
			return T(v), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown flag %q", ErrInvalidPermission, field)
}
