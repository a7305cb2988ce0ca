package store

import (
	"fmt"

	"zombiezen.com/go/sqlite"

	"blah/internal/domain/types"
)

// Identities are stored as 32-byte BLOBs and permission sets as
// INTEGERs. SQLite integers are signed, so a mask is stored as the
// int64 with the same bit pattern; every one of the 2^64 masks round
// trips exactly.

// UserKeyToColumn returns the column value for user.
func UserKeyToColumn(user types.UserKey) []byte { return user.Slice() }

// UserKeyFromColumn decodes a stored identity. It fails with
// ErrInvalidIdentity on a wrong length or a non-curve point.
func UserKeyFromColumn(b []byte) (types.UserKey, error) {
	return types.UserKeyFromBytes(b)
}

// PermissionToColumn reinterprets a mask as a signed column value.
func PermissionToColumn[T types.Mask](perm T) int64 { return int64(uint64(perm)) }

// PermissionFromColumn is the inverse of PermissionToColumn.
func PermissionFromColumn[T types.Mask](v int64) T { return T(uint64(v)) }

// BindUserKey binds user to the 1-based parameter param of stmt.
func BindUserKey(stmt *sqlite.Stmt, param int, user types.UserKey) {
	stmt.BindBytes(param, UserKeyToColumn(user))
}

// BindPermission binds perm to the 1-based parameter param of stmt.
func BindPermission[T types.Mask](stmt *sqlite.Stmt, param int, perm T) {
	stmt.BindInt64(param, PermissionToColumn(perm))
}

// ColumnUserKey reads the identity in the 0-based result column col.
func ColumnUserKey(stmt *sqlite.Stmt, col int) (types.UserKey, error) {
	if n := stmt.ColumnLen(col); n != types.UserKeySize {
		return types.UserKey{}, fmt.Errorf("%w: column %d holds %d bytes", types.ErrInvalidIdentity, col, n)
	}
	var buf [types.UserKeySize]byte
	stmt.ColumnBytes(col, buf[:])
	return UserKeyFromColumn(buf[:])
}

// ColumnPermission reads the mask in the 0-based result column col.
func ColumnPermission[T types.Mask](stmt *sqlite.Stmt, col int) T {
	return PermissionFromColumn[T](stmt.ColumnInt64(col))
}
