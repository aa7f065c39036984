// Package identity derives stable progress keys for students.
//
// Before real accounts exist, a student session is keyed by a pseudonymous id
// derived from the free-text name entered at login. The derivation is a lookup
// key only: it is trivially invertible for short names and collides like any
// 31-bit hash, so it must never be treated as a credential.
package identity

import (
	"fmt"
	"strings"
)

// StudentIdentity resolves to the key under which a student's progress
// records are stored. Callers never branch on the concrete variant.
type StudentIdentity interface {
	ProgressKey() string
	DisplayName() string
}

// NameIdentity is the pre-auth variant: the key is derived from the name.
type NameIdentity struct {
	Name string
}

func (n NameIdentity) ProgressKey() string { return DeriveID(n.Name) }
func (n NameIdentity) DisplayName() string { return n.Name }

// AuthIdentity is the authenticated variant: the key is the account's user id.
type AuthIdentity struct {
	UserID   string
	Username string
}

func (a AuthIdentity) ProgressKey() string { return a.UserID }
func (a AuthIdentity) DisplayName() string { return a.Username }

// DeriveID folds name into a 32-bit rolling hash (acc*31 + code unit), takes
// the absolute value and renders it as a UUID-shaped string so stores that
// expect UUID identifiers accept it. Deterministic; distinct names map to
// distinct ids with 31-bit-hash probability.
func DeriveID(name string) string {
	var acc int32
	for _, r := range name {
		acc = acc*31 + int32(r)
	}
	v := int64(acc)
	if v < 0 {
		v = -v
	}
	h := fmt.Sprintf("%08x", v)

	// 8 hex digits repeated out to the 32 a canonical UUID carries.
	s := strings.Repeat(h, 4)
	return s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:32]
}
