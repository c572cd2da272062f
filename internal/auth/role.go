package auth

import (
	"fmt"
	"strings"
)

// Role is the access tier of a user. The zero value is not a valid role.
type Role int

const (
	RoleUser Role = iota + 1
	RoleMod
	RoleAdmin
)

func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "USER":
		return RoleUser, nil
	case "MOD":
		return RoleMod, nil
	case "ADMIN":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleMod:
		return "MOD"
	case RoleAdmin:
		return "ADMIN"
	}
	return "UNKNOWN"
}

func (r Role) Valid() bool {
	return r >= RoleUser && r <= RoleAdmin
}

// AtLeast reports whether r grants every capability of min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r >= min
}

func (r Role) CanModerate() bool   { return r.AtLeast(RoleMod) }
func (r Role) CanAdminister() bool { return r.AtLeast(RoleAdmin) }

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
