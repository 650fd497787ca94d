package domain

import (
	"fmt"
	"strconv"
)

type Role string

const (
	RoleHost   Role = "host"
	RoleViewer Role = "viewer"
	RoleClient Role = "client"
)

const defaultIdentifier = "default"

// Identity is one of Host, Viewer or Lane(n). The zero value is invalid.
type Identity struct {
	role Role
	lane int
}

func Host() Identity   { return Identity{role: RoleHost} }
func Viewer() Identity { return Identity{role: RoleViewer} }

func Lane(n int) Identity { return Identity{role: RoleClient, lane: n} }

func (i Identity) Role() Role { return i.role }

func (i Identity) IsHost() bool { return i.role == RoleHost }

// LaneNumber reports the lane for client identities.
func (i Identity) LaneNumber() (int, bool) {
	if i.role != RoleClient {
		return 0, false
	}
	return i.lane, true
}

// Identifier is the session key within a role: "default" for host and viewer,
// the decimal lane number for clients.
func (i Identity) Identifier() string {
	if i.role == RoleClient {
		return strconv.Itoa(i.lane)
	}
	return defaultIdentifier
}

func (i Identity) Valid() bool {
	switch i.role {
	case RoleHost, RoleViewer:
		return true
	case RoleClient:
		return i.lane >= 1
	}
	return false
}

func (i Identity) String() string {
	if i.role == RoleClient {
		return fmt.Sprintf("lane %d", i.lane)
	}
	return string(i.role)
}

// IdentityFromSession rebuilds an Identity from a stored (role, identifier) key.
func IdentityFromSession(role Role, identifier string) (Identity, error) {
	switch role {
	case RoleHost:
		return Host(), nil
	case RoleViewer:
		return Viewer(), nil
	case RoleClient:
		n, err := strconv.Atoi(identifier)
		if err != nil || n < 1 {
			return Identity{}, fmt.Errorf("%w: bad lane identifier %q", ErrValidation, identifier)
		}
		return Lane(n), nil
	}
	return Identity{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
}

func itoa(n int) string { return strconv.Itoa(n) }
