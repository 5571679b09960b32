package role

import (
	"errors"
	"fmt"
)

// Role identifies an operational role inside a tenant.
type Role string

const (
	Waiter          Role = "waiter"
	Manager         Role = "manager"
	RestaurantAdmin Role = "restaurant_admin"
	SuperAdmin      Role = "super_admin"
)

// ranks defines the total order. The map is treated as immutable after
// package initialization, which makes all lookups safe for concurrent use.
var ranks = map[Role]int{
	Waiter:          1,
	Manager:         2,
	RestaurantAdmin: 3,
	SuperAdmin:      4,
}

// All returns every role sorted from lowest to highest rank.
func All() []Role {
	return []Role{Waiter, Manager, RestaurantAdmin, SuperAdmin}
}

// Rank returns the position of the role in the hierarchy. The boolean is
// false for roles outside the declared set.
func (r Role) Rank() (int, bool) {
	rank, ok := ranks[r]
	return rank, ok
}

// Valid reports whether the role belongs to the declared hierarchy.
func (r Role) Valid() bool {
	_, ok := ranks[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

// Parse converts an untrusted string into a Role. It is the only place where
// free-form role values enter the type system; everything downstream can rely
// on Role values being either valid or deniable.
func Parse(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", errors.Join(ErrUnknownRole, fmt.Errorf("unrecognized role %q", s))
	}
	return r, nil
}

// Satisfies reports whether actual meets the minimum rank among required.
// Higher-ranked roles always inherit lower-ranked capabilities, so a
// restaurant_admin satisfies a requirement of (waiter, manager).
//
// An empty required set imposes no restriction and permits any valid role.
// Invalid entries in required are ignored; if none remain the check fails
// closed. An invalid actual role never satisfies anything.
func Satisfies(actual Role, required ...Role) bool {
	actualRank, ok := actual.Rank()
	if !ok {
		return false
	}

	if len(required) == 0 {
		return true
	}

	minRank := 0
	for _, r := range required {
		rank, ok := r.Rank()
		if !ok {
			continue
		}
		if minRank == 0 || rank < minRank {
			minRank = rank
		}
	}

	// Every entry was invalid: treat as an unsatisfiable requirement.
	if minRank == 0 {
		return false
	}

	return actualRank >= minRank
}
