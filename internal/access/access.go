// Package access decides whether a user may read or download a guide.
// The resolver is a pure predicate; callers handle logging and pick the
// user-facing denial message.
package access

import (
	"time"

	"github.com/travelogue/guideapi/internal/models"
	"github.com/travelogue/guideapi/internal/subscription"
)

// RoleSet is a set of role names attached to a user.
type RoleSet map[string]struct{}

// NewRoleSet builds a RoleSet from role names.
func NewRoleSet(names ...string) RoleSet {
	rs := make(RoleSet, len(names))
	for _, n := range names {
		rs[n] = struct{}{}
	}
	return rs
}

// Has reports whether the set contains the named role.
func (rs RoleSet) Has(name string) bool {
	_, ok := rs[name]
	return ok
}

// HasAny reports whether the set contains any of the named roles.
func (rs RoleSet) HasAny(names ...string) bool {
	for _, n := range names {
		if rs.Has(n) {
			return true
		}
	}
	return false
}

// IsStaff reports whether the set carries a staff role. Staff roles have
// unconditional content access.
func (rs RoleSet) IsStaff() bool {
	return rs.HasAny(models.RoleAdmin, models.RoleSuperAdmin, models.RoleUploader)
}

// Denial classifies why access was refused, for presentation only.
type Denial int

const (
	// DenialNone means access is granted.
	DenialNone Denial = iota
	// DenialPurchaseRequired means the guide is priced and the user has
	// no active subscription.
	DenialPurchaseRequired
	// DenialInconsistent means the user appears entitled yet was denied.
	// Surfaced as a generic error pointing at support.
	DenialInconsistent
)

// CanAccess decides read/download access, first match wins:
// staff role, then active subscription, then free content.
// The caller must have authenticated the user and filtered out
// unpublished guides before calling.
func CanAccess(u *models.User, g *models.Guide, roles RoleSet, now time.Time) bool {
	if roles.IsStaff() {
		return true
	}
	if subscription.HasActive(u, now) {
		return true
	}
	if g.IsFree() {
		return true
	}
	return false
}

// Explain re-derives which branch failed so the caller can select a
// user-facing denial reason. Returns DenialNone when access is granted.
func Explain(u *models.User, g *models.Guide, roles RoleSet, now time.Time) Denial {
	if CanAccess(u, g, roles, now) {
		return DenialNone
	}
	if subscription.HasActive(u, now) {
		return DenialInconsistent
	}
	return DenialPurchaseRequired
}
