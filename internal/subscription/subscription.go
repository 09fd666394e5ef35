// Package subscription holds the subscription lifecycle rules: plan
// durations, activation and expiry transitions, and the derived active
// check. All functions take an explicit now so callers control the clock.
package subscription

import (
	"time"

	"github.com/travelogue/guideapi/internal/models"
)

// Subscription plan names. Stored verbatim on the user row.
const (
	PlanMonthly  = "Monthly"
	PlanYearly   = "Yearly"
	PlanLifetime = "Lifetime"
)

// EndDate computes when a subscription started at now runs out. Lifetime
// uses a +100 years sentinel so the end date is always set and comparable.
// An unknown plan gets the Monthly duration rather than an error.
func EndDate(plan string, now time.Time) time.Time {
	switch plan {
	case PlanMonthly:
		return now.AddDate(0, 1, 0)
	case PlanYearly:
		return now.AddDate(1, 0, 0)
	case PlanLifetime:
		return now.AddDate(100, 0, 0)
	default:
		return now.AddDate(0, 1, 0)
	}
}

// Activate puts the user on the given plan starting at now.
func Activate(u *models.User, plan string, now time.Time) {
	end := EndDate(plan, now)
	u.IsSubscribed = true
	u.SubscriptionPlan = plan
	u.SubscriptionStartDate = &now
	u.SubscriptionEndDate = &end
}

// Expire ends the user's subscription at now. The end date is set to now,
// not cleared, so "expired on X" remains displayable afterwards.
func Expire(u *models.User, now time.Time) {
	u.IsSubscribed = false
	u.SubscriptionEndDate = &now
}

// HasActive reports whether the user's subscription is active at now.
// The comparison is strictly greater-than: a subscription expired at
// exactly now is inactive.
func HasActive(u *models.User, now time.Time) bool {
	return u.IsSubscribed &&
		u.SubscriptionEndDate != nil &&
		u.SubscriptionEndDate.After(now)
}

// DaysUntilExpiry returns whole days remaining on an active subscription,
// and 0 when no subscription is active at now.
func DaysUntilExpiry(u *models.User, now time.Time) int {
	if !HasActive(u, now) {
		return 0
	}
	return int(u.SubscriptionEndDate.Sub(now).Hours() / 24)
}
