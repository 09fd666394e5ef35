package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/travelogue/guideapi/internal/models"
)

var anchor = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestEndDate(t *testing.T) {
	tests := []struct {
		name string
		plan string
		want time.Time
	}{
		{
			name: "monthly",
			plan: PlanMonthly,
			want: anchor.AddDate(0, 1, 0),
		},
		{
			name: "yearly",
			plan: PlanYearly,
			want: anchor.AddDate(1, 0, 0),
		},
		{
			name: "lifetime is a hundred years out",
			plan: PlanLifetime,
			want: anchor.AddDate(100, 0, 0),
		},
		{
			name: "unknown plan falls back to monthly",
			plan: "Weekly",
			want: anchor.AddDate(0, 1, 0),
		},
		{
			name: "empty plan falls back to monthly",
			plan: "",
			want: anchor.AddDate(0, 1, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, EndDate(tt.plan, anchor).Equal(tt.want))
		})
	}
}

func TestActivate(t *testing.T) {
	var u models.User
	Activate(&u, PlanYearly, anchor)

	assert.True(t, u.IsSubscribed)
	assert.Equal(t, PlanYearly, u.SubscriptionPlan)
	assert.True(t, u.SubscriptionStartDate.Equal(anchor))
	assert.True(t, u.SubscriptionEndDate.Equal(anchor.AddDate(1, 0, 0)))
	assert.True(t, HasActive(&u, anchor))
}

func TestExpireKeepsEndDate(t *testing.T) {
	var u models.User
	Activate(&u, PlanMonthly, anchor)

	later := anchor.Add(72 * time.Hour)
	Expire(&u, later)

	assert.False(t, u.IsSubscribed)
	assert.NotNil(t, u.SubscriptionEndDate)
	assert.True(t, u.SubscriptionEndDate.Equal(later))
	assert.False(t, HasActive(&u, later))
}

func TestHasActiveBoundary(t *testing.T) {
	var u models.User
	Activate(&u, PlanMonthly, anchor)
	end := *u.SubscriptionEndDate

	// Strictly greater-than: exactly at the end date is inactive.
	assert.True(t, HasActive(&u, end.Add(-time.Second)))
	assert.False(t, HasActive(&u, end))
	assert.False(t, HasActive(&u, end.Add(time.Second)))
}

func TestHasActiveRequiresFlagAndEndDate(t *testing.T) {
	end := anchor.AddDate(0, 1, 0)

	flagOff := models.User{SubscriptionEndDate: &end}
	assert.False(t, HasActive(&flagOff, anchor))

	noEnd := models.User{IsSubscribed: true}
	assert.False(t, HasActive(&noEnd, anchor))
}

func TestDaysUntilExpiry(t *testing.T) {
	var u models.User
	end := anchor.Add(10*24*time.Hour + 6*time.Hour)
	u.IsSubscribed = true
	u.SubscriptionEndDate = &end

	// Partial days truncate.
	assert.Equal(t, 10, DaysUntilExpiry(&u, anchor))

	Expire(&u, anchor)
	assert.Equal(t, 0, DaysUntilExpiry(&u, anchor))
}
