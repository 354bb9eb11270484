package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMinimumContribution(t *testing.T) {
	withMin := Project{MinContribution: 500, SubscriptionPrice: 1000}
	assert.Equal(t, 500.0, withMin.MinimumContribution())

	legacy := Project{SubscriptionPrice: 1000}
	assert.Equal(t, 1000.0, legacy.MinimumContribution())
}

func TestProjectExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, Project{OperationalValidityYear: 2025}.Expired(now))
	assert.False(t, Project{OperationalValidityYear: 2026}.Expired(now))
	assert.False(t, Project{OperationalValidityYear: 2030}.Expired(now))
	// Zero means no validity window was set.
	assert.False(t, Project{}.Expired(now))
}

func TestEngagementLabel(t *testing.T) {
	assert.Equal(t, "Reinvestment", EngagementTransaction{Type: EngagementReinvest}.Label())
	assert.Equal(t, "Donation", EngagementTransaction{Type: EngagementDonate}.Label())
	assert.Equal(t, "Gift Sent", EngagementTransaction{Type: EngagementGift, Direction: DirectionOutgoing}.Label())
	assert.Equal(t, "Gift Received", EngagementTransaction{Type: EngagementGift, Direction: DirectionIncoming}.Label())
}
