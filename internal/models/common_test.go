// internal/models/common_test.go
package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	stamp := time.Date(2026, 8, 20, 23, 45, 12, 999, loc)

	day := DateOnly(stamp)
	assert.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), day)
	assert.Equal(t, day, DateOnly(day))
}

func TestPriceLevelIDs(t *testing.T) {
	assert.Equal(t, 1, PriceLevelProducer.LevelID())
	assert.Equal(t, 2, PriceLevelWholesale.LevelID())
	assert.Equal(t, 3, PriceLevelRetail.LevelID())
	assert.Equal(t, 4, PriceLevelConsumer.LevelID())

	assert.True(t, PriceLevelRetail.Valid())
	assert.False(t, PriceLevel("eceran").Valid())

	assert.Len(t, AllPriceLevels(), 4)
}

func TestUserRoleIsElevated(t *testing.T) {
	assert.True(t, UserRoleAdmin.IsElevated())
	assert.True(t, UserRoleOfficer.IsElevated())
	assert.False(t, UserRoleUser.IsElevated())
}

func TestOverrideDeltaPct(t *testing.T) {
	override := PriceOverride{
		OriginalPrice:  decimal.NewFromInt(10000),
		RequestedPrice: decimal.NewFromInt(15000),
	}
	assert.InDelta(t, 50.0, override.DeltaPct(), 0.001)

	// Delta is symmetric: a drop counts the same as a rise.
	override.RequestedPrice = decimal.NewFromInt(5000)
	assert.InDelta(t, 50.0, override.DeltaPct(), 0.001)

	override.OriginalPrice = decimal.Zero
	assert.Zero(t, override.DeltaPct())
}

func TestOverrideExpired(t *testing.T) {
	now := time.Now()
	override := PriceOverride{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, override.Expired(now))
	assert.True(t, override.Expired(now.Add(2*time.Hour)))
}

func TestUserPasswordHashing(t *testing.T) {
	var user User
	assert.NoError(t, user.SetPassword("Password123!"))
	assert.NotEqual(t, "Password123!", user.PasswordHash)
	assert.NoError(t, user.CheckPassword("Password123!"))
	assert.Error(t, user.CheckPassword("WrongPass1!"))
}
