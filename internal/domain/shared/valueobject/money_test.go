package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	assert.True(t, RoundMoney(decimal.RequireFromString("10.005")).Equal(decimal.RequireFromString("10.01")))
	assert.True(t, RoundMoney(decimal.RequireFromString("-10.005")).Equal(decimal.RequireFromString("-10.01")))
	assert.True(t, RoundMoney(decimal.RequireFromString("3.334")).Equal(decimal.RequireFromString("3.33")))
}

func TestRemaining(t *testing.T) {
	total := decimal.RequireFromString("300.00")
	assert.True(t, Remaining(total, decimal.RequireFromString("120")).Equal(decimal.RequireFromString("180")))
	assert.True(t, Remaining(total, decimal.RequireFromString("300.005")).IsZero())
}

func TestEpsilonComparisons(t *testing.T) {
	due := decimal.RequireFromString("100.00")

	t.Run("covers within one cent", func(t *testing.T) {
		assert.True(t, CoversWithin(decimal.RequireFromString("99.99"), due))
		assert.False(t, CoversWithin(decimal.RequireFromString("99.98"), due))
	})

	t.Run("fits within one cent", func(t *testing.T) {
		assert.True(t, FitsWithin(decimal.RequireFromString("100.01"), due))
		assert.False(t, FitsWithin(decimal.RequireFromString("100.02"), due))
	})
}

func TestPercent(t *testing.T) {
	assert.True(t, Percent(decimal.NewFromInt(200), decimal.NewFromInt(20)).Equal(decimal.NewFromInt(40)))
}
