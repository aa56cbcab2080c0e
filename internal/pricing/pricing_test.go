package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

func TestComputeDiscount_AutoTiers(t *testing.T) {
	table := DefaultTierTable()

	tests := []struct {
		name        string
		subtotal    int64
		wantPercent int
		wantAmount  int64
		wantTotal   int64
		wantLabel   string
	}{
		{"below lowest threshold", 39999, 0, 0, 39999, NoDiscountLabel},
		{"exactly tier1 minimum", 40000, 40, 16000, 24000, "Tier 1 (40% off)"},
		{"mid tier1", 45000, 40, 18000, 27000, "Tier 1 (40% off)"},
		{"tier2", 90000, 50, 45000, 45000, "Tier 2 (50% off)"},
		{"exactly tier3 minimum", 120000, 55, 66000, 54000, "Tier 3 (55% off)"},
		{"above tier3", 200000, 55, 110000, 90000, "Tier 3 (55% off)"},
		{"zero subtotal", 0, 0, 0, 0, NoDiscountLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.ComputeDiscount(tt.subtotal, TierAuto)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPercent, got.Percent)
			assert.Equal(t, tt.wantAmount, got.Amount)
			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantLabel, got.TierLabel)
		})
	}
}

func TestComputeDiscount_PinnedTierIgnoresSubtotal(t *testing.T) {
	table := DefaultTierTable()

	// A customer pinned to tier3 gets 55% even on a tiny order.
	got, err := table.ComputeDiscount(100, Tier3)
	require.NoError(t, err)
	assert.Equal(t, 55, got.Percent)
	assert.Equal(t, int64(55), got.Amount)
	assert.Equal(t, int64(45), got.Total)
	assert.Equal(t, "Tier 3 (55% off)", got.TierLabel)
}

func TestComputeDiscount_PinnedTier1(t *testing.T) {
	got, err := DefaultTierTable().ComputeDiscount(10000, Tier1)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Percent)
	assert.Equal(t, int64(4000), got.Amount)
	assert.Equal(t, int64(6000), got.Total)
}

func TestComputeDiscount_AmountPlusTotalEqualsSubtotal(t *testing.T) {
	table := DefaultTierTable()
	subtotals := []int64{0, 1, 99, 101, 39999, 40000, 40001, 79999, 80001, 119999, 120001, 1234567}
	tiers := []TierLevel{TierAuto, Tier1, Tier2, Tier3}

	for _, s := range subtotals {
		for _, tier := range tiers {
			got, err := table.ComputeDiscount(s, tier)
			require.NoError(t, err)
			assert.Equal(t, s, got.Amount+got.Total, "subtotal %d tier %s", s, tier)
		}
	}
}

func TestComputeDiscount_PercentNonDecreasing(t *testing.T) {
	table := DefaultTierTable()
	prev := -1
	for s := int64(0); s <= 150000; s += 500 {
		got, err := table.ComputeDiscount(s, TierAuto)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Percent, prev, "subtotal %d", s)
		prev = got.Percent
	}
}

func TestComputeDiscount_RoundHalfUp(t *testing.T) {
	table := TierTable{{Level: Tier1, MinOrderAmount: 0, Percent: 55, Label: "t"}}

	// 55% of 101 = 55.55 → rounds to 56.
	got, err := table.ComputeDiscount(101, Tier1)
	require.NoError(t, err)
	assert.Equal(t, int64(56), got.Amount)
	assert.Equal(t, int64(45), got.Total)

	// 55% of 110 = 60.5 → rounds to 61 (half up).
	got, err = table.ComputeDiscount(110, Tier1)
	require.NoError(t, err)
	assert.Equal(t, int64(61), got.Amount)
}

func TestComputeDiscount_NegativeSubtotal(t *testing.T) {
	_, err := DefaultTierTable().ComputeDiscount(-1, TierAuto)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestComputeDiscount_UnknownTier(t *testing.T) {
	_, err := DefaultTierTable().ComputeDiscount(50000, TierLevel("tier9"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestDetectSize(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hummingbird Sun Catcher 15 inch", "15 inch"},
		{`Cardinal 12" Window Hanging`, "12 inch"},
		{"Dragonfly 10in", "10 inch"},
		{"Small Bluebird 6 Inch", "6 inch"},
		{"Untitled piece", ""},
		// Largest size checked first: a title mentioning both matches 15.
		{"15 inch and 6 inch combo", "15 inch"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectSize(tt.title), "title %q", tt.title)
	}
}

func TestResolveRetailPrice(t *testing.T) {
	tests := []struct {
		name     string
		category string
		title    string
		want     int64
	}{
		{"sun catcher sized", "Glass Sun Catchers", "Hummingbird 15 inch", 15300},
		{"sun catcher 12", "Glass Sun Catchers", `Cardinal 12"`, 11900},
		{"sun catcher 10", "Glass Sun Catchers", "Dragonfly 10 in", 9800},
		{"sun catcher no size", "Glass Sun Catchers", "Mystery piece", 7200},
		{"glass ornament", "Glass Ornaments", "Snowflake", 3500},
		{"paper cut", "Paper Cut Ornaments", "Reindeer", 1500},
		{"wooden", "Wooden Ornaments", "Sleigh", 3500},
		{"unknown category", "Candles", "Pine Scent", 3500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRetailPrice(tt.category, tt.title))
		})
	}
}
