package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDiscount_Percentage(t *testing.T) {
	got := Discount(pctCoupon("SAVE10", 10), d("100.00"))
	assert.True(t, d("10.00").Equal(got), "got %s", got)
}

func TestDiscount_PercentageRounds(t *testing.T) {
	// 10% of 33.33 = 3.333 -> 3.33
	got := Discount(pctCoupon("SAVE10", 10), d("33.33"))
	assert.True(t, d("3.33").Equal(got), "got %s", got)
}

func TestDiscount_FullPercentage(t *testing.T) {
	got := Discount(pctCoupon("FREE", 100), d("42.50"))
	assert.True(t, d("42.50").Equal(got), "got %s", got)
}

func TestDiscount_FixedAmount(t *testing.T) {
	amt := d("5.00")
	c := &Coupon{Code: "WELCOME5", Amount: &amt, IsActive: true}

	got := Discount(c, d("20.00"))
	assert.True(t, d("5.00").Equal(got), "got %s", got)
}

func TestDiscount_FixedClampedToSubtotal(t *testing.T) {
	amt := d("50.00")
	c := &Coupon{Code: "BIG", Amount: &amt, IsActive: true}

	got := Discount(c, d("12.00"))
	assert.True(t, d("12.00").Equal(got), "got %s", got)
}

func TestDiscount_ZeroSubtotal(t *testing.T) {
	got := Discount(pctCoupon("SAVE10", 10), decimal.Zero)
	assert.True(t, got.IsZero())
}

func TestValidateConfig(t *testing.T) {
	pct := d("10")
	amt := d("5.00")
	over := d("101")
	neg := d("-1")

	tests := []struct {
		name   string
		coupon Coupon
		ok     bool
	}{
		{"percentage only", Coupon{Percentage: &pct}, true},
		{"amount only", Coupon{Amount: &amt}, true},
		{"neither", Coupon{}, false},
		{"both", Coupon{Percentage: &pct, Amount: &amt}, false},
		{"percentage over 100", Coupon{Percentage: &over}, false},
		{"negative percentage", Coupon{Percentage: &neg}, false},
		{"negative amount", Coupon{Amount: &neg}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coupon.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}
