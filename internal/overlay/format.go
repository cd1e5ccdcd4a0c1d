package overlay

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/newthinker/sigchart/internal/core"
)

// FormatPrice renders a price with precision scaled to its magnitude.
// Rounding works on the exact binary value of p, ties away from zero, so
// 1.005 (stored as 1.00499...) renders as "1.00". Non-finite prices render
// as the empty string.
func FormatPrice(p float64) string {
	if !core.IsFinite(p) {
		return ""
	}
	return exactDecimal(p).StringFixed(Precision(p))
}

// Precision returns the number of decimals FormatPrice uses for p.
func Precision(p float64) int32 {
	ap := math.Abs(p)
	switch {
	case ap >= 1000:
		return 1
	case ap >= 1:
		return 2
	case ap >= 0.1:
		return 3
	case ap >= 0.01:
		return 4
	default:
		return 5
	}
}

// exactDecimal converts a finite float64 to the decimal it stores exactly:
// mant * 2^-k == mant * 5^k / 10^k.
func exactDecimal(p float64) decimal.Decimal {
	frac, exp := math.Frexp(p)
	mant := big.NewInt(int64(math.Ldexp(frac, 53)))
	shift := exp - 53
	if shift >= 0 {
		return decimal.NewFromBigInt(mant.Lsh(mant, uint(shift)), 0)
	}
	k := int64(-shift)
	five := new(big.Int).Exp(big.NewInt(5), big.NewInt(k), nil)
	return decimal.NewFromBigInt(mant.Mul(mant, five), int32(-k))
}
