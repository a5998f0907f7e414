package marketmath

import "github.com/shopspring/decimal"

// RoundHalfDown quantizes value to the nearest multiple of step, never rounding up
// past the raw value: if the quantized result exceeds value, one step is subtracted.
// When step >= 1 the result is truncated to an integer (exchange APIs reject
// fractional units at that granularity).
//
// 例如 RoundHalfDown(3.7, 0.5) = 3.5，RoundHalfDown(7.9, 2) = 6。
// step <= 0 时原样返回。
func RoundHalfDown(value, step float64) float64 {
	if step <= 0 {
		return value
	}
	return quantize(decimal.NewFromFloat(value), decimal.NewFromFloat(step))
}

// MulRoundHalfDown quantizes a*b to step, with the product computed in
// fixed-point. Going through float64 first can land a hair below an exact
// multiple (100*1.005 = 100.49999999999999) and the never-overstate rule
// would then drop a whole step.
func MulRoundHalfDown(a, b, step float64) float64 {
	v := decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b))
	if step <= 0 {
		f, _ := v.Float64()
		return f
	}
	return quantize(v, decimal.NewFromFloat(step))
}

func quantize(v, s decimal.Decimal) float64 {
	q := v.Div(s).Round(0).Mul(s)
	if q.GreaterThan(v) {
		q = q.Sub(s)
	}
	if s.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		q = q.Truncate(0)
	}
	f, _ := q.Float64()
	return f
}

// Round8 rounds v to 8 decimal places (quote currency bookkeeping precision).
func Round8(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(8).Float64()
	return f
}

// MulRound8 returns a*b rounded to 8 decimal places, computed in fixed-point
// to avoid the float64 drift of a plain multiplication.
func MulRound8(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(8).Float64()
	return f
}
