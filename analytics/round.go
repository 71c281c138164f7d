package analytics

import "github.com/shopspring/decimal"

// round2 按货币精度（两位小数，四舍五入）取整
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
