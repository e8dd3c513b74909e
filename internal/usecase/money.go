package usecase

import "github.com/shopspring/decimal"

// 金額は常に小数2桁の文字列で返す
func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func lineSubtotal(price decimal.Decimal, qty int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(qty))
}
