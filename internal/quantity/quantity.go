// Package quantity: Para ve miktar değerlerinde ikili kayan nokta sapmasını
// (ör: 0.1 + 0.2 = 0.30000000000000004) önlemek için tüm karşılaştırma ve
// toplamalar bu paketteki yuvarlama üzerinden yapılır.
package quantity

import "github.com/shopspring/decimal"

// Miktarlar 2 ondalık basamakta tutulur
const scale = 2

// Round: x'i 2 ondalık basamağa yuvarlar. İdempotenttir: Round(Round(x)) == Round(x).
func Round(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(scale).Float64()
	return f
}

// Mul: a*b çarpımını yuvarlanmış döndürür (reçete miktarı × parti miktarı için)
func Mul(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(scale).Float64()
	return f
}

// Sum: Değerlerin toplamını yuvarlanmış döndürür
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Round(scale).Float64()
	return f
}

// Equal: İki miktar yuvarlandıktan sonra eşit mi?
func Equal(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(scale).Equal(decimal.NewFromFloat(b).Round(scale))
}
