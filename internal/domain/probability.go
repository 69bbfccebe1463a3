package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// ImpliedProbability convierte una cuota decimal en probabilidad implícita (%).
//
//	p = (1 / price) × 100
//
// Se devuelve con precisión completa: sumar valores ya redondeados acumula error
// y rompe la igualdad de payouts del evaluador. Redondear con Round2 al salir.
func ImpliedProbability(price float64) (float64, error) {
	if !validPrice(price) {
		return 0, ErrInvalidPrice
	}
	return 100 / price, nil
}

// Round2 redondea a 2 decimales (half away from zero) vía decimal para evitar
// artefactos binarios del tipo 4.765 → 4.76.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func round2All(vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = Round2(v)
	}
	return out
}

func validPrice(price float64) bool {
	return price > 0 && !math.IsInf(price, 0) && !math.IsNaN(price)
}
