package domain

import "math"

// DefaultKellyFraction es el descuento conservador sobre el Kelly completo (½ Kelly).
const DefaultKellyFraction = 0.5

// KellyStake calcula el stake recomendado para una apuesta simple dada una
// probabilidad real estimada externamente (no derivada de los precios).
//
//	b = price - 1, p = trueProbabilityPct / 100, q = 1 - p
//	f = max(0, (b×p - q) / b)
//	stake = bankroll × f × fraction
//
// Un edge negativo nunca produce stake negativo. Cuotas <= 1 no tienen upside: 0.
func KellyStake(price, trueProbabilityPct, bankroll, fraction float64) (float64, error) {
	if !validPrice(price) {
		return 0, ErrInvalidPrice
	}
	if math.IsNaN(trueProbabilityPct) || trueProbabilityPct < 0 || trueProbabilityPct > 100 {
		return 0, ErrInvalidProbability
	}
	if math.IsNaN(bankroll) || bankroll < 0 || math.IsInf(bankroll, 0) {
		return 0, ErrInvalidStake
	}
	if !(fraction > 0 && fraction <= 1) {
		return 0, ErrInvalidFraction
	}

	b := price - 1
	if b <= 0 {
		return 0, nil
	}
	p := trueProbabilityPct / 100
	q := 1 - p

	f := math.Max(0, (b*p-q)/b)
	return Round2(bankroll * f * fraction), nil
}
