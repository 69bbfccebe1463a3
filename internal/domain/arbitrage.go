package domain

// DefaultTotalStake es el capital total que se reparte entre outcomes si el
// caller no indica otro.
const DefaultTotalStake = 1000.0

// Bet es el mejor precio de un bookmaker para un outcome de un mercado.
type Bet struct {
	Source  string // bookmaker key
	Outcome string
	Price   float64
}

// ArbitrageResult contiene el análisis de un conjunto de apuestas enfrentadas.
//
// Stakes e ImpliedProbabilities siguen el orden de las bets de entrada.
// Si HasArbitrage es false, ProfitPercentage es 0 y Stakes es nil: no existe
// reparto válido y el caller no debe inventarlo.
type ArbitrageResult struct {
	HasArbitrage            bool
	ProfitPercentage        float64 // 100 - T: margen sobre el payout
	ReturnOnStake           float64 // (100/T - 1) × 100: beneficio sobre el capital
	Stakes                  []float64
	ImpliedProbabilities    []float64
	TotalImpliedProbability float64
	Hold                    float64 // T - 100: margen del bookmaker, negativo si hay arbitraje
	Payout                  float64 // retorno idéntico para cualquier outcome
	GuaranteedProfit        float64 // Payout - totalStake
}

// rawArbitrage guarda los valores sin redondear. Los tests del invariante de
// payout trabajan sobre esta versión.
type rawArbitrage struct {
	probs  []float64
	total  float64
	stakes []float64
	payout float64
}

// EvaluateArbitrage decide si el mercado es batible y reparte totalStake de forma
// que todos los outcomes paguen lo mismo.
//
//	p_i     = 100 / price_i
//	T       = Σ p_i                 (arbitraje ⇔ T < 100)
//	stake_i = totalStake × p_i / T
//	payout  = stake_i × price_i = totalStake × 100 / T   ∀ i
//
// "Sin arbitraje" no es un error: es un resultado normal.
func EvaluateArbitrage(bets []Bet, totalStake float64) (ArbitrageResult, error) {
	raw, err := evaluate(bets, totalStake)
	if err != nil {
		return ArbitrageResult{}, err
	}

	result := ArbitrageResult{
		ImpliedProbabilities:    round2All(raw.probs),
		TotalImpliedProbability: Round2(raw.total),
		Hold:                    Round2(raw.total - 100),
	}
	if raw.total >= 100 {
		return result, nil
	}

	result.HasArbitrage = true
	result.ProfitPercentage = Round2(100 - raw.total)
	result.ReturnOnStake = Round2((100/raw.total - 1) * 100)
	result.Stakes = round2All(raw.stakes)
	result.Payout = Round2(raw.payout)
	result.GuaranteedProfit = Round2(raw.payout - totalStake)
	return result, nil
}

func evaluate(bets []Bet, totalStake float64) (rawArbitrage, error) {
	if len(bets) < 2 {
		return rawArbitrage{}, ErrTooFewBets
	}
	if !(totalStake > 0) {
		return rawArbitrage{}, ErrInvalidStake
	}

	raw := rawArbitrage{probs: make([]float64, len(bets))}
	for i, b := range bets {
		p, err := ImpliedProbability(b.Price)
		if err != nil {
			return rawArbitrage{}, err
		}
		raw.probs[i] = p
		raw.total += p
	}

	if raw.total >= 100 {
		return raw, nil
	}

	raw.stakes = make([]float64, len(bets))
	for i, p := range raw.probs {
		raw.stakes[i] = totalStake * p / raw.total
	}
	raw.payout = totalStake * 100 / raw.total
	return raw, nil
}

// Hold devuelve el margen del bookmaker: T - 100. Negativo = arbitraje.
func Hold(bets []Bet) (float64, error) {
	if len(bets) < 2 {
		return 0, ErrTooFewBets
	}
	total := 0.0
	for _, b := range bets {
		p, err := ImpliedProbability(b.Price)
		if err != nil {
			return 0, err
		}
		total += p
	}
	return Round2(total - 100), nil
}
